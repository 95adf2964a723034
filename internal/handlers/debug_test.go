package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storechat/internal/mocks"
	"storechat/internal/telemetry"
)

func TestAuditPingPublishesAtRequestedLevel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	publisher := new(mocks.PublisherMock)
	audit := telemetry.NewAuditEmitter(publisher, "audit.storefront", "test")
	RegisterDebugRoutes(router, audit, true)

	publisher.On("Publish", mock.Anything, "audit.storefront", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(telemetry.AuditEnvelope)
		return ok && envelope.Payload.Level == "WARN" &&
			envelope.Payload.Text == "storefront audit ping"
	})).Return(nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/debug/audit-ping?level=warn", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	publisher.AssertExpectations(t)
}

func TestDebugRoutesDisabledByDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterDebugRoutes(router, nil, false)

	req := httptest.NewRequest(http.MethodGet, "/debug/audit-ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
