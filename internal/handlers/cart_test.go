package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storechat/internal/mocks"
	"storechat/internal/models"
	"storechat/internal/repositories"
)

func setupCartRouter(handler *CartHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 7)
		c.Next()
	})
	r.GET("/cart/showUserProducts", handler.ShowUserProducts)
	r.POST("/cart/deleteProduct", handler.DeleteProduct)
	r.POST("/cart/checkout", handler.Checkout)
	r.GET("/purchases/showPurchasedProducts", handler.ShowPurchasedProducts)
	return r
}

func TestShowCartSuccess(t *testing.T) {
	cartRepo := new(mocks.CartRepositoryMock)
	handler := NewCartHandler(cartRepo)
	router := setupCartRouter(handler)

	cartRepo.On("ListCart", mock.Anything, 7).Return([]models.CartProduct{
		{Product: models.Product{ProductID: "p-1", Name: "lamp"}, Quantity: 2},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/cart/showUserProducts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]models.CartProduct
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp["cartProducts"], 1)
	require.Equal(t, 2, resp["cartProducts"][0].Quantity)
	cartRepo.AssertExpectations(t)
}

func TestDeleteCartProductSuccess(t *testing.T) {
	cartRepo := new(mocks.CartRepositoryMock)
	handler := NewCartHandler(cartRepo)
	router := setupCartRouter(handler)

	cartRepo.On("RemoveFromCart", mock.Anything, 7, "p-1").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/cart/deleteProduct", bytes.NewBufferString(`{"productid":"p-1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	cartRepo.AssertExpectations(t)
}

func TestDeleteCartProductMissingBody(t *testing.T) {
	handler := NewCartHandler(new(mocks.CartRepositoryMock))
	router := setupCartRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/cart/deleteProduct", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	cartRepo := new(mocks.CartRepositoryMock)
	handler := NewCartHandler(cartRepo)
	router := setupCartRouter(handler)

	cartRepo.On("Checkout", mock.Anything, 7).Return(repositories.ErrInsufficientStock).Once()

	req := httptest.NewRequest(http.MethodPost, "/cart/checkout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	cartRepo.AssertExpectations(t)
}

func TestCheckoutSuccess(t *testing.T) {
	cartRepo := new(mocks.CartRepositoryMock)
	handler := NewCartHandler(cartRepo)
	router := setupCartRouter(handler)

	cartRepo.On("Checkout", mock.Anything, 7).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/cart/checkout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	cartRepo.AssertExpectations(t)
}

func TestShowPurchasedProductsSuccess(t *testing.T) {
	cartRepo := new(mocks.CartRepositoryMock)
	handler := NewCartHandler(cartRepo)
	router := setupCartRouter(handler)

	cartRepo.On("ListPurchases", mock.Anything, 7).Return([]models.PurchasedProduct{
		{Product: models.Product{ProductID: "p-1"}, Quantity: 1, PurchasedAt: time.Now()},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/purchases/showPurchasedProducts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cartRepo.AssertExpectations(t)
}
