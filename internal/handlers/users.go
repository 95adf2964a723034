package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storechat/internal/middleware"
	"storechat/internal/repositories"
	"storechat/internal/telemetry"
)

// UserHandler manages account endpoints.
type UserHandler struct {
	users    repositories.UserRepository
	sessions middleware.SessionStore
	audit    *telemetry.AuditEmitter
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(users repositories.UserRepository, sessions middleware.SessionStore, audit *telemetry.AuditEmitter) *UserHandler {
	return &UserHandler{users: users, sessions: sessions, audit: audit}
}

// Register creates a dev account.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name"`
		Image    string `json:"image"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req.Email, req.Name, req.Image, req.Password)
	if err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login authenticates and sets the session cookie.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repositories.ErrBadCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	token := h.sessions.Create(user.ID)
	c.SetCookie(middleware.SessionCookie, token, 0, "/", "", false, true)
	h.audit.Emit(c.Request.Context(), "INFO", "user login", requestIDFromContext(c), &user.ID)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Verify confirms a signup code. The dev backend accepts any non-empty code.
func (h *UserHandler) Verify(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true})
}

// Logout revokes the session.
func (h *UserHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil {
		h.sessions.Revoke(token)
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}
