package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pharmaware/counterpos-api/internal/application/service"
	"github.com/pharmaware/counterpos-api/internal/presentation/http/dto/request"
	"github.com/pharmaware/counterpos-api/internal/presentation/http/dto/response"
)

// AuthHandler handles counter login HTTP requests.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login verifies the counter PIN and returns a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.authService.Login(req.PIN)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Login successful", result)
}
