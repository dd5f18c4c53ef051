package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/salespos-api/internal/application/service"
	"github.com/sangkips/salespos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salespos-api/internal/presentation/http/dto/response"
)

// AuthHandler handles admin login
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles admin PIN login
// @Summary Login
// @Description Exchange the admin PIN for an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Admin PIN"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	output, err := h.authService.Login(c.Request.Context(), req.PIN)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Login successful", output)
}

// Me returns the authenticated subject
func (h *AuthHandler) Me(c *gin.Context) {
	response.OK(c, "Session is valid", gin.H{
		"subject": GetSubject(c),
		"role":    GetRole(c),
	})
}
