package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chanikul/edenclinic/internal/pkg/auth"
	"github.com/chanikul/edenclinic/internal/server/http/dto"
	"github.com/chanikul/edenclinic/internal/server/http/middleware"
	"github.com/chanikul/edenclinic/internal/usecase"
)

// AuthHandler serves the sign-in, sign-out and password reset routes for
// both roles.
type AuthHandler struct {
	auth *usecase.AuthUseCase
}

// NewAuthHandler creates AuthHandler.
func NewAuthHandler(auth *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// AdminLogin handles POST /api/auth/admin/login.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	admin, token, err := h.auth.AdminLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.SetAdminCookie(c, token)
	c.JSON(http.StatusOK, dto.FromAdmin(admin))
}

// PatientLogin handles POST /api/auth/patient/login.
func (h *AuthHandler) PatientLogin(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	client, token, err := h.auth.PatientLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.SetPatientCookie(c, token)
	c.JSON(http.StatusOK, dto.FromClient(client))
}

// GoogleLogin handles POST /api/auth/google.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req dto.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IDToken == "" {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	admin, token, err := h.auth.GoogleLogin(c.Request.Context(), req.IDToken)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.SetAdminCookie(c, token)
	c.JSON(http.StatusOK, dto.FromAdmin(admin))
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearAuthCookies(c)
	c.Status(http.StatusNoContent)
}

// AdminForgotPassword handles POST /api/auth/admin/forgot-password.
func (h *AuthHandler) AdminForgotPassword(c *gin.Context) {
	h.forgotPassword(c, auth.RoleAdmin)
}

// PatientForgotPassword handles POST /api/auth/patient/forgot-password.
func (h *AuthHandler) PatientForgotPassword(c *gin.Context) {
	h.forgotPassword(c, auth.RolePatient)
}

// forgotPassword always answers 200 so the route cannot be used to probe
// for registered emails.
func (h *AuthHandler) forgotPassword(c *gin.Context, role auth.Role) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	h.auth.ForgotPassword(c.Request.Context(), role, req.Email)
	c.JSON(http.StatusOK, gin.H{"message": "if the account exists, a reset email has been sent"})
}

// AdminResetPassword handles POST /api/auth/admin/reset-password.
func (h *AuthHandler) AdminResetPassword(c *gin.Context) {
	h.resetPassword(c, auth.RoleAdmin)
}

// PatientResetPassword handles POST /api/auth/patient/reset-password.
func (h *AuthHandler) PatientResetPassword(c *gin.Context) {
	h.resetPassword(c, auth.RolePatient)
}

func (h *AuthHandler) resetPassword(c *gin.Context, role auth.Role) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), role, req.Token, req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
