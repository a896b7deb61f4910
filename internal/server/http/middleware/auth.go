package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/domain/model"
)

const (
	// AdminContextKey is the gin context key for the authenticated admin.
	AdminContextKey = "admin"
	// ClientContextKey is the gin context key for the authenticated patient.
	ClientContextKey = "client"

	adminCookieName   = "eden_admin_token"
	patientCookieName = "eden_patient_token"

	// Cookie lifetimes mirror the token expiries, so a browser drops the
	// cookie around the time the token inside it stops verifying.
	adminCookieMaxAge   = int(24 * time.Hour / time.Second)
	patientCookieMaxAge = int(7 * 24 * time.Hour / time.Second)
)

// AdminResolver resolves an admin bearer token into a live account.
type AdminResolver interface {
	AdminFromToken(ctx context.Context, token string) (*model.Admin, error)
}

// ClientResolver resolves a patient bearer token into a live account.
type ClientResolver interface {
	ClientFromToken(ctx context.Context, token string) (*model.Client, error)
}

// AdminRequired rejects requests without a valid, active admin session.
func AdminRequired(resolver AdminResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, adminCookieName)
		if token == "" {
			abortAuth(c, http.StatusUnauthorized, "authentication required")
			return
		}
		admin, err := resolver.AdminFromToken(c.Request.Context(), token)
		if err != nil {
			abortResolveErr(c, err)
			return
		}
		c.Set(AdminContextKey, admin)
		c.Next()
	}
}

// PatientRequired rejects requests without a valid, active patient session.
func PatientRequired(resolver ClientResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, patientCookieName)
		if token == "" {
			abortAuth(c, http.StatusUnauthorized, "authentication required")
			return
		}
		client, err := resolver.ClientFromToken(c.Request.Context(), token)
		if err != nil {
			abortResolveErr(c, err)
			return
		}
		c.Set(ClientContextKey, client)
		c.Next()
	}
}

// PatientOptional attaches the patient to the context when a valid
// session is present and lets the request through either way. Used on the
// public checkout route so signed-in patients get orders linked to their
// account.
func PatientOptional(resolver ClientResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c, patientCookieName); token != "" {
			if client, err := resolver.ClientFromToken(c.Request.Context(), token); err == nil {
				c.Set(ClientContextKey, client)
			}
		}
		c.Next()
	}
}

// AdminOptional attaches the admin to the context when a valid session is
// present and lets the request through either way. Used on routes shared
// between roles, such as result downloads.
func AdminOptional(resolver AdminResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c, adminCookieName); token != "" {
			if admin, err := resolver.AdminFromToken(c.Request.Context(), token); err == nil {
				c.Set(AdminContextKey, admin)
			}
		}
		c.Next()
	}
}

func abortResolveErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrInvalidCredentials), errors.Is(err, domainErrors.ErrInactiveUser):
		abortAuth(c, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, domainErrors.ErrForbidden):
		abortAuth(c, http.StatusForbidden, "forbidden")
	default:
		abortAuth(c, http.StatusInternalServerError, "internal error")
	}
}

func abortAuth(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func extractToken(c *gin.Context, cookieName string) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAdminCookie writes the admin session cookie.
func SetAdminCookie(c *gin.Context, token string) {
	c.SetCookie(adminCookieName, token, adminCookieMaxAge, "/", "", false, true)
}

// SetPatientCookie writes the patient session cookie.
func SetPatientCookie(c *gin.Context, token string) {
	c.SetCookie(patientCookieName, token, patientCookieMaxAge, "/", "", false, true)
}

// ClearAuthCookies expires both session cookies.
func ClearAuthCookies(c *gin.Context) {
	c.SetCookie(adminCookieName, "", -1, "/", "", false, true)
	c.SetCookie(patientCookieName, "", -1, "/", "", false, true)
}
