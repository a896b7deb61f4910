package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chanikul/edenclinic/internal/adapter/payments"
	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/domain/model"
	"github.com/chanikul/edenclinic/internal/server/http/middleware"
	"github.com/chanikul/edenclinic/internal/usecase"
)

// CurrentAdmin extracts the authenticated admin from the gin context.
func CurrentAdmin(c *gin.Context) *model.Admin {
	val, ok := c.Get(middleware.AdminContextKey)
	if !ok {
		return nil
	}
	admin, _ := val.(*model.Admin)
	return admin
}

// CurrentClient extracts the authenticated patient from the gin context.
func CurrentClient(c *gin.Context) *model.Client {
	val, ok := c.Get(middleware.ClientContextKey)
	if !ok {
		return nil
	}
	client, _ := val.(*model.Client)
	return client
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// respondError maps domain sentinels onto HTTP statuses with an
// `{"error": ...}` body. Unexpected errors become an opaque 500.
func respondError(c *gin.Context, err error) {
	var ve *domainErrors.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "fields": ve.Fields})
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		writeError(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domainErrors.ErrInactiveUser):
		writeError(c, http.StatusUnauthorized, "account is deactivated")
	case errors.Is(err, domainErrors.ErrForbidden):
		writeError(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, domainErrors.ErrNotFound):
		writeError(c, http.StatusNotFound, "not found")
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		writeError(c, http.StatusConflict, "already exists")
	case errors.Is(err, domainErrors.ErrInvalidTransition):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, domainErrors.ErrResultNotReady):
		writeError(c, http.StatusConflict, "result not ready")
	case errors.Is(err, payments.ErrInvalidSignature):
		writeError(c, http.StatusBadRequest, "invalid signature")
	case errors.Is(err, payments.ErrNoActivePrice):
		writeError(c, http.StatusConflict, "test has no active price")
	case errors.Is(err, usecase.ErrMissingOrderRef):
		writeError(c, http.StatusBadRequest, "missing order reference")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
