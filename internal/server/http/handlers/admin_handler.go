package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chanikul/edenclinic/internal/domain/model"
	"github.com/chanikul/edenclinic/internal/server/http/dto"
	"github.com/chanikul/edenclinic/internal/usecase"
)

// AdminHandler serves back-office account management, the audit trail and
// catalog sync.
type AdminHandler struct {
	admins  *usecase.AdminUseCase
	catalog *usecase.CatalogUseCase
}

// NewAdminHandler creates AdminHandler.
func NewAdminHandler(admins *usecase.AdminUseCase, catalog *usecase.CatalogUseCase) *AdminHandler {
	return &AdminHandler{admins: admins, catalog: catalog}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	admins, err := h.admins.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromAdmins(admins))
}

// GetUser handles GET /api/admin/users/:id.
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	admin, err := h.admins.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromAdmin(admin))
}

// CreateUser handles POST /api/admin/users.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req dto.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	admin, err := h.admins.Create(c.Request.Context(), CurrentAdmin(c), req.Email, req.Name, req.Password, model.AdminRole(req.Role))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromAdmin(admin))
}

// UpdateUser handles PATCH /api/admin/users/:id.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	var role *model.AdminRole
	if req.Role != nil {
		r := model.AdminRole(*req.Role)
		role = &r
	}
	admin, err := h.admins.Update(c.Request.Context(), CurrentAdmin(c), id, req.Name, role, req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromAdmin(admin))
}

// TriggerReset handles POST /api/admin/users/reset-password.
func (h *AdminHandler) TriggerReset(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.admins.TriggerPasswordReset(c.Request.Context(), CurrentAdmin(c), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reset email sent"})
}

// AuditLog handles GET /api/admin/audit-log.
func (h *AdminHandler) AuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.admins.RecentAuditLog(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromAuditLogs(entries))
}

// SyncCatalog handles POST /api/admin/blood-tests/sync.
func (h *AdminHandler) SyncCatalog(c *gin.Context) {
	report, err := h.catalog.Sync(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListAllTests handles GET /api/admin/blood-tests, inactive rows included.
func (h *AdminHandler) ListAllTests(c *gin.Context) {
	tests, err := h.catalog.List(c.Request.Context(), false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBloodTests(tests))
}
