package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/chanikul/edenclinic/internal/adapter/mailer"
	"github.com/chanikul/edenclinic/internal/config"
	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/domain/model"
	"github.com/chanikul/edenclinic/internal/domain/repository"
	pkgAuth "github.com/chanikul/edenclinic/internal/pkg/auth"
)

// auditor appends back-office audit rows. Failures are logged, never
// propagated: audit must not fail the action it records.
type auditor struct {
	audit  repository.AuditLogRepository
	logger *slog.Logger
}

func (a *auditor) record(ctx context.Context, adminID int64, action, entityType, entityID string, details any) {
	var raw json.RawMessage
	if details != nil {
		encoded, err := json.Marshal(details)
		if err != nil {
			a.logger.Error("encode audit details", slog.Any("error", err))
		} else {
			raw = encoded
		}
	}
	if err := a.audit.Append(ctx, adminID, action, entityType, entityID, raw); err != nil {
		a.logger.Error("append audit log", slog.Any("error", err))
	}
}

// AdminUseCase manages back-office accounts.
type AdminUseCase struct {
	admins  repository.AdminRepository
	hasher  pkgAuth.PasswordHasher
	mail    mailer.Mailer
	auditor auditor
	baseURL string
	logger  *slog.Logger
}

// NewAdminUseCase constructs AdminUseCase.
func NewAdminUseCase(admins repository.AdminRepository, audit repository.AuditLogRepository, hasher pkgAuth.PasswordHasher, mail mailer.Mailer, cfg *config.Config, logger *slog.Logger) *AdminUseCase {
	return &AdminUseCase{
		admins:  admins,
		hasher:  hasher,
		mail:    mail,
		auditor: auditor{audit: audit, logger: logger},
		baseURL: cfg.BaseURL,
		logger:  logger,
	}
}

// List returns all back-office accounts.
func (u *AdminUseCase) List(ctx context.Context) ([]model.Admin, error) {
	return u.admins.List(ctx)
}

// Get returns one back-office account.
func (u *AdminUseCase) Get(ctx context.Context, id int64) (*model.Admin, error) {
	return u.admins.GetByID(ctx, id)
}

// Create provisions a back-office account. Only SUPER_ADMIN actors may
// mint another SUPER_ADMIN.
func (u *AdminUseCase) Create(ctx context.Context, actor *model.Admin, email, name, password string, role model.AdminRole) (*model.Admin, error) {
	fields := map[string]string{}
	email = strings.TrimSpace(strings.ToLower(email))
	if !ValidEmail(email) {
		fields["email"] = "invalid email address"
	}
	name = strings.TrimSpace(name)
	if name == "" {
		fields["name"] = "name is required"
	}
	if len(password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}
	if role != model.RoleAdmin && role != model.RoleSuperAdmin {
		fields["role"] = "unknown role"
	}
	if len(fields) > 0 {
		return nil, &domainErrors.ValidationError{Fields: fields}
	}
	if role == model.RoleSuperAdmin && actor.Role != model.RoleSuperAdmin {
		return nil, domainErrors.ErrForbidden
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	admin, err := u.admins.Create(ctx, email, name, hash, role)
	if err != nil {
		return nil, err
	}

	u.auditor.record(ctx, actor.ID, "admin.created", "admin", itoa(admin.ID), map[string]any{
		"email": admin.Email,
		"role":  admin.Role,
	})
	return admin, nil
}

// Update patches name, role or active. Role and active changes need a
// SUPER_ADMIN actor.
func (u *AdminUseCase) Update(ctx context.Context, actor *model.Admin, id int64, name *string, role *model.AdminRole, active *bool) (*model.Admin, error) {
	if (role != nil || active != nil) && actor.Role != model.RoleSuperAdmin {
		return nil, domainErrors.ErrForbidden
	}
	if role != nil && *role != model.RoleAdmin && *role != model.RoleSuperAdmin {
		return nil, domainErrors.NewValidation("role", "unknown role")
	}

	admin, err := u.admins.Update(ctx, id, name, role, active)
	if err != nil {
		return nil, err
	}

	u.auditor.record(ctx, actor.ID, "admin.updated", "admin", itoa(id), map[string]any{
		"name":   name,
		"role":   role,
		"active": active,
	})
	return admin, nil
}

// TriggerPasswordReset emails a reset link to an admin on behalf of the
// back office.
func (u *AdminUseCase) TriggerPasswordReset(ctx context.Context, actor *model.Admin, email string) error {
	admin, err := u.admins.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return err
	}

	token := randomToken()
	if err := u.admins.SetResetToken(ctx, admin.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}
	link := u.baseURL + "/reset-password?role=admin&token=" + token
	if err := u.mail.SendPasswordReset(ctx, admin.Email, admin.Name, link); err != nil {
		u.logger.Error("password reset email failed", slog.Any("error", err))
	}

	u.auditor.record(ctx, actor.ID, "admin.reset_triggered", "admin", itoa(admin.ID), nil)
	return nil
}

// RecentAuditLog returns the latest back-office actions.
func (u *AdminUseCase) RecentAuditLog(ctx context.Context, limit int) ([]model.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return u.auditor.audit.ListRecent(ctx, limit)
}
