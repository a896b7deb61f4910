package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/chanikul/edenclinic/internal/adapter/googleauth"
	"github.com/chanikul/edenclinic/internal/adapter/mailer"
	"github.com/chanikul/edenclinic/internal/config"
	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/domain/model"
	"github.com/chanikul/edenclinic/internal/domain/repository"
	pkgAuth "github.com/chanikul/edenclinic/internal/pkg/auth"
)

const resetTokenTTL = time.Hour

// AuthUseCase signs users in, parses bearer tokens and runs the password
// reset flow for both roles.
type AuthUseCase struct {
	admins         repository.AdminRepository
	clients        repository.ClientRepository
	hasher         pkgAuth.PasswordHasher
	tokens         pkgAuth.Strategy
	google         googleauth.Verifier
	mail           mailer.Mailer
	baseURL        string
	allowedDomains []string
	logger         *slog.Logger
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(admins repository.AdminRepository, clients repository.ClientRepository, hasher pkgAuth.PasswordHasher, tokens pkgAuth.Strategy, google googleauth.Verifier, mail mailer.Mailer, cfg *config.Config, logger *slog.Logger) *AuthUseCase {
	return &AuthUseCase{
		admins:         admins,
		clients:        clients,
		hasher:         hasher,
		tokens:         tokens,
		google:         google,
		mail:           mail,
		baseURL:        cfg.BaseURL,
		allowedDomains: cfg.GoogleAllowedDomains,
		logger:         logger,
	}
}

// AdminLogin validates back-office credentials and returns a signed token.
func (u *AuthUseCase) AdminLogin(ctx context.Context, email, password string) (*model.Admin, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	admin, err := u.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := u.hasher.Compare(admin.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}
	if !admin.Active {
		return nil, "", domainErrors.ErrInactiveUser
	}

	token, err := u.tokens.IssueToken(pkgAuth.Identity{UserID: admin.ID, Email: admin.Email, Role: pkgAuth.RoleAdmin})
	if err != nil {
		return nil, "", err
	}
	if err := u.admins.TouchLastLogin(ctx, admin.ID); err != nil {
		u.logger.Warn("touch last login", slog.Any("error", err))
	}
	return admin, token, nil
}

// PatientLogin validates patient credentials and returns a signed token.
func (u *AuthUseCase) PatientLogin(ctx context.Context, email, password string) (*model.Client, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	client, err := u.clients.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := u.hasher.Compare(client.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}
	if !client.Active {
		return nil, "", domainErrors.ErrInactiveUser
	}

	token, err := u.tokens.IssueToken(pkgAuth.Identity{UserID: client.ID, Email: client.Email, Role: pkgAuth.RolePatient})
	if err != nil {
		return nil, "", err
	}
	if err := u.clients.TouchLastLogin(ctx, client.ID); err != nil {
		u.logger.Warn("touch last login", slog.Any("error", err))
	}
	return client, token, nil
}

// GoogleLogin exchanges a Google ID token for an admin session. Accounts
// on allow-listed domains are provisioned (or reactivated) on first
// sign-in.
func (u *AuthUseCase) GoogleLogin(ctx context.Context, idToken string) (*model.Admin, string, error) {
	claims, err := u.google.Verify(ctx, idToken)
	if err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}
	if !claims.EmailVerified {
		return nil, "", domainErrors.ErrInvalidCredentials
	}
	email := strings.ToLower(claims.Email)
	if !u.domainAllowed(email) {
		return nil, "", domainErrors.ErrForbidden
	}

	admin, err := u.admins.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		name := claims.Name
		if name == "" {
			name = email
		}
		// Random password so the row is never password-loginable until a
		// reset is performed.
		hash, hashErr := u.hasher.Hash(randomToken())
		if hashErr != nil {
			return nil, "", hashErr
		}
		admin, err = u.admins.Create(ctx, email, name, hash, model.RoleAdmin)
		if err != nil {
			return nil, "", err
		}
		u.logger.Info("admin provisioned from google sign-in", slog.String("email", email))
	case err != nil:
		return nil, "", err
	default:
		if !admin.Active {
			if err := u.admins.Activate(ctx, admin.ID); err != nil {
				return nil, "", err
			}
			admin.Active = true
		}
	}

	token, err := u.tokens.IssueToken(pkgAuth.Identity{UserID: admin.ID, Email: admin.Email, Role: pkgAuth.RoleAdmin})
	if err != nil {
		return nil, "", err
	}
	if err := u.admins.TouchLastLogin(ctx, admin.ID); err != nil {
		u.logger.Warn("touch last login", slog.Any("error", err))
	}
	return admin, token, nil
}

func (u *AuthUseCase) domainAllowed(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := email[at+1:]
	for _, allowed := range u.allowedDomains {
		if domain == allowed {
			return true
		}
	}
	return false
}

// ForgotPassword starts a reset for either role. It always succeeds from
// the caller's point of view so the endpoint cannot be used to probe for
// accounts.
func (u *AuthUseCase) ForgotPassword(ctx context.Context, role pkgAuth.Role, email string) {
	email = strings.TrimSpace(strings.ToLower(email))
	token := randomToken()
	expiry := time.Now().Add(resetTokenTTL)

	var (
		name string
		err  error
	)
	switch role {
	case pkgAuth.RoleAdmin:
		var admin *model.Admin
		if admin, err = u.admins.GetByEmail(ctx, email); err == nil {
			name = admin.Name
			err = u.admins.SetResetToken(ctx, admin.ID, token, expiry)
		}
	case pkgAuth.RolePatient:
		var client *model.Client
		if client, err = u.clients.GetByEmail(ctx, email); err == nil {
			name = client.Name
			err = u.clients.SetResetToken(ctx, client.ID, token, expiry)
		}
	default:
		return
	}
	if err != nil {
		if !errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Error("forgot password", slog.Any("error", err))
		}
		return
	}

	link := u.baseURL + "/reset-password?role=" + string(role) + "&token=" + token
	if err := u.mail.SendPasswordReset(ctx, email, name, link); err != nil {
		u.logger.Error("password reset email failed", slog.Any("error", err))
	}
}

// ResetPassword completes a reset. The token must exist and be unexpired.
func (u *AuthUseCase) ResetPassword(ctx context.Context, role pkgAuth.Role, token, password string) error {
	if token == "" {
		return domainErrors.ErrInvalidCredentials
	}
	if len(password) < 8 {
		return domainErrors.NewValidation("password", "password must be at least 8 characters")
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return err
	}

	switch role {
	case pkgAuth.RoleAdmin:
		admin, err := u.admins.GetByResetToken(ctx, token)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				return domainErrors.ErrInvalidCredentials
			}
			return err
		}
		return u.admins.ResetPassword(ctx, admin.ID, hash)
	case pkgAuth.RolePatient:
		client, err := u.clients.GetByResetToken(ctx, token)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				return domainErrors.ErrInvalidCredentials
			}
			return err
		}
		return u.clients.ResetPassword(ctx, client.ID, hash)
	}
	return domainErrors.ErrInvalidCredentials
}

// AdminFromToken resolves a bearer token into a live admin row.
func (u *AuthUseCase) AdminFromToken(ctx context.Context, token string) (*model.Admin, error) {
	identity, err := u.tokens.ParseToken(token)
	if err != nil {
		return nil, domainErrors.ErrInvalidCredentials
	}
	if identity.Role != pkgAuth.RoleAdmin {
		return nil, domainErrors.ErrForbidden
	}
	admin, err := u.admins.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !admin.Active {
		return nil, domainErrors.ErrInactiveUser
	}
	return admin, nil
}

// ClientFromToken resolves a bearer token into a live patient row.
func (u *AuthUseCase) ClientFromToken(ctx context.Context, token string) (*model.Client, error) {
	identity, err := u.tokens.ParseToken(token)
	if err != nil {
		return nil, domainErrors.ErrInvalidCredentials
	}
	if identity.Role != pkgAuth.RolePatient {
		return nil, domainErrors.ErrForbidden
	}
	client, err := u.clients.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !client.Active {
		return nil, domainErrors.ErrInactiveUser
	}
	return client, nil
}

func randomToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
