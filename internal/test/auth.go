package test

import (
	"context"
	"errors"

	"github.com/chanikul/edenclinic/internal/adapter/googleauth"
	pkgAuth "github.com/chanikul/edenclinic/internal/pkg/auth"
)

// HasherStub provides deterministic hashing for tests.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

// Hash returns a predictable hash for the supplied password.
func (h HasherStub) Hash(password string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(password)
	}
	return "hash:" + password, nil
}

// Compare validates password against stored hash.
func (h HasherStub) Compare(hash string, password string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, password)
	}
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// StrategyStub issues and parses tokens via function overrides.
type StrategyStub struct {
	IssueFn  func(pkgAuth.Identity) (string, error)
	ParseFn  func(string) (*pkgAuth.Identity, error)
	Identity *pkgAuth.Identity
	NameVal  string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(identity pkgAuth.Identity) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(identity)
	}
	return "token", nil
}

// ParseToken parses previously issued token strings.
func (s StrategyStub) ParseToken(token string) (*pkgAuth.Identity, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	if s.Identity != nil {
		return s.Identity, nil
	}
	return &pkgAuth.Identity{UserID: 1, Role: pkgAuth.RoleAdmin}, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// VerifierStub returns canned identity-provider claims.
type VerifierStub struct {
	Claims *googleauth.Claims
	Err    error
}

// Verify returns the configured claims or error.
func (v VerifierStub) Verify(ctx context.Context, idToken string) (*googleauth.Claims, error) {
	if v.Err != nil {
		return nil, v.Err
	}
	if v.Claims != nil {
		return v.Claims, nil
	}
	return &googleauth.Claims{Email: "staff@example.com", EmailVerified: true, Name: "Staff"}, nil
}
