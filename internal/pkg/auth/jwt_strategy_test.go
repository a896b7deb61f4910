package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTStrategyRoundTrip(t *testing.T) {
	s := NewJWTStrategy("secret", Options{})

	tests := []struct {
		name     string
		identity Identity
	}{
		{"admin", Identity{UserID: 7, Email: "staff@edenclinic.co.uk", Role: RoleAdmin}},
		{"patient", Identity{UserID: 42, Email: "pat@example.com", Role: RolePatient}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := s.IssueToken(tt.identity)
			if err != nil {
				t.Fatalf("issue: %v", err)
			}
			got, err := s.ParseToken(token)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if *got != tt.identity {
				t.Fatalf("identity mismatch: got %+v want %+v", got, tt.identity)
			}
		})
	}
}

func TestJWTStrategyRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTStrategy("secret-a", Options{})
	verifier := NewJWTStrategy("secret-b", Options{})

	token, err := issuer.IssueToken(Identity{UserID: 1, Email: "a@b.c", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.ParseToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTStrategyRejectsExpired(t *testing.T) {
	s := NewJWTStrategy("secret", Options{})

	// Sign an already-expired token directly; IssueToken always stamps a
	// future expiry.
	now := time.Now()
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: 1,
		Email:  "a@b.c",
		Role:   string(RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	})
	token, err := expired.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := s.ParseToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestJWTStrategyClampsNonPositiveTTL(t *testing.T) {
	s := NewJWTStrategy("secret", Options{AdminTTL: -time.Minute, PatientTTL: 0})
	if s.adminTTL != defaultAdminTTL {
		t.Fatalf("expected admin TTL %v, got %v", defaultAdminTTL, s.adminTTL)
	}
	if s.patientTTL != defaultPatientTTL {
		t.Fatalf("expected patient TTL %v, got %v", defaultPatientTTL, s.patientTTL)
	}
}

func TestJWTStrategyRejectsGarbage(t *testing.T) {
	s := NewJWTStrategy("secret", Options{})
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := s.ParseToken(token); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestJWTStrategyRejectsUnknownRole(t *testing.T) {
	s := NewJWTStrategy("secret", Options{})
	token, err := s.IssueToken(Identity{UserID: 1, Email: "a@b.c", Role: Role("root")})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := s.ParseToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for unknown role, got %v", err)
	}
}
