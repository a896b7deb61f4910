package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid auth token")

const (
	defaultAdminTTL   = 24 * time.Hour
	defaultPatientTTL = 7 * 24 * time.Hour
)

type claims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTStrategy signs and verifies HS256 tokens. Admin and patient tokens
// share a secret but carry the role claim and differ in expiry.
type JWTStrategy struct {
	secret     []byte
	adminTTL   time.Duration
	patientTTL time.Duration
}

// NewJWTStrategy builds JWTStrategy with provided secret and options.
func NewJWTStrategy(secret string, opts Options) *JWTStrategy {
	adminTTL := opts.AdminTTL
	if adminTTL <= 0 {
		adminTTL = defaultAdminTTL
	}
	patientTTL := opts.PatientTTL
	if patientTTL <= 0 {
		patientTTL = defaultPatientTTL
	}
	return &JWTStrategy{secret: []byte(secret), adminTTL: adminTTL, patientTTL: patientTTL}
}

// IssueToken generates a signed token for the identity.
func (s *JWTStrategy) IssueToken(identity Identity) (string, error) {
	ttl := s.adminTTL
	if identity.Role == RolePatient {
		ttl = s.patientTTL
	}
	now := time.Now()
	c := claims{
		UserID: identity.UserID,
		Email:  identity.Email,
		Role:   string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(s.secret)
}

// ParseToken validates the token and returns the identity it encodes.
func (s *JWTStrategy) ParseToken(token string) (*Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	c, ok := parsed.Claims.(*claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	role := Role(c.Role)
	if role != RoleAdmin && role != RolePatient {
		return nil, ErrInvalidToken
	}
	if c.Email == "" || c.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: c.UserID, Email: c.Email, Role: role}, nil
}

func (s *JWTStrategy) Name() string {
	return "jwt-hs256"
}
