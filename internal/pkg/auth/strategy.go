package auth

import "time"

// Role scopes a token to one of the two independent bearer schemes.
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePatient Role = "patient"
)

// Identity is the authenticated principal a token encodes.
type Identity struct {
	UserID int64
	Email  string
	Role   Role
}

type Strategy interface {
	IssueToken(identity Identity) (string, error)
	ParseToken(token string) (*Identity, error)
	Name() string
}

type Options struct {
	AdminTTL   time.Duration
	PatientTTL time.Duration
}
