package dto

// LoginRequest is the email/password payload shared by both login routes.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLoginRequest carries a Google ID token.
type GoogleLoginRequest struct {
	IDToken string `json:"idToken"`
}

// ForgotPasswordRequest starts a reset for the account behind the email.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest completes a reset.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}
