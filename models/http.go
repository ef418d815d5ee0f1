package models

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64,alphanum"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Password string `json:"password" validate:"required,password"`
}

// ChangePasswordRequest is the body of PUT /password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password"`
}

// EmailRequest is the body of POST /forgot-password and
// POST /resend-verification.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// ResetPasswordRequest is the body of POST /reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,password"`
}

// TokenRequest is the body of POST /verify-email.
type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// SetActiveRequest is the body of PATCH /admin/users/{id}/active.
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// Email is an outbound message handed to the mail transport.
type Email struct {
	To      string
	Subject string
	Body    string
}
