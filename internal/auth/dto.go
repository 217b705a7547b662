package auth

import (
	"github.com/lawscheduling/lawscheduling-backend/internal/tenants"
	"github.com/lawscheduling/lawscheduling-backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the token pair and where the client should land.
// FirmSlug is empty for administrators without a firm.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	FirmSlug     string         `json:"firm_slug"`
	IsAdmin      bool           `json:"is_admin"`
	User         *users.Principal `json:"user"`
}

// RefreshRequest pairs the last access token, which may be expired, with its
// refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair is the result of a refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SessionResponse describes the principal behind the current access token.
type SessionResponse struct {
	User     *users.Principal `json:"user"`
	FirmSlug string         `json:"firm_slug"`
	IsAdmin  bool           `json:"is_admin"`
}

// SignupRequest opens a firm account for a new principal.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FirmName string `json:"firm_name" validate:"notblank,min=3,max=30"`
}

// SignupResponse names the created principal and firm.
type SignupResponse struct {
	User *users.Principal     `json:"user"`
	Firm *tenants.TenantDTO `json:"firm"`
}

// AdminRegisterRequest contains the credentials for the admin bootstrap flow.
type AdminRegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminRegisterResponse reports whether an administrator was created. Created
// is false when one already existed.
type AdminRegisterResponse struct {
	Created bool           `json:"created"`
	Message string         `json:"message"`
	User    *users.Principal `json:"user,omitempty"`
}
