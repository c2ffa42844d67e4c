package auth

import "errors"

// Auth-specific errors
var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrAccountNotFound    = errors.New("account not found")
	ErrProfileExists      = errors.New("profile already exists for this account")
	ErrRoleMismatch       = errors.New("account role does not permit this profile")
	ErrAddressOutOfArea   = errors.New("address is outside the service area")
)
