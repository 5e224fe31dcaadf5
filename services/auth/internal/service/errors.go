package service

import "errors"

// Expected failures, matched with errors.Is at the HTTP boundary. Anything
// else coming out of the service is an internal error and must not leak.
var (
	ErrValidation = errors.New("validation failed")
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the caller cannot tell which part failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account deactivated")
	ErrTokenNotFound      = errors.New("refresh token not found")
	// ErrTokenInactive covers expired and revoked, merged for the caller.
	ErrTokenInactive       = errors.New("refresh token expired or revoked")
	ErrUserNotFound        = errors.New("user not found")
	ErrRoleNotFound        = errors.New("role not found")
	ErrRoleAlreadyAssigned = errors.New("role already assigned")
)
