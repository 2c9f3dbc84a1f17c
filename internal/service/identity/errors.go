package identity

import "errors"

var (
	ErrUnauthorized       = errors.New("missing, invalid or expired credential")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrInvalidEmail       = errors.New("email is required")
)
