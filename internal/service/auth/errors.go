package auth

import "errors"

var (
	ErrInvalidEmail       = errors.New("a valid email address is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrNameRequired       = errors.New("name is required")
	ErrCRPRequired        = errors.New("crp registration is required")
	ErrInvalidAge         = errors.New("age must be a positive number")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrInviteRequired     = errors.New("invite code is required")
	ErrInvalidCredentials = errors.New("email or password is incorrect")
)
