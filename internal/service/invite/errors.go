package invite

import "errors"

var (
	ErrMalformedCode   = errors.New("invite code must be 6 characters A-Z or 0-9")
	ErrInvalidInvite   = errors.New("invite code is invalid or already used")
	ErrCodeUnavailable = errors.New("could not allocate a unique invite code")
)
