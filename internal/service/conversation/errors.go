package conversation

import "errors"

var (
	ErrSenderNotFound   = errors.New("sender has no account")
	ErrEmptyText        = errors.New("message text is required")
	ErrTextTooLong      = errors.New("message text is too long")
	ErrInvalidRecipient = errors.New("recipient must be another user")
)
