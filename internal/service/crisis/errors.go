package crisis

import "errors"

var (
	ErrCrisisNotFound    = errors.New("crisis not found")
	ErrInvalidStatus     = errors.New("status must be pending, in-progress or resolved")
	ErrForbidden         = errors.New("crisis belongs to another psychologist")
	ErrInvalidTransition = errors.New("crisis status cannot move backwards")
)
