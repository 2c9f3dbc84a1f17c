package account

import "errors"

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountExists        = errors.New("account already exists")
	ErrPatientNotFound      = errors.New("patient not found")
	ErrPsychologistNotFound = errors.New("psychologist not found")
)
