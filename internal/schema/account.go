package schema

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient      Role = "patient"
	RolePsychologist Role = "psychologist"
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RolePsychologist
}

// Account is the single stored record per user. Exactly one of Patient or
// Psychologist is set, matching Role.
type Account struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`

	Patient      *Patient      `json:"patient,omitempty"`
	Psychologist *Psychologist `json:"psychologist,omitempty"`
}

// DisplayName is the name shown next to the account's messages.
func (a *Account) DisplayName() string {
	switch {
	case a.Patient != nil:
		return a.Patient.Name
	case a.Psychologist != nil:
		return a.Psychologist.Name
	default:
		return ""
	}
}

type Psychologist struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CRP       string    `json:"crp"` // professional council registration
	CreatedAt time.Time `json:"createdAt"`
}

type Patient struct {
	ID               uuid.UUID           `json:"id"`
	Name             string              `json:"name"`
	Age              int                 `json:"age"`
	Phone            string              `json:"phone"`
	EmergencyContact string              `json:"emergencyContact,omitempty"`
	PsychologistID   uuid.UUID           `json:"psychologistId"`
	CreatedAt        time.Time           `json:"createdAt"`
	Credentials      *PatientCredentials `json:"credentials,omitempty"`
}

// PatientCredentials records the synthesized login. The password is handed out
// once at signup and never persisted.
type PatientCredentials struct {
	Email string `json:"email"`
}
