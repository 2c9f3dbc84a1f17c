package schema

import (
	"time"

	"github.com/google/uuid"
)

type CrisisStatus string

const (
	CrisisPending    CrisisStatus = "pending"
	CrisisInProgress CrisisStatus = "in-progress"
	CrisisResolved   CrisisStatus = "resolved"
)

func (s CrisisStatus) Valid() bool {
	return s.rank() > 0
}

// Precedes reports whether moving from s to next keeps the workflow forward
// (or stays put).
func (s CrisisStatus) Precedes(next CrisisStatus) bool {
	return s.rank() <= next.rank()
}

func (s CrisisStatus) rank() int {
	switch s {
	case CrisisPending:
		return 1
	case CrisisInProgress:
		return 2
	case CrisisResolved:
		return 3
	default:
		return 0
	}
}

type Crisis struct {
	ID             string       `json:"id"`
	PatientID      uuid.UUID    `json:"patientId"`
	PatientName    string       `json:"patientName"`
	PsychologistID uuid.UUID    `json:"psychologistId"`
	Timestamp      time.Time    `json:"timestamp"`
	Status         CrisisStatus `json:"status"`
	Notes          *string      `json:"notes"`
	UpdatedAt      *time.Time   `json:"updatedAt,omitempty"`
}
