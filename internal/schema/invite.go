package schema

import (
	"time"

	"github.com/google/uuid"
)

// InviteCode binds a future patient to a psychologist. Used flips false->true
// once and is never reset; invites are kept after use.
type InviteCode struct {
	Code           string     `json:"code"`
	PsychologistID uuid.UUID  `json:"psychologistId"`
	Used           bool       `json:"used"`
	CreatedAt      time.Time  `json:"createdAt"`
	UsedBy         *uuid.UUID `json:"usedBy,omitempty"`
	UsedAt         *time.Time `json:"usedAt,omitempty"`
}
