package schema

import (
	"time"

	"github.com/google/uuid"
)

// Message is immutable once written.
type Message struct {
	ID          string    `json:"id"`
	SenderID    uuid.UUID `json:"senderId"`
	SenderName  string    `json:"senderName"`
	SenderType  Role      `json:"senderType"`
	RecipientID uuid.UUID `json:"recipientId"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
	// Seq is the message's position in its conversation log, starting at 1.
	Seq int64 `json:"seq"`
}
