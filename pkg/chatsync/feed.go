// Package chatsync keeps a local copy of one conversation in step with the
// server by polling. Transport sits behind ConversationFeed so a push-based
// feed can replace the ticker later.
package chatsync

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Message is a chat message as the API returns it.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	SenderName  string    `json:"senderName"`
	SenderType  string    `json:"senderType"`
	RecipientID string    `json:"recipientId"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
	Seq         int64     `json:"seq"`
}

// ConversationFeed reads and writes the thread between the caller and a peer.
type ConversationFeed interface {
	// History returns the whole thread in append order.
	History(ctx context.Context, peerID string) ([]Message, error)
	Send(ctx context.Context, peerID, text string) (Message, error)
}

var (
	ErrUnauthorized = errors.New("chatsync: unauthorized")
	// ErrMalformedResponse is a 2xx reply whose body is not the expected JSON,
	// e.g. an HTML page from a proxy in front of the API.
	ErrMalformedResponse = errors.New("chatsync: malformed response")
)

// StatusError is a non-2xx reply from the API.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("chatsync: http %d", e.Code)
	}
	return fmt.Sprintf("chatsync: http %d: %s", e.Code, e.Message)
}
