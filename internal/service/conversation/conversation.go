// Package conversation stores one-to-one chat. A conversation is an append-only
// log of message ids keyed by the unordered participant pair, so both sides
// read the same history in the same order.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Alijeyrad/mindcare_backend/config"
	"github.com/Alijeyrad/mindcare_backend/internal/schema"
	"github.com/Alijeyrad/mindcare_backend/internal/service/account"
	"github.com/Alijeyrad/mindcare_backend/pkg/events"
	"github.com/Alijeyrad/mindcare_backend/pkg/kv"
	"github.com/Alijeyrad/mindcare_backend/pkg/observability"
	"github.com/Alijeyrad/mindcare_backend/pkg/util/codes"
)

const defaultMaxLength = 4000

// KeyOf returns the conversation key for a pair of participants. It is
// symmetric: KeyOf(a, b) == KeyOf(b, a).
func KeyOf(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, ":")
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Append(ctx context.Context, senderID, recipientID uuid.UUID, text string) (*schema.Message, error)
	// History returns the pair's messages in append order. Entries whose
	// message record is missing are skipped.
	History(ctx context.Context, a, b uuid.UUID) ([]*schema.Message, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type conversationService struct {
	store     kv.Store
	accounts  account.Service
	pub       events.Publisher
	maxLength int
}

func New(store kv.Store, accounts account.Service, pub events.Publisher, cfg *config.Config) Service {
	maxLen := cfg.Chat.MaxMessageLength
	if maxLen <= 0 {
		maxLen = defaultMaxLength
	}
	return &conversationService{store: store, accounts: accounts, pub: pub, maxLength: maxLen}
}

func (s *conversationService) Append(ctx context.Context, senderID, recipientID uuid.UUID, text string) (*schema.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if utf8.RuneCountInString(text) > s.maxLength {
		return nil, ErrTextTooLong
	}
	if recipientID == uuid.Nil || recipientID == senderID {
		return nil, ErrInvalidRecipient
	}

	sender, err := s.accounts.Resolve(ctx, senderID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, ErrSenderNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	id, err := codes.GenerateRecordID("msg", now)
	if err != nil {
		return nil, fmt.Errorf("generate message id: %w", err)
	}

	msg := &schema.Message{
		ID:          id,
		SenderID:    sender.ID,
		SenderName:  sender.DisplayName(),
		SenderType:  sender.Role,
		RecipientID: recipientID,
		Text:        text,
		Timestamp:   now,
	}
	if err := s.store.Set(ctx, schema.MessageKey(id), msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}

	seq, err := s.store.Append(ctx, schema.ConversationLog(KeyOf(senderID.String(), recipientID.String())), id)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	msg.Seq = seq

	events.Emit(s.pub, events.MessageNew(recipientID.String()), id)
	observability.MessagesSent.Add(ctx, 1)

	return msg, nil
}

func (s *conversationService) History(ctx context.Context, a, b uuid.UUID) ([]*schema.Message, error) {
	found, err := kv.ResolveLog[schema.Message](ctx, s.store,
		schema.ConversationLog(KeyOf(a.String(), b.String())), schema.MessageKey)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	out := make([]*schema.Message, 0, len(found))
	for i, m := range found {
		if m == nil {
			continue
		}
		// a message's sequence number is its position in the log
		m.Seq = int64(i + 1)
		out = append(out, m)
	}
	return out, nil
}
