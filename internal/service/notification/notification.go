package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/mindcare_backend/internal/schema"
	"github.com/Alijeyrad/mindcare_backend/pkg/kv"
)

// Notification types written by the workers.
const (
	TypeCrisisRaised = "crisis_raised"
	TypeCrisisStatus = "crisis_status"
	TypeMessageNew   = "message_new"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	UserID uuid.UUID
	Type   string
	Title  string
	Body   *string
	Data   map[string]any
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*schema.Notification, error)
	// List returns the newest notifications first, at most limit of them.
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*schema.Notification, error)
	MarkRead(ctx context.Context, notifID, userID uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type notificationService struct {
	store kv.Store
}

func New(store kv.Store) Service {
	return &notificationService{store: store}
}

func (s *notificationService) Create(ctx context.Context, req CreateRequest) (*schema.Notification, error) {
	n := &schema.Notification{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Data:      req.Data,
		CreatedAt: time.Now().UTC(),
	}
	if req.Body != nil {
		n.Body = *req.Body
	}

	if err := s.store.Set(ctx, schema.NotificationKey(n.ID.String()), n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	if _, err := s.store.Append(ctx, schema.NotificationsLog(req.UserID), n.ID.String()); err != nil {
		return nil, fmt.Errorf("index notification: %w", err)
	}
	return n, nil
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*schema.Notification, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	found, err := kv.ResolveLog[schema.Notification](ctx, s.store, schema.NotificationsLog(userID), schema.NotificationKey)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	notifs := lo.Filter(lo.Reverse(found), func(n *schema.Notification, _ int) bool {
		return n != nil && (!unreadOnly || !n.IsRead)
	})
	if len(notifs) > limit {
		notifs = notifs[:limit]
	}
	return notifs, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notifID, userID uuid.UUID) error {
	n, err := kv.GetJSON[schema.Notification](ctx, s.store, schema.NotificationKey(notifID.String()))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("get notification: %w", err)
	}
	if n.UserID != userID {
		return ErrNotificationNotFound
	}
	if n.IsRead {
		return nil
	}
	n.IsRead = true
	if err := s.store.Set(ctx, schema.NotificationKey(n.ID.String()), n); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}
