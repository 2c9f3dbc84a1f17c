package notification

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/mindcare_backend/pkg/kv/kvtest"
)

func TestListNewestFirst(t *testing.T) {
	env := kvtest.New(t)
	svc := New(env.Store)
	ctx := context.Background()
	user := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, CreateRequest{UserID: user, Type: TypeMessageNew, Title: fmt.Sprintf("n%d", i)})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, CreateRequest{UserID: uuid.New(), Type: TypeMessageNew, Title: "someone else"})
	require.NoError(t, err)

	got, err := svc.List(ctx, user, false, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "n2", got[0].Title)
	assert.Equal(t, "n0", got[2].Title)

	limited, err := svc.List(ctx, user, false, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMarkRead(t *testing.T) {
	env := kvtest.New(t)
	svc := New(env.Store)
	ctx := context.Background()
	user := uuid.New()

	body := "Joana needs help"
	first, err := svc.Create(ctx, CreateRequest{UserID: user, Type: TypeCrisisRaised, Title: "Crisis", Body: &body, Data: map[string]any{"crisisId": "crisis_1_a"}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateRequest{UserID: user, Type: TypeMessageNew, Title: "Message"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkRead(ctx, first.ID, uuid.New()), ErrNotificationNotFound)
	assert.ErrorIs(t, svc.MarkRead(ctx, uuid.New(), user), ErrNotificationNotFound)
	require.NoError(t, svc.MarkRead(ctx, first.ID, user))
	require.NoError(t, svc.MarkRead(ctx, first.ID, user))

	unread, err := svc.List(ctx, user, true, 10)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "Message", unread[0].Title)

	all, err := svc.List(ctx, user, false, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[1].IsRead)
	assert.Equal(t, "Joana needs help", all[1].Body)
	assert.Equal(t, "crisis_1_a", all[1].Data["crisisId"])
}
