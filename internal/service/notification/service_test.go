package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/orderdesk/internal/entity"
	notificationrepo "github.com/Additional-Code/orderdesk/internal/repository/notification"
	"github.com/Additional-Code/orderdesk/internal/testutil"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

func TestServiceLifecycle(t *testing.T) {
	conns := testutil.NewConnections(t)
	svc := NewService(notificationrepo.NewRepository(conns), nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{UserID: 4, Type: "system", Message: "welcome"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{UserID: 4, Type: "system", Message: "second"})
	require.NoError(t, err)

	all, err := svc.ListByUser(ctx, 4)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	read, err := svc.MarkRead(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NotificationRead, read.Status)

	again, err := svc.MarkRead(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NotificationRead, again.Status)

	unread, err := svc.ListUnread(ctx, 4)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "second", unread[0].Message)
}

func TestServiceValidation(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{UserID: 1, Type: "system", Message: "  "})
	assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
	assert.Zero(t, store.calls)

	_, err = svc.ListByUser(ctx, 0)
	assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))

	_, err = svc.MarkRead(ctx, 12)
	assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
}
