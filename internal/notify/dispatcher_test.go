package notify

import (
	"context"
	"io"
	"testing"

	"givelocal/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	notifications []*types.Notification
}

func (f *fakeStore) NotificationsByUser(_ context.Context, userID string) ([]*types.Notification, error) {
	var out []*types.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeStore) Create(_ context.Context, n *types.Notification) error {
	n.Read = false
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeStore) MarkRead(_ context.Context, id, userID string) error {
	for _, n := range f.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (f *fakeStore) MarkAllRead(_ context.Context, userID string) error {
	for _, n := range f.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id, userID string) error {
	out := f.notifications[:0]
	for _, n := range f.notifications {
		if n.ID == id && n.UserID == userID {
			continue
		}
		out = append(out, n)
	}
	f.notifications = out
	return nil
}

func (f *fakeStore) DeleteAllForUser(_ context.Context, userID string) error {
	out := f.notifications[:0]
	for _, n := range f.notifications {
		if n.UserID == userID {
			continue
		}
		out = append(out, n)
	}
	f.notifications = out
	return nil
}

type fakePublisher struct {
	published []string
}

func (f *fakePublisher) Publish(topic, eventType string) {
	f.published = append(f.published, topic+"/"+eventType)
}

func newDispatcher() (*Dispatcher, *fakeStore, *fakePublisher) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := &fakeStore{}
	hub := &fakePublisher{}
	return NewDispatcher(logger, store, hub), store, hub
}

func TestNotifyInsertsUnreadAndPushes(t *testing.T) {
	d, store, hub := newDispatcher()

	err := d.Notify(context.Background(), "u1", types.NotificationTypePickup, "Pickup accepted", "See you Saturday", nil)
	require.NoError(t, err)

	require.Len(t, store.notifications, 1)
	assert.False(t, store.notifications[0].Read)
	assert.Equal(t, types.NotificationTypePickup, store.notifications[0].Type)
	assert.Equal(t, []string{"user:u1/notification"}, hub.published)
}

func TestMarkAllReadScopedToUser(t *testing.T) {
	d, store, _ := newDispatcher()

	require.NoError(t, d.Notify(context.Background(), "u1", types.NotificationTypeSystem, "a", "b", nil))
	require.NoError(t, d.Notify(context.Background(), "u2", types.NotificationTypeSystem, "c", "d", nil))

	require.NoError(t, d.MarkAllRead(context.Background(), "u1"))

	for _, n := range store.notifications {
		if n.UserID == "u1" {
			assert.True(t, n.Read)
		} else {
			assert.False(t, n.Read)
		}
	}
}

func TestClearAllRemovesOnlyOwnNotifications(t *testing.T) {
	d, store, _ := newDispatcher()

	require.NoError(t, d.Notify(context.Background(), "u1", types.NotificationTypeSystem, "a", "b", nil))
	require.NoError(t, d.Notify(context.Background(), "u2", types.NotificationTypeSystem, "c", "d", nil))

	require.NoError(t, d.ClearAll(context.Background(), "u1"))

	require.Len(t, store.notifications, 1)
	assert.Equal(t, "u2", store.notifications[0].UserID)
}
