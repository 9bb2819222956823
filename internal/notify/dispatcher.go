// Package notify persists user-targeted notifications and nudges connected
// clients to refetch their list.
package notify

import (
	"context"
	"fmt"

	"givelocal/pkg/types"

	"github.com/sirupsen/logrus"
)

type NotificationStore interface {
	NotificationsByUser(ctx context.Context, userID string) ([]*types.Notification, error)
	Create(ctx context.Context, notification *types.Notification) error
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, notificationID, userID string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

type Publisher interface {
	Publish(topic, eventType string)
}

type Dispatcher struct {
	logger *logrus.Logger
	store  NotificationStore
	hub    Publisher
}

func NewDispatcher(logger *logrus.Logger, store NotificationStore, hub Publisher) *Dispatcher {
	return &Dispatcher{logger: logger, store: store, hub: hub}
}

// Notify inserts an unread notification and pushes a nudge to the target
// user's topic. The nudge tells clients to refetch; it carries no payload.
func (d *Dispatcher) Notify(ctx context.Context, userID string, kind types.NotificationType, title, message string, link *string) error {
	notification := &types.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		Link:    link,
	}

	if err := d.store.Create(ctx, notification); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	d.hub.Publish(UserTopic(userID), "notification")
	return nil
}

// List returns the user's notifications newest first.
func (d *Dispatcher) List(ctx context.Context, userID string) ([]*types.Notification, error) {
	return d.store.NotificationsByUser(ctx, userID)
}

func (d *Dispatcher) MarkRead(ctx context.Context, notificationID, userID string) error {
	return d.store.MarkRead(ctx, notificationID, userID)
}

func (d *Dispatcher) MarkAllRead(ctx context.Context, userID string) error {
	return d.store.MarkAllRead(ctx, userID)
}

func (d *Dispatcher) Clear(ctx context.Context, notificationID, userID string) error {
	return d.store.Delete(ctx, notificationID, userID)
}

func (d *Dispatcher) ClearAll(ctx context.Context, userID string) error {
	return d.store.DeleteAllForUser(ctx, userID)
}

func UserTopic(userID string) string {
	return "user:" + userID
}

func PickupTopic(requestID string) string {
	return "pickup:" + requestID
}
