package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crewdesk/internal/database"
	"crewdesk/internal/util"

	"github.com/google/uuid"
)

type Manager struct {
	logger *slog.Logger
	db     *database.Database
}

func NewManager(logger *slog.Logger, db *database.Database) Manager {
	return Manager{logger: logger, db: db}
}

type Notification struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Title     string
	Message   string
	Type      NotificationType
	IsRead    bool
	ActionURL string
	CreatedAt time.Time
}

type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

type NotifyParam struct {
	OwnerID   uuid.UUID
	Title     string
	Message   string
	Type      NotificationType
	ActionURL string
}

func (n *Manager) Notify(ctx context.Context, params NotifyParam) error {
	if _, err := n.db.CreateNotification(ctx, database.CreateNotificationParams{
		OwnerAccountID: params.OwnerID,
		Title:          params.Title,
		Message:        params.Message,
		Type:           string(params.Type),
		ActionURL:      params.ActionURL,
	}); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (n *Manager) Unread(ctx context.Context, accountID uuid.UUID) ([]Notification, error) {
	notifications, err := n.db.ListNotifications(ctx, database.ListNotificationsParams{
		OwnerAccountID:   util.Some(accountID),
		Limit:            util.Some(uint16(10)),
		OrderByCreatedAt: util.Some(database.OrderByDESC),
		Read:             util.Some(false),
	})
	if err != nil {
		return nil, err
	}

	result := make([]Notification, len(notifications))
	for i, notif := range notifications {
		result[i] = Notification{
			ID:        notif.ID,
			AccountID: notif.OwnerAccountID,
			Title:     notif.Title,
			Message:   notif.Message,
			Type:      NotificationType(notif.Type),
			IsRead:    notif.IsRead,
			ActionURL: notif.ActionURL,
			CreatedAt: notif.CreatedAt,
		}
	}

	return result, nil
}

// MarkAsRead marks one of accountID's own notifications as read. A
// notification that does not exist or belongs to another account comes back
// as database.ErrNotificationNotFound.
func (n *Manager) MarkAsRead(ctx context.Context, id uuid.UUID, accountID uuid.UUID) error {
	return n.db.MarkNotificationAsRead(ctx, id, accountID)
}
