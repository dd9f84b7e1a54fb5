package repository

import (
	"context"

	"github.com/akocak/fotogram/models"
)

// NotificationRepository, bildirim veritabanı işlemleri için interface.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkAllRead(ctx context.Context, userID string) error
}
