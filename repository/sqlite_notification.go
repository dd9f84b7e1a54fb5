package repository

import (
	"context"
	"fmt"

	"github.com/akocak/fotogram/database"
	"github.com/akocak/fotogram/models"
)

// sqliteNotificationRepo, NotificationRepository interface'inin SQLite implementasyonu.
type sqliteNotificationRepo struct {
	db database.TxQuerier
}

// NewSQLiteNotificationRepo, constructor — interface döner.
func NewSQLiteNotificationRepo(db database.TxQuerier) NotificationRepository {
	return &sqliteNotificationRepo{db: db}
}

func (r *sqliteNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, actor_id, type, post_id)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		n.UserID, n.ActorID, n.Type, n.PostID,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListForUser, kullanıcının bildirimlerini aktör bilgisiyle birlikte
// en yeniden eskiye döner.
func (r *sqliteNotificationRepo) ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	query := `
		SELECT n.id, n.user_id, n.actor_id, n.type, n.post_id, n.read, n.created_at,
		       u.id, u.username, u.display_name, u.avatar_url
		FROM notifications n
		INNER JOIN users u ON u.id = n.actor_id
		WHERE n.user_id = ?
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		n := models.Notification{Actor: &models.User{}}
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.ActorID, &n.Type, &n.PostID, &n.Read, &n.CreatedAt,
			&n.Actor.ID, &n.Actor.Username, &n.Actor.DisplayName, &n.Actor.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}

	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

func (r *sqliteNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (r *sqliteNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0`, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
