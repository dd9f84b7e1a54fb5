package repository

import (
	"context"
	"fmt"

	"github.com/akocak/fotogram/database"
	"github.com/akocak/fotogram/models"
)

// sqliteFollowRepo, FollowRepository interface'inin SQLite implementasyonu.
type sqliteFollowRepo struct {
	db database.TxQuerier
}

// NewSQLiteFollowRepo, constructor — interface döner.
func NewSQLiteFollowRepo(db database.TxQuerier) FollowRepository {
	return &sqliteFollowRepo{db: db}
}

// Toggle: takip ilişkisi varsa siler, yoksa ekler (like toggle ile aynı pattern).
func (r *sqliteFollowRepo) Toggle(ctx context.Context, followerID, followeeID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO follows (follower_id, followee_id) VALUES (?, ?)`,
		followerID, followeeID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to toggle follow: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check follow insert: %w", err)
	}
	if affected == 1 {
		return true, nil
	}

	_, err = r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`,
		followerID, followeeID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove follow: %w", err)
	}
	return false, nil
}

func (r *sqliteFollowRepo) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = ? AND followee_id = ?)`,
		followerID, followeeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return exists, nil
}

func (r *sqliteFollowRepo) CountFollowers(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE followee_id = ?`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return count, nil
}

func (r *sqliteFollowRepo) CountFollowing(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE follower_id = ?`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}
	return count, nil
}

func (r *sqliteFollowRepo) ListFollowers(ctx context.Context, userID string) ([]models.User, error) {
	query := `
		SELECT u.id, u.username, u.display_name, u.avatar_url
		FROM follows f
		INNER JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = ?
		ORDER BY f.created_at DESC`
	return r.listUsers(ctx, query, userID)
}

func (r *sqliteFollowRepo) ListFollowing(ctx context.Context, userID string) ([]models.User, error) {
	query := `
		SELECT u.id, u.username, u.display_name, u.avatar_url
		FROM follows f
		INNER JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = ?
		ORDER BY f.created_at DESC`
	return r.listUsers(ctx, query, userID)
}

func (r *sqliteFollowRepo) listUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.DisplayName, &user.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan follow user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating follow rows: %w", err)
	}

	if users == nil {
		users = []models.User{}
	}
	return users, nil
}
