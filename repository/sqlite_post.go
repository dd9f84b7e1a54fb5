package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akocak/fotogram/database"
	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/pkg"
)

// sqlitePostRepo, PostRepository interface'inin SQLite implementasyonu.
type sqlitePostRepo struct {
	db database.TxQuerier
}

// NewSQLitePostRepo, constructor — interface döner.
func NewSQLitePostRepo(db database.TxQuerier) PostRepository {
	return &sqlitePostRepo{db: db}
}

func (r *sqlitePostRepo) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (user_id, image_url, caption)
		VALUES (?, ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		post.UserID, post.ImageURL, post.Caption,
	).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// postSelect, gönderi + yazar + aggregate'leri tek sorguda çeker.
// Subquery'ler N+1'i önler: her gönderi için ayrı COUNT sorgusu atılmaz.
// İlk placeholder liked_by_me için viewerID'dir.
const postSelect = `
	SELECT p.id, p.user_id, p.image_url, p.caption, p.created_at,
	       u.id, u.username, u.display_name, u.avatar_url,
	       (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS like_count,
	       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count,
	       EXISTS(SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = ?) AS liked_by_me
	FROM posts p
	INNER JOIN users u ON u.id = p.user_id`

func scanPost(rows interface{ Scan(...any) error }) (*models.Post, error) {
	post := &models.Post{Author: &models.User{}}
	err := rows.Scan(
		&post.ID, &post.UserID, &post.ImageURL, &post.Caption, &post.CreatedAt,
		&post.Author.ID, &post.Author.Username, &post.Author.DisplayName, &post.Author.AvatarURL,
		&post.LikeCount, &post.CommentCount, &post.LikedByMe,
	)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *sqlitePostRepo) GetByID(ctx context.Context, id, viewerID string) (*models.Post, error) {
	query := postSelect + ` WHERE p.id = ?`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, viewerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// ListFeed, takip edilen kullanıcıların + kendi gönderilerinin
// akışını döner (en yeni en üstte).
//
// Cursor-based pagination: beforeID verilirse o gönderiden daha eski
// kayıtlar döner. Service katmanı limit+1 ister ve hasMore'u hesaplar.
func (r *sqlitePostRepo) ListFeed(ctx context.Context, viewerID, beforeID string, limit int) ([]models.Post, error) {
	query := postSelect + `
		WHERE (p.user_id = ? OR p.user_id IN (
			SELECT followee_id FROM follows WHERE follower_id = ?
		))`
	args := []any{viewerID, viewerID, viewerID}

	if beforeID != "" {
		query += ` AND p.created_at < (SELECT created_at FROM posts WHERE id = ?)`
		args = append(args, beforeID)
	}

	query += ` ORDER BY p.created_at DESC, p.id DESC LIMIT ?`
	args = append(args, limit)

	return r.listPosts(ctx, query, args...)
}

func (r *sqlitePostRepo) ListByUser(ctx context.Context, userID, viewerID, beforeID string, limit int) ([]models.Post, error) {
	query := postSelect + ` WHERE p.user_id = ?`
	args := []any{viewerID, userID}

	if beforeID != "" {
		query += ` AND p.created_at < (SELECT created_at FROM posts WHERE id = ?)`
		args = append(args, beforeID)
	}

	query += ` ORDER BY p.created_at DESC, p.id DESC LIMIT ?`
	args = append(args, limit)

	return r.listPosts(ctx, query, args...)
}

func (r *sqlitePostRepo) listPosts(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	// Null protection: frontend'e null yerine boş array gitsin
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

func (r *sqlitePostRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE user_id = ?`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

func (r *sqlitePostRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return requireAffected(result)
}

// ToggleLike: beğeni varsa kaldırır, yoksa ekler.
//
// INSERT OR IGNORE → UNIQUE(post_id, user_id) çakışırsa sessizce atlar.
// RowsAffected == 1 → yeni eklendi. 0 → zaten vardı, DELETE ile kaldır.
func (r *sqlitePostRepo) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO likes (post_id, user_id) VALUES (?, ?)`,
		postID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check like insert: %w", err)
	}
	if affected == 1 {
		return true, nil
	}

	_, err = r.db.ExecContext(ctx,
		`DELETE FROM likes WHERE post_id = ? AND user_id = ?`,
		postID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove like: %w", err)
	}
	return false, nil
}
