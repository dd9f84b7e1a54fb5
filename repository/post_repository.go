package repository

import (
	"context"

	"github.com/akocak/fotogram/models"
)

// PostRepository, gönderi veritabanı işlemleri için interface.
//
// Listeleme operasyonları viewerID alır — like_count/comment_count
// aggregate'leri ve liked_by_me alanı tek sorguda doldurulur (N+1 önleme).
//
// Pagination cursor-based'dir: beforeID verilirse o gönderiden eski
// kayıtlar döner; limit+1 çekilip hasMore hesaplanır.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id, viewerID string) (*models.Post, error)
	ListFeed(ctx context.Context, viewerID, beforeID string, limit int) ([]models.Post, error)
	ListByUser(ctx context.Context, userID, viewerID, beforeID string, limit int) ([]models.Post, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id string) error

	// ToggleLike: varsa kaldır, yoksa ekle (INSERT OR IGNORE → DELETE pattern).
	// added=true → beğeni eklendi, added=false → kaldırıldı.
	ToggleLike(ctx context.Context, postID, userID string) (added bool, err error)
}
