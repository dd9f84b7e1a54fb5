package repository

import (
	"context"

	"github.com/akocak/fotogram/models"
)

// FollowRepository, takip ilişkisi veritabanı işlemleri için interface.
type FollowRepository interface {
	// Toggle: takip varsa bırakır, yoksa başlar.
	// following=true → takip başladı, false → takip bırakıldı.
	Toggle(ctx context.Context, followerID, followeeID string) (following bool, err error)
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)
	CountFollowers(ctx context.Context, userID string) (int, error)
	CountFollowing(ctx context.Context, userID string) (int, error)
	ListFollowers(ctx context.Context, userID string) ([]models.User, error)
	ListFollowing(ctx context.Context, userID string) ([]models.User, error)
}
