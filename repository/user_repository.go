// Package repository, veritabanı erişim katmanını tanımlar.
//
// Her domain için iki dosya vardır:
//   - x_repository.go → interface (sözleşme)
//   - sqlite_x.go     → SQLite implementasyonu
//
// Service katmanı sadece interface'leri bilir — test'lerde in-memory
// fake'lerle, production'da SQLite ile çalışır (Dependency Inversion).
package repository

import (
	"context"

	"github.com/akocak/fotogram/models"
)

// UserRepository, kullanıcı veritabanı işlemleri için interface.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, displayName, bio *string) error
	UpdateAvatar(ctx context.Context, id, avatarURL string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
