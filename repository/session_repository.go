package repository

import (
	"context"

	"github.com/akocak/fotogram/models"
)

// SessionRepository, refresh token oturumları için interface.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByRefreshToken(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByRefreshToken(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}

// PasswordResetRepository, şifre sıfırlama token'ları için interface.
// Token'lar hash'lenmiş olarak saklanır — GetByTokenHash ham token değil
// SHA-256 hash'i alır.
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *models.PasswordReset) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error)
	DeleteAllForUser(ctx context.Context, userID string) error
}
