package repository

import (
	"context"

	"github.com/akocak/fotogram/models"
)

// CommentRepository, yorum veritabanı işlemleri için interface.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	Delete(ctx context.Context, id string) error
}
