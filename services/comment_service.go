package services

import (
	"context"
	"fmt"

	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/pkg"
	"github.com/akocak/fotogram/repository"
)

// CommentService, yorum iş mantığı interface'i.
type CommentService interface {
	Create(ctx context.Context, userID, postID string, req *models.CreateCommentRequest) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)

	// Delete: yorumu yazan veya gönderinin sahibi silebilir.
	Delete(ctx context.Context, userID, commentID string) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	notifier    NotificationService
}

// NewCommentService, constructor.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notifier NotificationService,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// Create, yorum ekler ve gönderi sahibine bildirim gönderir.
func (s *commentService) Create(ctx context.Context, userID, postID string, req *models.CreateCommentRequest) (*models.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: req.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// Response'ta yazar bilgisi de dönsün
	author, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		author.PasswordHash = ""
		comment.Author = author
	}

	s.notifier.Notify(ctx, post.UserID, userID, models.NotificationTypeComment, &post.ID)

	return comment, nil
}

func (s *commentService) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *commentService) Delete(ctx context.Context, userID, commentID string) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != userID {
		post, err := s.postRepo.GetByID(ctx, comment.PostID, userID)
		if err != nil {
			return err
		}
		if post.UserID != userID {
			return fmt.Errorf("%w: only the comment author or post owner can delete it", pkg.ErrForbidden)
		}
	}

	return s.commentRepo.Delete(ctx, commentID)
}
