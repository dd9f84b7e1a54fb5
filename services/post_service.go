package services

import (
	"context"
	"fmt"

	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/pkg"
	"github.com/akocak/fotogram/repository"
	"github.com/akocak/fotogram/ws"
)

// defaultFeedLimit, tek sayfada dönen maksimum gönderi sayısı.
const defaultFeedLimit = 20

// PostService, gönderi iş mantığı interface'i.
type PostService interface {
	Create(ctx context.Context, userID string, req *models.CreatePostRequest) (*models.Post, error)
	Get(ctx context.Context, viewerID, postID string) (*models.Post, error)

	// Feed: takip edilenler + kendi gönderileri, cursor-based pagination.
	Feed(ctx context.Context, viewerID, beforeID string, limit int) (*models.PostPage, error)
	ListByUser(ctx context.Context, viewerID, username, beforeID string, limit int) (*models.PostPage, error)

	// ToggleLike: beğeni ekle/kaldır. Eklendiyse gönderi sahibine bildirim gider.
	ToggleLike(ctx context.Context, userID, postID string) (liked bool, err error)
	Delete(ctx context.Context, userID, postID string) error
}

type postService struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	notifier   NotificationService
	hub        ws.Broadcaster
}

// NewPostService, constructor.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	notifier NotificationService,
	hub ws.Broadcaster,
) PostService {
	return &postService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
		notifier:   notifier,
		hub:        hub,
	}
}

// Create, yeni gönderi oluşturur ve takipçilere WS ile duyurur.
func (s *postService) Create(ctx context.Context, userID string, req *models.CreatePostRequest) (*models.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	post := &models.Post{
		UserID:   userID,
		ImageURL: req.ImageURL,
		Caption:  req.Caption,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	// Aggregate + author alanları dolu hali geri oku
	created, err := s.postRepo.GetByID(ctx, post.ID, userID)
	if err != nil {
		return nil, err
	}

	// Takipçilere canlı duyuru — feed'leri yeni gönderiyi gösterebilsin
	followers, err := s.followRepo.ListFollowers(ctx, userID)
	if err == nil {
		for _, follower := range followers {
			s.hub.BroadcastToUser(follower.ID, ws.Event{Op: ws.OpPostCreate, Data: created})
		}
	}

	return created, nil
}

func (s *postService) Get(ctx context.Context, viewerID, postID string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID, viewerID)
}

// Feed, cursor-based pagination ile akışı döner.
// limit+1 kayıt çekilir: fazlası geldiyse hasMore=true, fazla kayıt atılır.
func (s *postService) Feed(ctx context.Context, viewerID, beforeID string, limit int) (*models.PostPage, error) {
	if limit <= 0 || limit > 50 {
		limit = defaultFeedLimit
	}

	posts, err := s.postRepo.ListFeed(ctx, viewerID, beforeID, limit+1)
	if err != nil {
		return nil, err
	}

	return buildPostPage(posts, limit), nil
}

// ListByUser, bir kullanıcının profil sayfası gönderilerini döner.
func (s *postService) ListByUser(ctx context.Context, viewerID, username, beforeID string, limit int) (*models.PostPage, error) {
	if limit <= 0 || limit > 50 {
		limit = defaultFeedLimit
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByUser(ctx, user.ID, viewerID, beforeID, limit+1)
	if err != nil {
		return nil, err
	}

	return buildPostPage(posts, limit), nil
}

func buildPostPage(posts []models.Post, limit int) *models.PostPage {
	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}
	return &models.PostPage{Posts: posts, HasMore: hasMore}
}

// ToggleLike, beğeniyi ekler/kaldırır. Yeni beğenide gönderi sahibine
// bildirim gider; kaldırmada bildirim oluşmaz.
func (s *postService) ToggleLike(ctx context.Context, userID, postID string) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return false, err
	}

	liked, err := s.postRepo.ToggleLike(ctx, postID, userID)
	if err != nil {
		return false, err
	}

	if liked {
		s.notifier.Notify(ctx, post.UserID, userID, models.NotificationTypeLike, &post.ID)
	}
	return liked, nil
}

// Delete, gönderiyi siler. Sadece sahibi silebilir.
func (s *postService) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return fmt.Errorf("%w: only the post owner can delete it", pkg.ErrForbidden)
	}
	return s.postRepo.Delete(ctx, postID)
}
