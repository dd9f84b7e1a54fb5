package services

import (
	"context"
	"fmt"

	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/pkg"
	"github.com/akocak/fotogram/repository"
)

// FollowService, takip ilişkisi iş mantığı interface'i.
type FollowService interface {
	// Toggle: takip et / bırak. Takip başladıysa karşı tarafa bildirim gider.
	Toggle(ctx context.Context, followerID, username string) (following bool, err error)
	Followers(ctx context.Context, username string) ([]models.User, error)
	Following(ctx context.Context, username string) ([]models.User, error)
}

type followService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	notifier   NotificationService
}

// NewFollowService, constructor.
func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	notifier NotificationService,
) FollowService {
	return &followService{
		followRepo: followRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

// Toggle, takip ilişkisini açıp kapatır. Kendini takip etmek yasak.
func (s *followService) Toggle(ctx context.Context, followerID, username string) (bool, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}

	if target.ID == followerID {
		return false, fmt.Errorf("%w: you cannot follow yourself", pkg.ErrBadRequest)
	}

	following, err := s.followRepo.Toggle(ctx, followerID, target.ID)
	if err != nil {
		return false, err
	}

	if following {
		s.notifier.Notify(ctx, target.ID, followerID, models.NotificationTypeFollow, nil)
	}
	return following, nil
}

func (s *followService) Followers(ctx context.Context, username string) ([]models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowers(ctx, user.ID)
}

func (s *followService) Following(ctx context.Context, username string) ([]models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowing(ctx, user.ID)
}
