package services

import (
	"context"
	"fmt"

	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/pkg"
	"github.com/akocak/fotogram/repository"
)

// ProfileService, profil görüntüleme/güncelleme iş mantığı interface'i.
type ProfileService interface {
	// Get: herkese açık profil — kullanıcı + sayaçlar + izleyenin takip durumu.
	Get(ctx context.Context, viewerID, username string) (*models.Profile, error)
	Update(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID, avatarURL string) (*models.User, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

type profileService struct {
	userRepo   repository.UserRepository
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
}

// NewProfileService, constructor.
func NewProfileService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
) ProfileService {
	return &profileService{
		userRepo:   userRepo,
		postRepo:   postRepo,
		followRepo: followRepo,
	}
}

// Get, profil görünümünü üç sayaçla birlikte döner.
func (s *profileService) Get(ctx context.Context, viewerID, username string) (*models.Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	user.Email = nil // Başkasının e-postası profilde görünmez

	postCount, err := s.postRepo.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followerCount, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followingCount, err := s.followRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	isFollowing, err := s.followRepo.Exists(ctx, viewerID, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.Profile{
		User:           *user,
		PostCount:      postCount,
		FollowerCount:  followerCount,
		FollowingCount: followingCount,
		IsFollowing:    isFollowing,
	}, nil
}

func (s *profileService) Update(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, req.DisplayName, req.Bio); err != nil {
		return nil, err
	}
	return s.Me(ctx, userID)
}

func (s *profileService) UpdateAvatar(ctx context.Context, userID, avatarURL string) (*models.User, error) {
	if err := s.userRepo.UpdateAvatar(ctx, userID, avatarURL); err != nil {
		return nil, err
	}
	return s.Me(ctx, userID)
}

func (s *profileService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}
