package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/learnhub/internal/modules/user/dto"
	"anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/storage"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ProfileService interface {
	GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput, avatar *commonDto.UploadFile) (*dto.ProfileResponse, error)
}

type profileService struct {
	repo      repository.UserRepository
	storage   storage.FileStorage
	sanitizer *bluemonday.Policy
}

func NewProfileService(repo repository.UserRepository, fileStorage storage.FileStorage) ProfileService {
	return &profileService{
		repo:      repo,
		storage:   fileStorage,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *profileService) GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	user.PasswordHash = ""
	return &dto.ProfileResponse{User: user, Role: user.RoleName(), Profile: user.Profile}, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput, avatar *commonDto.UploadFile) (*dto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < 8 {
			return nil, fmt.Errorf("password must be at least 8 characters: %w", apperror.ErrBadRequest)
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	if avatar != nil && avatar.Reader != nil && s.storage != nil {
		url, err := s.storage.Upload(ctx, avatar.Reader, "avatars", avatar.FileName)
		if err != nil {
			return nil, err
		}
		if user.AvatarURL != nil {
			_ = s.storage.Delete(ctx, *user.AvatarURL)
		}
		user.AvatarURL = &url
	}

	profile := user.Profile
	if profile != nil {
		if input.FullName != nil {
			name := strings.TrimSpace(s.sanitizer.Sanitize(*input.FullName))
			if name == "" {
				return nil, fmt.Errorf("full name cannot be empty: %w", apperror.ErrBadRequest)
			}
			profile.FullName = name
		}
		if input.Bio != nil {
			profile.Bio = s.normalizeOptional(input.Bio)
		}
		if input.Headline != nil {
			profile.Headline = s.normalizeOptional(input.Headline)
		}
	}

	if err := s.repo.Update(ctx, user, profile); err != nil {
		return nil, err
	}

	return s.GetCurrentProfile(ctx, userID)
}

func (s *profileService) normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}

	trimmed := strings.TrimSpace(s.sanitizer.Sanitize(*value))
	if trimmed == "" {
		return nil
	}

	return &trimmed
}
