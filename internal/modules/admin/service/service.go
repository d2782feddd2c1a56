package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/learnhub/internal/entity"
	activity "anoa.com/learnhub/internal/modules/activity/service"
	"anoa.com/learnhub/internal/modules/admin/dto"
	"anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminService interface {
	CreateUser(ctx context.Context, actor commonDto.Actor, input dto.CreateUserInput, avatar *commonDto.UploadFile) (*dto.AdminUserResponse, error)
	GetAllUsers(ctx context.Context, query dto.UserListQuery) (*commonDto.Paginated[dto.AdminUserResponse], error)
	UpdateUser(ctx context.Context, actor commonDto.Actor, id uuid.UUID, input dto.UpdateAdminUserInput, avatar *commonDto.UploadFile) (*dto.AdminUserResponse, error)
	DeleteUser(ctx context.Context, actor commonDto.Actor, id uuid.UUID) error
}

type adminService struct {
	repo     repository.UserRepository
	storage  storage.FileStorage
	activity activity.ActivityService
}

func NewAdminService(repo repository.UserRepository, fileStorage storage.FileStorage, activity activity.ActivityService) AdminService {
	return &adminService{
		repo:     repo,
		storage:  fileStorage,
		activity: activity,
	}
}

func toResponse(user *entity.User) *dto.AdminUserResponse {
	user.PasswordHash = ""
	return &dto.AdminUserResponse{User: user, Role: &user.Role, Profile: user.Profile}
}

func (s *adminService) findUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *adminService) findRole(ctx context.Context, name string) (*entity.Role, error) {
	role, err := s.repo.FindRoleByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("role %s not found: %w", name, apperror.ErrBadRequest)
		}
		return nil, err
	}
	return role, nil
}

func (s *adminService) upload(ctx context.Context, avatar *commonDto.UploadFile) (*string, error) {
	if avatar == nil || avatar.Reader == nil || s.storage == nil {
		return nil, nil
	}
	url, err := s.storage.Upload(ctx, avatar.Reader, "avatars", avatar.FileName)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func (s *adminService) CreateUser(ctx context.Context, actor commonDto.Actor, input dto.CreateUserInput, avatar *commonDto.UploadFile) (*dto.AdminUserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role, err := s.findRole(ctx, input.Role)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	avatarURL, err := s.upload(ctx, avatar)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     input.Username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		RoleID:       &role.ID,
		Role:         *role,
		AvatarURL:    avatarURL,
		IsActive:     true,
	}
	profile := &entity.Profile{
		FullName: input.FullName,
		Headline: input.Headline,
		Bio:      input.Bio,
	}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actor, activity.ActionUserCreated, "user", user.ID.String(), map[string]any{
		"username": user.Username,
		"role":     role.Name,
	})

	return toResponse(user), nil
}

func (s *adminService) GetAllUsers(ctx context.Context, query dto.UserListQuery) (*commonDto.Paginated[dto.AdminUserResponse], error) {
	query.Normalize()

	users, total, err := s.repo.List(ctx, repository.UserFilter{
		Role:      query.Role,
		Search:    strings.TrimSpace(query.Search),
		PageQuery: query.PageQuery,
	})
	if err != nil {
		return nil, err
	}

	data := make([]dto.AdminUserResponse, 0, len(users))
	for i := range users {
		data = append(data, *toResponse(&users[i]))
	}

	return &commonDto.Paginated[dto.AdminUserResponse]{
		Data: data,
		Meta: commonDto.NewPaginationMeta(query.PageQuery, total),
	}, nil
}

func (s *adminService) UpdateUser(ctx context.Context, actor commonDto.Actor, id uuid.UUID, input dto.UpdateAdminUserInput, avatar *commonDto.UploadFile) (*dto.AdminUserResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}

	if input.Username != "" && input.Username != user.Username {
		if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
			return nil, fmt.Errorf("username already taken: %w", apperror.ErrConflict)
		}
		user.Username = input.Username
		changes["username"] = input.Username
	}

	if input.Email != "" {
		email := strings.ToLower(strings.TrimSpace(input.Email))
		if email != user.Email {
			if _, err := s.repo.FindByEmail(ctx, email); err == nil {
				return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
			}
			user.Email = email
			changes["email"] = email
		}
	}

	if input.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
		changes["password"] = "changed"
	}

	if input.Role != "" && input.Role != user.RoleName() {
		if id == actor.ID {
			return nil, fmt.Errorf("admins cannot change their own role: %w", apperror.ErrBadRequest)
		}
		role, err := s.findRole(ctx, input.Role)
		if err != nil {
			return nil, err
		}
		user.RoleID = &role.ID
		user.Role = *role
		changes["role"] = role.Name
	}

	if input.IsActive != nil && *input.IsActive != user.IsActive {
		if id == actor.ID && !*input.IsActive {
			return nil, fmt.Errorf("admins cannot deactivate themselves: %w", apperror.ErrBadRequest)
		}
		user.IsActive = *input.IsActive
		changes["is_active"] = user.IsActive
	}

	avatarURL, err := s.upload(ctx, avatar)
	if err != nil {
		return nil, err
	}
	if avatarURL != nil {
		user.AvatarURL = avatarURL
		changes["avatar"] = "changed"
	}

	profile := user.Profile
	if profile == nil {
		profile = &entity.Profile{UserID: user.ID, FullName: user.Username}
	}
	if input.FullName != "" {
		profile.FullName = input.FullName
	}
	if input.Headline != nil {
		profile.Headline = input.Headline
	}
	if input.Bio != nil {
		profile.Bio = input.Bio
	}

	if err := s.repo.Update(ctx, user, profile); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actor, activity.ActionUserUpdated, "user", user.ID.String(), changes)

	updated, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(updated), nil
}

func (s *adminService) DeleteUser(ctx context.Context, actor commonDto.Actor, id uuid.UUID) error {
	if id == actor.ID {
		return fmt.Errorf("admins cannot delete themselves: %w", apperror.ErrBadRequest)
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if user.AvatarURL != nil && s.storage != nil {
		_ = s.storage.Delete(ctx, *user.AvatarURL)
	}

	s.activity.Record(ctx, actor, activity.ActionUserDeleted, "user", id.String(), map[string]any{"username": user.Username})
	return nil
}
