package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"anoa.com/learnhub/internal/config"
	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/user/dto"
	"anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/pkg/apperror"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	GoogleLogin(state string) string
	GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error)
}

// GoogleUserFetcher exchanges an OAuth code for the Google profile.
type GoogleUserFetcher func(ctx context.Context, code string) (*dto.GoogleUser, error)

type authService struct {
	repo         repository.UserRepository
	tokens       *TokenIssuer
	googleConfig *oauth2.Config
	fetchGoogle  GoogleUserFetcher
}

func NewAuthService(repo repository.UserRepository, tokens *TokenIssuer, cfg *config.Config) AuthService {
	googleConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	s := &authService{
		repo:         repo,
		tokens:       tokens,
		googleConfig: googleConfig,
	}
	s.fetchGoogle = s.exchangeGoogleCode
	return s
}

// NewAuthServiceWithFetcher swaps the Google exchange, used by tests.
func NewAuthServiceWithFetcher(repo repository.UserRepository, tokens *TokenIssuer, fetch GoogleUserFetcher) AuthService {
	return &authService{
		repo:         repo,
		tokens:       tokens,
		googleConfig: &oauth2.Config{Endpoint: google.Endpoint},
		fetchGoogle:  fetch,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
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

	role, err := s.repo.FindRoleByName(ctx, entity.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("student role not found: %w", apperror.ErrInternal)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:     input.Username,
		Email:        email,
		PasswordHash: string(hashed),
		RoleID:       &role.ID,
		Role:         *role,
		IsActive:     true,
	}
	profile := &entity.Profile{FullName: strings.TrimSpace(input.FullName)}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated: %w", apperror.ErrForbidden)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) GoogleLogin(state string) string {
	return s.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (s *authService) exchangeGoogleCode(ctx context.Context, code string) (*dto.GoogleUser, error) {
	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", apperror.ErrUnauthorized)
	}

	client := s.googleConfig.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	var googleUser dto.GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &googleUser, nil
}

func (s *authService) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	googleUser, err := s.fetchGoogle(ctx, code)
	if err != nil {
		return nil, err
	}
	if googleUser.Email == "" || !googleUser.VerifiedEmail {
		return nil, fmt.Errorf("google account email is not verified: %w", apperror.ErrUnauthorized)
	}

	user, err := s.repo.FindByEmail(ctx, googleUser.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user, err = s.createGoogleUser(ctx, googleUser)
		if err != nil {
			return nil, err
		}
	} else {
		if !user.IsActive {
			return nil, fmt.Errorf("account is deactivated: %w", apperror.ErrForbidden)
		}
		if user.GoogleID == nil || *user.GoogleID != googleUser.ID {
			user.GoogleID = &googleUser.ID
			if err := s.repo.Update(ctx, user, nil); err != nil {
				log.Printf("Failed to update GoogleID for user %s: %v", user.Email, err)
			}
		}
	}

	return s.buildAuthResponse(user)
}

func (s *authService) createGoogleUser(ctx context.Context, googleUser *dto.GoogleUser) (*entity.User, error) {
	role, err := s.repo.FindRoleByName(ctx, entity.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("student role not found: %w", apperror.ErrInternal)
	}

	randomPassword := uuid.New().String()
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(randomPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	username := strings.ReplaceAll(strings.Split(googleUser.Email, "@")[0], " ", "_")
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		username = username + "_" + uuid.New().String()[:4]
	}

	fullName := googleUser.Name
	if fullName == "" {
		fullName = username
	}

	user := &entity.User{
		Username:     username,
		Email:        strings.ToLower(googleUser.Email),
		PasswordHash: string(hashedPassword),
		RoleID:       &role.ID,
		Role:         *role,
		GoogleID:     &googleUser.ID,
		IsActive:     true,
	}
	if googleUser.Picture != "" {
		user.AvatarURL = &googleUser.Picture
	}

	if err := s.repo.Create(ctx, user, &entity.Profile{FullName: fullName}); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        user,
		Role:        &user.Role,
		Profile:     user.Profile,
	}, nil
}
