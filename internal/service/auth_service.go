package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/watersafe-backend/internal/logger"
	"github.com/ignatzorin/watersafe-backend/internal/models"
	"github.com/ignatzorin/watersafe-backend/internal/pkg/apperror"
	"github.com/ignatzorin/watersafe-backend/internal/repository"
	"github.com/ignatzorin/watersafe-backend/internal/validation"
)

// UserRepository описывает зависимости сервисов пользователей от слоя хранилища.
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	SaveOperator(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

// AuthService выдаёт токены сотрудникам.
type AuthService struct {
	repo         UserRepository
	tokenManager *TokenManager
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo UserRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		repo:         repo,
		tokenManager: tokenManager,
	}
}

// Login проверяет учётные данные сотрудника и возвращает access токен.
// Неизвестный email, неверный пароль и отсутствие роли неразличимы снаружи.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AccessToken, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apperror.ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "Failed to load user")
	}

	if !user.IsOperator() || user.PasswordHash == nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.tokenManager.Generate(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to issue token")
	}

	logger.Log.WithField("user_id", user.ID).Info("auth service: сотрудник вошёл")
	return token, nil
}

// CreateOperator создаёт сотрудника или назначает роль существующему пользователю.
func (s *AuthService) CreateOperator(ctx context.Context, email string, name *string, password string) (*models.User, error) {
	normalized, name, err := validation.ValidateUpsertUser(validation.UpsertUserRequest{Email: email, Name: name})
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateOperatorPassword(password); err != nil {
		return nil, apperror.NewValidation([]apperror.FieldError{{Field: "password", Message: err.Error()}})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось захешировать пароль: %w", err)
	}
	hashed := string(hash)

	user := &models.User{
		ID:           uuid.New(),
		Email:        normalized,
		Name:         name,
		Role:         models.UserRoleOperator,
		PasswordHash: &hashed,
	}
	if err := s.repo.SaveOperator(ctx, user); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "Failed to save operator")
	}
	return user, nil
}

// UserService ведёт справочник граждан.
type UserService struct {
	repo UserRepository
}

// NewUserService создаёт сервис пользователей.
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Upsert создаёт или обновляет пользователя по email.
func (s *UserService) Upsert(ctx context.Context, req validation.UpsertUserRequest) (*models.User, error) {
	email, name, err := validation.ValidateUpsertUser(req)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:    uuid.New(),
		Email: email,
		Name:  name,
		Role:  models.UserRoleCitizen,
	}
	if err := s.repo.Upsert(ctx, user); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "Failed to save user")
	}
	return user, nil
}

// List возвращает пользователей, новые первыми.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "Failed to list users")
	}
	return users, nil
}

// GetByID возвращает пользователя по идентификатору.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "Failed to load user")
	}
	return user, nil
}
