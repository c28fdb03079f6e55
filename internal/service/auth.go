package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sun1tar/taskmanager/internal/apperror"
	"github.com/sun1tar/taskmanager/internal/auth"
	"github.com/sun1tar/taskmanager/internal/models"
	"github.com/sun1tar/taskmanager/internal/repository"
)

// AuthResult - ответ на регистрацию и вход
type AuthResult struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

type AuthService struct {
	users  repository.UserRepository
	lists  repository.ListRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenService
	logger *logrus.Entry
}

func NewAuthService(store repository.Store, hasher *auth.PasswordHasher, tokens *auth.TokenService, logger *logrus.Logger) *AuthService {
	return &AuthService{
		users:  store.Users(),
		lists:  store.Lists(),
		hasher: hasher,
		tokens: tokens,
		logger: logger.WithField("component", "auth_service"),
	}
}

// Register создаёт пользователя и его список по умолчанию
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, hashError(err, "password")
	}

	user := &models.User{
		Username:     strings.TrimSpace(username),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeError("create user", err, msgUserNotFound)
	}

	if err := s.lists.Create(ctx, &models.List{Name: models.DefaultListName, UserID: user.ID}); err != nil {
		entry := s.logger.WithError(err).WithField("user_id", user.ID)
		entry.Error("failed to create default list")
		// без списка по умолчанию аккаунт не создаётся
		if derr := s.users.Delete(context.WithoutCancel(ctx), user.ID); derr != nil {
			entry.WithField("rollback_error", derr.Error()).Error("failed to remove user after default list failure")
		}
		return nil, apperror.Internal(fmt.Errorf("create default list: %w", err))
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return s.issue(user)
}

// Login не различает неизвестный email и неверный пароль
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.BadRequest(msgInvalidCredentials)
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("find user: %w", err))
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		s.logger.WithField("user_id", user.ID).Warn("login failed")
		return nil, apperror.BadRequest(msgInvalidCredentials)
	}
	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError("get user", err, msgUserNotFound)
	}
	return user, nil
}

// UpdateProfile меняет только переданные поля
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, username, email *string) (*models.User, error) {
	if username != nil {
		v := strings.TrimSpace(*username)
		username = &v
	}
	if email != nil {
		v := normalizeEmail(*email)
		email = &v
	}

	user, err := s.users.UpdateProfile(ctx, userID, username, email)
	if err != nil {
		return nil, storeError("update profile", err, msgUserNotFound)
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storeError("get user", err, msgUserNotFound)
	}
	if !s.hasher.Verify(user.PasswordHash, current) {
		return apperror.BadRequest(msgWrongPassword)
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return hashError(err, "newPassword")
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return storeError("update password", err, msgUserNotFound)
	}

	s.logger.WithField("user_id", userID).Info("password changed")
	return nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("issue token: %w", err))
	}
	return &AuthResult{Token: token, User: user.Summary()}, nil
}

// hashError: слишком длинный пароль - ошибка ввода, остальное - внутренняя
func hashError(err error, field string) error {
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return apperror.Validation(apperror.FieldError{Field: field, Message: "must be at most 72 bytes"})
	}
	return apperror.Internal(err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
