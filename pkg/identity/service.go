package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/session"
)

var (
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrUsernameRequired   = errors.New("username is required")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Service owns registration, credential checks and the session principal
// binding. Identity is always passed explicitly; nothing here reads
// ambient request state.
type Service struct {
	db     *gorm.DB
	binder session.Binder
	logger *zap.Logger
}

func NewService(db *gorm.DB, binder session.Binder, logger *zap.Logger) *Service {
	return &Service{db: db, binder: binder, logger: logger}
}

// Register creates a user once both password fields agree and the username
// is free. Validation failures create no user record.
func (s *Service) Register(ctx context.Context, username, password1, password2 string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password1 != password2 {
		return nil, ErrPasswordMismatch
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID), zap.String("username", username))
	return &user, nil
}

// Authenticate checks the credentials and returns the matching principal.
// Unknown usernames and bad passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.Principal, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &models.Principal{ID: user.ID, Username: user.Username}, nil
}

// Login authenticates and binds the principal into the session.
func (s *Service) Login(ctx context.Context, sessionID, username, password string) (*models.Principal, error) {
	principal, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.binder.BindPrincipal(ctx, sessionID, principal.ID); err != nil {
		return nil, err
	}
	return principal, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.binder.ClearPrincipal(ctx, sessionID)
}

// Current resolves the session's logged-in principal, or nil for an
// anonymous session. A binding left behind by a deleted user resolves to
// anonymous as well.
func (s *Service) Current(ctx context.Context, sessionID string) (*models.Principal, error) {
	userID, err := s.binder.ResolvePrincipal(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, nil
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &models.Principal{ID: user.ID, Username: user.Username}, nil
}
