package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-service/internal/broker"
	"storefront-service/internal/errs"
	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/store"
	"storefront-service/internal/util"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthService owns the session state machine: an anonymous session token
// becomes an authenticated one on login or registration, and logout mints a
// fresh anonymous token. Both transitions into the authenticated state
// trigger guest-cart migration.
//
// Passwords are stored and compared verbatim, mirroring the system this
// replaces; hardening credentials is an explicit non-goal here.
type AuthService struct {
	store          *store.Store
	redis          *redisclient.Client
	cart           *CartService
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(store *store.Store, redis *redisclient.Client, cart *CartService, eventPublisher *broker.EventPublisher) *AuthService {
	return &AuthService{
		store:          store,
		redis:          redis,
		cart:           cart,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// StartSession mints a fresh anonymous session token.
func (as *AuthService) StartSession(ctx context.Context) (string, error) {
	token := "session_" + uuid.New().String()
	if err := as.redis.BindSession(ctx, token, 0); err != nil {
		return "", fmt.Errorf("failed to start session: %w", err)
	}
	return token, nil
}

// Identify resolves a session token to a cart owner and, when authenticated,
// the current user. An unknown token is treated as anonymous.
func (as *AuthService) Identify(ctx context.Context, token string) (models.CartOwner, *models.User, error) {
	userID, err := as.redis.SessionUserID(ctx, token)
	if err != nil {
		return models.CartOwner{}, nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	if userID == 0 {
		return models.CartOwner{SessionID: token}, nil, nil
	}

	user, err := as.store.GetUserByID(ctx, userID)
	if err != nil {
		// A stale binding for a deleted user degrades to anonymous.
		as.logger.Warn("Session bound to missing user",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return models.CartOwner{SessionID: token}, nil, nil
	}

	return models.CartOwner{UserID: user.ID}, user, nil
}

// Login authenticates by email and verbatim password comparison, binds the
// session token to the user, stamps lastLogin, and migrates the token's
// guest cart into the user's cart.
func (as *AuthService) Login(ctx context.Context, token, email, password string) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	user, err := as.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || user.Password != password {
		util.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, errs.ErrInvalidCredentials
	}

	now := time.Now()
	if err := as.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		as.logger.Error("Failed to stamp last login", zap.Error(err))
	}
	user.LastLogin = &now

	if err := as.redis.BindSession(ctx, token, user.ID); err != nil {
		return nil, fmt.Errorf("failed to bind session: %w", err)
	}

	if err := as.cart.MergeGuestCart(ctx, token, user.ID); err != nil {
		as.logger.Error("Guest cart migration failed on login",
			zap.Int64("user_id", user.ID),
			zap.Error(err))
	}

	util.LoginsTotal.WithLabelValues("success").Inc()
	as.logger.Info("User logged in", zap.Int64("user_id", user.ID))
	return user, nil
}

// RegisterRequest carries the fields for a new account.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account, binds the session to it, and migrates the
// guest cart. A duplicate email fails with ErrEmailAlreadyUsed and creates
// nothing.
func (as *AuthService) Register(ctx context.Context, token string, req RegisterRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Register")
	defer span.End()

	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.RoleUser,
	}
	if err := as.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := as.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		as.logger.Error("Failed to stamp last login", zap.Error(err))
	}
	user.LastLogin = &now

	if err := as.redis.BindSession(ctx, token, user.ID); err != nil {
		return nil, fmt.Errorf("failed to bind session: %w", err)
	}

	if err := as.cart.MergeGuestCart(ctx, token, user.ID); err != nil {
		as.logger.Error("Guest cart migration failed on registration",
			zap.Int64("user_id", user.ID),
			zap.Error(err))
	}

	event := &models.UserRegisteredEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeUserRegistered,
			Timestamp: time.Now(),
		},
		UserID: user.ID,
		Email:  user.Email,
	}
	if err := as.eventPublisher.PublishUserRegistered(ctx, event); err != nil {
		as.logger.Error("Failed to publish UserRegistered event", zap.Error(err))
	}

	as.logger.Info("User registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Logout drops the token's identity binding and mints a fresh anonymous
// session token for the caller.
func (as *AuthService) Logout(ctx context.Context, token string) (string, error) {
	if err := as.redis.DeleteSession(ctx, token); err != nil {
		return "", fmt.Errorf("failed to delete session: %w", err)
	}
	return as.StartSession(ctx)
}

// UpdateProfile changes the authenticated user's name, email or password.
func (as *AuthService) UpdateProfile(ctx context.Context, userID int64, name, email, password string) (*models.User, error) {
	user, err := as.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		user.Name = name
	}
	if email != "" {
		if !emailPattern.MatchString(email) {
			return nil, fmt.Errorf("invalid email format: %w", errs.ErrValidation)
		}
		user.Email = email
	}
	if password != "" {
		if len(password) < 6 {
			return nil, fmt.Errorf("password must be at least 6 characters: %w", errs.ErrValidation)
		}
		user.Password = password
	}

	if err := as.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func validateRegistration(req RegisterRequest) error {
	if len(req.Name) < 2 {
		return fmt.Errorf("name must be at least 2 characters: %w", errs.ErrValidation)
	}
	if !emailPattern.MatchString(req.Email) {
		return fmt.Errorf("invalid email format: %w", errs.ErrValidation)
	}
	if len(req.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters: %w", errs.ErrValidation)
	}
	return nil
}
