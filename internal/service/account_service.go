package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountService handles signup and login
type AccountService struct {
	users  UserRepository
	tokens TokenIssuer
	logger *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(users UserRepository, tokens TokenIssuer) *AccountService {
	return &AccountService{
		users:  users,
		tokens: tokens,
		logger: util.GetLogger(),
	}
}

// Signup registers a user with an empty cart and returns a token for them.
// Passwords are stored as given.
func (s *AccountService) Signup(ctx context.Context, username, email, password string) (string, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.Signup")
	defer span.End()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Name:     username,
		Email:    email,
		Password: password,
		Cart:     models.NewCart(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			s.logger.Info("Signup rejected, email taken", zap.String("email", email))
		}
		return "", storeErr("failed to create user", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	util.UsersRegisteredTotal.Inc()
	s.logger.Info("User registered", zap.String("user_id", user.ID))

	return token, nil
}

// Login checks the password for email and returns a fresh token
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.Login")
	defer span.End()

	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrUserNotFound) {
		util.AuthFailuresTotal.WithLabelValues("unknown_email").Inc()
		return "", ErrUnknownEmail
	}
	if err != nil {
		return "", storeErr("failed to load user", err)
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		util.AuthFailuresTotal.WithLabelValues("wrong_password").Inc()
		return "", ErrWrongPassword
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Debug("User logged in", zap.String("user_id", user.ID))
	return token, nil
}
