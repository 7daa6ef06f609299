package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mroshb/kudos/internal/models"
	"github.com/mroshb/kudos/internal/repositories"
	"github.com/mroshb/kudos/internal/security"
	"github.com/mroshb/kudos/pkg/errors"
	"github.com/mroshb/kudos/pkg/logger"
	"github.com/mroshb/kudos/pkg/utils"
)

const authCodeLength = 32

type AuthService struct {
	users  *repositories.UserRepository
	codes  *repositories.AuthCodeRepository
	tokens *security.TokenManager
}

func NewAuthService(users *repositories.UserRepository, codes *repositories.AuthCodeRepository, tokens *security.TokenManager) *AuthService {
	return &AuthService{users: users, codes: codes, tokens: tokens}
}

// Login checks a user name (or email) and password and issues a token pair.
func (s *AuthService) Login(ctx context.Context, login, password string) (*security.TokenPair, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, errors.New(errors.ErrCodeValidation, "user_name and password are required")
	}

	user, err := s.users.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return nil, errors.New(errors.ErrCodeUnauthorized, "Invalid credentials")
		}
		return nil, err
	}
	if !security.CheckPassword(user.Password, password) {
		logger.Debug("Login rejected", "user_id", user.ID)
		return nil, errors.New(errors.ErrCodeUnauthorized, "Invalid credentials")
	}

	return s.issue(user.ID)
}

func (s *AuthService) issue(userID uuid.UUID) (*security.TokenPair, error) {
	pair, err := s.tokens.GeneratePair(userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to sign tokens")
	}
	return pair, nil
}

// Authenticate resolves a bearer token to its stored user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized, "Authentication required")
	}

	userID, err := s.tokens.VerifyAccess(token)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnauthorized, "Invalid or expired token")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return nil, errors.New(errors.ErrCodeUnauthorized, "User no longer exists")
		}
		return nil, err
	}
	return user, nil
}

// VerifyAccess lets the feed gate check tokens without a store lookup.
func (s *AuthService) VerifyAccess(token string) (uuid.UUID, error) {
	return s.tokens.VerifyAccess(token)
}

// IssueCode stores a fresh token pair for userID under a one-time code.
func (s *AuthService) IssueCode(ctx context.Context, userID uuid.UUID) (string, error) {
	if !s.codes.Enabled() {
		return "", errors.New(errors.ErrCodeServiceUnavailable, "Token exchange is unavailable")
	}

	pair, err := s.issue(userID)
	if err != nil {
		return "", err
	}

	code := utils.GenerateCode(authCodeLength)
	if code == "" {
		return "", errors.New(errors.ErrCodeInternalError, "failed to generate code")
	}
	if err := s.codes.Store(ctx, code, pair); err != nil {
		return "", err
	}
	return code, nil
}

// ExchangeCode consumes a one-time code and returns its token pair.
func (s *AuthService) ExchangeCode(ctx context.Context, code string) (*security.TokenPair, error) {
	if !s.codes.Enabled() {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "Token exchange is unavailable")
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New(errors.ErrCodeValidation, "code is required")
	}
	return s.codes.Consume(ctx, code)
}
