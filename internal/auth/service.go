package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/edumatrix/edumatrix/internal/identity"
	"github.com/edumatrix/edumatrix/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	roles  identity.RoleStore
	tokens *identity.TokenIssuer
}

// NewService constructs a new Service.
func NewService(repo Repository, roles identity.RoleStore, tokens *identity.TokenIssuer) *Service {
	return &Service{repo: repo, roles: roles, tokens: tokens}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a signed access token carrying the user's
// current roles and center.
func (s *Service) Login(ctx context.Context, email, password string) (*User, LoginResult, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, LoginResult{}, err
	}
	userID := strconv.FormatInt(user.ID, 10)
	assigned, err := s.roles.UserRoles(ctx, userID)
	if err != nil {
		return nil, LoginResult{}, fmt.Errorf("load roles: %w", err)
	}
	if len(assigned) == 0 {
		// A user without roles could not pass any guard.
		return nil, LoginResult{}, shared.ErrInvalidCredentials
	}
	token, expiresAt, err := s.tokens.Issue(identity.Principal{UserID: userID, CenterID: user.CenterID, Roles: assigned})
	if err != nil {
		return nil, LoginResult{}, err
	}
	return user, LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		UserID:      user.ID,
		CenterID:    user.CenterID,
		Roles:       assigned,
	}, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// CurrentRoles returns the live roles of a user.
func (s *Service) CurrentRoles(ctx context.Context, userID string) ([]string, error) {
	return s.roles.UserRoles(ctx, userID)
}
