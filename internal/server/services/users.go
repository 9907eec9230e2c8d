// Package services contains server-side business logic. UserService covers
// registration, email verification, login, bearer-token authentication and
// the admin user management operations.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/meetscribe/internal/common"
	"github.com/dmitrijs2005/meetscribe/internal/cryptox"
	"github.com/dmitrijs2005/meetscribe/internal/logging"
	"github.com/dmitrijs2005/meetscribe/internal/server/auth"
	"github.com/dmitrijs2005/meetscribe/internal/server/config"
	"github.com/dmitrijs2005/meetscribe/internal/server/models"
	"github.com/dmitrijs2005/meetscribe/internal/server/repositories/users"
)

const (
	minPasswordLen   = 6
	verifyTokenBytes = 32

	DemoEmail = "demo@meetscribe.local"
	demoName  = "Demo User"
)

type UserService struct {
	repo      users.Repository
	log       logging.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
	publicURL string

	// mu serializes registrations so the admin check and the insert are atomic.
	mu sync.Mutex
}

func NewUserService(repo users.Repository, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		repo:      repo,
		log:       log,
		jwtSecret: []byte(cfg.SecretKey),
		tokenTTL:  cfg.TokenTTL,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}
}

func validationErr(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", validationErr("invalid email address")
	}
	return strings.ToLower(email), nil
}

// Register creates an unverified account and logs its verification link.
// The first account registered while no admin exists becomes admin.
func (s *UserService) Register(ctx context.Context, name, email string, password []byte) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErr("name is required")
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, validationErr(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	verifyToken, err := common.MakeRandHexString(verifyTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("error generating verification token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	role, err := s.roleForNewUser(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		VerifyToken:  verifyToken,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("%w: email already registered", common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID, "role", u.Role)
	s.log.Info(ctx, "verification link", "email", u.Email, "url", s.publicURL+"/auth/verify/"+u.VerifyToken)
	return u, nil
}

func (s *UserService) roleForNewUser(ctx context.Context) (models.Role, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return "", fmt.Errorf("error listing users: %w", err)
	}
	for _, u := range all {
		if u.Role == models.RoleAdmin {
			return models.RoleUser, nil
		}
	}
	return models.RoleAdmin, nil
}

// Login checks credentials and returns the user with a fresh bearer token.
// Unknown emails and wrong passwords both yield ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email string, password []byte) (*models.User, string, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", common.ErrorInternal
	}

	ok, err := cryptox.CheckPassword(u.PasswordHash, password)
	if err != nil || !ok {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := s.generateToken(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// VerifyEmail marks the owner of token as verified. Tokens are single use.
func (s *UserService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	u, err := s.repo.GetByVerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: invalid or expired verification link", common.ErrorNotFound)
		}
		return nil, common.ErrorInternal
	}

	u.IsVerified = true
	u.VerifyToken = ""
	u, err = s.repo.Update(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	s.log.Info(ctx, "email verified", "user_id", u.ID)
	return u, nil
}

// Authenticate resolves a bearer token to its user. Tokens of deleted users
// are rejected.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	id, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	return u, nil
}

// DemoLogin stands in for the federated provider: it issues a token for a
// verified demo account, creating the account on first use.
func (s *UserService) DemoLogin(ctx context.Context) (*models.User, string, error) {
	u, err := s.repo.GetByEmail(ctx, DemoEmail)
	if errors.Is(err, common.ErrorNotFound) {
		u, err = s.repo.Create(ctx, &models.User{
			Name:       demoName,
			Email:      DemoEmail,
			Role:       models.RoleUser,
			IsVerified: true,
		})
		if errors.Is(err, common.ErrorAlreadyExists) {
			u, err = s.repo.GetByEmail(ctx, DemoEmail)
		}
	}
	if err != nil {
		return nil, "", fmt.Errorf("error loading demo user: %w", err)
	}

	token, err := s.generateToken(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Update changes name, email and role of user id. Empty arguments keep the
// current value.
func (s *UserService) Update(ctx context.Context, id, name, email string, role models.Role) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		u.Name = name
	}
	if strings.TrimSpace(email) != "" {
		if u.Email, err = normalizeEmail(email); err != nil {
			return nil, err
		}
	}
	if role != "" {
		if !role.Valid() {
			return nil, validationErr(fmt.Sprintf("unknown role %q", role))
		}
		u.Role = role
	}

	u, err = s.repo.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user updated", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "user deleted", "user_id", id)
	return nil
}

func (s *UserService) generateToken(userID string) (string, error) {
	token, err := auth.GenerateToken(userID, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}
	return token, nil
}
