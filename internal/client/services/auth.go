// Package services contains application services for the meetscribe client.
// This file defines the authentication service: login, registration, email
// verification, federated login completion, profile refresh and logout. It
// talks to the API and reads the credential store; writes go through Save
// and Logout only.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/meetscribe/internal/client/client"
	"github.com/dmitrijs2005/meetscribe/internal/client/credentials"
	"github.com/dmitrijs2005/meetscribe/internal/client/models"
)

// ErrMissingToken is returned when an operation needs a stored bearer token
// and there is none.
var ErrMissingToken = errors.New("no stored token")

// AuthService defines authentication operations for the session container.
//
// Contract:
//   - every method that returns a user returns it with its token attached;
//   - only Save and Logout write the credential store (Restore also wipes
//     partial data it finds); the container applies results through them so
//     that store and memory change together;
//   - network methods never touch the store.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	// Restore reads the persisted session. Partial or malformed data is
	// wiped and reported as (nil, nil).
	Restore(ctx context.Context) (*models.User, error)
	// Login authenticates. A success response without a user id or token
	// yields client.ErrMalformedResponse.
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	// Register creates an account. It does not log in.
	Register(ctx context.Context, name, email string, password []byte) error
	// VerifyEmail confirms the email token.
	VerifyEmail(ctx context.Context, token string) error
	// CompleteFederatedLogin resolves the profile of a token delivered by
	// the federated login callback.
	CompleteFederatedLogin(ctx context.Context, token string) (*models.User, error)
	// RefreshProfile fetches the profile using the stored token (not the
	// in-memory one).
	RefreshProfile(ctx context.Context) (*models.User, error)
	// Save persists user together with its token.
	Save(ctx context.Context, user *models.User) error
	// Logout clears the store.
	Logout(ctx context.Context) error
	// GoogleLoginURL is where the federated login starts.
	GoogleLoginURL() string
}

// authService is the concrete AuthService backed by the API client and
// the credential store.
type authService struct {
	client client.AuthClient
	store  credentials.Store
}

// NewAuthService constructs an AuthService bound to the given API client
// and credential store.
func NewAuthService(c client.AuthClient, store credentials.Store) AuthService {
	return &authService{client: c, store: store}
}

func (a *authService) Restore(ctx context.Context) (*models.User, error) {
	user, token, err := a.store.Load(ctx)
	if err != nil {
		_ = a.store.Clear(ctx)
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if !user.HasIdentity() || token == "" {
		if err := a.store.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear credentials: %w", err)
		}
		return nil, nil
	}
	return user.WithToken(token), nil
}

func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	res, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	if res == nil || !res.User.HasIdentity() || res.Token == "" {
		return nil, fmt.Errorf("login error: %w", client.ErrMalformedResponse)
	}
	return res.User.WithToken(res.Token), nil
}

func (a *authService) Register(ctx context.Context, name, email string, password []byte) error {
	if err := a.client.Register(ctx, name, email, password); err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return nil
}

func (a *authService) VerifyEmail(ctx context.Context, token string) error {
	if err := a.client.VerifyEmail(ctx, token); err != nil {
		return fmt.Errorf("verify error: %w", err)
	}
	return nil
}

func (a *authService) CompleteFederatedLogin(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	return a.profile(ctx, token)
}

func (a *authService) RefreshProfile(ctx context.Context) (*models.User, error) {
	token, err := a.store.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		return nil, ErrMissingToken
	}
	return a.profile(ctx, token)
}

func (a *authService) profile(ctx context.Context, token string) (*models.User, error) {
	profile, err := a.client.GetProfile(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("profile error: %w", err)
	}
	return profile.WithToken(token), nil
}

func (a *authService) Save(ctx context.Context, user *models.User) error {
	if user == nil || user.Token == "" {
		return fmt.Errorf("credentials saving error: %w", ErrMissingToken)
	}
	if err := a.store.Save(ctx, user, user.Token); err != nil {
		return fmt.Errorf("credentials saving error: %w", err)
	}
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.store.Clear(ctx)
}

func (a *authService) GoogleLoginURL() string {
	return a.client.GoogleLoginURL()
}
