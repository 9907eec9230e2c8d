package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/meetscribe/internal/client/client"
	"github.com/dmitrijs2005/meetscribe/internal/client/models"
)

func isNotFound(err error) bool {
	return errors.Is(err, client.ErrNotFound)
}

// UserAdminService manages accounts through the admin API.
type UserAdminService interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	// Update overwrites name, email and role; empty name or email keep the
	// current value.
	Update(ctx context.Context, id, name, email string, role models.Role) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

type userAdminService struct {
	client    client.AdminClient
	tokens    TokenSource
	deadlines Deadlines
}

func NewUserAdminService(c client.AdminClient, tokens TokenSource, d Deadlines) UserAdminService {
	return &userAdminService{client: c, tokens: tokens, deadlines: d}
}

func (s *userAdminService) List(ctx context.Context) ([]models.User, error) {
	tok, err := bearer(s.tokens)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withDeadline(ctx, s.deadlines.Request)
	defer cancel()
	return s.client.ListUsers(ctx, tok)
}

func (s *userAdminService) Get(ctx context.Context, id string) (*models.User, error) {
	tok, err := bearer(s.tokens)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withDeadline(ctx, s.deadlines.Request)
	defer cancel()
	return s.client.GetUser(ctx, tok, id)
}

func (s *userAdminService) Update(ctx context.Context, id, name, email string, role models.Role) (*models.User, error) {
	tok, err := bearer(s.tokens)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withDeadline(ctx, s.deadlines.Request)
	defer cancel()
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	if name == "" || email == "" {
		current, err := s.client.GetUser(ctx, tok, id)
		if err != nil {
			return nil, err
		}
		if name == "" {
			name = current.Name
		}
		if email == "" {
			email = current.Email
		}
	}
	return s.client.UpdateUser(ctx, tok, id, name, email, role)
}

func (s *userAdminService) Delete(ctx context.Context, id string) error {
	tok, err := bearer(s.tokens)
	if err != nil {
		return err
	}
	ctx, cancel := withDeadline(ctx, s.deadlines.Request)
	defer cancel()
	return s.client.DeleteUser(ctx, tok, id)
}
