// Package credentials persists the session identity: the serialized user
// record and its bearer token, kept under two keys of the local metadata
// table.
package credentials

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/meetscribe/internal/client/models"
	"github.com/dmitrijs2005/meetscribe/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/meetscribe/internal/dbx"
)

const (
	KeyUser  = "user"
	KeyToken = "token"
)

// Store is the durable mirror of the session. It is not a source of truth:
// only the session container (through the auth service) writes to it.
type Store interface {
	// Save writes user and token together. The token is stripped from the
	// serialized user record and stored under its own key.
	Save(ctx context.Context, user *models.User, token string) error
	// Load returns (nil, "", nil) when either entry is missing, the user
	// record cannot be parsed, or it has no id. An error means storage I/O
	// failed.
	Load(ctx context.Context) (*models.User, string, error)
	// Token returns the stored token, "" when absent.
	Token(ctx context.Context) (string, error)
	// Clear removes both entries. Idempotent.
	Clear(ctx context.Context) error
}

type sqliteStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (s *sqliteStore) Save(ctx context.Context, user *models.User, token string) error {
	if !user.HasIdentity() {
		return fmt.Errorf("save credentials: user without id")
	}

	raw, err := json.Marshal(user.WithToken(""))
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, KeyUser, raw); err != nil {
			return err
		}
		return repo.Set(ctx, KeyToken, []byte(token))
	})
}

func (s *sqliteStore) Load(ctx context.Context) (*models.User, string, error) {
	repo := s.repo(s.db)

	rawUser, err := repo.Get(ctx, KeyUser)
	if err != nil {
		return nil, "", err
	}
	token, err := repo.Get(ctx, KeyToken)
	if err != nil {
		return nil, "", err
	}
	if len(rawUser) == 0 || len(token) == 0 {
		return nil, "", nil
	}

	user := decodeUser(rawUser)
	if !user.HasIdentity() {
		return nil, "", nil
	}
	user.Token = ""
	return user, string(token), nil
}

// decodeUser accepts a plain user record or the wrapped {"user": {...}}
// layout. It returns nil for anything else.
func decodeUser(raw []byte) *models.User {
	var wrapped struct {
		User *models.User `json:"user"`
	}
	if json.Unmarshal(raw, &wrapped) == nil && wrapped.User.HasIdentity() {
		return wrapped.User
	}

	var u models.User
	if json.Unmarshal(raw, &u) != nil {
		return nil
	}
	return &u
}

func (s *sqliteStore) Token(ctx context.Context) (string, error) {
	v, err := s.repo(s.db).Get(ctx, KeyToken)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *sqliteStore) Clear(ctx context.Context) error {
	return s.repo(s.db).Delete(ctx, KeyUser, KeyToken)
}
