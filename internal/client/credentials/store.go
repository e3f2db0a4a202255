// Package credentials persists the identity-provider user identifier and the
// backend session cookie across launches.
package credentials

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/aln/internal/client/models"
	"github.com/dmitrijs2005/aln/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/aln/internal/common"
	"github.com/dmitrijs2005/aln/internal/cryptox"
	"github.com/dmitrijs2005/aln/internal/dbx"
)

// Store is the secure credential store. A Load on an empty slot reports
// ok=false without error.
type Store interface {
	LoadUserIdentifier(ctx context.Context) (string, bool, error)
	SaveUserIdentifier(ctx context.Context, id string) error
	ClearUserIdentifier(ctx context.Context) error

	LoadSession(ctx context.Context) (models.Session, bool, error)
	SaveSession(ctx context.Context, s models.Session) error
	ClearSession(ctx context.Context) error
}

const (
	keySalt           = "salt"
	keyVerifier       = "verifier"
	keyUserIdentifier = "user_identifier"
	keySession        = "session"
)

var ErrLocked = errors.New("credential store is locked")

// SQLiteStore keeps sealed credentials in the metadata table. It must be
// unlocked with the local passphrase before use.
type SQLiteStore struct {
	db   *sql.DB
	repo metadata.Repository

	mu  sync.RWMutex
	key []byte
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, repo: metadata.NewSQLiteRepository(db)}
}

// Initialized reports whether a passphrase was ever set.
func (s *SQLiteStore) Initialized(ctx context.Context) (bool, error) {
	_, ok, err := s.repo.Get(ctx, keySalt)
	return ok, err
}

// Unlock derives the store key from passphrase. The first call on an empty
// database fixes the passphrase; later calls must match it or get
// common.ErrorUnauthorized.
func (s *SQLiteStore) Unlock(ctx context.Context, passphrase []byte) error {
	key, err := dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) ([]byte, error) {
		repo := metadata.NewSQLiteRepository(tx)

		salt, ok, err := repo.Get(ctx, keySalt)
		if err != nil {
			return nil, err
		}

		if !ok {
			salt = cryptox.NewSalt()
			key := cryptox.DeriveMasterKey(passphrase, salt)
			if err := repo.Put(ctx, keySalt, salt); err != nil {
				return nil, err
			}
			return key, repo.Put(ctx, keyVerifier, cryptox.MakeVerifier(key))
		}

		verifier, _, err := repo.Get(ctx, keyVerifier)
		if err != nil {
			return nil, err
		}
		key := cryptox.DeriveMasterKey(passphrase, salt)
		if subtle.ConstantTimeCompare(verifier, cryptox.MakeVerifier(key)) != 1 {
			common.WipeByteArray(key)
			return nil, common.ErrorUnauthorized
		}
		return key, nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	common.WipeByteArray(s.key)
	s.key = key
	return nil
}

// Lock forgets the derived key.
func (s *SQLiteStore) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	common.WipeByteArray(s.key)
	s.key = nil
}

// Reset wipes everything, passphrase included.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	s.Lock()
	return s.repo.Clear(ctx)
}

func (s *SQLiteStore) currentKey() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == nil {
		return nil, ErrLocked
	}
	return s.key, nil
}

func (s *SQLiteStore) load(ctx context.Context, name string, v any) (bool, error) {
	key, err := s.currentKey()
	if err != nil {
		return false, err
	}
	sealed, ok, err := s.repo.Get(ctx, name)
	if err != nil || !ok {
		return false, err
	}
	if err := cryptox.Open(sealed, key, v); err != nil {
		return false, fmt.Errorf("open %s: %w", name, err)
	}
	return true, nil
}

func (s *SQLiteStore) save(ctx context.Context, name string, v any) error {
	key, err := s.currentKey()
	if err != nil {
		return err
	}
	sealed, err := cryptox.Seal(v, key)
	if err != nil {
		return fmt.Errorf("seal %s: %w", name, err)
	}
	return s.repo.Put(ctx, name, sealed)
}

func (s *SQLiteStore) LoadUserIdentifier(ctx context.Context) (string, bool, error) {
	var id string
	ok, err := s.load(ctx, keyUserIdentifier, &id)
	if err != nil || !ok || id == "" {
		return "", false, err
	}
	return id, true, nil
}

func (s *SQLiteStore) SaveUserIdentifier(ctx context.Context, id string) error {
	return s.save(ctx, keyUserIdentifier, id)
}

func (s *SQLiteStore) ClearUserIdentifier(ctx context.Context) error {
	return s.repo.Delete(ctx, keyUserIdentifier)
}

func (s *SQLiteStore) LoadSession(ctx context.Context) (models.Session, bool, error) {
	var sess models.Session
	ok, err := s.load(ctx, keySession, &sess)
	if err != nil || !ok {
		return models.Session{}, false, err
	}
	return sess, true, nil
}

func (s *SQLiteStore) SaveSession(ctx context.Context, sess models.Session) error {
	return s.save(ctx, keySession, sess)
}

func (s *SQLiteStore) ClearSession(ctx context.Context) error {
	return s.repo.Delete(ctx, keySession)
}
