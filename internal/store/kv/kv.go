// Package kv keeps short-lived auth state in badger: refresh sessions and
// password reset tokens. Every entry carries a TTL so expired state drops
// out on its own.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/habitoapp/habito-server/internal/domain"
	"github.com/habitoapp/habito-server/internal/store"
)

const (
	sessionPrefix        = "session:"
	sessionByTokenPrefix = "idx:session:token:"
	sessionByUserPrefix  = "idx:session:user:"
	resetPrefix          = "reset:"
)

// Store is a badger-backed store.SessionStore.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ store.SessionStore = (*Store)(nil)

// Open opens (or creates) the badger directory at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.SyncWrites = true
	return open(opts, logger)
}

// OpenInMemory opens a store that lives only in memory.
func OpenInMemory(logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping runs an empty read transaction.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("kv store is closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// CollectGarbage reclaims value log space left behind by expired sessions
// and consumed resets. It returns the number of files rewritten.
func (s *Store) CollectGarbage(discardRatio float64) (int, error) {
	rewritten := 0
	for {
		err := s.db.RunValueLogGC(discardRatio)
		switch {
		case err == nil:
			rewritten++
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			return rewritten, nil
		default:
			return rewritten, fmt.Errorf("value log gc: %w", err)
		}
	}
}

// SaveSession writes a session and its lookup indexes. Saving an existing
// session with a new token hash rotates the token index.
func (s *Store) SaveSession(_ context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return store.ErrInvalidInput.WithMessage("session already expired")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	key := []byte(sessionPrefix + session.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		var old domain.Session
		switch err := getJSON(txn, key, &old); {
		case err == nil:
			if old.RefreshTokenHash != session.RefreshTokenHash {
				if err := deleteIgnoreMissing(txn, []byte(sessionByTokenPrefix+old.RefreshTokenHash)); err != nil {
					return err
				}
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		entries := []*badger.Entry{
			badger.NewEntry(key, data).WithTTL(ttl),
			badger.NewEntry([]byte(sessionByTokenPrefix+session.RefreshTokenHash), []byte(session.ID)).WithTTL(ttl),
			badger.NewEntry(userIndexKey(session.UserID, session.ID), nil).WithTTL(ttl),
		}
		for _, e := range entries {
			if err := txn.SetEntry(e); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetSession returns a live session by ID.
func (s *Store) GetSession(_ context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, []byte(sessionPrefix+id), &session)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrNotFound.WithMessage("session not found")
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.IsExpired() {
		return nil, store.ErrNotFound.WithMessage("session expired")
	}
	return &session, nil
}

// GetSessionByTokenHash resolves a refresh token hash to its session.
func (s *Store) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var sessionID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionByTokenPrefix + tokenHash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			sessionID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrNotFound.WithMessage("session not found")
		}
		return nil, fmt.Errorf("lookup session by token: %w", err)
	}
	return s.GetSession(ctx, sessionID)
}

// DeleteSession removes a session and its indexes. Missing sessions are not
// an error.
func (s *Store) DeleteSession(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return deleteSession(txn, id)
	})
}

// DeleteUserSessions signs a user out everywhere.
func (s *Store) DeleteUserSessions(_ context.Context, userID string) error {
	prefix := []byte(sessionByUserPrefix + userID + ":")

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, strings.TrimPrefix(string(it.Item().Key()), string(prefix)))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := deleteSession(txn, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("revoked user sessions", "user_id", userID, "count", len(ids))
	return nil
}

// SaveReset stores a password reset until it expires.
func (s *Store) SaveReset(_ context.Context, reset *domain.PasswordReset) error {
	ttl := time.Until(reset.ExpiresAt)
	if ttl <= 0 {
		return store.ErrInvalidInput.WithMessage("reset already expired")
	}
	data, err := json.Marshal(reset)
	if err != nil {
		return fmt.Errorf("marshal reset: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(resetPrefix+reset.TokenHash), data).WithTTL(ttl))
	})
}

// TakeReset returns and deletes the reset for tokenHash in one transaction.
func (s *Store) TakeReset(_ context.Context, tokenHash string) (*domain.PasswordReset, error) {
	key := []byte(resetPrefix + tokenHash)
	var reset domain.PasswordReset
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, key, &reset); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrNotFound.WithMessage("reset token not found")
		}
		return nil, fmt.Errorf("take reset: %w", err)
	}
	if time.Now().After(reset.ExpiresAt) {
		return nil, store.ErrNotFound.WithMessage("reset token expired")
	}
	return &reset, nil
}

func userIndexKey(userID, sessionID string) []byte {
	return []byte(sessionByUserPrefix + userID + ":" + sessionID)
}

func deleteSession(txn *badger.Txn, id string) error {
	key := []byte(sessionPrefix + id)
	var session domain.Session
	if err := getJSON(txn, key, &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	}
	for _, k := range [][]byte{
		key,
		[]byte(sessionByTokenPrefix + session.RefreshTokenHash),
		userIndexKey(session.UserID, id),
	} {
		if err := deleteIgnoreMissing(txn, k); err != nil {
			return err
		}
	}
	return nil
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func deleteIgnoreMissing(txn *badger.Txn, key []byte) error {
	if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	return nil
}
