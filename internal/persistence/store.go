package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/skilllink/marketplace/internal/domain"
	apperrors "github.com/skilllink/marketplace/pkg/util/errorutil"
)

// Storage keys. Each table is one JSON array; the session pointer is one
// JSON object.
const (
	KeyUsers       = "skilllink_users"
	KeyJobs        = "skilllink_jobs"
	KeyCurrentUser = "skilllink_current_user"
	KeyLedger      = "skilllink_ledger"
)

var tableKeys = []string{KeyUsers, KeyJobs, KeyLedger}

var emptyList = []byte("[]")

// Store exposes typed tables over a Backend.
type Store struct {
	backend Backend
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewStore wraps backend.
func NewStore(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, logger: logger}
}

// Users returns the whole users table. An unseeded table reads as empty.
func (s *Store) Users(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.read(ctx, KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SaveUsers replaces the users table and refreshes the session pointer if its
// user is among them.
func (s *Store) SaveUsers(ctx context.Context, users []domain.User) error {
	if err := s.write(ctx, KeyUsers, users); err != nil {
		return err
	}
	s.refreshSession(ctx, users)
	return nil
}

// Jobs returns the whole jobs table.
func (s *Store) Jobs(ctx context.Context) ([]domain.Job, error) {
	var jobs []domain.Job
	if err := s.read(ctx, KeyJobs, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// SaveJobs replaces the jobs table.
func (s *Store) SaveJobs(ctx context.Context, jobs []domain.Job) error {
	return s.write(ctx, KeyJobs, jobs)
}

// Ledger returns every settlement ledger entry in insertion order.
func (s *Store) Ledger(ctx context.Context) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	if err := s.read(ctx, KeyLedger, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SessionUser returns the persisted session pointer, or nil when signed out.
func (s *Store) SessionUser(ctx context.Context) (*domain.User, error) {
	raw, err := s.backend.Get(ctx, KeyCurrentUser)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", KeyCurrentUser, err)
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeyCurrentUser, err)
	}
	return &u, nil
}

// SetSessionUser replaces the session pointer. A nil user clears it.
func (s *Store) SetSessionUser(ctx context.Context, u *domain.User) error {
	if u == nil {
		return s.backend.Delete(ctx, KeyCurrentUser)
	}
	return s.write(ctx, KeyCurrentUser, u.Public())
}

// SaveUser upserts one user atomically.
func (s *Store) SaveUser(ctx context.Context, u domain.User) error {
	return s.Update(ctx, func(t *Tables) error {
		t.UpsertUser(u)
		return nil
	})
}

// Update reads every table, runs fn on the working copy and writes back the
// tables fn changed in a single atomic commit. Nothing is written when fn
// fails.
func (s *Store) Update(ctx context.Context, fn func(*Tables) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		usersChanged bool
		users        []domain.User
	)
	err := s.backend.Atomic(ctx, tableKeys, func(current map[string][]byte) (map[string][]byte, error) {
		tables := &Tables{}
		if err := decodeList(KeyUsers, current[KeyUsers], &tables.Users); err != nil {
			return nil, err
		}
		if err := decodeList(KeyJobs, current[KeyJobs], &tables.Jobs); err != nil {
			return nil, err
		}
		if err := decodeList(KeyLedger, current[KeyLedger], &tables.Ledger); err != nil {
			return nil, err
		}

		if err := fn(tables); err != nil {
			return nil, err
		}

		writes := make(map[string][]byte, len(tableKeys))
		for key, records := range map[string]any{
			KeyUsers:  tables.Users,
			KeyJobs:   tables.Jobs,
			KeyLedger: tables.Ledger,
		} {
			encoded, err := encodeList(records)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", key, err)
			}
			prev, present := current[key]
			if !present && bytes.Equal(encoded, emptyList) {
				continue
			}
			if bytes.Equal(encoded, prev) {
				continue
			}
			writes[key] = encoded
		}

		_, usersChanged = writes[KeyUsers]
		users = tables.Users
		return writes, nil
	})
	if errors.Is(err, ErrTxConflict) {
		return apperrors.NewConflict("concurrent update, please retry", nil)
	}
	if err != nil {
		return err
	}

	if usersChanged {
		s.refreshSession(ctx, users)
	}
	return nil
}

// EnsureSeeded writes the demo users and empty job and ledger tables for any
// key that is absent. Present keys are left untouched.
func (s *Store) EnsureSeeded(ctx context.Context, demo []domain.User) error {
	var seeded []string
	err := s.backend.Atomic(ctx, tableKeys, func(current map[string][]byte) (map[string][]byte, error) {
		seeded = seeded[:0]
		writes := make(map[string][]byte)
		if _, ok := current[KeyUsers]; !ok {
			encoded, err := encodeList(demo)
			if err != nil {
				return nil, err
			}
			writes[KeyUsers] = encoded
		}
		for _, key := range []string{KeyJobs, KeyLedger} {
			if _, ok := current[key]; !ok {
				writes[key] = emptyList
			}
		}
		for key := range writes {
			seeded = append(seeded, key)
		}
		return writes, nil
	})
	if err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	if len(seeded) > 0 {
		s.logger.Info("store seeded", zap.Strings("keys", seeded), zap.Int("demo_users", len(demo)))
	}
	return nil
}

// Reset removes every key so the next EnsureSeeded starts from scratch.
func (s *Store) Reset(ctx context.Context) error {
	return s.backend.Delete(ctx, KeyUsers, KeyJobs, KeyLedger, KeyCurrentUser)
}

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) read(ctx context.Context, key string, out any) error {
	raw, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	return decodeList(key, raw, out)
}

func (s *Store) write(ctx context.Context, key string, v any) error {
	encoded, err := encodeList(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, encoded); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) refreshSession(ctx context.Context, users []domain.User) {
	current, err := s.SessionUser(ctx)
	if err != nil {
		s.logger.Warn("session pointer unreadable", zap.Error(err))
		return
	}
	if current == nil {
		return
	}
	for i := range users {
		if users[i].ID != current.ID {
			continue
		}
		if err := s.SetSessionUser(ctx, &users[i]); err != nil {
			s.logger.Warn("refresh session pointer", zap.String("user_id", current.ID), zap.Error(err))
		}
		return
	}
}

func decodeList(key string, raw []byte, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// encodeList marshals v, writing nil slices as [] rather than null.
func encodeList(v any) ([]byte, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(encoded, []byte("null")) {
		return emptyList, nil
	}
	return encoded, nil
}
