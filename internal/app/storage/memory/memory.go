package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zenscore/zenscore/internal/app/domain/account"
	"github.com/zenscore/zenscore/internal/app/domain/score"
	"github.com/zenscore/zenscore/internal/app/domain/session"
	"github.com/zenscore/zenscore/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu        sync.RWMutex
	accounts  map[string]account.Account
	passwords map[string]string // account id -> hash
	emails    map[string]string // email -> account id
	sessions  map[string][]session.Session
	snapshots map[string][]score.Snapshot
}

var _ storage.AccountStore = (*Store)(nil)
var _ storage.SessionStore = (*Store)(nil)
var _ storage.ScoreStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		accounts:  make(map[string]account.Account),
		passwords: make(map[string]string),
		emails:    make(map[string]string),
		sessions:  make(map[string][]session.Session),
		snapshots: make(map[string][]score.Snapshot),
	}
}

// AccountStore implementation -------------------------------------------------

func (s *Store) CreateAccount(_ context.Context, acct account.Account, passwordHash string) (account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(acct.Email)
	if _, exists := s.emails[email]; exists {
		return account.Account{}, storage.ErrDuplicate
	}
	if acct.ID == "" {
		acct.ID = uuid.NewString()
	}
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = time.Now().UTC()
	}
	s.accounts[acct.ID] = acct
	s.passwords[acct.ID] = passwordHash
	s.emails[email] = acct.ID
	return acct, nil
}

func (s *Store) GetAccount(_ context.Context, id string) (account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[id]
	if !ok {
		return account.Account{}, storage.ErrNotFound
	}
	return acct, nil
}

func (s *Store) GetCredentialsByEmail(_ context.Context, email string) (account.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return account.Credentials{}, storage.ErrNotFound
	}
	acct := s.accounts[id]
	return account.Credentials{
		ID:           acct.ID,
		Name:         acct.Name,
		Email:        acct.Email,
		PasswordHash: s.passwords[id],
		IsActive:     acct.IsActive,
	}, nil
}

func (s *Store) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.emails[strings.ToLower(email)]
	return ok, nil
}

func (s *Store) UpdateAccountStats(_ context.Context, id string, stats account.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	acct.Stats = stats
	s.accounts[id] = acct
	return nil
}

func (s *Store) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	at = at.UTC()
	acct.LastLogin = &at
	s.accounts[id] = acct
	return nil
}

// SessionStore implementation -------------------------------------------------

func (s *Store) CreateSession(_ context.Context, sess session.Session) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	s.sessions[sess.AccountID] = append(s.sessions[sess.AccountID], cloneSession(sess))
	return sess, nil
}

func (s *Store) GetSession(_ context.Context, accountID, id string) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.sessions[accountID] {
		if sess.ID == id {
			return cloneSession(sess), nil
		}
	}
	return session.Session{}, storage.ErrNotFound
}

func (s *Store) ListSessions(_ context.Context, accountID string, limit, offset int) ([]session.Session, error) {
	s.mu.RLock()
	src := s.sessions[accountID]
	all := make([]session.Session, 0, len(src))
	for i := len(src) - 1; i >= 0; i-- {
		all = append(all, src[i])
	}
	s.mu.RUnlock()

	// most recently inserted first among equal creation times
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []session.Session{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	out := make([]session.Session, 0, end-offset)
	for _, sess := range all[offset:end] {
		out = append(out, cloneSession(sess))
	}
	return out, nil
}

func (s *Store) CountSessions(_ context.Context, accountID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions[accountID]), nil
}

func (s *Store) SumDurationByCategory(_ context.Context, accountID string) (session.Totals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totals session.Totals
	for _, sess := range s.sessions[accountID] {
		totals.Add(sess.Category, sess.Duration)
		totals.Count++
	}
	return totals, nil
}

func (s *Store) UpdateSyncStatus(_ context.Context, accountID, id string, status session.SyncStatus) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.sessions[accountID]
	for i := range list {
		if list[i].ID == id {
			list[i].SyncStatus = status
			return cloneSession(list[i]), nil
		}
	}
	return session.Session{}, storage.ErrNotFound
}

// ScoreStore implementation ---------------------------------------------------

func (s *Store) CreateSnapshot(_ context.Context, snap score.Snapshot) (score.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.Date.IsZero() {
		snap.Date = time.Now().UTC()
	}
	s.snapshots[snap.AccountID] = append(s.snapshots[snap.AccountID], snap)
	return snap, nil
}

func (s *Store) LatestSnapshots(_ context.Context, accountID string, n int) ([]score.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.snapshots[accountID]
	out := make([]score.Snapshot, 0, n)
	for i := len(history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, history[i])
	}
	return out, nil
}

func cloneSession(sess session.Session) session.Session {
	if sess.Tags != nil {
		tags := make([]string, len(sess.Tags))
		copy(tags, sess.Tags)
		sess.Tags = tags
	}
	return sess
}
