package storage

import (
	"context"
	"errors"
	"time"

	"github.com/zenscore/zenscore/internal/app/domain/account"
	"github.com/zenscore/zenscore/internal/app/domain/score"
	"github.com/zenscore/zenscore/internal/app/domain/session"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate")
)

// AccountStore persists accounts. The password hash is accepted on create and
// only ever read back through Credentials.
type AccountStore interface {
	CreateAccount(ctx context.Context, acct account.Account, passwordHash string) (account.Account, error)
	GetAccount(ctx context.Context, id string) (account.Account, error)
	GetCredentialsByEmail(ctx context.Context, email string) (account.Credentials, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateAccountStats(ctx context.Context, id string, stats account.Stats) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// SessionStore persists usage sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s session.Session) (session.Session, error)
	GetSession(ctx context.Context, accountID, id string) (session.Session, error)
	// ListSessions returns sessions newest-first by creation time.
	ListSessions(ctx context.Context, accountID string, limit, offset int) ([]session.Session, error)
	CountSessions(ctx context.Context, accountID string) (int, error)
	SumDurationByCategory(ctx context.Context, accountID string) (session.Totals, error)
	UpdateSyncStatus(ctx context.Context, accountID, id string, status session.SyncStatus) (session.Session, error)
}

// ScoreStore persists the append-only score snapshot history.
type ScoreStore interface {
	CreateSnapshot(ctx context.Context, snap score.Snapshot) (score.Snapshot, error)
	// LatestSnapshots returns up to n snapshots newest-first.
	LatestSnapshots(ctx context.Context, accountID string, n int) ([]score.Snapshot, error)
}
