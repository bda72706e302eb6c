package sqlstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenscore/zenscore/internal/app/domain/account"
	"github.com/zenscore/zenscore/internal/app/domain/score"
	"github.com/zenscore/zenscore/internal/app/domain/session"
	"github.com/zenscore/zenscore/internal/app/storage"
	"github.com/zenscore/zenscore/internal/platform/migrations"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Apply(ctx, db.DB))
	return New(db)
}

func createAccount(t *testing.T, s *Store, email string) account.Account {
	t.Helper()
	acct, err := s.CreateAccount(context.Background(), account.Account{
		Name:     "Ada",
		Email:    email,
		IsActive: true,
		Settings: account.DefaultSettings(),
	}, "hash")
	require.NoError(t, err)
	return acct
}

func TestAccountRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	acct := createAccount(t, s, "Ada@Example.com")
	assert.Equal(t, "ada@example.com", acct.Email)

	_, err := s.CreateAccount(ctx, account.Account{Name: "Other", Email: "ada@example.com"}, "x")
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	exists, err := s.EmailExists(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	creds, err := s.GetCredentialsByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", creds.PasswordHash)
	assert.Equal(t, acct.ID, creds.ID)

	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	stats := account.Stats{}.Observe(30, true, 85, at)
	require.NoError(t, s.UpdateAccountStats(ctx, acct.ID, stats))
	require.NoError(t, s.TouchLastLogin(ctx, acct.ID, at))

	got, err := s.GetAccount(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stats.TotalSessions)
	assert.Equal(t, 30, got.Stats.TotalProductiveTime)
	assert.Equal(t, 1, got.Stats.Streak.Current)
	require.NotNil(t, got.LastLogin)
	assert.True(t, at.Equal(*got.LastLogin))
	assert.Equal(t, account.ThemeAuto, got.Settings.Theme)

	_, err = s.GetAccount(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.UpdateAccountStats(ctx, "missing", stats), storage.ErrNotFound)
	_, err = s.GetCredentialsByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSessionsPagingAndTotals(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	acct := createAccount(t, s, "ada@example.com")
	other := createAccount(t, s, "bob@example.com")

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cats := []session.Category{session.CategoryProductive, session.CategoryDistractive, session.CategoryProductive}
	var ids []string
	for i, c := range cats {
		sess, err := s.CreateSession(ctx, session.Session{
			AccountID:         acct.ID,
			AppName:           "app",
			Category:          c,
			Duration:          10 * (i + 1),
			StartTime:         base,
			EndTime:           base.Add(time.Duration(10*(i+1)) * time.Minute),
			ProductivityScore: session.DefaultProductivityScore(c),
			Tags:              []string{"work"},
			CreatedAt:         base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		ids = append(ids, sess.ID)
	}
	_, err := s.CreateSession(ctx, session.Session{
		AccountID: other.ID, AppName: "x", Category: session.CategoryNeutral, Duration: 5,
		StartTime: base, EndTime: base.Add(5 * time.Minute), ProductivityScore: 50,
	})
	require.NoError(t, err)

	page, err := s.ListSessions(ctx, acct.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)
	assert.Equal(t, []string{"work"}, page[0].Tags)

	page, err = s.ListSessions(ctx, acct.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[0], page[0].ID)

	n, err := s.CountSessions(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	totals, err := s.SumDurationByCategory(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, totals.Productive)
	assert.Equal(t, 20, totals.Distractive)
	assert.Equal(t, 0, totals.Neutral)
	assert.Equal(t, 3, totals.Count)

	updated, err := s.UpdateSyncStatus(ctx, acct.ID, ids[0], session.SyncFailed)
	require.NoError(t, err)
	assert.Equal(t, session.SyncFailed, updated.SyncStatus)

	_, err = s.UpdateSyncStatus(ctx, other.ID, ids[0], session.SyncPending)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetSession(ctx, other.ID, ids[0])
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSnapshotsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	acct := createAccount(t, s, "ada@example.com")

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err := s.CreateSnapshot(ctx, score.Snapshot{AccountID: acct.ID, Score: 60, Date: at})
	require.NoError(t, err)
	// same instant: insertion order still decides
	_, err = s.CreateSnapshot(ctx, score.Snapshot{
		AccountID: acct.ID,
		Score:     64,
		Date:      at,
		Breakdown: &score.Breakdown{Productive: 100},
		Insights:  &score.Insights{Trends: &score.Trends{ScoreChange: 4, ProductivityTrend: score.TrendImproving}},
	})
	require.NoError(t, err)

	latest, err := s.LatestSnapshots(ctx, acct.ID, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, 64, latest[0].Score)
	assert.Equal(t, 60, latest[1].Score)
	require.NotNil(t, latest[0].Breakdown)
	assert.Equal(t, 100, latest[0].Breakdown.Productive)
	assert.Nil(t, latest[0].Metrics)
	require.NotNil(t, latest[0].Insights)
	assert.Equal(t, 4, latest[0].Insights.Trends.ScoreChange)
	assert.Nil(t, latest[1].Breakdown)

	none, err := s.LatestSnapshots(ctx, "missing", 1)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSessionRequiresAccount(t *testing.T) {
	s := newSQLiteStore(t)
	_, err := s.CreateSession(context.Background(), session.Session{
		AccountID: "missing", AppName: "x", Category: session.CategoryNeutral, Duration: 5,
		StartTime: time.Now(), EndTime: time.Now(), ProductivityScore: 50,
	})
	assert.Error(t, err)
}

func TestQueryErrorsPropagate(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	s := New(sqlx.NewDb(mockDB, "sqlmock"))

	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT COUNT").WillReturnError(boom)
	_, err = s.CountSessions(context.Background(), "acct")
	assert.ErrorIs(t, err, boom)

	mock.ExpectExec("UPDATE accounts SET stats").WillReturnResult(sqlmock.NewResult(0, 0))
	err = s.UpdateAccountStats(context.Background(), "acct", account.Stats{})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	mock.ExpectExec("INSERT INTO score_snapshots").WillReturnError(boom)
	_, err = s.CreateSnapshot(context.Background(), score.Snapshot{AccountID: "acct", Score: 50})
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}
	ctx := context.Background()
	db, err := Open(ctx, "postgres", dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, migrations.Apply(ctx, db.DB))

	s := New(db)
	email := "pg-" + time.Now().Format("20060102150405.000000") + "@example.com"
	acct := createAccount(t, s, email)

	_, err = s.CreateAccount(ctx, account.Account{Name: "dup", Email: email}, "x")
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	sess, err := s.CreateSession(ctx, session.Session{
		AccountID: acct.ID, AppName: "Editor", Category: session.CategoryProductive, Duration: 30,
		StartTime: time.Now(), EndTime: time.Now().Add(30 * time.Minute), ProductivityScore: 85,
	})
	require.NoError(t, err)

	page, err := s.ListSessions(ctx, acct.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, sess.ID, page[0].ID)
}
