package sqlstore

import (
	"context"
	"time"

	"github.com/zenscore/zenscore/internal/app/domain/session"
	"github.com/zenscore/zenscore/internal/app/storage"
)

const sessionColumns = `id, account_id, app_name, category, duration, start_time, end_time,
	productivity_score, notes, tags, metadata, is_manual_entry, sync_status, created_at`

type sessionRow struct {
	ID                string    `db:"id"`
	AccountID         string    `db:"account_id"`
	AppName           string    `db:"app_name"`
	Category          string    `db:"category"`
	Duration          int       `db:"duration"`
	StartTime         time.Time `db:"start_time"`
	EndTime           time.Time `db:"end_time"`
	ProductivityScore int       `db:"productivity_score"`
	Notes             string    `db:"notes"`
	Tags              string    `db:"tags"`
	Metadata          string    `db:"metadata"`
	IsManualEntry     bool      `db:"is_manual_entry"`
	SyncStatus        string    `db:"sync_status"`
	CreatedAt         time.Time `db:"created_at"`
}

func (r sessionRow) toDomain() session.Session {
	sess := session.Session{
		ID:                r.ID,
		AccountID:         r.AccountID,
		AppName:           r.AppName,
		Category:          session.Category(r.Category),
		Duration:          r.Duration,
		StartTime:         r.StartTime.UTC(),
		EndTime:           r.EndTime.UTC(),
		ProductivityScore: r.ProductivityScore,
		Notes:             r.Notes,
		Tags:              []string{},
		IsManualEntry:     r.IsManualEntry,
		SyncStatus:        session.SyncStatus(r.SyncStatus),
		CreatedAt:         r.CreatedAt.UTC(),
	}
	unmarshalText(r.Tags, &sess.Tags)
	unmarshalText(r.Metadata, &sess.Metadata)
	return sess
}

// --- SessionStore -----------------------------------------------------------

func (s *Store) CreateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	if sess.ID == "" {
		sess.ID = newID()
	}
	if sess.Tags == nil {
		sess.Tags = []string{}
	}
	if sess.SyncStatus == "" {
		sess.SyncStatus = session.SyncSynced
	}
	sess.CreatedAt = s.stamp(sess.CreatedAt)
	sess.StartTime = sess.StartTime.UTC().Truncate(time.Microsecond)
	sess.EndTime = sess.EndTime.UTC().Truncate(time.Microsecond)

	tags, err := marshalText(sess.Tags)
	if err != nil {
		return session.Session{}, err
	}
	metadata, err := marshalText(sess.Metadata)
	if err != nil {
		return session.Session{}, err
	}

	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), sess.ID, sess.AccountID, sess.AppName, string(sess.Category), sess.Duration,
		sess.StartTime, sess.EndTime, sess.ProductivityScore, sess.Notes, tags, metadata,
		sess.IsManualEntry, string(sess.SyncStatus), sess.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return session.Session{}, storage.ErrDuplicate
		}
		return session.Session{}, err
	}
	return sess, nil
}

func (s *Store) GetSession(ctx context.Context, accountID, id string) (session.Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, s.q(`
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE account_id = ? AND id = ?
	`), accountID, id)
	if err != nil {
		return session.Session{}, notFound(err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListSessions(ctx context.Context, accountID string, limit, offset int) ([]session.Session, error) {
	var rows []sessionRow
	err := s.db.SelectContext(ctx, &rows, s.q(`
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE account_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`), accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]session.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (s *Store) CountSessions(ctx context.Context, accountID string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM sessions WHERE account_id = ?`), accountID)
	return n, err
}

func (s *Store) SumDurationByCategory(ctx context.Context, accountID string) (session.Totals, error) {
	var rows []struct {
		Category string `db:"category"`
		Minutes  int    `db:"minutes"`
		Count    int    `db:"n"`
	}
	err := s.db.SelectContext(ctx, &rows, s.q(`
		SELECT category, COALESCE(SUM(duration), 0) AS minutes, COUNT(*) AS n
		FROM sessions
		WHERE account_id = ?
		GROUP BY category
	`), accountID)
	if err != nil {
		return session.Totals{}, err
	}
	var totals session.Totals
	for _, row := range rows {
		totals.Add(session.Category(row.Category), row.Minutes)
		totals.Count += row.Count
	}
	return totals, nil
}

func (s *Store) UpdateSyncStatus(ctx context.Context, accountID, id string, status session.SyncStatus) (session.Session, error) {
	result, err := s.db.ExecContext(ctx, s.q(`
		UPDATE sessions SET sync_status = ? WHERE account_id = ? AND id = ?
	`), string(status), accountID, id)
	if err != nil {
		return session.Session{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return session.Session{}, storage.ErrNotFound
	}
	return s.GetSession(ctx, accountID, id)
}
