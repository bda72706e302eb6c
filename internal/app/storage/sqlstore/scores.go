package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/zenscore/zenscore/internal/app/domain/score"
)

type snapshotRow struct {
	ID        string         `db:"id"`
	AccountID string         `db:"account_id"`
	Score     int            `db:"score"`
	Breakdown sql.NullString `db:"breakdown"`
	Metrics   sql.NullString `db:"metrics"`
	Insights  sql.NullString `db:"insights"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r snapshotRow) toDomain() score.Snapshot {
	snap := score.Snapshot{
		ID:        r.ID,
		AccountID: r.AccountID,
		Score:     r.Score,
		Date:      r.CreatedAt.UTC(),
	}
	if r.Breakdown.Valid {
		snap.Breakdown = &score.Breakdown{}
		unmarshalText(r.Breakdown.String, snap.Breakdown)
	}
	if r.Metrics.Valid {
		snap.Metrics = &score.Metrics{}
		unmarshalText(r.Metrics.String, snap.Metrics)
	}
	if r.Insights.Valid {
		snap.Insights = &score.Insights{}
		unmarshalText(r.Insights.String, snap.Insights)
	}
	return snap
}

// --- ScoreStore -------------------------------------------------------------

func (s *Store) CreateSnapshot(ctx context.Context, snap score.Snapshot) (score.Snapshot, error) {
	if snap.ID == "" {
		snap.ID = newID()
	}
	snap.Date = s.stamp(snap.Date)

	breakdown, err := marshalNullable(snap.Breakdown, snap.Breakdown != nil)
	if err != nil {
		return score.Snapshot{}, err
	}
	metrics, err := marshalNullable(snap.Metrics, snap.Metrics != nil)
	if err != nil {
		return score.Snapshot{}, err
	}
	insights, err := marshalNullable(snap.Insights, snap.Insights != nil)
	if err != nil {
		return score.Snapshot{}, err
	}

	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO score_snapshots (id, account_id, score, breakdown, metrics, insights, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), snap.ID, snap.AccountID, snap.Score, breakdown, metrics, insights, snap.Date)
	if err != nil {
		return score.Snapshot{}, err
	}
	return snap, nil
}

func (s *Store) LatestSnapshots(ctx context.Context, accountID string, n int) ([]score.Snapshot, error) {
	var rows []snapshotRow
	err := s.db.SelectContext(ctx, &rows, s.q(`
		SELECT id, account_id, score, breakdown, metrics, insights, created_at
		FROM score_snapshots
		WHERE account_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`), accountID, n)
	if err != nil {
		return nil, err
	}
	out := make([]score.Snapshot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
