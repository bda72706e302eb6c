// Package score maintains the append-only focus score history.
package score

import (
	"context"
	"math"
	"time"

	domain "github.com/zenscore/zenscore/internal/app/domain/score"
	"github.com/zenscore/zenscore/internal/app/domain/session"
	"github.com/zenscore/zenscore/internal/app/metrics"
	"github.com/zenscore/zenscore/internal/app/services/reporting"
	"github.com/zenscore/zenscore/internal/app/storage"
	"github.com/zenscore/zenscore/internal/errors"
	"github.com/zenscore/zenscore/pkg/logger"
)

// DefaultScore is the score of an account with no history.
const DefaultScore = 72

// Direction labels for Current.Trend.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

var deltas = map[session.Category]int{
	session.CategoryProductive:  3,
	session.CategoryRestful:     2,
	session.CategoryNeutral:     0,
	session.CategoryDistractive: -3,
}

// NextScore applies the category step to previous and clamps to [0,100].
func NextScore(previous int, category session.Category) int {
	return domain.Clamp(previous + deltas[category])
}

// Current is the latest score with its movement since the snapshot before it.
type Current struct {
	Score  int    `json:"score"`
	Trend  string `json:"trend"`
	Change int    `json:"change"`
}

// Service reads and appends score snapshots.
type Service struct {
	scores   storage.ScoreStore
	sessions storage.SessionStore
	log      *logger.Logger
	now      func() time.Time
}

// New constructs a score service.
func New(scores storage.ScoreStore, sessions storage.SessionStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("score")
	}
	return &Service{scores: scores, sessions: sessions, log: log, now: time.Now}
}

// WithClock overrides the time source used to date snapshots.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Latest returns the most recent score, or DefaultScore without history.
func (s *Service) Latest(ctx context.Context, accountID string) (int, error) {
	history, err := s.scores.LatestSnapshots(ctx, accountID, 1)
	if err != nil {
		return 0, errors.Store("latest score", err)
	}
	if len(history) == 0 {
		return DefaultScore, nil
	}
	return history[0].Score, nil
}

// Trend reports the latest score and its change from the previous snapshot.
func (s *Service) Trend(ctx context.Context, accountID string) (Current, error) {
	history, err := s.scores.LatestSnapshots(ctx, accountID, 2)
	if err != nil {
		return Current{}, errors.Store("score history", err)
	}
	cur := Current{Score: DefaultScore, Trend: TrendStable}
	if len(history) > 0 {
		cur.Score = history[0].Score
	}
	if len(history) > 1 {
		cur.Change = history[0].Score - history[1].Score
	}
	switch {
	case cur.Change > 0:
		cur.Trend = TrendUp
	case cur.Change < 0:
		cur.Trend = TrendDown
	}
	return cur, nil
}

// Record appends a snapshot stepping the latest score by category. The
// snapshot carries the account's category breakdown at the time of writing.
func (s *Service) Record(ctx context.Context, accountID string, category session.Category) (domain.Snapshot, error) {
	previous, err := s.Latest(ctx, accountID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	next := NextScore(previous, category)

	totals, err := s.sessions.SumDurationByCategory(ctx, accountID)
	if err != nil {
		return domain.Snapshot{}, errors.Store("sum sessions", err)
	}

	change := next - previous
	snap := domain.Snapshot{
		AccountID: accountID,
		Date:      s.now().UTC(),
		Score:     next,
		Breakdown: Breakdown(totals),
		Metrics:   Metrics(totals),
		Insights: &domain.Insights{
			Trends: &domain.Trends{ScoreChange: change, ProductivityTrend: productivityTrend(change)},
		},
	}
	created, err := s.scores.CreateSnapshot(ctx, snap)
	if err != nil {
		return domain.Snapshot{}, errors.Store("create snapshot", err)
	}
	metrics.ObserveScore(next)
	s.log.WithField("account_id", accountID).
		WithField("category", category).
		WithField("score", next).
		Debug("score recorded")
	return created, nil
}

// Breakdown converts minute totals into per-category percentages.
func Breakdown(t session.Totals) *domain.Breakdown {
	total := t.Total()
	return &domain.Breakdown{
		Productive:  reporting.Percent(t.Productive, total),
		Restful:     reporting.Percent(t.Restful, total),
		Neutral:     reporting.Percent(t.Neutral, total),
		Distractive: reporting.Percent(t.Distractive, total),
	}
}

// Metrics rolls minute totals into snapshot metrics.
func Metrics(t session.Totals) *domain.Metrics {
	m := &domain.Metrics{
		TotalSessions:  t.Count,
		TotalTime:      t.Total(),
		ProductiveTime: t.Productive,
		FocusRate:      reporting.FocusRate(t),
	}
	if t.Count > 0 {
		m.AverageSessionLength = math.Round(float64(m.TotalTime)/float64(t.Count)*10) / 10
	}
	return m
}

func productivityTrend(change int) string {
	switch {
	case change > 0:
		return domain.TrendImproving
	case change < 0:
		return domain.TrendDeclining
	}
	return domain.TrendStable
}
