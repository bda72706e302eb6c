// Package reporting summarizes an account's tracked time by category.
package reporting

import (
	"context"
	"fmt"
	"math"

	"github.com/zenscore/zenscore/internal/app/domain/session"
	"github.com/zenscore/zenscore/internal/app/storage"
	"github.com/zenscore/zenscore/internal/errors"
	"github.com/zenscore/zenscore/pkg/logger"
)

// Summary is the category roll-up returned to clients.
type Summary struct {
	TotalDuration string         `json:"totalDuration"`
	FocusRate     string         `json:"focusRate"`
	Breakdown     session.Totals `json:"breakdown"`
}

// Service computes summaries from stored sessions.
type Service struct {
	sessions storage.SessionStore
	log      *logger.Logger
}

// New constructs a reporting service.
func New(sessions storage.SessionStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("reporting")
	}
	return &Service{sessions: sessions, log: log}
}

// Summarize buckets every session minute of the account by category.
func (s *Service) Summarize(ctx context.Context, accountID string) (Summary, error) {
	totals, err := s.sessions.SumDurationByCategory(ctx, accountID)
	if err != nil {
		return Summary{}, errors.Store("sum sessions", err)
	}
	return Summarize(totals), nil
}

// Summarize formats precomputed totals.
func Summarize(totals session.Totals) Summary {
	return Summary{
		TotalDuration: FormatDuration(totals.Total()),
		FocusRate:     fmt.Sprintf("%d%%", FocusRate(totals)),
		Breakdown:     totals,
	}
}

// FormatDuration renders minutes as "Hh Mm".
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FocusRate is the productive share of tracked time as a whole percentage.
// An empty total yields 0.
func FocusRate(totals session.Totals) int {
	return Percent(totals.Productive, totals.Total())
}

// Percent returns round(part/total*100) bounded to [0,100], treating a
// non-positive total as 1.
func Percent(part, total int) int {
	if total <= 0 {
		total = 1
	}
	p := int(math.Round(float64(part) / float64(total) * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
