// Package sessions ingests and lists usage sessions.
package sessions

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/zenscore/zenscore/internal/app/domain/session"
	"github.com/zenscore/zenscore/internal/app/metrics"
	"github.com/zenscore/zenscore/internal/app/services/score"
	"github.com/zenscore/zenscore/internal/app/storage"
	"github.com/zenscore/zenscore/internal/app/validation"
	"github.com/zenscore/zenscore/internal/errors"
	"github.com/zenscore/zenscore/pkg/logger"
)

// Paging defaults for List.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Input is a client-reported session. Pointer fields are optional.
type Input struct {
	AppName           string           `json:"appName" validate:"required,max=100"`
	Category          string           `json:"category" validate:"required,oneof=productive restful neutral distractive"`
	Duration          int              `json:"duration" validate:"required,min=1,max=1440"`
	StartTime         *time.Time       `json:"startTime"`
	EndTime           *time.Time       `json:"endTime"`
	ProductivityScore *int             `json:"productivityScore" validate:"omitempty,min=0,max=100"`
	Notes             string           `json:"notes" validate:"max=500"`
	Tags              []string         `json:"tags" validate:"omitempty,dive,max=30"`
	Metadata          session.Metadata `json:"metadata"`
	IsManualEntry     bool             `json:"isManualEntry"`
	SyncStatus        string           `json:"syncStatus" validate:"omitempty,oneof=synced pending failed"`
}

var inputMessages = validation.Messages{
	"appName.required":  "All fields required",
	"category.required": "All fields required",
	"duration.required": "All fields required",
	"appName.max":       "App name cannot exceed 100 characters",
	"category.oneof":    "Category must be one of: productive, restful, neutral, distractive",
	"duration":          "Duration must be between 1 and 1440 minutes",
	"productivityScore": "Productivity score must be between 0 and 100",
	"notes":             "Notes cannot exceed 500 characters",
	"tags":              "Tags cannot exceed 30 characters",
	"syncStatus":        "Sync status must be one of: synced, pending, failed",
}

// Service validates, stores and scores sessions.
type Service struct {
	accounts storage.AccountStore
	sessions storage.SessionStore
	scores   *score.Service
	validate *validation.Validator
	log      *logger.Logger
	now      func() time.Time
}

// New constructs a session service.
func New(accounts storage.AccountStore, sessions storage.SessionStore, scores *score.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("sessions")
	}
	return &Service{
		accounts: accounts,
		sessions: sessions,
		scores:   scores,
		validate: validation.New(),
		log:      log,
		now:      time.Now,
	}
}

// WithClock overrides the time source used for defaulted timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Record persists a session, appends a score snapshot for its category and
// folds it into the account's running stats.
func (s *Service) Record(ctx context.Context, accountID string, in Input) (session.Session, error) {
	in.AppName = strings.TrimSpace(in.AppName)
	in.Notes = strings.TrimSpace(in.Notes)
	if err := s.validate.Struct(in, inputMessages); err != nil {
		return session.Session{}, err
	}

	sess, err := s.build(accountID, in)
	if err != nil {
		return session.Session{}, err
	}

	created, err := s.sessions.CreateSession(ctx, sess)
	if err != nil {
		return session.Session{}, errors.Store("create session", err)
	}

	snap, err := s.scores.Record(ctx, accountID, created.Category)
	if err != nil {
		return session.Session{}, err
	}
	if err := s.updateStats(ctx, created, snap.Score); err != nil {
		return session.Session{}, err
	}

	metrics.RecordSession(string(created.Category), created.Duration)
	s.log.WithContext(ctx).
		WithField("session_id", created.ID).
		WithField("category", created.Category).
		WithField("duration", created.Duration).
		WithField("score", snap.Score).
		Info("session recorded")
	return created, nil
}

func (s *Service) build(accountID string, in Input) (session.Session, error) {
	category := session.Category(in.Category)
	span := time.Duration(in.Duration) * time.Minute

	var start, end time.Time
	switch {
	case in.StartTime != nil && in.EndTime != nil:
		start, end = *in.StartTime, *in.EndTime
		if end.Before(start) {
			return session.Session{}, errors.Validation("End time cannot be before start time")
		}
	case in.StartTime != nil:
		start = *in.StartTime
		end = start.Add(span)
	case in.EndTime != nil:
		end = *in.EndTime
		start = end.Add(-span)
	default:
		end = s.now()
		start = end.Add(-span)
	}

	productivity := session.DefaultProductivityScore(category)
	if in.ProductivityScore != nil {
		productivity = *in.ProductivityScore
	}
	status := session.SyncSynced
	if in.SyncStatus != "" {
		status = session.SyncStatus(in.SyncStatus)
	}
	tags := make([]string, 0, len(in.Tags))
	for _, tag := range in.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return session.Session{
		AccountID:         accountID,
		AppName:           in.AppName,
		Category:          category,
		Duration:          in.Duration,
		StartTime:         start.UTC(),
		EndTime:           end.UTC(),
		ProductivityScore: productivity,
		Notes:             in.Notes,
		Tags:              tags,
		Metadata:          in.Metadata,
		IsManualEntry:     in.IsManualEntry,
		SyncStatus:        status,
		CreatedAt:         s.now().UTC(),
	}, nil
}

func (s *Service) updateStats(ctx context.Context, sess session.Session, current int) error {
	acct, err := s.accounts.GetAccount(ctx, sess.AccountID)
	if err != nil {
		return errors.Store("load account", err)
	}
	stats := acct.Stats.Observe(sess.Duration, sess.Category == session.CategoryProductive, current, sess.EndTime)
	if err := s.accounts.UpdateAccountStats(ctx, sess.AccountID, stats); err != nil {
		return errors.Store("update account stats", err)
	}
	return nil
}

// NormalizePage applies paging defaults: non-positive limits become
// DefaultLimit, limits above MaxLimit are capped and negative offsets become 0.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// List returns a newest-first page of the account's sessions and its total.
func (s *Service) List(ctx context.Context, accountID string, limit, offset int) (session.Page, error) {
	limit, offset = NormalizePage(limit, offset)
	list, err := s.sessions.ListSessions(ctx, accountID, limit, offset)
	if err != nil {
		return session.Page{}, errors.Store("list sessions", err)
	}
	total, err := s.sessions.CountSessions(ctx, accountID)
	if err != nil {
		return session.Page{}, errors.Store("count sessions", err)
	}
	if list == nil {
		list = []session.Session{}
	}
	return session.Page{Sessions: list, Total: total}, nil
}

// UpdateSyncStatus moves a session owned by accountID to status.
func (s *Service) UpdateSyncStatus(ctx context.Context, accountID, id, status string) (session.Session, error) {
	next := session.SyncStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return session.Session{}, errors.Validation(inputMessages["syncStatus"])
	}
	updated, err := s.sessions.UpdateSyncStatus(ctx, accountID, id, next)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return session.Session{}, errors.NotFound("Session")
		}
		return session.Session{}, errors.Store("update sync status", err)
	}
	s.log.WithContext(ctx).
		WithField("session_id", id).
		WithField("sync_status", next).
		Info("session sync status changed")
	return updated, nil
}
