package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/zenscore/zenscore/internal/app/domain/account"
	"github.com/zenscore/zenscore/internal/app/storage"
)

type accountRow struct {
	ID        string       `db:"id"`
	Name      string       `db:"name"`
	Email     string       `db:"email"`
	IsActive  bool         `db:"is_active"`
	Settings  string       `db:"settings"`
	Stats     string       `db:"stats"`
	LastLogin sql.NullTime `db:"last_login"`
	CreatedAt time.Time    `db:"created_at"`
}

func (r accountRow) toDomain() account.Account {
	acct := account.Account{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt.UTC(),
		Settings:  account.DefaultSettings(),
	}
	unmarshalText(r.Settings, &acct.Settings)
	unmarshalText(r.Stats, &acct.Stats)
	if r.LastLogin.Valid {
		t := r.LastLogin.Time.UTC()
		acct.LastLogin = &t
	}
	return acct
}

// --- AccountStore -----------------------------------------------------------

func (s *Store) CreateAccount(ctx context.Context, acct account.Account, passwordHash string) (account.Account, error) {
	if acct.ID == "" {
		acct.ID = newID()
	}
	acct.Email = strings.ToLower(acct.Email)
	acct.CreatedAt = s.stamp(acct.CreatedAt)

	settings, err := marshalText(acct.Settings)
	if err != nil {
		return account.Account{}, err
	}
	stats, err := marshalText(acct.Stats)
	if err != nil {
		return account.Account{}, err
	}

	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO accounts (id, name, email, password_hash, is_active, settings, stats, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), acct.ID, acct.Name, acct.Email, passwordHash, acct.IsActive, settings, stats, acct.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return account.Account{}, storage.ErrDuplicate
		}
		return account.Account{}, err
	}
	return acct, nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (account.Account, error) {
	var row accountRow
	err := s.db.GetContext(ctx, &row, s.q(`
		SELECT id, name, email, is_active, settings, stats, last_login, created_at
		FROM accounts
		WHERE id = ?
	`), id)
	if err != nil {
		return account.Account{}, notFound(err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetCredentialsByEmail(ctx context.Context, email string) (account.Credentials, error) {
	var row struct {
		ID           string `db:"id"`
		Name         string `db:"name"`
		Email        string `db:"email"`
		PasswordHash string `db:"password_hash"`
		IsActive     bool   `db:"is_active"`
	}
	err := s.db.GetContext(ctx, &row, s.q(`
		SELECT id, name, email, password_hash, is_active
		FROM accounts
		WHERE email = ?
	`), strings.ToLower(email))
	if err != nil {
		return account.Credentials{}, notFound(err)
	}
	return account.Credentials{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		IsActive:     row.IsActive,
	}, nil
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM accounts WHERE email = ?`), strings.ToLower(email))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) UpdateAccountStats(ctx context.Context, id string, stats account.Stats) error {
	raw, err := marshalText(stats)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, s.q(`UPDATE accounts SET stats = ? WHERE id = ?`), raw, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, s.q(`UPDATE accounts SET last_login = ? WHERE id = ?`),
		at.UTC().Truncate(time.Microsecond), id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}
