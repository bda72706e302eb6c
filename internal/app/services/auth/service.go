// Package auth registers accounts, checks credentials and issues the bearer
// tokens that identify callers on every other endpoint.
package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/zenscore/zenscore/internal/app/domain/account"
	"github.com/zenscore/zenscore/internal/app/metrics"
	"github.com/zenscore/zenscore/internal/app/storage"
	"github.com/zenscore/zenscore/internal/app/validation"
	"github.com/zenscore/zenscore/internal/errors"
	"github.com/zenscore/zenscore/pkg/logger"
)

// Defaults applied by New when Options leaves them zero.
const (
	DefaultTokenTTL = 24 * time.Hour
	DefaultIssuer   = "zenscore"
)

const invalidCredentials = "Invalid credentials"

// Options configures token signing and password hashing.
type Options struct {
	Secret     string
	TokenTTL   time.Duration
	Issuer     string
	BcryptCost int
}

// Claims are the identity claims embedded in every token.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Identity is the public user shape returned with a token.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Result is returned by Register and Login.
type Result struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

var registerMessages = validation.Messages{
	"name.required":     "All fields are required",
	"email.required":    "All fields are required",
	"password.required": "All fields are required",
	"name":              "Name must be between 2 and 50 characters",
	"email":             "Please provide a valid email",
	"password.min":      "Password must be at least 6 characters",
	"password.max":      "Password cannot exceed 72 characters",
}

var loginMessages = validation.Messages{
	"email":    "Email and password required",
	"password": "Email and password required",
}

// Service implements account registration and token handling.
type Service struct {
	accounts storage.AccountStore
	opts     Options
	validate *validation.Validator
	log      *logger.Logger
	now      func() time.Time
}

// New constructs an auth service. The secret must be non-empty.
func New(accounts storage.AccountStore, opts Options, log *logger.Logger) (*Service, error) {
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, fmt.Errorf("auth: signing secret is required")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.Issuer == "" {
		opts.Issuer = DefaultIssuer
	}
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &Service{
		accounts: accounts,
		opts:     opts,
		validate: validation.New(),
		log:      log,
		now:      time.Now,
	}, nil
}

// WithClock overrides the time source used for token timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Register creates an account and returns a token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Result, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in, registerMessages); err != nil {
		return Result{}, err
	}

	exists, err := s.accounts.EmailExists(ctx, in.Email)
	if err != nil {
		return Result{}, errors.Store("check email", err)
	}
	if exists {
		return Result{}, errors.Conflict("User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return Result{}, errors.Internal("Failed to create user", err)
	}

	acct, err := s.accounts.CreateAccount(ctx, account.Account{
		Name:     in.Name,
		Email:    in.Email,
		IsActive: true,
		Settings: account.DefaultSettings(),
	}, string(hash))
	if err != nil {
		if stderrors.Is(err, storage.ErrDuplicate) {
			return Result{}, errors.Conflict("User already exists")
		}
		return Result{}, errors.Store("create account", err)
	}

	metrics.RecordAuthAttempt("signup", true)
	s.log.WithContext(ctx).WithField("account_id", acct.ID).Info("account registered")
	return s.result(acct.ID, acct.Name, acct.Email)
}

// Login checks credentials and returns a fresh token. Unknown emails,
// inactive accounts and wrong passwords all fail the same way.
func (s *Service) Login(ctx context.Context, in LoginInput) (Result, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in, loginMessages); err != nil {
		return Result{}, err
	}

	creds, err := s.accounts.GetCredentialsByEmail(ctx, in.Email)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return Result{}, s.rejectLogin(ctx, in.Email, "unknown_email")
		}
		return Result{}, errors.Store("load credentials", err)
	}
	if !creds.IsActive {
		return Result{}, s.rejectLogin(ctx, in.Email, "inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(in.Password)); err != nil {
		return Result{}, s.rejectLogin(ctx, in.Email, "password_mismatch")
	}

	if err := s.accounts.TouchLastLogin(ctx, creds.ID, s.now()); err != nil {
		return Result{}, errors.Store("record login", err)
	}
	metrics.RecordAuthAttempt("login", true)
	return s.result(creds.ID, creds.Name, creds.Email)
}

func (s *Service) rejectLogin(ctx context.Context, email, reason string) error {
	metrics.RecordAuthAttempt("login", false)
	s.log.LogSecurityEvent(ctx, "login_failed", map[string]interface{}{
		"email":  email,
		"reason": reason,
	})
	return errors.Unauthorized(invalidCredentials)
}

// Verify parses a bearer token. An empty token is an Unauthorized error; a
// malformed, forged or expired one is InvalidToken.
func (s *Service) Verify(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.Unauthorized("Access token required")
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.opts.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.opts.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.InvalidToken(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, errors.InvalidToken(nil)
	}
	return claims, nil
}

// Profile returns the public account for id.
func (s *Service) Profile(ctx context.Context, id string) (account.Account, error) {
	acct, err := s.accounts.GetAccount(ctx, id)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return account.Account{}, errors.NotFound("User")
		}
		return account.Account{}, errors.Store("load account", err)
	}
	return acct, nil
}

// IssueToken signs a token for the given identity.
func (s *Service) IssueToken(id, email, name string) (string, error) {
	now := s.now()
	claims := Claims{
		ID:    id,
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			Issuer:    s.opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.Secret))
	if err != nil {
		return "", errors.Internal("Failed to issue token", err)
	}
	return signed, nil
}

func (s *Service) result(id, name, email string) (Result, error) {
	token, err := s.IssueToken(id, email, name)
	if err != nil {
		return Result{}, err
	}
	return Result{Token: token, User: Identity{ID: id, Name: name, Email: email}}, nil
}
