// Package session is the credential store of the agent client.
//
// Tokens live in the cookie tier with their own expirations (7 days for the
// access token, 30 days for the refresh token); the agent profile lives in
// the local-storage tier as JSON under key "user". Both tiers share one
// SQLite database, so a credential pair is written in a single transaction.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agentportal/internal/client/models"
	"github.com/dmitrijs2005/agentportal/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/agentportal/internal/client/repositories/localstore"
	"github.com/dmitrijs2005/agentportal/internal/dbx"
	"github.com/dmitrijs2005/agentportal/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	UserKey            = "user"

	AccessTokenTTL  = 7 * 24 * time.Hour
	RefreshTokenTTL = 30 * 24 * time.Hour
)

var ErrIncompleteCredentials = errors.New("access and refresh tokens must both be set")

type Store struct {
	db     *sql.DB
	secure bool
	now    func() time.Time
	log    logging.Logger
}

type Option func(*Store)

// WithClock overrides the time source used for cookie expirations.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore returns a Store over db. secure marks written cookies as
// secure-only and should be set for production deployments.
func NewStore(db *sql.DB, secure bool, opts ...Option) *Store {
	s := &Store{db: db, secure: secure, now: time.Now, log: logging.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) cookie(name, value string, ttl time.Duration) *models.Cookie {
	return &models.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		SameSite: models.SameSiteLax,
		Secure:   s.secure,
		Expires:  s.now().Add(ttl),
	}
}

// Save writes both tokens and the profile. A session without a profile
// removes any profile stored by an earlier session.
func (s *Store) Save(ctx context.Context, c models.Credentials) error {
	if c.AccessToken == "" || c.RefreshToken == "" {
		return ErrIncompleteCredentials
	}

	var profile []byte
	if c.User != nil {
		b, err := json.Marshal(c.User)
		if err != nil {
			return fmt.Errorf("encode profile: %w", err)
		}
		profile = b
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		jar := cookies.NewSQLiteRepository(tx)
		if err := jar.Set(ctx, s.cookie(AccessTokenCookie, c.AccessToken, AccessTokenTTL)); err != nil {
			return err
		}
		if err := jar.Set(ctx, s.cookie(RefreshTokenCookie, c.RefreshToken, RefreshTokenTTL)); err != nil {
			return err
		}
		users := localstore.NewSQLiteRepository(tx)
		if profile == nil {
			return users.Delete(ctx, UserKey)
		}
		return users.Set(ctx, UserKey, string(profile))
	})
}

func (s *Store) token(ctx context.Context, name string) (string, error) {
	c, err := cookies.NewSQLiteRepository(s.db).Get(ctx, name)
	if err != nil {
		return "", err
	}
	if c == nil || c.Expired(s.now()) {
		return "", nil
	}
	return c.Value, nil
}

// AccessToken returns the stored access token, or "" when absent or expired.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.token(ctx, AccessTokenCookie)
}

// RefreshToken returns the stored refresh token, or "" when absent or expired.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.token(ctx, RefreshTokenCookie)
}

// IsAuthenticated reports whether a non-empty access token is stored. The
// token itself is not validated.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	tok, err := s.AccessToken(ctx)
	if err != nil {
		s.log.Error(ctx, "read access token", "error", err)
		return false
	}
	return tok != ""
}

// Profile returns the stored agent profile. A missing or undecodable record
// yields (nil, nil).
func (s *Store) Profile(ctx context.Context) (*models.Profile, error) {
	raw, ok, err := localstore.NewSQLiteRepository(s.db).Get(ctx, UserKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var p models.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.log.Warn(ctx, "stored profile is not valid JSON", "error", err)
		return nil, nil
	}
	return &p, nil
}

// TokenExpiry reads the exp claim of the stored access token without
// verifying its signature. ok is false when there is no token or no claim.
func (s *Store) TokenExpiry(ctx context.Context) (exp time.Time, ok bool, err error) {
	tok, err := s.AccessToken(ctx)
	if err != nil || tok == "" {
		return time.Time{}, false, err
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		s.log.Debug(ctx, "access token is not a JWT", "error", err)
		return time.Time{}, false, nil
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false, nil
	}
	return claims.ExpiresAt.Time, true, nil
}

// Clear deletes both token cookies and the stored profile.
func (s *Store) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		jar := cookies.NewSQLiteRepository(tx)
		if err := jar.Delete(ctx, AccessTokenCookie); err != nil {
			return err
		}
		if err := jar.Delete(ctx, RefreshTokenCookie); err != nil {
			return err
		}
		return localstore.NewSQLiteRepository(tx).Delete(ctx, UserKey)
	})
}
