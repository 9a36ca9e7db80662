// Package cookies persists the cookie tier of the credential store.
package cookies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agentportal/internal/client/models"
	"github.com/dmitrijs2005/agentportal/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get returns the named cookie, or (nil, nil) when it is not stored.
// Expiry is not checked here.
func (r *SQLiteRepository) Get(ctx context.Context, name string) (*models.Cookie, error) {
	var (
		c       models.Cookie
		secure  int
		expires int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT name, value, path, same_site, secure, expires_at FROM cookies WHERE name = ?`, name,
	).Scan(&c.Name, &c.Value, &c.Path, &c.SameSite, &secure, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cookie[%s]: %w", name, err)
	}
	c.Secure = secure != 0
	c.Expires = time.Unix(expires, 0)
	return &c, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, c *models.Cookie) error {
	secure := 0
	if c.Secure {
		secure = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cookies (name, value, path, same_site, secure, expires_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			path = excluded.path,
			same_site = excluded.same_site,
			secure = excluded.secure,
			expires_at = excluded.expires_at
	`, c.Name, c.Value, c.Path, string(c.SameSite), secure, c.Expires.Unix())
	if err != nil {
		return fmt.Errorf("failed to set cookie[%s]: %w", c.Name, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cookies WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete cookie[%s]: %w", name, err)
	}
	return nil
}
