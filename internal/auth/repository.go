package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository stores attempt state and per-IP login limits in Postgres.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *Repository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM auth_state WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("query auth state %s: %w", key, err)
	}
	return value, true, nil
}

func (r *Repository) Set(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_state (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, value, r.now()); err != nil {
		return fmt.Errorf("upsert auth state %s: %w", key, err)
	}
	return nil
}

func (r *Repository) Remove(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete auth state %s: %w", key, err)
	}
	return nil
}

func (r *Repository) AllowLoginIP(ctx context.Context, ip string, maxHits int, window time.Duration, now time.Time) (bool, time.Duration, error) {
	threshold := now.UTC().Add(-window)

	var hits int
	var windowStartedAt time.Time
	err := r.db.QueryRowContext(ctx, `
		WITH upsert AS (
			INSERT INTO auth_login_ip_limits (ip, window_started_at, hits, updated_at)
			VALUES ($1, $2, 1, $2)
			ON CONFLICT (ip) DO UPDATE
			SET
				hits = CASE
					WHEN auth_login_ip_limits.window_started_at <= $3 THEN 1
					ELSE auth_login_ip_limits.hits + 1
				END,
				window_started_at = CASE
					WHEN auth_login_ip_limits.window_started_at <= $3 THEN $2
					ELSE auth_login_ip_limits.window_started_at
				END,
				updated_at = $2
			RETURNING hits, window_started_at
		)
		SELECT hits, window_started_at FROM upsert
	`, ip, now.UTC(), threshold).Scan(&hits, &windowStartedAt)
	if err != nil {
		return false, 0, fmt.Errorf("upsert login ip rate limit: %w", err)
	}

	if hits <= maxHits {
		return true, 0, nil
	}

	retryAfter := windowStartedAt.Add(window).Sub(now.UTC())
	if retryAfter < time.Second {
		retryAfter = time.Second
	}

	return false, retryAfter, nil
}

// CleanupStaleAuthData deletes attempt rows and IP limit rows untouched for
// longer than retention, at most batchSize of each per call.
func (r *Repository) CleanupStaleAuthData(ctx context.Context, retention time.Duration, batchSize int) (CleanupResult, error) {
	retention, batchSize = cleanupDefaults(retention, batchSize)
	cutoff := r.now().Add(-retention)

	deletedState, err := r.deleteStale(ctx, "auth_state", "key", cutoff, batchSize)
	if err != nil {
		return CleanupResult{}, err
	}
	deletedIPLimits, err := r.deleteStale(ctx, "auth_login_ip_limits", "ip", cutoff, batchSize)
	if err != nil {
		return CleanupResult{}, err
	}

	return CleanupResult{
		DeletedAttemptState: deletedState,
		DeletedIPLimits:     deletedIPLimits,
	}, nil
}

// deleteStale is only called with the fixed table and column names above.
func (r *Repository) deleteStale(ctx context.Context, table, keyColumn string, cutoff time.Time, batchSize int) (int64, error) {
	query := fmt.Sprintf(`
		WITH stale AS (
			SELECT %[2]s
			FROM %[1]s
			WHERE updated_at < $1
			ORDER BY updated_at ASC
			LIMIT $2
		)
		DELETE FROM %[1]s t
		USING stale
		WHERE t.%[2]s = stale.%[2]s
	`, table, keyColumn)

	res, err := r.db.ExecContext(ctx, query, cutoff, batchSize)
	if err != nil {
		return 0, fmt.Errorf("delete stale %s: %w", table, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("stale %s rows affected: %w", table, err)
	}

	return affected, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
