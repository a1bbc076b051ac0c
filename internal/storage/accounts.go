package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pembukuan-dev/pembukuan/internal/ledgerapi"
	"github.com/pembukuan-dev/pembukuan/internal/model"
)

// AccountCache keeps charts of accounts in the accounts_cache table.
// Entries older than the TTL are misses.
type AccountCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

var _ ledgerapi.AccountCache = (*AccountCache)(nil)

// AccountCache returns a cache whose entries live for ttl.
func (d *DB) AccountCache(ttl time.Duration) *AccountCache {
	return &AccountCache{db: d.db, ttl: ttl, now: time.Now}
}

// LoadAccounts implements ledgerapi.AccountCache.
func (c *AccountCache) LoadAccounts(ctx context.Context, key string) ([]model.Account, bool, error) {
	var payload, fetched string
	err := c.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM accounts_cache WHERE cache_key = ?`, key).Scan(&payload, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load cached accounts: %w", err)
	}

	at, err := time.Parse(time.RFC3339Nano, fetched)
	if err != nil {
		return nil, false, fmt.Errorf("load cached accounts: fetched_at: %w", err)
	}
	if !c.now().Before(at.Add(c.ttl)) {
		return nil, false, nil
	}

	var accts []model.Account
	if err := json.Unmarshal([]byte(payload), &accts); err != nil {
		return nil, false, fmt.Errorf("load cached accounts: %w", err)
	}
	return accts, true, nil
}

// SaveAccounts implements ledgerapi.AccountCache.
func (c *AccountCache) SaveAccounts(ctx context.Context, key string, accts []model.Account) error {
	payload, err := json.Marshal(accts)
	if err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO accounts_cache (cache_key, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at`,
		key, string(payload), c.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save cached accounts: %w", err)
	}
	return nil
}

// DeleteAccounts implements ledgerapi.AccountCache. A missing key is not
// an error.
func (c *AccountCache) DeleteAccounts(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM accounts_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("delete cached accounts: %w", err)
	}
	return nil
}
