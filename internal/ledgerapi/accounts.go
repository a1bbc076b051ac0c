package ledgerapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pembukuan-dev/pembukuan/internal/log"
	"github.com/pembukuan-dev/pembukuan/internal/model"
)

// AccountCache keeps a fetched chart of accounts between client instances.
// LoadAccounts reports a miss with ok false; expiry is the cache's concern.
type AccountCache interface {
	LoadAccounts(ctx context.Context, key string) (accts []model.Account, ok bool, err error)
	SaveAccounts(ctx context.Context, key string, accts []model.Account) error
	DeleteAccounts(ctx context.Context, key string) error
}

// Accounts returns the chart of accounts, from the configured AccountCache
// when it holds one. Cache failures are logged and fall through to the API.
func (c *Client) Accounts(ctx context.Context) ([]model.Account, error) {
	key, cached := c.accountsKey()
	if cached {
		accts, ok, err := c.accounts.LoadAccounts(ctx, key)
		if err != nil {
			c.cacheWarn(ctx, "reading account cache failed", err)
		} else if ok {
			return accts, nil
		}
	}

	var accts []model.Account
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, nil, &accts); err != nil {
		return nil, err
	}
	if cached {
		if err := c.accounts.SaveAccounts(ctx, key, accts); err != nil {
			c.cacheWarn(ctx, "writing account cache failed", err)
		}
	}
	return accts, nil
}

// InvalidateAccounts drops the cached chart of accounts so the next
// Accounts call asks the API.
func (c *Client) InvalidateAccounts(ctx context.Context) error {
	key, cached := c.accountsKey()
	if !cached {
		return nil
	}
	if err := c.accounts.DeleteAccounts(ctx, key); err != nil {
		return fmt.Errorf("invalidating account cache: %w", err)
	}
	return nil
}

// accountsKey scopes cached charts to the profile, deployment and entity
// so switching any of them never serves another ledger's accounts.
func (c *Client) accountsKey() (string, bool) {
	if c.accounts == nil || c.sess == nil {
		return "", false
	}
	return fmt.Sprintf("%s|%s|%d", c.sess.Profile, c.baseURL, c.sess.EntityID), true
}

func (c *Client) cacheWarn(ctx context.Context, msg string, err error) {
	c.log.WithComponent(log.ComponentCache).WarnContext(ctx, msg, log.FieldError, err)
}
