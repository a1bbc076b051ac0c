package ledgerapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/pembukuan-dev/pembukuan/internal/model"
)

// UMKMLogin is the response of POST /umkm/login.
type UMKMLogin struct {
	Token string     `json:"token"`
	UMKM  model.UMKM `json:"data"`
}

// AdminLogin is the response of POST /admin/login.
type AdminLogin struct {
	Token string      `json:"token"`
	Admin model.Admin `json:"admin"`
}

var errNoToken = errors.New("login response carried no token")

// LoginUMKM exchanges a NIB and password for a token.
func (c *Client) LoginUMKM(ctx context.Context, nib, password string) (UMKMLogin, error) {
	var out UMKMLogin
	body := map[string]string{"nib": nib, "password": password}
	if err := c.doPlain(ctx, http.MethodPost, "/umkm/login", body, &out); err != nil {
		return UMKMLogin{}, err
	}
	if out.Token == "" {
		return UMKMLogin{}, errNoToken
	}
	return out, nil
}

// RegisterUMKM submits a self-service registration. The UMKM can log in
// once an admin approves it.
func (c *Client) RegisterUMKM(ctx context.Context, reg model.Registration) error {
	return c.do(ctx, http.MethodPost, "/umkm/register", nil, reg, nil)
}

// LogoutUMKM revokes the session's token on the server.
func (c *Client) LogoutUMKM(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/umkm/logout", nil, nil, nil)
}

// LoginAdmin exchanges an email and password for a token.
func (c *Client) LoginAdmin(ctx context.Context, email, password string) (AdminLogin, error) {
	var out AdminLogin
	body := map[string]string{"email": email, "password": password}
	if err := c.doPlain(ctx, http.MethodPost, "/admin/login", body, &out); err != nil {
		return AdminLogin{}, err
	}
	if out.Token == "" {
		return AdminLogin{}, errNoToken
	}
	return out, nil
}
