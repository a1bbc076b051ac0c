package ledgerapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pembukuan-dev/pembukuan/internal/model"
)

// UMKMs lists every registered UMKM.
func (c *Client) UMKMs(ctx context.Context) ([]model.UMKM, error) {
	var out []model.UMKM
	if err := c.do(ctx, http.MethodGet, "/umkms", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UMKM fetches one UMKM.
func (c *Client) UMKM(ctx context.Context, id int) (model.UMKM, error) {
	var out model.UMKM
	if err := c.do(ctx, http.MethodGet, umkmPath(id), nil, nil, &out); err != nil {
		return model.UMKM{}, err
	}
	return out, nil
}

// CreateUMKM registers a UMKM on its behalf.
func (c *Client) CreateUMKM(ctx context.Context, reg model.Registration) (model.UMKM, error) {
	var out model.UMKM
	if err := c.do(ctx, http.MethodPost, "/umkms", nil, reg, &out); err != nil {
		return model.UMKM{}, err
	}
	return out, nil
}

// UpdateUMKM replaces a UMKM's profile.
func (c *Client) UpdateUMKM(ctx context.Context, id int, u model.UMKM) (model.UMKM, error) {
	var out model.UMKM
	if err := c.do(ctx, http.MethodPut, umkmPath(id), nil, u, &out); err != nil {
		return model.UMKM{}, err
	}
	return out, nil
}

// DeleteUMKM removes a UMKM.
func (c *Client) DeleteUMKM(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, umkmPath(id), nil, nil, nil)
}

// ApproveUMKM approves a pending registration.
func (c *Client) ApproveUMKM(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPost, umkmPath(id)+"/approve", nil, nil, nil)
}

// RejectUMKM rejects a pending registration.
func (c *Client) RejectUMKM(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPost, umkmPath(id)+"/reject", nil, nil, nil)
}

// AdminSummary fetches the per-UMKM financial summary with its totals.
func (c *Client) AdminSummary(ctx context.Context, p Period) (model.AdminSummary, error) {
	var out model.AdminSummary
	err := c.do(ctx, http.MethodGet, "/admin/report/summary-all", p.values(), nil, &out)
	return out, err
}

// DownloadAdminReport streams the consolidated spreadsheet for a period.
func (c *Client) DownloadAdminReport(ctx context.Context, p Period) (*Download, error) {
	return c.download(ctx, "/admin/report/download", p.values())
}

func umkmPath(id int) string {
	return fmt.Sprintf("/umkms/%d", id)
}
