package ledgerapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pembukuan-dev/pembukuan/internal/model"
	"github.com/pembukuan-dev/pembukuan/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, r chi.Router, sess *session.Session, cfg Config) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL + "/api/"
	return New(cfg, sess)
}

func testSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New("umkm", session.RoleUMKM, "tok-123", "Warung Sari")
	require.NoError(t, err)
	return s
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	r := chi.NewRouter()
	r.Get("/api/accounts", func(w http.ResponseWriter, req *http.Request) {
		got = req.Header.Clone()
		writeJSON(w, http.StatusOK, []model.Account{})
	})

	c := newTestClient(t, r, testSession(t), Config{})
	_, err := c.Accounts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	_, err = uuid.Parse(got.Get(HeaderRequestID))
	assert.NoError(t, err, "request ID should be a UUID")
}

func TestNoSessionSendsNoAuthorization(t *testing.T) {
	var auth string
	r := chi.NewRouter()
	r.Post("/api/umkm/register", func(w http.ResponseWriter, req *http.Request) {
		auth = req.Header.Get("Authorization")
		writeJSON(w, http.StatusCreated, map[string]string{"message": "ok"})
	})

	c := newTestClient(t, r, nil, Config{})
	require.NoError(t, c.RegisterUMKM(context.Background(), model.Registration{NIB: "123"}))
	assert.Empty(t, auth)
}

func TestLoginUMKM(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/umkm/login", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "9120001", body["nib"])
		assert.Equal(t, "rahasia", body["password"])
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "abc",
			"data":  map[string]any{"id": 7, "nama_umkm": "Warung Sari", "nib": "9120001"},
		})
	})

	c := newTestClient(t, r, nil, Config{})
	login, err := c.LoginUMKM(context.Background(), "9120001", "rahasia")
	require.NoError(t, err)
	assert.Equal(t, "abc", login.Token)
	assert.Equal(t, 7, login.UMKM.ID)
	assert.Equal(t, "Warung Sari", login.UMKM.Name)
}

func TestLoginWithoutToken(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/admin/login", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"admin": map[string]any{"id": 1}})
	})

	c := newTestClient(t, r, nil, Config{})
	_, err := c.LoginAdmin(context.Background(), "a@b.c", "x")
	assert.ErrorIs(t, err, errNoToken)
}

func TestUnauthorizedRunsHook(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/transactions", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
	})

	var ended *session.Session
	sess := testSession(t)
	c := newTestClient(t, r, sess, Config{
		OnUnauthorized: func(_ context.Context, s *session.Session) { ended = s },
	})

	_, err := c.Transactions(context.Background(), TransactionFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Same(t, sess, ended)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Unauthenticated.", apiErr.Message)
	assert.NotEmpty(t, apiErr.RequestID)
}

func TestValidationErrorFields(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/transactions", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "The given data was invalid.",
			"errors": map[string][]string{
				"date":    {"The date field is required."},
				"details": {"Debit and credit must balance."},
			},
		})
	})

	hookCalled := false
	c := newTestClient(t, r, testSession(t), Config{
		OnUnauthorized: func(context.Context, *session.Session) { hookCalled = true },
	})
	_, err := c.CreateTransaction(context.Background(), model.CreateTransactionRequest{})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Len(t, apiErr.Fields, 2)
	assert.Equal(t,
		"ledger API error (status 422): The given data was invalid. (date: The date field is required.; details: Debit and credit must balance.)",
		apiErr.Error())
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.False(t, hookCalled)
}

func TestPlainTextError(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/umkms", func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	})

	c := newTestClient(t, r, testSession(t), Config{})
	_, err := c.UMKMs(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "gateway down", apiErr.Message)
}

func TestEnvelopeUnwrapping(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/transactions", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "3", req.URL.Query().Get("month"))
		assert.Equal(t, "2024", req.URL.Query().Get("year"))
		assert.Empty(t, req.URL.Query().Get("umkm_id"))
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []map[string]any{{
				"id": 1, "date": "2024-03-05T00:00:00.000000Z", "description": "Penjualan",
				"is_dividend": 0,
				"details": []map[string]any{
					{"account_id": 101, "debit": "150000.00", "credit": "0.00"},
					{"account_id": 401, "debit": 0, "credit": 150000},
				},
			}},
		})
	})
	r.Get("/api/transactions/{id}", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "9", chi.URLParam(req, "id"))
		writeJSON(w, http.StatusOK, map[string]any{"id": 9, "description": "bare"})
	})

	c := newTestClient(t, r, testSession(t), Config{})
	txs, err := c.Transactions(context.Background(), TransactionFilter{Month: 3, Year: 2024})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	debit, credit := txs[0].Totals()
	assert.True(t, debit.Equal(decimal.NewFromInt(150000)))
	assert.True(t, credit.Equal(debit))

	tx, err := c.Transaction(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "bare", tx.Description)
}

type memCache struct {
	entries map[string][]model.Account
	keys    []string
	err     error
}

func (m *memCache) LoadAccounts(_ context.Context, key string) ([]model.Account, bool, error) {
	m.keys = append(m.keys, key)
	if m.err != nil {
		return nil, false, m.err
	}
	accts, ok := m.entries[key]
	return accts, ok, nil
}

func (m *memCache) SaveAccounts(_ context.Context, key string, accts []model.Account) error {
	if m.err != nil {
		return m.err
	}
	if m.entries == nil {
		m.entries = make(map[string][]model.Account)
	}
	m.entries[key] = accts
	return nil
}

func (m *memCache) DeleteAccounts(_ context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func accountsRouter(hits *atomic.Int32) chi.Router {
	r := chi.NewRouter()
	r.Get("/api/accounts", func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, []model.Account{{ID: 101, Name: "Kas", Type: model.AccountTypeAsset}})
	})
	return r
}

func TestAccountsCached(t *testing.T) {
	var hits atomic.Int32
	cache := &memCache{}
	sess := testSession(t)
	sess.EntityID = 7
	ctx := context.Background()

	srv := httptest.NewServer(accountsRouter(&hits))
	t.Cleanup(srv.Close)
	cfg := Config{BaseURL: srv.URL + "/api/", AccountCache: cache}

	// Each CLI invocation builds a fresh client over the same cache.
	for i := 0; i < 3; i++ {
		accts, err := New(cfg, sess).Accounts(ctx)
		require.NoError(t, err)
		require.Len(t, accts, 1)
	}
	assert.Equal(t, int32(1), hits.Load())
	require.NotEmpty(t, cache.keys)
	assert.Equal(t, "umkm|"+srv.URL+"/api|7", cache.keys[0])

	other := *sess
	other.EntityID = 8
	_, err := New(cfg, &other).Accounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "another entity never sees this chart")

	c := New(cfg, sess)
	require.NoError(t, c.InvalidateAccounts(ctx))
	_, err = c.Accounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestAccountsCacheFailureFallsThrough(t *testing.T) {
	var hits atomic.Int32
	cache := &memCache{err: errors.New("disk full")}
	c := newTestClient(t, accountsRouter(&hits), testSession(t), Config{AccountCache: cache})

	accts, err := c.Accounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, accts, 1)
	assert.Equal(t, int32(1), hits.Load())
}

func TestAccountsWithoutCache(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, accountsRouter(&hits), testSession(t), Config{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.Accounts(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), hits.Load())
	assert.NoError(t, c.InvalidateAccounts(ctx))
}

func TestDeleteTransaction(t *testing.T) {
	deleted := ""
	r := chi.NewRouter()
	r.Delete("/api/transactions/{id}", func(w http.ResponseWriter, req *http.Request) {
		deleted = chi.URLParam(req, "id")
		w.WriteHeader(http.StatusNoContent)
	})

	c := newTestClient(t, r, testSession(t), Config{})
	require.NoError(t, c.DeleteTransaction(context.Background(), 12))
	assert.Equal(t, "12", deleted)
}

func statementsRouter(failCashFlow bool) chi.Router {
	r := chi.NewRouter()
	r.Get("/api/reports/income-statement", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"revenue": 500000, "expense": 200000, "netIncome": 300000})
	})
	r.Get("/api/reports/balance-sheet", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"total_assets": 1000000, "total_liabilities": 400000, "total_equity": 600000,
			"liability": []map[string]any{{"nama": "Utang Usaha", "nilai": 400000}},
		})
	})
	r.Get("/api/reports/cash-flow", func(w http.ResponseWriter, req *http.Request) {
		if failCashFlow {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"operating": 300000, "cash_start": 100000, "net_change_in_cash": 300000})
	})
	r.Get("/api/reports/retained-earnings", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"beginning": 0, "net_income": 300000, "dividends": 0})
	})
	return r
}

func TestFetchStatements(t *testing.T) {
	c := newTestClient(t, statementsRouter(false), testSession(t), Config{})

	st, err := c.FetchStatements(context.Background(), Period{Month: 5, Year: 2024})
	require.NoError(t, err)
	assert.True(t, st.Income.NetIncome.Decimal.Equal(decimal.NewFromInt(300000)))
	require.Len(t, st.Balance.Liabilities, 1)
	assert.Equal(t, "Utang Usaha", st.Balance.Liabilities[0].Name)
	assert.False(t, st.CashFlow.CashEnd.Valid)
	assert.True(t, st.Retained.Income.Equal(decimal.NewFromInt(300000)))
}

func TestFetchStatementsFirstErrorWins(t *testing.T) {
	c := newTestClient(t, statementsRouter(true), testSession(t), Config{})

	st, err := c.FetchStatements(context.Background(), Period{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "boom", apiErr.Message)
	assert.Equal(t, Statements{}, st)
}

func TestDownloadExcel(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/reports/download-excel", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "4", req.URL.Query().Get("month"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="laporan_april.xlsx"`)
		_, _ = w.Write([]byte("PK\x03\x04"))
	})

	c := newTestClient(t, r, testSession(t), Config{})
	d, err := c.DownloadExcel(context.Background(), 4)
	require.NoError(t, err)
	defer d.Close()

	body, err := io.ReadAll(d)
	require.NoError(t, err)
	assert.Equal(t, "PK\x03\x04", string(body))
	assert.Equal(t, "laporan_april.xlsx", d.Filename)
}

func TestAdminEndpoints(t *testing.T) {
	var calls []string
	record := func(w http.ResponseWriter, req *http.Request) {
		calls = append(calls, req.Method+" "+req.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": 3, "nama_umkm": "Toko Maju", "nib": "77"}})
	}
	r := chi.NewRouter()
	r.Route("/api/umkms", func(r chi.Router) {
		r.Post("/", record)
		r.Put("/{id}", record)
		r.Delete("/{id}", record)
		r.Post("/{id}/approve", record)
		r.Post("/{id}/reject", record)
	})

	c := newTestClient(t, r, testSession(t), Config{})
	ctx := context.Background()

	u, err := c.CreateUMKM(ctx, model.Registration{Name: "Toko Maju"})
	require.NoError(t, err)
	assert.Equal(t, 3, u.ID)
	_, err = c.UpdateUMKM(ctx, 3, u)
	require.NoError(t, err)
	require.NoError(t, c.ApproveUMKM(ctx, 3))
	require.NoError(t, c.RejectUMKM(ctx, 3))
	require.NoError(t, c.DeleteUMKM(ctx, 3))

	assert.Equal(t, []string{
		"POST /api/umkms",
		"PUT /api/umkms/3",
		"POST /api/umkms/3/approve",
		"POST /api/umkms/3/reject",
		"DELETE /api/umkms/3",
	}, calls)
}

func TestAdminSummary(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/admin/report/summary-all", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "1", req.URL.Query().Get("month"))
		writeJSON(w, http.StatusOK, map[string]any{
			"summary_per_umkm": []map[string]any{{"nama_umkm": "A", "revenue": 10}, {"nama_umkm": "B", "revenue": 5}},
			"total_all":        map[string]any{"revenue": 15},
		})
	})

	c := newTestClient(t, r, testSession(t), Config{})
	s, err := c.AdminSummary(context.Background(), Period{Month: 1, Year: 2025})
	require.NoError(t, err)
	assert.Len(t, s.PerUMKM, 2)
	assert.True(t, s.Total.Revenue.Equal(decimal.NewFromInt(15)))
}
