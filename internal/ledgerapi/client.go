// Package ledgerapi is a client for the Ledger API, the remote service
// that owns persistence, ledger posting and statement computation.
package ledgerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pembukuan-dev/pembukuan/internal/log"
	"github.com/pembukuan-dev/pembukuan/internal/session"
)

// HeaderRequestID carries the per-request correlation ID.
const HeaderRequestID = "X-Request-ID"

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration // default 30s
	HTTPClient *http.Client
	Logger     *log.Logger

	// AccountCache, when set, serves Accounts across invocations.
	AccountCache AccountCache

	// OnUnauthorized runs after any authenticated request is answered
	// with 401, before the error is returned.
	OnUnauthorized func(ctx context.Context, s *session.Session)
}

// Client talks to one Ledger API deployment on behalf of one session.
// Requests are never retried.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	sess           *session.Session
	log            *log.Logger
	accounts       AccountCache
	onUnauthorized func(context.Context, *session.Session)
}

// New creates a Client. sess may be nil for the unauthenticated login and
// registration calls.
func New(cfg Config, sess *session.Session) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		sess:           sess,
		log:            logger.WithComponent(log.ComponentAPI),
		accounts:       cfg.AccountCache,
		onUnauthorized: cfg.OnUnauthorized,
	}
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *session.Session {
	return c.sess
}

// do sends a request and decodes a 2xx JSON body into out (if non-nil),
// unwrapping a {"data": ...} envelope.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.roundTrip(ctx, method, path, query, body, out, decode)
}

// doPlain is do without envelope unwrapping, for responses whose "data"
// is a sibling of other fields the caller needs.
func (c *Client) doPlain(ctx context.Context, method, path string, body, out any) error {
	return c.roundTrip(ctx, method, path, nil, body, out, json.Unmarshal)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out any, unmarshal func([]byte, any) error) error {
	resp, requestID, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s %s response: %w", method, path, err)
	}
	if err := unmarshal(data, out); err != nil {
		c.log.ErrorContext(ctx, "decoding response failed",
			log.FieldRequestID, requestID, log.FieldMethod, method, log.FieldPath, path, log.FieldError, err)
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// send performs the round trip and returns the response of a 2xx status.
// The caller closes the body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, string, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encoding %s %s request: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sess != nil {
		req.Header.Set("Authorization", c.sess.AuthHeader())
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "request failed",
			log.FieldRequestID, requestID, log.FieldMethod, method, log.FieldPath, path, log.FieldError, err)
		return nil, requestID, fmt.Errorf("%s %s: %w", method, path, err)
	}

	c.log.DebugContext(ctx, "request done",
		log.FieldRequestID, requestID,
		log.FieldMethod, method,
		log.FieldPath, path,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, requestID, nil
	}
	defer resp.Body.Close()

	apiErr := parseError(resp, requestID)
	c.log.ErrorContext(ctx, "request rejected",
		log.FieldRequestID, requestID, log.FieldMethod, method, log.FieldPath, path,
		log.FieldStatusCode, resp.StatusCode, log.FieldError, apiErr)

	if errors.Is(apiErr, ErrUnauthorized) && c.sess != nil && c.onUnauthorized != nil {
		c.onUnauthorized(ctx, c.sess)
	}
	return nil, requestID, apiErr
}

// decode unmarshals data into out, unwrapping a {"data": ...} envelope
// when the body is one.
func decode(data []byte, out any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err == nil {
			inner := bytes.TrimSpace(env.Data)
			if len(inner) > 0 && (inner[0] == '{' || inner[0] == '[') {
				return json.Unmarshal(inner, out)
			}
		}
	}
	return json.Unmarshal(trimmed, out)
}
