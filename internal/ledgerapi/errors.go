package ledgerapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// ErrUnauthorized matches any 401 response. The session that made the
// request is no longer valid.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response from the Ledger API.
type APIError struct {
	Status    int
	Message   string
	Fields    map[string][]string // per-field validation messages
	RequestID string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	return fmt.Sprintf("ledger API error (status %d): %s", e.Status, msg)
}

// Is makes errors.Is(err, ErrUnauthorized) true for 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

type errorResponse struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

// parseError builds an APIError from a failed response.
func parseError(resp *http.Response, requestID string) error {
	apiErr := &APIError{Status: resp.StatusCode, RequestID: requestID}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		apiErr.Message = "failed to read error response"
		return apiErr
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	apiErr.Message = errResp.Message
	if apiErr.Message == "" {
		apiErr.Message = errResp.Error
	}
	apiErr.Fields = errResp.Errors
	return apiErr
}
