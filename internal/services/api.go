package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/spotboard/internal/shared"
)

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the status is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Raw performs an authenticated request and returns the response without mapping its status to an error.
//
// Used by the api command for inspecting endpoints the dashboard does not wrap.
func (s *SpotifyService) Raw(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete:
	default:
		return nil, fmt.Errorf("%w: unsupported method %s", shared.ErrInvalidArgument, method)
	}

	if len(data) > 0 && !json.Valid(data) {
		return nil, fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
	}
	if len(data) == 0 {
		data = nil
	}

	resp, err := s.send(ctx, method, path, data)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &jsonData); err == nil {
			apiResp.IsJSON = true
			apiResp.JSONData = jsonData
		}
	}

	return apiResp, nil
}
