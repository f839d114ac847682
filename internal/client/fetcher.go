package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"FormatConverter/internal/domain"
)

const tokenHeader = "X-Request-Token"

// HTTPError is a non-2xx reply from the conversion endpoint.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("conversion endpoint returned %d", e.Code)
	}
	return fmt.Sprintf("conversion endpoint returned %d: %s", e.Code, e.Message)
}

// HTTPFetcher posts conversion requests to a running server.
type HTTPFetcher struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher targets baseURL + "/api/convert" with the given request token.
func NewHTTPFetcher(baseURL, token string, httpClient *http.Client) *HTTPFetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPFetcher{
		endpoint:   strings.TrimRight(baseURL, "/") + "/api/convert",
		token:      token,
		httpClient: httpClient,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, articleID int64, format domain.Format) (string, error) {
	body, err := json.Marshal(map[string]any{"article_id": articleID, "format": format})
	if err != nil {
		return "", fmt.Errorf("marshal convert request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tokenHeader, f.token)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send convert request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read convert response: %w", err)
	}

	var payload struct {
		Content string `json:"content"`
		Error   string `json:"error"`
	}
	decodeErr := json.Unmarshal(raw, &payload)

	if resp.StatusCode >= http.StatusBadRequest {
		return "", &HTTPError{Code: resp.StatusCode, Message: payload.Error}
	}
	if decodeErr != nil {
		return "", &HTTPError{Code: resp.StatusCode, Message: "Conversion failed"}
	}
	return payload.Content, nil
}

// FetchToken asks the server for a fresh request token.
func FetchToken(ctx context.Context, baseURL string, httpClient *http.Client) (string, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/api/token", nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{Code: resp.StatusCode}
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	return payload.Token, nil
}
