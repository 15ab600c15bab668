package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/metinatakli/movie-search/api"
	"github.com/metinatakli/movie-search/internal/config"
	"github.com/metinatakli/movie-search/internal/domain"
	"github.com/metinatakli/movie-search/internal/mocks"
	"github.com/metinatakli/movie-search/internal/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		Port: 3000,
		Env:  "test",
		Query: config.QueryConfig{
			StaleTime:  time.Minute,
			CacheTime:  5 * time.Minute,
			CacheSize:  16,
			RenderWait: 2 * time.Second,
		},
		Session: config.SessionConfig{
			Capacity:    16,
			IdleTimeout: time.Minute,
		},
		Notify: config.NotifyConfig{
			TTL:      time.Minute,
			Capacity: 16,
		},
	}
}

func newTestApplication(t *testing.T, opts ...func(*Application)) *Application {
	t.Helper()

	cfg := testConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app, err := NewApp(cfg, logger, nil, validator.NewValidator(), NewSessionManager(nil, time.Minute), &mocks.MockMovieFetcher{})
	require.NoError(t, err)

	for _, opt := range opts {
		opt(app)
	}

	t.Cleanup(app.Close)

	return app
}

func withFetcher(fetcher domain.MovieFetcher) func(*Application) {
	return func(app *Application) {
		app.fetcher = fetcher
	}
}

// recordingFetcher answers every search with fn and remembers the keys asked for.
type recordingFetcher struct {
	mu   sync.Mutex
	keys []domain.SearchKey
	fn   func(query string, page int) (*domain.SearchResult, error)
}

func (f *recordingFetcher) SearchMovies(_ context.Context, query string, page int) (*domain.SearchResult, error) {
	f.mu.Lock()
	f.keys = append(f.keys, domain.SearchKey{Query: query, Page: page})
	f.mu.Unlock()

	return f.fn(query, page)
}

func (f *recordingFetcher) Keys() []domain.SearchKey {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]domain.SearchKey(nil), f.keys...)
}

func newResult(page, count, totalPages int) *domain.SearchResult {
	movies := make([]domain.Movie, count)
	for i := range movies {
		id := page*100 + i + 1
		movies[i] = domain.Movie{
			ID:           id,
			Title:        fmt.Sprintf("Movie %d", id),
			Overview:     fmt.Sprintf("Overview %d", id),
			PosterPath:   fmt.Sprintf("/poster%d.jpg", id),
			BackdropPath: fmt.Sprintf("/backdrop%d.jpg", id),
			ReleaseDate:  "1999-03-30",
			VoteAverage:  decimal.RequireFromString("8.2"),
			VoteCount:    100,
		}
	}

	return &domain.SearchResult{
		Page:         page,
		Results:      movies,
		TotalPages:   totalPages,
		TotalResults: totalPages * count,
	}
}

// testClient talks to a running test server and keeps the session cookie
// between requests. Redirects are not followed.
type testClient struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

func newTestClient(t *testing.T, app *Application) *testClient {
	t.Helper()

	server := httptest.NewServer(app.Routes())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testClient{
		t:      t,
		server: server,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *testClient) do(req *http.Request) (int, string) {
	c.t.Helper()

	res, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(c.t, err)

	return res.StatusCode, string(body)
}

func (c *testClient) get(path string) (int, string) {
	c.t.Helper()

	req, err := http.NewRequest(http.MethodGet, c.server.URL+path, nil)
	require.NoError(c.t, err)

	return c.do(req)
}

func (c *testClient) postForm(path string, form url.Values) (int, string) {
	c.t.Helper()

	req, err := http.NewRequest(http.MethodPost, c.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req)
}

func (c *testClient) sendJSON(method, path string, body any) (int, string) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(js)
	}

	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req)
}

func (c *testClient) state() api.StateResponse {
	c.t.Helper()

	status, body := c.get("/api/v1/state")
	require.Equal(c.t, http.StatusOK, status, body)

	var resp api.StateResponse
	require.NoError(c.t, json.Unmarshal([]byte(body), &resp))

	return resp
}

func checkErrorResponse(t *testing.T, status int, body string, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	t.Helper()

	if status != tt.wantStatus {
		t.Fatalf("Status = %d, want %d (body: %s)", status, tt.wantStatus, body)
	}

	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	switch tt.wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.Unmarshal([]byte(body), &validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if tt.wantErrMessage != "" && !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response %s", tt.wantErrMessage, body)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.Unmarshal([]byte(body), &errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
