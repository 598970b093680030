// Package remote is the client for the optional multi-device progress backend.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"kidslearning/internal/models"
)

var (
	// ErrNotConfigured is returned by every call when no backend URL is set
	ErrNotConfigured = errors.New("remote backend not configured")
	// ErrNotFound is returned when the backend answers 404
	ErrNotFound = errors.New("not found on remote backend")
)

// APIError is a non-2xx answer from the backend
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote backend returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to the progress backend over REST
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
}

// NewClient creates a client. An empty baseURL yields a disabled client;
// requestsPerSecond <= 0 disables pacing.
func NewClient(baseURL string, requestsPerSecond float64, timeout time.Duration) *Client {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = max(1, int(requestsPerSecond))
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(limit, burst),
		timeout:    timeout,
	}
}

// Enabled reports whether a backend URL is configured
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// FindStudent looks a student up by name
func (c *Client) FindStudent(ctx context.Context, name string) (*models.Student, error) {
	var student models.Student
	path := "/api/backend/students?name=" + url.QueryEscape(name)
	if err := c.do(ctx, http.MethodGet, path, "", nil, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// CreateStudent registers a student and returns its passcode and token
func (c *Client) CreateStudent(ctx context.Context, req models.NewStudentRequest) (*models.StudentCredentials, error) {
	var creds models.StudentCredentials
	if err := c.do(ctx, http.MethodPost, "/api/backend/students", "", req, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Login exchanges a name and passcode for a token
func (c *Client) Login(ctx context.Context, name, passcode string) (*models.StudentCredentials, error) {
	var creds models.StudentCredentials
	body := models.StudentLoginRequest{Name: name, Passcode: passcode}
	if err := c.do(ctx, http.MethodPost, "/api/backend/students/login", "", body, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// AppendProgress records one completion for the student
func (c *Client) AppendProgress(ctx context.Context, token, studentID string, entry models.ActivityAppendRequest) (*models.ActivityRecord, error) {
	var record models.ActivityRecord
	path := "/api/backend/students/" + url.PathEscape(studentID) + "/progress"
	if err := c.do(ctx, http.MethodPost, path, token, entry, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListProgress returns the student's completions ordered by time
func (c *Client) ListProgress(ctx context.Context, token, studentID string) ([]models.ActivityRecord, error) {
	var records []models.ActivityRecord
	path := "/api/backend/students/" + url.PathEscape(studentID) + "/progress"
	if err := c.do(ctx, http.MethodGet, path, token, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.clientFor(ctx, token).Do(req)
	if err != nil {
		return fmt.Errorf("failed to call remote backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// clientFor attaches the bearer token through an oauth2 transport
func (c *Client) clientFor(ctx context.Context, token string) *http.Client {
	if token == "" {
		return c.httpClient
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}

func readErrorMessage(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return string(bytes.TrimSpace(data))
}
