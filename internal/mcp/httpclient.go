package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DaraMoh/solo-gym-app/internal/catalog"
	"github.com/DaraMoh/solo-gym-app/internal/models"
	"github.com/DaraMoh/solo-gym-app/internal/tracker"
)

// HTTPClient implements DataSource by calling the Solo Gym REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale). The server
// decides the user from the connection, so userID arguments are ignored.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey
// is sent on writes.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(req *http.Request, path string, want int) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != want {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	return c.do(req, path, http.StatusOK)
}

func (c *HTTPClient) post(ctx context.Context, path string, v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("httpclient: encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	return c.do(req, path, http.StatusCreated)
}

func (c *HTTPClient) Initialize(ctx context.Context, _, _ string) (*models.UserProfile, error) {
	body, err := c.get(ctx, "/api/v1/profile", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Profile models.UserProfile `json:"profile"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode profile: %w", err)
	}
	return &resp.Profile, nil
}

func (c *HTTPClient) Workouts(ctx context.Context, _ string) ([]models.Workout, error) {
	body, err := c.get(ctx, "/api/v1/workouts", nil)
	if err != nil {
		return nil, err
	}

	var workouts []models.Workout
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return workouts, nil
}

func (c *HTTPClient) Missions(ctx context.Context, _ string, _ time.Time) (*tracker.MissionBoard, error) {
	body, err := c.get(ctx, "/api/v1/missions", nil)
	if err != nil {
		return nil, err
	}

	var board tracker.MissionBoard
	if err := json.Unmarshal(body, &board); err != nil {
		return nil, fmt.Errorf("httpclient: decode missions: %w", err)
	}
	return &board, nil
}

func (c *HTTPClient) CompleteWorkout(ctx context.Context, _ string, w models.Workout, _ time.Time) (*tracker.Completion, error) {
	body, err := c.post(ctx, "/api/v1/workouts", w)
	if err != nil {
		return nil, err
	}

	var res tracker.Completion
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("httpclient: decode completion: %w", err)
	}
	return &res, nil
}

func (c *HTTPClient) Exercises(ctx context.Context, _ string, f catalog.Filter) ([]models.Exercise, error) {
	params := url.Values{}
	if f.Category != "" {
		params.Set("category", string(f.Category))
	}
	if f.MuscleGroup != "" {
		params.Set("muscle", string(f.MuscleGroup))
	}
	if f.Query != "" {
		params.Set("q", f.Query)
	}

	body, err := c.get(ctx, "/api/v1/exercises", params)
	if err != nil {
		return nil, err
	}

	var list []models.Exercise
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return list, nil
}
