package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/repforge/internal/generate"
	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/storage"
)

// HTTPClient implements DataSource and Generator by calling the
// RepForge REST API. Used for remote MCP mode where the binary runs
// locally (stdio) but data lives on the remote server (accessed over
// Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time checks: HTTPClient serves both MCP dependency surfaces.
var (
	_ DataSource = (*HTTPClient)(nil)
	_ Generator  = (*HTTPClient)(nil)
)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
// apiKey may be empty when the server authenticates via the tailnet.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, payload any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, respBody)
	}

	return respBody, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

// Generate runs the pipeline on the remote server. The principal is
// ignored: the server re-derives identity from its own transport.
func (c *HTTPClient) Generate(ctx context.Context, _ models.Principal, req models.GenerationRequest) (*generate.Result, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/workouts/generate", nil, req)
	if err != nil {
		return nil, err
	}

	var result generate.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("httpclient: decode generation result: %w", err)
	}
	return &result, nil
}

func (c *HTTPClient) QueryWorkouts(ctx context.Context, _ int, limit int) ([]models.WorkoutRow, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/api/v1/workouts", params)
	if err != nil {
		return nil, err
	}

	var workouts []models.WorkoutRow
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return workouts, nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, workoutID uuid.UUID, _ int) (*storage.WorkoutDetail, error) {
	body, err := c.get(ctx, "/api/v1/workouts/"+workoutID.String(), nil)
	if err != nil {
		return nil, err
	}

	var detail storage.WorkoutDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return &detail, nil
}

func (c *HTTPClient) UpdateWorkoutStatus(ctx context.Context, workoutID uuid.UUID, _ int, status *string, rating *int, targetDate *time.Time) error {
	payload := map[string]any{}
	if status != nil {
		payload["status"] = *status
	}
	if rating != nil {
		payload["rating"] = *rating
	}
	if targetDate != nil {
		payload["target_date"] = targetDate.Format(time.RFC3339)
	}

	_, err := c.do(ctx, http.MethodPatch, "/api/v1/workouts/"+workoutID.String(), nil, payload)
	return err
}

func (c *HTTPClient) ListExercises(ctx context.Context) ([]models.ExerciseRow, error) {
	body, err := c.get(ctx, "/api/v1/exercises", nil)
	if err != nil {
		return nil, err
	}

	var rows []models.ExerciseRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return rows, nil
}

func (c *HTTPClient) GetDataStats(ctx context.Context, _ int) (*storage.DataStats, error) {
	body, err := c.get(ctx, "/api/v1/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats storage.DataStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode stats: %w", err)
	}
	return &stats, nil
}
