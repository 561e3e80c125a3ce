package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/repforge/internal/generate"
	"github.com/meltforce/repforge/internal/models"
)

// Client talks to the RepForge server over HTTP. Generation calls are
// never retried here: a retry would consume another quota slot.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the RepForge server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			// Generation holds the connection through up to two model
			// attempts.
			Timeout: 120 * time.Second,
		},
	}
}

func (c *Client) newRequest(method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, c.serverURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	return req, nil
}

// Generate runs the generation pipeline on the server. A non-200 reply
// with a decodable result body (failed generation diagnostics) is
// returned as a Result with an error; transport problems are plain
// errors.
func (c *Client) Generate(genReq models.GenerationRequest) (*generate.Result, error) {
	data, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := c.newRequest(http.MethodPost, "/api/v1/workouts/generate", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var result generate.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("generation failed (status %d): %s", resp.StatusCode, body)
	}

	if resp.StatusCode != http.StatusOK {
		if result.Error == "" {
			return &result, fmt.Errorf("generation failed (status %d): %s", resp.StatusCode, body)
		}
		return &result, fmt.Errorf("generation failed: %s", result.Error)
	}
	return &result, nil
}

// ListWorkouts fetches the caller's most recent workouts.
func (c *Client) ListWorkouts(limit int) ([]models.WorkoutRow, error) {
	path := "/api/v1/workouts"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	req, err := c.newRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list request failed (status %d): %s", resp.StatusCode, body)
	}

	var workouts []models.WorkoutRow
	if err := json.NewDecoder(resp.Body).Decode(&workouts); err != nil {
		return nil, fmt.Errorf("decoding workouts: %w", err)
	}
	return workouts, nil
}
