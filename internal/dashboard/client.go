package dashboard

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

	"github.com/arencloud/surveyboard/internal/models"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"
	requestTimeout = 10 * time.Second
)

// APIError is what the dashboard shows for a failed gateway call: a fixed
// message per operation plus whatever detail the gateway or transport gave.
type APIError struct {
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return e.Message + ": " + e.Details
}

// Client talks to the gateway. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: requestTimeout}}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) HealthCheck(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.call(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, failure("Health check failed", err)
	}
	return out, nil
}

// Surveys returns the listed surveys; a reply without elements is an empty list.
func (c *Client) Surveys(ctx context.Context) ([]models.Survey, error) {
	var list models.SurveyList
	if err := c.call(ctx, http.MethodGet, "/surveys", nil, &list); err != nil {
		return nil, failure("Failed to fetch surveys", err)
	}
	return list.Surveys(), nil
}

func (c *Client) SurveyDetails(ctx context.Context, surveyID string) (*models.Survey, error) {
	var env struct {
		Result *models.Survey `json:"result"`
	}
	if err := c.call(ctx, http.MethodGet, "/surveys/"+url.PathEscape(surveyID), nil, &env); err != nil {
		return nil, failure("Failed to fetch survey details", err)
	}
	return env.Result, nil
}

func (c *Client) SurveyResponses(ctx context.Context, surveyID string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.call(ctx, http.MethodGet, "/surveys/"+url.PathEscape(surveyID)+"/responses", nil, &raw); err != nil {
		return nil, failure("Failed to fetch survey responses", err)
	}
	return raw, nil
}

func (c *Client) RepositoryStats(ctx context.Context) (*models.RepositoryStats, error) {
	var stats models.RepositoryStats
	if err := c.call(ctx, http.MethodGet, "/repository/stats", nil, &stats); err != nil {
		return nil, failure("Failed to fetch repository stats", err)
	}
	return &stats, nil
}

// ExportSurvey starts a vendor export and returns the job descriptor as
// sent by the gateway. It does not wait for the export to finish.
func (c *Client) ExportSurvey(ctx context.Context, surveyID, format string) (json.RawMessage, error) {
	if format == "" {
		format = "json"
	}
	var raw json.RawMessage
	body := map[string]string{"format": format}
	if err := c.call(ctx, http.MethodPost, "/surveys/"+url.PathEscape(surveyID)+"/export", body, &raw); err != nil {
		return nil, failure("Failed to export survey", err)
	}
	return raw, nil
}

// gatewayError carries the details field of a non-2xx gateway reply.
type gatewayError struct {
	status  int
	details string
}

func (e *gatewayError) Error() string {
	if e.details != "" {
		return e.details
	}
	return fmt.Sprintf("request failed with status code %d", e.status)
}

func failure(msg string, err error) *APIError {
	return &APIError{Message: msg, Details: err.Error()}
}

func (c *Client) call(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env models.ErrorEnvelope
		_ = json.Unmarshal(raw, &env)
		return &gatewayError{status: resp.StatusCode, details: env.Details}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
