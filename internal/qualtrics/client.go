// Package qualtrics is a thin client for the Qualtrics v3 REST API. It relays
// raw response bodies and never retries or caches.
package qualtrics

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
	"unicode/utf8"
)

const apiPrefix = "/API/v3/"

// ErrNotConfigured is returned on first use when the token or base URL is missing.
var ErrNotConfigured = errors.New("qualtrics api token or base url not configured")

type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client // optional; Timeout is ignored when set
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Response is an upstream reply relayed as-is.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// UpstreamError covers transport failures, auth errors and any non-2xx reply.
// Callers do not distinguish between them.
type UpstreamError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: request failed with status code %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		token:   strings.TrimSpace(opts.Token),
		http:    hc,
	}
}

// ResponsesQuery carries the optional passthrough parameters of the
// response export listing. Empty fields are not sent.
type ResponsesQuery struct {
	Limit     string
	SkipToken string
}

func (c *Client) ListSurveys(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "surveys", nil, nil)
}

func (c *Client) GetSurvey(ctx context.Context, surveyID string) (*Response, error) {
	return c.do(ctx, http.MethodGet, "surveys/"+url.PathEscape(surveyID), nil, nil)
}

func (c *Client) ListResponses(ctx context.Context, surveyID string, q ResponsesQuery) (*Response, error) {
	params := url.Values{}
	if q.SkipToken != "" {
		params.Set("skipToken", q.SkipToken)
	}
	if q.Limit != "" {
		params.Set("limit", q.Limit)
	}
	return c.do(ctx, http.MethodGet, "surveys/"+url.PathEscape(surveyID)+"/export-responses", params, nil)
}

// StartExport asks the vendor to start building an export file. It returns
// the initial job descriptor and does not wait for completion.
func (c *Client) StartExport(ctx context.Context, surveyID, format string) (*Response, error) {
	body := map[string]string{"format": format}
	return c.do(ctx, http.MethodPost, "surveys/"+url.PathEscape(surveyID)+"/export-responses", nil, body)
}

// ExportProgress polls a job once. surveyID may be empty when the caller
// only knows the progress id.
func (c *Client) ExportProgress(ctx context.Context, surveyID, progressID string) (*Response, error) {
	return c.do(ctx, http.MethodGet, exportPath(surveyID, progressID), nil, nil)
}

func (c *Client) ExportFile(ctx context.Context, surveyID, fileID string) (*Response, error) {
	return c.do(ctx, http.MethodGet, exportPath(surveyID, fileID)+"/file", nil, nil)
}

func exportPath(surveyID, id string) string {
	if surveyID == "" {
		return "surveys/export-responses/" + url.PathEscape(id)
	}
	return "surveys/" + url.PathEscape(surveyID) + "/export-responses/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, payload any) (*Response, error) {
	op := method + " " + endpoint
	if c.token == "" || c.baseURL == "" {
		return nil, &UpstreamError{Op: op, Err: ErrNotConfigured}
	}
	reqURL := c.baseURL + apiPrefix + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, &UpstreamError{Op: op, Err: fmt.Errorf("encode body: %w", err)}
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("X-API-TOKEN", c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Op: op, Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	return &Response{Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: raw}, nil
}

// errorMessage prefers the vendor's meta.error.errorMessage over the raw body.
func errorMessage(raw []byte) string {
	var env struct {
		Meta struct {
			Error struct {
				ErrorMessage string `json:"errorMessage"`
			} `json:"error"`
		} `json:"meta"`
	}
	if json.Unmarshal(raw, &env) == nil && env.Meta.Error.ErrorMessage != "" {
		return env.Meta.Error.ErrorMessage
	}
	return truncate(strings.TrimSpace(string(raw)), maxErrorBytes)
}

const maxErrorBytes = 512

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
