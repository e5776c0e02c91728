// Package remote is the client of the AI paper generation service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/paperdesk/internal/model"
)

// Catalog names served by the generation service.
const (
	CatalogBoards        = "boards"
	CatalogSubjects      = "subjects"
	CatalogQuestionTypes = "question-types"
)

// Client calls the generation service. Calls are not retried; the first
// failure is returned.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a client for the service at baseURL with an overall
// per-request timeout.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.With().Str("component", "generator_client").Logger(),
	}
}

// HealthStatus is the service's health report.
type HealthStatus struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

type authResponse struct {
	Success bool              `json:"success"`
	School  *model.SchoolData `json:"school"`
	Message string            `json:"message"`
}

// call describes how one endpoint reports failures.
type call struct {
	method   string
	path     string
	query    url.Values
	body     any
	fallback string
	// generation calls get the dedicated 500 message.
	generation bool
}

// GeneratePaper asks the service for a new question paper.
func (c *Client) GeneratePaper(ctx context.Context, req *model.GenerationRequest) (*model.Paper, error) {
	var paper model.Paper
	err := c.do(ctx, call{
		method:     http.MethodPost,
		path:       "/generate-paper",
		body:       req,
		fallback:   "Failed to generate paper",
		generation: true,
	}, &paper)
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

// GenerateAnswerKey asks the service for the answer key of a paper.
func (c *Client) GenerateAnswerKey(ctx context.Context, paperID string) (*model.AnswerKey, error) {
	var key model.AnswerKey
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/generate-answers",
		body:     map[string]string{"paper_id": paperID},
		fallback: "Failed to generate answer key",
	}, &key)
	if err != nil {
		return nil, err
	}
	if key.ID == "" {
		key.ID = paperID
	}
	return &key, nil
}

// ReplaceQuestion asks the service for a different question at a position.
func (c *Client) ReplaceQuestion(ctx context.Context, req model.ReplaceQuestionRequest) (*model.ReplaceQuestionResult, error) {
	var res model.ReplaceQuestionResult
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/replace-question",
		body:     req,
		fallback: "Failed to replace question",
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetPaper fetches a previously generated paper by id.
func (c *Client) GetPaper(ctx context.Context, paperID string) (*model.Paper, error) {
	var paper model.Paper
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/paper/" + url.PathEscape(paperID),
		fallback: "Failed to fetch paper",
	}, &paper)
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

// Catalog fetches one of the service's lookup lists as raw JSON.
func (c *Client) Catalog(ctx context.Context, name string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/" + name,
		fallback: "Failed to fetch " + name,
	}, &raw)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Health reports whether the service is up.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var h HealthStatus
	if err := c.do(ctx, call{method: http.MethodGet, path: "/health", fallback: "API is not available"}, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Login checks school credentials with the auth service.
func (c *Client) Login(ctx context.Context, username, password string) (*model.SchoolData, error) {
	var res authResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     model.LoginRequest{Username: username, Password: password},
		fallback: "Failed to login. Please try again.",
	}, &res)
	if err != nil {
		return nil, err
	}
	if !res.Success || res.School == nil {
		msg := res.Message
		if msg == "" {
			msg = "Failed to login. Please try again."
		}
		return nil, &APIError{Status: http.StatusUnauthorized, Message: msg}
	}
	return res.School, nil
}

// Verify re-checks that a school account is still valid and returns its
// current data.
func (c *Client) Verify(ctx context.Context, username string) (*model.SchoolData, error) {
	var res authResponse
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/auth/verify",
		query:    url.Values{"username": {username}},
		fallback: "Session verification failed",
	}, &res)
	if err != nil {
		return nil, err
	}
	if !res.Success || res.School == nil {
		return nil, &APIError{Status: http.StatusUnauthorized, Message: "Session verification failed"}
	}
	return res.School, nil
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	endpoint := c.baseURL + cl.path
	if len(cl.query) > 0 {
		endpoint += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", cl.method).Str("path", cl.path).Msg("Generation service request failed")
		if isTimeout(err) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	c.log.Debug().
		Str("method", cl.method).
		Str("path", cl.path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("Generation service responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := classify(resp.StatusCode, data, cl)
		c.log.Error().Int("status", resp.StatusCode).Str("path", cl.path).Err(apiErr).Msg("Generation service error")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: cl.fallback + ": malformed response"}
	}
	return nil
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Error  string          `json:"error"`
}

type detailItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func classify(status int, data []byte, cl call) error {
	var eb errorBody
	_ = json.Unmarshal(data, &eb)

	var detailStr string
	var items []detailItem
	if len(eb.Detail) > 0 {
		if err := json.Unmarshal(eb.Detail, &detailStr); err != nil {
			_ = json.Unmarshal(eb.Detail, &items)
		}
	}

	if status == http.StatusUnprocessableEntity {
		if len(items) > 0 {
			verr := &ValidationError{}
			for _, it := range items {
				verr.Fields = append(verr.Fields, FieldError{Loc: locStrings(it.Loc), Msg: it.Msg})
			}
			return verr
		}
		if detailStr != "" {
			return &ValidationError{Detail: detailStr}
		}
	}

	if status == http.StatusInternalServerError && cl.generation {
		return ErrServer
	}

	msg := detailStr
	if msg == "" {
		msg = eb.Error
	}
	if msg == "" {
		msg = cl.fallback
	}
	return &APIError{Status: status, Message: msg}
}

func locStrings(loc []any) []string {
	out := make([]string, len(loc))
	for i, v := range loc {
		switch t := v.(type) {
		case string:
			out[i] = t
		case float64:
			out[i] = fmt.Sprintf("%g", t)
		default:
			out[i] = fmt.Sprint(t)
		}
	}
	return out
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
