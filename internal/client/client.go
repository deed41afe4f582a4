package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"surveyflow/internal/engine"
	"surveyflow/internal/model"
)

// Client is the HTTP persistence client for the surveyflow API. It
// implements engine.Persistence. Nothing is retried; the session decides
// when to try again.
type Client struct {
	baseURL    string
	creds      CredentialSource
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger replaces the default logger
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, creds CredentialSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ engine.Persistence = (*Client)(nil)

// StatusError is a non-2xx response. 401 and 403 unwrap to
// engine.ErrUnauthorized.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden {
		return engine.ErrUnauthorized
	}
	return nil
}

// FetchCatalog returns the raw question records of a survey
func (c *Client) FetchCatalog(ctx context.Context, surveyID string) ([]model.RawQuestion, error) {
	path := "/v1/surveys/" + url.PathEscape(surveyID) + "/questions"
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Questions json.RawMessage `json:"questions"`
	}
	payload := bytes.TrimSpace(body)
	if len(payload) > 0 && payload[0] == '{' {
		if err := json.Unmarshal(payload, &envelope); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		payload = bytes.TrimSpace(envelope.Questions)
	}
	if len(payload) == 0 || payload[0] != '[' {
		return nil, errors.New("catalog payload is not a list")
	}

	var raws []model.RawQuestion
	if err := json.Unmarshal(payload, &raws); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return raws, nil
}

// FetchSavedAnswer returns the saved answer or nil when the server has none
func (c *Client) FetchSavedAnswer(ctx context.Context, userID, questionID string) (*model.Answer, error) {
	path := "/v1/users/" + url.PathEscape(userID) + "/answers/" + url.PathEscape(questionID)
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		var serr *StatusError
		if errors.As(err, &serr) && serr.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	var a model.Answer
	if err := json.Unmarshal(body, &a); err != nil {
		return nil, fmt.Errorf("decode answer: %w", err)
	}
	if a.SelectedOptionIDs == nil {
		a.SelectedOptionIDs = []string{}
	}
	return &a, nil
}

// SaveAnswer stores one answer
func (c *Client) SaveAnswer(ctx context.Context, a model.Answer) error {
	ids := a.SelectedOptionIDs
	if ids == nil {
		ids = []string{}
	}
	req := model.SaveAnswerRequest{SelectedOptionIDs: ids, TextAnswer: a.TextAnswer}
	_, err := c.doRequest(ctx, http.MethodPut, "/v1/answers/"+url.PathEscape(a.QuestionID), req)
	return err
}

// CompleteSurvey marks the survey submitted for the credential's user
func (c *Client) CompleteSurvey(ctx context.Context, surveyID string) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/v1/surveys/"+url.PathEscape(surveyID)+"/complete", nil)
	return err
}

// doRequest performs one authenticated JSON request and returns the body of
// a 2xx response
func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrUnauthorized, err)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: no credential", engine.ErrUnauthorized)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("[Client] %s %s failed: %v", method, path, err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		serr := &StatusError{Method: method, Path: path, Code: resp.StatusCode, Message: errorMessage(respBody)}
		if resp.StatusCode != http.StatusNotFound {
			c.logger.Printf("[Client] %v", serr)
		}
		return nil, serr
	}
	return respBody, nil
}

func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
