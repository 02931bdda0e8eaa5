package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/timelinetracker/backend/internal/models"
	"github.com/timelinetracker/backend/internal/store"
)

// Client reads and writes timeline documents through the /api/timeline
// endpoint. It satisfies the same contract as store.Estimates.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

// APIError is a non-2xx answer from the endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("timeline api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("timeline api: status %d: %s", e.StatusCode, e.Message)
}

type saveRequest struct {
	UserID string          `json:"userId"`
	Data   models.Document `json:"data"`
}

type saveResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

type errorBody struct {
	Error string `json:"error"`
}

func New(endpoint string) *Client {
	return &Client{Endpoint: endpoint, HTTP: &http.Client{Timeout: 15 * time.Second}}
}

func (c *Client) Load(ctx context.Context, userID string) (models.Document, error) {
	resp, err := c.do(ctx, http.MethodGet, userID, nil)
	if err != nil {
		return models.Document{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.Document{}, store.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return models.Document{}, apiError(resp)
	}
	var doc models.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return models.Document{}, fmt.Errorf("decode timeline: %w", err)
	}
	doc.Normalize()
	return doc, nil
}

func (c *Client) Save(ctx context.Context, userID string, doc models.Document) (string, error) {
	doc.Normalize()
	b, err := json.Marshal(saveRequest{UserID: userID, Data: doc})
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, http.MethodPost, "", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}
	var r saveResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("decode save response: %w", err)
	}
	return r.URL, nil
}

func (c *Client) Delete(ctx context.Context, userID string) error {
	resp, err := c.do(ctx, http.MethodDelete, userID, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, userID string, body io.Reader) (*http.Response, error) {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if userID != "" {
		q := u.Query()
		q.Set("userId", userID)
		u.RawQuery = q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	return hc.Do(req)
}

func apiError(resp *http.Response) error {
	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = string(bytes.TrimSpace(raw))
	}
	return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
}
