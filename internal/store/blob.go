package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const DefaultBlobURL = "https://blob.vercel-storage.com"

// BlobBackend talks to an HTTP object store that addresses objects by
// pathname under BaseURL and authenticates with a bearer token.
type BlobBackend struct {
	BaseURL string
	Token   string
	Client  *http.Client
	Limiter *rate.Limiter
}

type blobPutResponse struct {
	URL         string `json:"url"`
	Pathname    string `json:"pathname"`
	ContentType string `json:"contentType"`
}

// NewBlobBackend returns a backend allowing perSecond requests with a small
// burst. perSecond <= 0 disables rate limiting.
func NewBlobBackend(baseURL, token string, perSecond float64) *BlobBackend {
	b := &BlobBackend{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
	if perSecond > 0 {
		b.Limiter = rate.NewLimiter(rate.Limit(perSecond), 5)
	}
	return b
}

func (b *BlobBackend) objectURL(key string) string {
	base := b.BaseURL
	if base == "" {
		base = DefaultBlobURL
	}
	return strings.TrimRight(base, "/") + "/" + key
}

func (b *BlobBackend) do(ctx context.Context, method, key string, body io.Reader, header http.Header) (*http.Response, error) {
	if b.Limiter != nil {
		if err := b.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, b.objectURL(key), body)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if b.Token != "" {
		req.Header.Set("Authorization", "Bearer "+b.Token)
	}
	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}

func (b *BlobBackend) Load(ctx context.Context, key string) ([]byte, error) {
	resp, err := b.do(ctx, http.MethodGet, key, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(http.MethodGet, key, resp)
	}
	return io.ReadAll(resp.Body)
}

func (b *BlobBackend) Save(ctx context.Context, key string, data []byte) (string, error) {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("x-vercel-storage-access", "public")
	header.Set("x-add-random-suffix", "0")

	resp, err := b.do(ctx, http.MethodPut, key, bytes.NewReader(data), header)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(http.MethodPut, key, resp)
	}

	var r blobPutResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil && err != io.EOF {
		return "", fmt.Errorf("decode blob response: %w", err)
	}
	if r.URL == "" {
		return b.objectURL(key), nil
	}
	return r.URL, nil
}

func (b *BlobBackend) Delete(ctx context.Context, key string) error {
	resp, err := b.do(ctx, http.MethodDelete, key, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(http.MethodDelete, key, resp)
	}
	return nil
}

func statusError(method, key string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("blob %s %s: status %d: %s", method, key, resp.StatusCode, strings.TrimSpace(string(body)))
}
