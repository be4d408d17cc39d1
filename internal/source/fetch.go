package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Fetcher issues the single upstream GET each request is allowed.
type Fetcher struct {
	Client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{Client: &http.Client{Timeout: timeout}}
}

// Response is a fully read upstream response.
type Response struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// StatusText strips the numeric prefix from net/http's Status line.
func (r Response) StatusText() string {
	text := strings.TrimSpace(strings.TrimPrefix(r.Status, fmt.Sprintf("%d", r.StatusCode)))
	if text == "" {
		return http.StatusText(r.StatusCode)
	}
	return text
}

func (f *Fetcher) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, fmt.Errorf("build upstream request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("request upstream: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read upstream response body: %w", err)
	}
	return Response{StatusCode: resp.StatusCode, Status: resp.Status, Body: body}, nil
}
