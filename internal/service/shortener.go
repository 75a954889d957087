package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const clckBaseURL = "https://clck.ru/--"

// Shortener shortens conference URLs through the clck.ru API.
type Shortener struct {
	client  *http.Client
	baseURL string
}

func NewShortener() *Shortener {
	return &Shortener{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: clckBaseURL,
	}
}

// Shorten returns the short form of longURL.
func (s *Shortener) Shorten(ctx context.Context, longURL string) (string, error) {
	if _, err := url.ParseRequestURI(longURL); err != nil {
		return "", fmt.Errorf("invalid url %q: %w", longURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return "", err
	}
	q := req.URL.Query()
	q.Set("url", longURL)
	req.URL.RawQuery = q.Encode()

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("shorten url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("shorten url: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", fmt.Errorf("shorten url: read response: %w", err)
	}

	short := strings.TrimSpace(string(body))
	if !strings.HasPrefix(short, "https://clck.ru/") {
		return "", fmt.Errorf("shorten url: unexpected response %q", short)
	}
	return short, nil
}
