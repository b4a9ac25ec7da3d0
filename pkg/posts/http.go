package posts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPStore reads posts from a JSON API shaped like jsonplaceholder:
// GET {base}/posts and GET {base}/posts/{id}.
type HTTPStore struct {
	base   string
	client *http.Client
}

// NewHTTPStore creates a store for the API at baseURL. A nil client uses
// one with the given timeout.
func NewHTTPStore(baseURL string, client *http.Client, timeout time.Duration) *HTTPStore {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPStore{base: strings.TrimSuffix(baseURL, "/"), client: client}
}

// List implements Store.
func (s *HTTPStore) List(ctx context.Context) ([]Post, error) {
	var out []Post
	if err := s.getJSON(ctx, "/posts", &out); err != nil {
		return nil, err
	}
	sortPosts(out)
	return out, nil
}

// Get implements Store.
func (s *HTTPStore) Get(ctx context.Context, id int) (*Post, error) {
	var p Post
	if err := s.getJSON(ctx, "/posts/"+strconv.Itoa(id), &p); err != nil {
		return nil, fmt.Errorf("post %d: %w", id, err)
	}
	return &p, nil
}

func (s *HTTPStore) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+path, nil)
	if err != nil {
		return unavailable("http", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return unavailable("http", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return unavailable("http", fmt.Errorf("GET %s: %s: %s", path, resp.Status, strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return unavailable("http", fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}
