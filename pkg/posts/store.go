// Package posts provides the blog's post sources: a JSON HTTP API, SQLite
// and S3.
package posts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/vango-dev/blogshell/internal/errors"
)

// ErrNotFound is returned by Get when no post has the requested ID.
var ErrNotFound = errors.New("posts: not found")

// Post is a blog post.
type Post struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Store reads posts.
type Store interface {
	// List returns all posts ordered by ID.
	List(ctx context.Context) ([]Post, error)

	// Get returns one post or ErrNotFound.
	Get(ctx context.Context, id int) (*Post, error)
}

// unavailable wraps a backend failure.
func unavailable(backend string, err error) error {
	return apperrors.New("E400").WithDetailf("%s backend", backend).Wrap(err)
}

// MemoryStore is a Store backed by a map.
type MemoryStore struct {
	mu    sync.RWMutex
	posts map[int]Post
}

// NewMemoryStore creates a store holding posts.
func NewMemoryStore(posts ...Post) *MemoryStore {
	s := &MemoryStore{posts: make(map[int]Post, len(posts))}
	for _, p := range posts {
		s.posts[p.ID] = p
	}
	return s
}

// Put adds or replaces a post.
func (s *MemoryStore) Put(p Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[p.ID] = p
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context) ([]Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	sortPosts(out)
	return out, nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id int) (*Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	return &p, nil
}

func sortPosts(ps []Post) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
}

// SamplePosts returns a fresh copy of the posts used to seed new databases.
func SamplePosts() []Post {
	return []Post{
		{ID: 1, UserID: 1, Title: "Routing without a page reload", Body: "The shell swaps views in place while the URL changes."},
		{ID: 2, UserID: 1, Title: "Deferred views", Body: "A view's code is fetched the first time its route is visited and cached afterwards."},
		{ID: 3, UserID: 2, Title: "Loaders", Body: "Each route can fetch its data while its view is still loading."},
		{ID: 4, UserID: 2, Title: "Error boundaries", Body: "A failing route is replaced by the nearest error view; the layout around it survives."},
	}
}
