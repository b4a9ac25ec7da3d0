package posts

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/vango-dev/blogshell/internal/errors"
)

// storeContract checks behavior every Store shares. The store must hold SamplePosts.
func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != len(SamplePosts()) {
		t.Fatalf("List() returned %d posts, want %d", len(list), len(SamplePosts()))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Errorf("List() not ordered by ID: %d before %d", list[i-1].ID, list[i].ID)
		}
	}

	p, err := s.Get(ctx, 2)
	if err != nil {
		t.Fatalf("Get(2) error = %v", err)
	}
	if *p != SamplePosts()[1] {
		t.Errorf("Get(2) = %+v, want %+v", *p, SamplePosts()[1])
	}

	if _, err := s.Get(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(999) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore(SamplePosts()...))
}

func TestSamplePostsAreCopies(t *testing.T) {
	first := SamplePosts()
	first[0].Title = "changed"

	if got := SamplePosts()[0].Title; got == "changed" {
		t.Errorf("SamplePosts()[0].Title = %q, mutation leaked into later calls", got)
	}
}

func TestMemoryStorePutAndCancel(t *testing.T) {
	s := NewMemoryStore()
	s.Put(Post{ID: 9, Title: "new"})
	p, err := s.Get(context.Background(), 9)
	if err != nil || p.Title != "new" {
		t.Errorf("Get(9) = %v, %v", p, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.List(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("List(cancelled) error = %v", err)
	}
}

func TestUnavailableCarriesCode(t *testing.T) {
	err := unavailable("s3", errors.New("timeout"))
	if !apperrors.HasCode(err, "E400") {
		t.Errorf("unavailable() = %v, want E400", err)
	}
}
