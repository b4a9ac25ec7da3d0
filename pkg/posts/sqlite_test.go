package posts

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer s.Close()

	if err := s.Seed(ctx, SamplePosts()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	storeContract(t, s)
}

func TestSQLiteSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "posts.db")

	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	if err := s.Seed(ctx, SamplePosts()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if err := s.Seed(ctx, SamplePosts()); err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}
	s.Close()

	// Reopen: data persists on disk.
	s, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != len(SamplePosts()) {
		t.Errorf("List() returned %d posts, want %d", len(list), len(SamplePosts()))
	}
}
