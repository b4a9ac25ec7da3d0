package router

import (
	"errors"
	"testing"
)

func TestCanonicalizePath(t *testing.T) {
	tests := []struct {
		input     string
		wantPath  string
		wantQuery string
		wantErr   error
	}{
		{"", "/", "", nil},
		{"/", "/", "", nil},
		{"/posts/", "/posts", "", nil},
		{"//posts///42", "/posts/42", "", nil},
		{"/posts/./42", "/posts/42", "", nil},
		{"/posts/x/../42", "/posts/42", "", nil},
		{"/posts?page=2", "/posts", "page=2", nil},
		{"/posts/%20x", "/posts/%20x", "", nil},
		{"/..", "", "", ErrPathEscapesRoot},
		{"/a\\b", "", "", ErrBackslashInPath},
		{"/a%00", "", "", ErrNullByteInPath},
		{"/a%zz", "", "", ErrInvalidPercentEscape},
		{"/a%2", "", "", ErrInvalidPercentEscape},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			path, query, err := CanonicalizePath(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CanonicalizePath(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if path != tt.wantPath || query != tt.wantQuery {
				t.Errorf("CanonicalizePath(%q) = %q, %q; want %q, %q",
					tt.input, path, query, tt.wantPath, tt.wantQuery)
			}
		})
	}
}

func TestValidateNavPath(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"/posts/42", "/posts/42", false},
		{"/posts/?q=1", "/posts?q=1", false},
		{"posts", "", true},
		{"//evil.example/x", "", true},
		{"https://evil.example/", "", true},
		{"/../etc", "", true},
	}
	for _, tt := range tests {
		got, err := ValidateNavPath(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateNavPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidateNavPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDecodeParam(t *testing.T) {
	if got, err := decodeParam("hello%20world", false); err != nil || got != "hello world" {
		t.Errorf("decodeParam = %q, %v", got, err)
	}
	if _, err := decodeParam("a%2Fb", false); !errors.Is(err, ErrEncodedSlashInSegment) {
		t.Errorf("decodeParam(a%%2Fb) error = %v, want ErrEncodedSlashInSegment", err)
	}
	if got, err := decodeParam("a%2Fb", true); err != nil || got != "a/b" {
		t.Errorf("decodeParam splat = %q, %v", got, err)
	}
}
