package errors

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "route table error",
			code:    "E101",
			wantMsg: "Index route has children",
			wantCat: CategoryConfig,
		},
		{
			name:    "load error",
			code:    "E120",
			wantMsg: "View module failed to load",
			wantCat: CategoryLoad,
		},
		{
			name:    "protocol error",
			code:    "E300",
			wantMsg: "Malformed navigation frame",
			wantCat: CategoryProtocol,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestShellError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ShellError
		want string
	}{
		{"code only", New("E106"), "E106: Route renders nothing"},
		{"with detail", New("E106").WithDetail(`route "0-1"`), `E106: Route renders nothing: route "0-1"`},
		{"with cause", New("E400").Wrap(io.EOF), "E400: Post store unavailable: EOF"},
		{"no code", &ShellError{Message: "test error"}, "test error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "unknown format %q", "xml")
	if err.Message != `unknown format "xml"` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E400") != nil {
		t.Error("FromError(nil) should be nil")
	}

	wrapped := FromError(io.EOF, "E400")
	if wrapped.Code != "E400" || wrapped.Unwrap() != io.EOF {
		t.Errorf("FromError(io.EOF) = %+v", wrapped)
	}

	original := New("E201")
	outer := fmt.Errorf("loading: %w", original)
	if got := FromError(outer, "E400"); got != original {
		t.Errorf("FromError should return the existing ShellError, got %+v", got)
	}
}

func TestHasCode(t *testing.T) {
	inner := New("E105").WithDetail("bad segment")
	outer := New("E104").Wrap(inner)
	err := fmt.Errorf("startup: %w", outer)

	if !HasCode(err, "E104") || !HasCode(err, "E105") {
		t.Error("HasCode should find both codes in the chain")
	}
	if HasCode(err, "E106") {
		t.Error("HasCode(E106) should be false")
	}
	if HasCode(io.EOF, "E104") {
		t.Error("HasCode on a plain error should be false")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New("E101").
		WithDetail(`route "0-1-0" is marked index and has 2 children`).
		Wrap(io.ErrUnexpectedEOF).
		Format()

	for _, want := range []string{
		"ERROR E101: Index route has children",
		`route "0-1-0" is marked index and has 2 children`,
		"Cause: unexpected EOF",
		"Hint: Move the children",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() should not contain ANSI codes when colors are disabled")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five", 9)
	want := []string{"one two", "three", "four five"}
	if len(lines) != len(want) {
		t.Fatalf("wrapText() = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestCodesSorted(t *testing.T) {
	codes := Codes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1] > codes[i] {
			t.Fatalf("Codes() not sorted: %v", codes)
		}
	}
	if _, ok := Lookup("E107"); !ok {
		t.Error("Lookup(E107) should succeed")
	}
}
