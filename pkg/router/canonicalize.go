package router

import (
	"errors"
	"net/url"
	"strings"
)

// Path canonicalization errors.
var (
	ErrInvalidPath           = errors.New("invalid path")
	ErrBackslashInPath       = errors.New("path contains backslash")
	ErrNullByteInPath        = errors.New("path contains null byte")
	ErrInvalidPercentEscape  = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot       = errors.New("path escapes root via ..")
	ErrEncodedSlashInSegment = errors.New("encoded slash (%2F) in non-splat segment")
)

// CanonicalizePath normalizes a URL path and splits off its query string.
//
// Trailing slashes (except root), duplicate slashes and "." segments are
// removed and ".." segments resolved. Backslashes, NUL bytes, invalid
// percent-escapes and ".." escaping the root are rejected.
func CanonicalizePath(input string) (path, query string, err error) {
	path, query, _ = strings.Cut(input, "?")
	if path == "" {
		return "/", query, nil
	}
	if strings.Contains(path, "\\") {
		return "", "", ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return "", "", ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return "", "", err
		}
	}

	var result []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(result) == 0 {
				return "", "", ErrPathEscapesRoot
			}
			result = result[:len(result)-1]
		default:
			result = append(result, seg)
		}
	}
	return "/" + strings.Join(result, "/"), query, nil
}

// ValidateNavPath canonicalizes a path received from a client.
// Only site-relative paths are accepted; absolute URLs are rejected.
func ValidateNavPath(input string) (string, error) {
	if !strings.HasPrefix(input, "/") || strings.HasPrefix(input, "//") {
		return "", ErrInvalidPath
	}
	path, query, err := CanonicalizePath(input)
	if err != nil {
		return "", err
	}
	if query != "" {
		return path + "?" + query, nil
	}
	return path, nil
}

// decodeParam decodes a matched segment. Outside splats an encoded slash is
// rejected so that a single parameter cannot smuggle extra path segments.
func decodeParam(raw string, splat bool) (string, error) {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if !splat && strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}
	return decoded, nil
}

// validatePercentEscapes checks that all percent-escapes are %XX with hex digits.
func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
