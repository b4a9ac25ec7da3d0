package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/vango-dev/blogshell/internal/errors"
)

var (
	// ErrSuperseded is returned by Activation.Wait when a newer activation
	// of the same Navigator has started.
	ErrSuperseded = errors.New("router: activation superseded")

	// ErrNotFound is the error of activations whose path matched no route.
	ErrNotFound = errors.New("router: no route matches path")
)

// ConfigurationError reports every problem found in a route table.
type ConfigurationError struct {
	Problems []*apperrors.ShellError
}

func (e *ConfigurationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid route table: " + e.Problems[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid route table: %d problems", len(e.Problems))
	for _, p := range e.Problems {
		sb.WriteString("\n  ")
		sb.WriteString(p.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual problems to errors.Is and errors.As.
func (e *ConfigurationError) Unwrap() []error {
	errs := make([]error, len(e.Problems))
	for i, p := range e.Problems {
		errs[i] = p
	}
	return errs
}

// Has reports whether a problem with the given code was found.
func (e *ConfigurationError) Has(code string) bool {
	for _, p := range e.Problems {
		if p.Code == code {
			return true
		}
	}
	return false
}

// FailureKind classifies recoverable activation failures.
type FailureKind int

const (
	// LoadFailure means a deferred view could not be fetched.
	LoadFailure FailureKind = iota + 1
	// LoaderFailure means a route's loader returned an error.
	LoaderFailure
	// RenderFailure means a view panicked while rendering.
	RenderFailure
)

func (k FailureKind) String() string {
	switch k {
	case LoadFailure:
		return "load"
	case LoaderFailure:
		return "loader"
	case RenderFailure:
		return "render"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// code returns the registered error code of the failure kind.
func (k FailureKind) code() string {
	switch k {
	case LoadFailure:
		return "E120"
	case LoaderFailure:
		return "E121"
	default:
		return "E122"
	}
}

// RouteError is a recoverable failure of one route during an activation.
// It is handed to the nearest ErrorElement.
type RouteError struct {
	RouteID string
	Kind    FailureKind
	Err     error
}

func newRouteError(routeID string, kind FailureKind, cause error) *RouteError {
	return &RouteError{
		RouteID: routeID,
		Kind:    kind,
		Err:     apperrors.New(kind.code()).WithDetailf("route %s", routeID).Wrap(cause),
	}
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("route %s: %s failure: %v", e.RouteID, e.Kind, e.Err)
}

func (e *RouteError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by the cause, or 500.
func (e *RouteError) StatusCode() int {
	return StatusOf(e.Err)
}

type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string   { return e.err.Error() }
func (e *statusError) Unwrap() error   { return e.err }
func (e *statusError) StatusCode() int { return e.status }

// WithStatus attaches an HTTP status to a loader error, e.g. 404 for a
// missing record.
func WithStatus(status int, err error) error {
	if err == nil {
		return nil
	}
	return &statusError{status: status, err: err}
}

// StatusOf returns the HTTP status of an error: the outermost StatusCode()
// in its chain, 404 for ErrNotFound, 500 otherwise.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.status
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
