package router

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/vango-dev/blogshell/internal/errors"
)

// compiledRoute is a validated route with its generated ID.
type compiledRoute struct {
	id    string
	depth int
	route *Route
}

// entry is one matchable pattern and the chain of routes it activates.
type entry struct {
	pattern string // chi syntax, "/posts/{id}"
	display string // table syntax, "/posts/:id"
	chain   []*compiledRoute
}

// compiler validates a route tree and flattens it into entries.
type compiler struct {
	problems []*apperrors.ShellError
	ids      map[string]string // id -> display pattern of its first use
	shapes   map[string]string // pattern with param names erased -> display
	entries  []*entry
	nodes    []*compiledRoute
}

func compile(routes []Route) ([]*entry, []*compiledRoute, error) {
	c := &compiler{
		ids:    make(map[string]string),
		shapes: make(map[string]string),
	}
	c.walk(routes, "", nil, nil, nil, map[string]bool{})
	if len(c.problems) > 0 {
		return nil, nil, &ConfigurationError{Problems: c.problems}
	}
	return c.entries, c.nodes, nil
}

func (c *compiler) fail(code, format string, args ...any) {
	c.problems = append(c.problems, apperrors.New(code).WithDetailf(format, args...))
}

func (c *compiler) walk(routes []Route, parentID string, chi, display []string, chain []*compiledRoute, params map[string]bool) {
	top := len(chain) == 0
	indexes := 0
	for i := range routes {
		if routes[i].Index {
			indexes++
		}
	}
	if indexes > 1 {
		c.fail("E103", "%d index routes under %s", indexes, describeParent(parentID))
	}

	for i := range routes {
		r := &routes[i]

		id := r.ID
		if id == "" {
			id = strconv.Itoa(i)
			if parentID != "" {
				id = parentID + "-" + id
			}
		}
		if prev, dup := c.ids[id]; dup {
			c.fail("E100", "route ID %q is used by %s and %s", id, prev, displayOf(display, r.Path))
		} else {
			c.ids[id] = displayOf(display, r.Path)
		}

		if r.Index && len(r.Children) > 0 {
			c.fail("E101", "route %s", id)
		}
		if r.Index && r.Path != "" {
			c.fail("E102", "route %s has path %q", id, r.Path)
		}
		if r.Element == nil && len(r.Children) == 0 {
			c.fail("E106", "route %s", id)
		}

		segs := c.segments(id, r, top, len(r.Children) > 0)
		own := copyParams(params)
		chiSegs := append([]string(nil), chi...)
		dispSegs := append([]string(nil), display...)
		for _, s := range segs {
			switch {
			case strings.HasPrefix(s, ":"):
				name := s[1:]
				if own[name] {
					c.fail("E105", "route %s: parameter %q is already bound by an ancestor", id, name)
				}
				own[name] = true
				chiSegs = append(chiSegs, "{"+name+"}")
			default:
				chiSegs = append(chiSegs, s)
			}
			dispSegs = append(dispSegs, s)
		}

		cr := &compiledRoute{id: id, depth: len(chain), route: r}
		c.nodes = append(c.nodes, cr)
		next := append(append([]*compiledRoute(nil), chain...), cr)

		hasIndex := false
		for _, child := range r.Children {
			if child.Index {
				hasIndex = true
			}
		}
		if len(r.Children) == 0 || (r.Element != nil && !hasIndex) {
			c.add(id, chiSegs, dispSegs, next)
		}
		if len(r.Children) > 0 {
			c.walk(r.Children, id, chiSegs, dispSegs, next, own)
		}
	}
}

// segments checks a route's path and returns its non-empty segments.
func (c *compiler) segments(id string, r *Route, top, parent bool) []string {
	p := r.Path
	if p == "" {
		return nil
	}
	if top && !strings.HasPrefix(p, "/") {
		c.fail("E104", "top-level route %s has relative path %q", id, p)
	}
	if !top && strings.HasPrefix(p, "/") {
		c.fail("E104", "child route %s has absolute path %q", id, p)
	}

	var segs []string
	raw := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range raw {
		last := i == len(raw)-1
		switch {
		case s == "":
			if len(raw) > 1 {
				c.fail("E105", "route %s: empty segment in %q", id, p)
			}
			continue
		case s == "*":
			if !last || parent {
				c.fail("E105", "route %s: \"*\" must be the final segment", id)
			}
		case strings.HasPrefix(s, ":"):
			if !validParamName(s[1:]) {
				c.fail("E105", "route %s: invalid parameter %q", id, s)
			}
		case strings.ContainsAny(s, "{}*:"):
			c.fail("E105", "route %s: invalid characters in segment %q", id, s)
		}
		segs = append(segs, s)
	}
	return segs
}

// add registers a matchable pattern, rejecting patterns another route already claims.
func (c *compiler) add(id string, chi, display []string, chain []*compiledRoute) {
	e := &entry{
		pattern: "/" + strings.Join(chi, "/"),
		display: "/" + strings.Join(display, "/"),
		chain:   chain,
	}
	shape := shapeOf(chi)
	if prev, dup := c.shapes[shape]; dup {
		c.fail("E107", "route %s pattern %s conflicts with %s", id, e.display, prev)
		return
	}
	c.shapes[shape] = e.display
	c.entries = append(c.entries, e)
}

// shapeOf erases parameter names so /a/{x} and /a/{y} collide.
func shapeOf(chi []string) string {
	parts := make([]string, len(chi))
	for i, s := range chi {
		if strings.HasPrefix(s, "{") {
			parts[i] = "{}"
		} else {
			parts[i] = s
		}
	}
	return "/" + strings.Join(parts, "/")
}

func validParamName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func copyParams(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func displayOf(parent []string, path string) string {
	p := "/" + strings.Join(parent, "/")
	if path == "" {
		return p
	}
	return strings.TrimSuffix(p, "/") + "/" + strings.Trim(path, "/")
}

func describeParent(id string) string {
	if id == "" {
		return "the top level"
	}
	return fmt.Sprintf("route %s", id)
}
