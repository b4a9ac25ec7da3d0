package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Route table errors (E100-E119)
	// ============================================

	"E100": {
		Category:   CategoryConfig,
		Message:    "Duplicate route ID",
		Suggestion: "Give every route a unique ID or leave IDs empty to have them generated",
	},
	"E101": {
		Category:   CategoryConfig,
		Message:    "Index route has children",
		Suggestion: "Move the children to a sibling route with a path",
	},
	"E102": {
		Category:   CategoryConfig,
		Message:    "Index route has a path",
		Suggestion: "Index routes match their parent's path; remove the Path field",
	},
	"E103": {
		Category:   CategoryConfig,
		Message:    "Multiple index routes in one sibling group",
		Suggestion: "Keep a single index route per parent",
	},
	"E104": {
		Category:   CategoryConfig,
		Message:    "Invalid route path",
		Suggestion: `Top-level routes start with "/", child routes are relative to their parent`,
	},
	"E105": {
		Category:   CategoryConfig,
		Message:    "Invalid path segment",
		Suggestion: `Use ":name" for variables and "*" only as the last segment`,
	},
	"E106": {
		Category:   CategoryConfig,
		Message:    "Route renders nothing",
		Suggestion: "Give the route an Element or children",
	},
	"E107": {
		Category:   CategoryConfig,
		Message:    "Duplicate route pattern",
		Suggestion: "Two routes resolve to the same URL pattern; remove or rename one",
	},

	// ============================================
	// Activation errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryLoad,
		Message:  "View module failed to load",
	},
	"E121": {
		Category: CategoryLoader,
		Message:  "Route loader failed",
	},
	"E122": {
		Category: CategoryLoad,
		Message:  "View panicked while rendering",
	},

	// ============================================
	// Configuration file errors (E200-E219)
	// ============================================

	"E200": {
		Category:   CategoryConfig,
		Message:    "Failed to read configuration",
		Suggestion: "Check the syntax of blogshell.yaml",
	},
	"E201": {
		Category:   CategoryConfig,
		Message:    "Invalid server port",
		Suggestion: "Use a port between 1 and 65535",
	},
	"E202": {
		Category:   CategoryConfig,
		Message:    "Unknown posts backend",
		Suggestion: `Set posts.backend to "http", "sqlite" or "s3"`,
	},
	"E203": {
		Category:   CategoryConfig,
		Message:    "Missing posts backend setting",
	},
	"E204": {
		Category:   CategoryConfig,
		Message:    "Invalid log setting",
		Suggestion: `log.level is one of debug, info, warn, error; log.format is text or json`,
	},

	// ============================================
	// Protocol errors (E300-E319)
	// ============================================

	"E300": {
		Category: CategoryProtocol,
		Message:  "Malformed navigation frame",
	},
	"E301": {
		Category: CategoryProtocol,
		Message:  "Invalid navigation path",
	},

	// ============================================
	// Storage errors (E400-E419)
	// ============================================

	"E400": {
		Category: CategoryStorage,
		Message:  "Post store unavailable",
	},
}

// Register adds or replaces an error template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// Codes returns all registered codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
