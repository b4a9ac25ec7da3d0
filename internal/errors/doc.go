// Package errors provides structured, actionable error messages for blogshell.
//
// Every error the shell reports to an operator carries a code that maps to a
// short message, a longer explanation and usually a hint:
//
//	err := errors.New("E101").
//	    WithDetail(`route "0-1-0" is marked index and has 2 children`).
//	    WithSuggestion("Move the children to a sibling route with a path")
//
//	fmt.Println(err.Format())
//	// ERROR E101: Index route has children
//	//
//	//   route "0-1-0" is marked index and has 2 children
//	//
//	//   Hint: Move the children to a sibling route with a path
//
// # Error Categories
//
//   - config: malformed route tables and configuration files (fatal at startup)
//   - load: a deferred view module failed to resolve
//   - loader: a route loader hook failed
//   - protocol: malformed navigation frames
//   - storage: post backends
//   - cli: command line usage
package errors
