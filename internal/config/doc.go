// Package config loads blogshell settings.
//
// Settings come from, in increasing precedence: built-in defaults, an
// optional blogshell.yaml (or .json/.toml) in the working directory,
// BLOGSHELL_* environment variables and command-line flags.
//
// # Configuration File Structure
//
//	server:
//	  host: ""
//	  port: 3000
//	  streaming: true
//	  title: Blog
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  enabled: true
//	  path: /metrics
//	views:
//	  fallback_text: Loading...
//	  preload: false
//	posts:
//	  backend: http
//	  http:
//	    base_url: https://jsonplaceholder.typicode.com
//	    timeout: 10s
//
// Nested keys map to environment variables by upper-casing them and
// replacing dots with underscores, e.g. BLOGSHELL_POSTS_BACKEND.
package config
