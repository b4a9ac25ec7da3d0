// Package server serves the routed application over HTTP.
//
// Page requests are activated on the router and rendered on the server.
// When an activation has to fetch a view and streaming is enabled, the
// document shell and the placeholder are flushed at once and the final tree
// is streamed afterwards inside a <template> that an inline script swaps into
// the application container.
//
// Browsers that load /_shell/client.js navigate without page reloads over a
// WebSocket at /_shell/nav. Each connection owns a router.Navigator, so only
// the latest navigation of a client ever produces frames:
//
//	client → {"type":"navigate","path":"/posts/42"}
//	server → {"type":"fallback","token":3,"path":"/posts/42","html":"..."}
//	server → {"type":"view","token":3,"path":"/posts/42","status":200,"html":"..."}
//
// Routes:
//   - GET /healthz          liveness check
//   - GET /metrics          Prometheus metrics, when enabled
//   - GET /_shell/client.js navigation client
//   - GET /_shell/nav       navigation WebSocket
//   - GET /*                pages
package server
