// Package server holds the shared server state and the HTTP side of the MCP server.
//
// ServerContext wires the configured components (credential broker, harvester,
// directory lister, admin verifier, session store and the per-session token
// store) and hands them to the tool handlers.
//
// HTTPServer mounts the streamable HTTP endpoint on a chi router together with
// the health probes:
//   - /healthz: liveness
//   - /readyz: readiness, including a session store probe
//   - /healthz/detailed: uptime, transport and session backend
//
// The agent front-end forwards the signed-in user's Google access token in the
// X-Google-Access-Token header. AccessTokenMiddleware keeps it per MCP session and
// AccessTokenContext exposes it to the tool handling that request.
//
// MetricsServer exposes Prometheus metrics on a separate listener.
package server
