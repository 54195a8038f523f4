// Package session holds per-session tool state.
//
// A Store hands out one State per MCP client session. State is a set of JSON
// documents addressed by namespace; every namespace is written at most once for
// the lifetime of the session. Two backends exist: an in-process map with idle
// expiry and Redis for deployments that run several replicas.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// DefaultID is the session id used when a request carries no MCP client session,
// e.g. on the stdio transport or in the CLI.
const DefaultID = "default"

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// State is the state of one session.
type State interface {
	// ID returns the session id.
	ID() string

	// Load decodes the value stored under ns into dst. It reports false when nothing is stored.
	Load(ctx context.Context, ns string, dst any) (bool, error)

	// StoreOnce stores v under ns unless a value is already present. It reports
	// whether v was written; an existing value is never overwritten.
	StoreOnce(ctx context.Context, ns string, v any) (bool, error)
}

// Store creates and drops session state.
type Store interface {
	// Session returns the state for id, creating it lazily.
	Session(id string) State

	// Drop discards all state of the session.
	Drop(ctx context.Context, id string) error

	// Close releases the store's resources.
	Close() error
}

// IDFromContext returns the id of the MCP client session carried by ctx, or DefaultID.
func IDFromContext(ctx context.Context) string {
	if cs := mcpserver.ClientSessionFromContext(ctx); cs != nil {
		if id := cs.SessionID(); id != "" {
			return id
		}
	}
	return DefaultID
}

// FromContext returns the state of the session carried by ctx.
func FromContext(ctx context.Context, store Store) State {
	return store.Session(IDFromContext(ctx))
}

func encode(ns string, v any) ([]byte, error) {
	if ns == "" {
		return nil, errors.New("session namespace is empty")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session value %q: %w", ns, err)
	}
	return data, nil
}

func decode(ns string, data []byte, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode session value %q: %w", ns, err)
	}
	return nil
}
