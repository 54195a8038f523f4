package server

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-console/internal/config"
	"github.com/teemow/workspace-console/internal/session"
)

func newTestServerContext(t *testing.T) *ServerContext {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sc, err := NewServerContext(context.Background(), Options{
		Config:   config.Default(),
		Logger:   logger,
		Sessions: session.NewMemoryStore(time.Hour, time.Minute, logger),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}
