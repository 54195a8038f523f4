package cmd

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-console/internal/config"
	"github.com/teemow/workspace-console/internal/server"
	"github.com/teemow/workspace-console/internal/session"
)

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()

	sc, err := server.NewServerContext(t.Context(), server.Options{
		Config:   config.Default(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Sessions: session.NewMemoryStore(0, 0, nil),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestRegisterAllTools(t *testing.T) {
	sc := newTestServerContext(t)
	mcpSrv := newMCPServer(sc)

	require.NoError(t, registerAllTools(mcpSrv, sc))

	names := make([]string, 0)
	for name := range mcpSrv.ListTools() {
		names = append(names, name)
	}
	assert.ElementsMatch(t, []string{
		"listEmailsAndAnalyze",
		"listYesterdaysEmails",
		"listDomainUsers",
		"verifySuperAdminStatus",
		"routeRequest",
	}, names)
}

func TestServeCmd_RejectsUnknownTransport(t *testing.T) {
	out, err := executeRoot(t, "serve", "--transport", "carrier-pigeon")
	require.Error(t, err)
	assert.Contains(t, err.Error()+out, "carrier-pigeon")
}
