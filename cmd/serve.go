package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/workspace-console/internal/config"
	"github.com/teemow/workspace-console/internal/instrumentation"
	"github.com/teemow/workspace-console/internal/logging"
	"github.com/teemow/workspace-console/internal/server"
	"github.com/teemow/workspace-console/internal/tools/admin_tools"
	"github.com/teemow/workspace-console/internal/tools/common"
	"github.com/teemow/workspace-console/internal/tools/directory_tools"
	"github.com/teemow/workspace-console/internal/tools/gmail_tools"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var (
		transport string
		httpAddr  string
		metrics   bool
		metricsAt string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server to expose the Workspace administration tools to an agent.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport with health probes

In streamable-http mode the caller's Google access token is read from the
header configured in server.accessTokenHeader (default: X-Google-Access-Token)
and stored per MCP session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts, func(cfg *config.Config) {
				if cmd.Flags().Changed("transport") {
					cfg.Server.Transport = transport
				}
				if cmd.Flags().Changed("http-addr") {
					cfg.Server.HTTPAddr = httpAddr
				}
				if cmd.Flags().Changed("metrics") {
					cfg.Metrics.Enabled = metrics
				}
				if cmd.Flags().Changed("metrics-addr") {
					cfg.Metrics.Addr = metricsAt
				}
			})
			if err != nil {
				return err
			}

			// stdout carries the protocol in stdio mode.
			logOut := io.Writer(os.Stdout)
			if cfg.Server.Transport == config.TransportStdio {
				logOut = os.Stderr
			}
			logger, err := newLogger(cfg, logOut)
			if err != nil {
				return err
			}
			return runServe(cfg, opts.env, logger)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", config.TransportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Serve Prometheus metrics on a separate listener (streamable-http only)")
	cmd.Flags().StringVar(&metricsAt, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address")

	return cmd
}

func runServe(cfg config.Config, env string, logger *slog.Logger) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if env != "" {
		instrConfig.Environment = env
	}
	cfg.ApplyInstrumentation(&instrConfig)

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	opts := server.Options{Config: cfg, Logger: logger}
	if provider.Enabled() {
		opts.Metrics = provider.Metrics()
		opts.AuditLogger = instrumentation.NewAuditLogger(logger, instrConfig.AuditLogging)
	}

	serverContext, err := server.NewServerContext(shutdownCtx, opts)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	mcpSrv := newMCPServer(serverContext)
	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}

	switch cfg.Server.Transport {
	case config.TransportStdio:
		return runStdioServer(shutdownCtx, mcpSrv, logger)
	case config.TransportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, provider)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Server.Transport)
	}
}

// newMCPServer creates the MCP server with the session hooks and the tool
// middleware applied to every tool.
func newMCPServer(sc *server.ServerContext) *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("workspace-console", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
		mcpserver.WithHooks(sc.Hooks()),
		mcpserver.WithToolHandlerMiddleware(common.ToolMiddleware(sc)),
	)
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, logger *slog.Logger) error {
	stdio := mcpserver.NewStdioServer(mcpSrv)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))

	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{name: "Gmail", register: func() error { return gmail_tools.RegisterGmailTools(mcpSrv, sc) }},
		{name: "Directory", register: func() error { return directory_tools.RegisterDirectoryTools(mcpSrv, sc) }},
		{name: "Admin", register: func() error { return admin_tools.RegisterAdminTools(mcpSrv, sc) }},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", reg.name, err)
		}
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, provider *instrumentation.Provider) error {
	cfg := sc.Config()
	logger := sc.Logger()

	var metricsServer *server.MetricsServer
	if cfg.Metrics.Enabled {
		if !provider.Enabled() {
			logger.Warn("metrics listener requested but instrumentation is disabled")
		} else {
			var err error
			metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
				Addr:                    cfg.Metrics.Addr,
				InstrumentationProvider: provider,
				Logger:                  logger,
			})
			if err != nil {
				return fmt.Errorf("failed to create metrics server: %w", err)
			}
		}
	}

	httpServer := server.NewHTTPServer(mcpSrv, sc)

	errCh := make(chan error, 2)
	go func() {
		errCh <- httpServer.Start(cfg.Server.HTTPAddr)
	}()
	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(); err != nil {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
		if serveErr != nil {
			logger.Error("server stopped", logging.Err(serveErr))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown failed", logging.Err(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown failed", logging.Err(err))
		}
	}
	return serveErr
}
