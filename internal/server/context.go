package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/giantswarm/mcp-oauth/storage/memory"

	"github.com/teemow/workspace-console/internal/adminverify"
	"github.com/teemow/workspace-console/internal/config"
	"github.com/teemow/workspace-console/internal/directory"
	"github.com/teemow/workspace-console/internal/gmail"
	"github.com/teemow/workspace-console/internal/google"
	"github.com/teemow/workspace-console/internal/instrumentation"
	"github.com/teemow/workspace-console/internal/session"
)

// Options configures a ServerContext. Zero-valued components are built from Config.
type Options struct {
	Config      config.Config
	Logger      *slog.Logger
	Metrics     *instrumentation.Metrics
	AuditLogger *instrumentation.AuditLogger

	// Sessions overrides the session store built from Config.Session.
	Sessions session.Store

	// Credentials overrides the delegated credential broker.
	Credentials interface {
		gmail.CredentialSource
		directory.CredentialSource
	}

	// Service factories, e.g. pointing at test servers.
	GmailService     gmail.ServiceFactory
	DirectoryService directory.ServiceFactory
}

// ServerContext holds the components shared by all tool handlers.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg         config.Config
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	harvester  *gmail.Harvester
	lister     *directory.Lister
	verifier   *adminverify.Verifier
	sessions   session.Store
	tokenStore *memory.Store
	tokens     *google.SessionTokenProvider

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext wires the components for opts.Config.
func NewServerContext(ctx context.Context, opts Options) (*ServerContext, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sessions := opts.Sessions
	if sessions == nil {
		var err error
		sessions, err = session.New(ctx, session.Options{
			Backend:     cfg.Session.Backend,
			IdleTimeout: cfg.Session.IdleTimeout,
			Redis: session.RedisOptions{
				URL:    cfg.Session.RedisURL,
				Prefix: cfg.Session.RedisPrefix,
			},
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create session store: %w", err)
		}
	}

	creds := opts.Credentials
	if creds == nil {
		creds = google.NewCredentialBroker(google.BrokerConfig{
			KeyFile:         cfg.Google.ServiceAccountKeyFile,
			ExchangeTimeout: cfg.Timeouts.Exchange,
			RequestTimeout:  cfg.Timeouts.API,
			Logger:          logger,
			Metrics:         opts.Metrics,
		})
	}

	tokenStore := memory.New()
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:         shutdownCtx,
		cancel:      cancel,
		cfg:         cfg,
		logger:      logger,
		metrics:     opts.Metrics,
		auditLogger: opts.AuditLogger,
		harvester: gmail.NewHarvester(gmail.HarvesterConfig{
			Credentials:       creds,
			NewService:        opts.GmailService,
			PageSize:          cfg.Gmail.PageSize,
			Workers:           cfg.Gmail.Workers,
			RequestsPerSecond: cfg.Gmail.RequestsPerSecond,
			Burst:             cfg.Gmail.Burst,
			APITimeout:        cfg.Timeouts.API,
			Logger:            logger,
			Metrics:           opts.Metrics,
		}),
		lister: directory.NewLister(directory.ListerConfig{
			Credentials: creds,
			NewService:  opts.DirectoryService,
			PageSize:    directory.DefaultPageSize,
			APITimeout:  cfg.Timeouts.API,
			Logger:      logger,
			Metrics:     opts.Metrics,
		}),
		verifier: adminverify.New(adminverify.Config{
			UserInfoURL:      cfg.Google.UserInfoURL,
			DirectoryTimeout: cfg.Timeouts.API,
			NewDirectory:     opts.DirectoryService,
			Logger:           logger,
			Metrics:          opts.Metrics,
		}),
		sessions:   sessions,
		tokenStore: tokenStore,
		tokens:     google.NewSessionTokenProvider(tokenStore),
	}, nil
}

// Context returns the server context, canceled on Shutdown.
func (sc *ServerContext) Context() context.Context { return sc.ctx }

// Config returns the configuration the server was built with.
func (sc *ServerContext) Config() config.Config { return sc.cfg }

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger { return sc.logger }

// Metrics returns the metrics recorder. It may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics { return sc.metrics }

// AuditLogger returns the audit logger. It may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger { return sc.auditLogger }

// Harvester returns the mail header harvester.
func (sc *ServerContext) Harvester() *gmail.Harvester { return sc.harvester }

// Lister returns the directory lister.
func (sc *ServerContext) Lister() *directory.Lister { return sc.lister }

// Verifier returns the super-admin verifier.
func (sc *ServerContext) Verifier() *adminverify.Verifier { return sc.verifier }

// Sessions returns the session state store.
func (sc *ServerContext) Sessions() session.Store { return sc.sessions }

// Tokens returns the store of end-user tokens forwarded per MCP session.
func (sc *ServerContext) Tokens() *google.SessionTokenProvider { return sc.tokens }

// ToolTimeout bounds a single tool invocation.
func (sc *ServerContext) ToolTimeout() time.Duration { return sc.cfg.Timeouts.Tool }

// DropSession discards the state and the forwarded access token of an ended MCP session.
func (sc *ServerContext) DropSession(ctx context.Context, sessionID string) {
	if err := sc.sessions.Drop(ctx, sessionID); err != nil {
		sc.logger.Warn("failed to drop session state", "session_id", sessionID, "error", err)
	}
	if err := sc.tokens.DeleteToken(ctx, sessionID); err != nil {
		sc.logger.Warn("failed to delete forwarded token", "session_id", sessionID, "error", err)
	}
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context and releases the stores.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}
	sc.shutdown = true
	sc.cancel()
	sc.tokenStore.Stop()
	return sc.sessions.Close()
}
