package directory

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/workspace-console/internal/apperr"
	"github.com/teemow/workspace-console/internal/google"
	"github.com/teemow/workspace-console/internal/instrumentation"
	"github.com/teemow/workspace-console/internal/logging"
)

// DefaultAPITimeout bounds each Directory API call.
const DefaultAPITimeout = 30 * time.Second

// CredentialSource acquires delegated credentials.
type CredentialSource interface {
	Acquire(ctx context.Context, adminEmail string, scopes ...string) (*google.Credential, error)
}

// ListerConfig configures a Lister.
type ListerConfig struct {
	Credentials CredentialSource
	NewService  ServiceFactory
	PageSize    int64
	APITimeout  time.Duration
	Logger      *slog.Logger
	Metrics     *instrumentation.Metrics
}

// Lister lists every user of a Workspace domain.
type Lister struct {
	cfg    ListerConfig
	logger *slog.Logger
}

// NewLister creates a Lister.
func NewLister(cfg ListerConfig) *Lister {
	if cfg.NewService == nil {
		cfg.NewService = NewServiceFactory()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.APITimeout <= 0 {
		cfg.APITimeout = DefaultAPITimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Lister{cfg: cfg, logger: logging.WithService(logger, instrumentation.ServiceDirectory)}
}

// List returns every user of domain in provider order, following page tokens
// until the listing is exhausted. The credential impersonates adminEmail with the
// read-only directory scope.
func (l *Lister) List(ctx context.Context, adminEmail, domain string) ([]UserRecord, error) {
	if err := google.ValidateAdminEmail(adminEmail); err != nil {
		return nil, err
	}
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, apperr.Required("domain")
	}
	if strings.Contains(domain, "@") {
		return nil, apperr.Validation("domain", "must be a domain name, got %q", domain)
	}

	cred, err := l.cfg.Credentials.Acquire(ctx, adminEmail, google.ScopeDirectoryUserReadonly)
	if err != nil {
		return nil, err
	}
	svc, err := l.cfg.NewService(ctx, cred.Client(ctx))
	if err != nil {
		return nil, err
	}

	records := []UserRecord{}
	pageToken := ""
	pages := 0
	for {
		var page []UserRecord
		var next string
		err := l.call(ctx, func(ctx context.Context) error {
			var err error
			page, next, err = svc.ListUsers(ctx, domain, pageToken, l.cfg.PageSize)
			return err
		})
		if err != nil {
			return nil, apperr.FromGoogle(instrumentation.ServiceDirectory, "users.list", err)
		}
		records = append(records, page...)
		pages++
		if next == "" {
			break
		}
		pageToken = next
	}

	l.logger.Info("listed domain users",
		logging.Domain(adminEmail),
		slog.Int("count", len(records)),
		slog.Int("pages", pages))
	return records, nil
}

func (l *Lister) call(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.APITimeout)
	defer cancel()
	return instrumentation.ObserveGoogleCall(ctx, l.cfg.Metrics, instrumentation.ServiceDirectory, instrumentation.OperationList, fn)
}
