package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/workspace-console/internal/apperr"
	"github.com/teemow/workspace-console/internal/instrumentation"
	"github.com/teemow/workspace-console/internal/logging"
)

// Default timeouts for delegated credentials.
const (
	DefaultExchangeTimeout = 15 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
)

// BrokerConfig configures a CredentialBroker.
type BrokerConfig struct {
	// KeyFile is the path to the service-account key JSON. Ignored when KeyJSON is set.
	KeyFile string

	// KeyJSON holds the service-account key JSON directly.
	KeyJSON []byte

	// ExchangeTimeout bounds one token exchange (default: 15s).
	ExchangeTimeout time.Duration

	// RequestTimeout bounds each request made through a Credential's client (default: 30s).
	RequestTimeout time.Duration

	// HTTPClient performs the token exchange. Optional.
	HTTPClient *http.Client

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

// Credential is a short-lived delegated access token.
// It belongs to the caller that acquired it and must not be shared or persisted.
type Credential struct {
	AccessToken string
	Scopes      []string
	Expiry      time.Time

	requestTimeout time.Duration
}

// Client returns an HTTP client that sends the credential as a bearer token.
func (c *Credential) Client(ctx context.Context) *http.Client {
	return NewBearerClient(ctx, c.AccessToken, c.requestTimeout)
}

// LogValue keeps the token out of logs.
func (c *Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("token", logging.SanitizeToken(c.AccessToken)),
		slog.Int("scopes", len(c.Scopes)),
		slog.Time("expiry", c.Expiry),
	)
}

// CredentialBroker exchanges the service-account key for tokens that act as a
// Workspace administrator (domain-wide delegation).
type CredentialBroker struct {
	cfg    BrokerConfig
	logger *slog.Logger
}

// NewCredentialBroker creates a broker. The key is read on every Acquire so a
// rotated key file is picked up without a restart.
func NewCredentialBroker(cfg BrokerConfig) *CredentialBroker {
	if cfg.ExchangeTimeout <= 0 {
		cfg.ExchangeTimeout = DefaultExchangeTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialBroker{
		cfg:    cfg,
		logger: logging.WithOperation(logger, "credential.acquire"),
	}
}

// Acquire performs one token exchange impersonating adminEmail with the given scopes.
//
// Invalid arguments yield a *apperr.ValidationError. A missing or malformed key and
// any rejection by the identity provider yield a *apperr.AuthError. There is no retry.
// If ctx is done before the exchange completes, ctx.Err() is returned wrapped.
func (b *CredentialBroker) Acquire(ctx context.Context, adminEmail string, scopes ...string) (*Credential, error) {
	if err := ValidateAdminEmail(adminEmail); err != nil {
		return nil, err
	}
	if len(scopes) == 0 {
		return nil, apperr.Required("scopes")
	}

	key, err := b.loadKey()
	if err != nil {
		return nil, apperr.Auth("load service account key", err)
	}

	conf, err := google.JWTConfigFromJSON(key, scopes...)
	if err != nil {
		return nil, apperr.Auth("parse service account key", err)
	}
	conf.Subject = adminEmail

	start := time.Now()
	tok, err := b.exchange(ctx, conf.TokenSource)
	if err != nil {
		b.cfg.Metrics.RecordCredentialExchange(ctx, instrumentation.CredentialResultFailure, adminEmail, time.Since(start))
		b.logger.Warn("delegated token exchange failed",
			logging.Domain(adminEmail),
			logging.Err(err))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("credential exchange: %w", ctxErr)
		}
		return nil, apperr.Auth("exchange delegated token", err)
	}

	b.cfg.Metrics.RecordCredentialExchange(ctx, instrumentation.CredentialResultSuccess, adminEmail, time.Since(start))
	b.logger.Debug("delegated token acquired",
		logging.Domain(adminEmail),
		slog.Int("scopes", len(scopes)),
		slog.Duration(logging.KeyDuration, time.Since(start)))

	return &Credential{
		AccessToken:    tok.AccessToken,
		Scopes:         append([]string(nil), scopes...),
		Expiry:         tok.Expiry,
		requestTimeout: b.cfg.RequestTimeout,
	}, nil
}

// exchange runs the token request under the exchange timeout. The JWT flow does not
// pass its context to the HTTP request, so the timeout is also set on the client and
// the caller's context is watched separately.
func (b *CredentialBroker) exchange(ctx context.Context, source func(context.Context) oauth2.TokenSource) (*oauth2.Token, error) {
	base := b.cfg.HTTPClient
	if base == nil {
		base = &http.Client{}
	}
	client := *base
	client.Timeout = b.cfg.ExchangeTimeout

	ctx, cancel := context.WithTimeout(ctx, b.cfg.ExchangeTimeout)
	defer cancel()
	exchangeCtx := context.WithValue(ctx, oauth2.HTTPClient, &client)

	type result struct {
		tok *oauth2.Token
		err error
	}
	ch := make(chan result, 1)
	go func() {
		tok, err := source(exchangeCtx).Token()
		ch <- result{tok, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err == nil && (r.tok == nil || r.tok.AccessToken == "") {
			return nil, errors.New("identity provider returned an empty access token")
		}
		return r.tok, r.err
	}
}

func (b *CredentialBroker) loadKey() ([]byte, error) {
	if len(b.cfg.KeyJSON) > 0 {
		return b.cfg.KeyJSON, nil
	}
	if b.cfg.KeyFile == "" {
		return nil, errors.New("no service account key configured")
	}
	data, err := os.ReadFile(b.cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return data, nil
}

// ValidateAdminEmail checks that email looks like a mailbox address.
func ValidateAdminEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.Required("adminEmail")
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return apperr.Validation("adminEmail", "must be an email address, got %q", email)
	}
	return nil
}
