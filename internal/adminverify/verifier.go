package adminverify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/teemow/workspace-console/internal/apperr"
	"github.com/teemow/workspace-console/internal/directory"
	"github.com/teemow/workspace-console/internal/google"
	"github.com/teemow/workspace-console/internal/instrumentation"
	"github.com/teemow/workspace-console/internal/logging"
	"github.com/teemow/workspace-console/internal/session"
)

// Namespace is the session namespace holding the Verification.
const Namespace = "auth_agent"

// Defaults.
const (
	DefaultUserInfoURL      = "https://openidconnect.googleapis.com/v1/userinfo"
	UserInfoTimeout         = 10 * time.Second
	DefaultDirectoryTimeout = 30 * time.Second
)

// Messages returned when no verdict could be reached.
const (
	MsgNoAccessToken = "Failure: no access token is available for this session. Sign in with Google first."
	MsgNoUserEmail   = "Failure: the user's email address could not be determined."
)

// Verification is the cached verdict. The JSON keys are the session layout.
type Verification struct {
	ResultMessage string `json:"result_message"`
	IsSuperAdmin  bool   `json:"is_super_admin"`
	UserEmail     string `json:"user_email"`
}

// Config configures a Verifier.
type Config struct {
	// UserInfoURL is the OpenID userinfo endpoint (default: Google's).
	UserInfoURL string

	// DirectoryTimeout bounds the directory lookup (default: 30s).
	DirectoryTimeout time.Duration

	// NewDirectory builds the directory client for the user's token (default: Directory API).
	NewDirectory directory.ServiceFactory

	// HTTPClient is the base client for outgoing requests. Optional.
	HTTPClient *http.Client

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

// Verifier runs super-admin verification. Calls for the same session are collapsed
// so only one verification per session is in flight.
type Verifier struct {
	cfg    Config
	group  singleflight.Group
	logger *slog.Logger

	mu      sync.Mutex
	flights map[string]*flight
	nextGen uint64
}

// flight is the shared work context of one session's in-flight verification.
// It is canceled when its last waiter leaves.
type flight struct {
	key     string
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// New creates a Verifier.
func New(cfg Config) *Verifier {
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = DefaultUserInfoURL
	}
	if cfg.DirectoryTimeout <= 0 {
		cfg.DirectoryTimeout = DefaultDirectoryTimeout
	}
	if cfg.NewDirectory == nil {
		cfg.NewDirectory = directory.NewServiceFactory()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		cfg:     cfg,
		logger:  logging.WithOperation(logger, "admin.verify"),
		flights: map[string]*flight{},
	}
}

// Verify returns the verification message for the session. A cached verdict is
// returned without network calls; otherwise the verdict is derived with
// accessToken and cached. Errors are rendered as failure messages and not cached.
func (v *Verifier) Verify(ctx context.Context, cache session.State, accessToken string) string {
	res, err := v.Check(ctx, cache, accessToken)
	if err != nil {
		return FailureMessage(err)
	}
	return res.ResultMessage
}

// Check is Verify with structured results.
func (v *Verifier) Check(ctx context.Context, cache session.State, accessToken string) (*Verification, error) {
	if cached, err := v.Cached(ctx, cache); err != nil {
		return nil, err
	} else if cached != nil {
		v.cfg.Metrics.RecordVerificationCache(ctx, true)
		return cached, nil
	}
	v.cfg.Metrics.RecordVerificationCache(ctx, false)

	if accessToken == "" {
		return nil, errNoAccessToken
	}

	f := v.join(ctx, cache.ID())
	defer v.leave(cache.ID(), f)

	work := f.ctx
	ch := v.group.DoChan(f.key, func() (any, error) {
		if cached, err := v.Cached(work, cache); err != nil || cached != nil {
			return cached, err
		}
		return v.derive(work, cache, accessToken)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Verification), nil
	}
}

// join registers a waiter on the session's flight, starting one if none is active.
// The work context keeps the values of the first caller's ctx.
func (v *Verifier) join(ctx context.Context, sessionID string) *flight {
	v.mu.Lock()
	defer v.mu.Unlock()

	f, ok := v.flights[sessionID]
	if !ok {
		v.nextGen++
		work, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{key: fmt.Sprintf("%s#%d", sessionID, v.nextGen), ctx: work, cancel: cancel}
		v.flights[sessionID] = f
	}
	f.waiters++
	return f
}

// leave drops a waiter. The last one cancels the flight's calls.
func (v *Verifier) leave(sessionID string, f *flight) {
	v.mu.Lock()
	defer v.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if v.flights[sessionID] == f {
		delete(v.flights, sessionID)
	}
}

// Cached returns the verification stored in the session, or nil.
func (v *Verifier) Cached(ctx context.Context, cache session.State) (*Verification, error) {
	var res Verification
	ok, err := cache.Load(ctx, Namespace, &res)
	if err != nil {
		return nil, fmt.Errorf("failed to read verification cache: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &res, nil
}

func (v *Verifier) derive(ctx context.Context, cache session.State, accessToken string) (*Verification, error) {
	client := google.NewBearerClient(v.clientContext(ctx), accessToken, 0)

	email, err := v.userEmail(ctx, client)
	if err != nil {
		return nil, err
	}

	isAdmin, err := v.isSuperAdmin(ctx, client, email)
	if err != nil {
		return nil, err
	}

	res := &Verification{
		ResultMessage: resultMessage(email, isAdmin),
		IsSuperAdmin:  isAdmin,
		UserEmail:     email,
	}

	// Every waiter has gone; nobody will see this verdict.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored, err := cache.StoreOnce(ctx, Namespace, res)
	if err != nil {
		return nil, fmt.Errorf("failed to cache verification: %w", err)
	}
	if !stored {
		// Another replica won the write; its verdict is authoritative.
		existing, err := v.Cached(ctx, cache)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			res = existing
		}
	}

	v.logger.Info("super admin verification completed",
		logging.Session(cache.ID()),
		logging.UserHash(email),
		slog.Bool("is_super_admin", res.IsSuperAdmin))
	return res, nil
}

func (v *Verifier) isSuperAdmin(ctx context.Context, client *http.Client, email string) (bool, error) {
	svc, err := v.cfg.NewDirectory(ctx, client)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, v.cfg.DirectoryTimeout)
	defer cancel()

	var user directory.UserRecord
	err = instrumentation.ObserveGoogleCall(ctx, v.cfg.Metrics, instrumentation.ServiceDirectory, instrumentation.OperationGet,
		func(ctx context.Context) error {
			var err error
			user, err = svc.GetUser(ctx, email)
			return err
		})
	if err != nil {
		return false, apperr.FromGoogle(instrumentation.ServiceDirectory, "users.get", err)
	}
	return user.IsAdmin, nil
}

func (v *Verifier) clientContext(ctx context.Context) context.Context {
	if v.cfg.HTTPClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, v.cfg.HTTPClient)
}

func resultMessage(email string, isAdmin bool) string {
	if isAdmin {
		return fmt.Sprintf("Success: %s is a super administrator.", email)
	}
	return fmt.Sprintf("Failure: %s is not a super administrator.", email)
}

var (
	errNoAccessToken = errors.New("no access token")
	errNoUserEmail   = errors.New("userinfo response has no email")
)

// FailureMessage renders an error from Check as a user-facing message.
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, errNoAccessToken):
		return MsgNoAccessToken
	case errors.Is(err, errNoUserEmail):
		return MsgNoUserEmail
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Failure: verification was interrupted: " + err.Error()
	}

	var apiErr *apperr.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Service {
		case instrumentation.ServiceUserInfo:
			return "Failure: userinfo request failed: " + apiErr.Message
		case instrumentation.ServiceDirectory:
			return "Failure: Admin SDK request failed: " + apiErr.Message
		}
	}
	return "Failure: " + err.Error()
}
