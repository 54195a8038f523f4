package gmail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/teemow/workspace-console/internal/apperr"
	"github.com/teemow/workspace-console/internal/batch"
	"github.com/teemow/workspace-console/internal/google"
	"github.com/teemow/workspace-console/internal/instrumentation"
	"github.com/teemow/workspace-console/internal/logging"
)

// Harvester defaults.
const (
	DefaultWorkers    = 4
	DefaultAPITimeout = 30 * time.Second
)

// CredentialSource acquires delegated credentials.
type CredentialSource interface {
	Acquire(ctx context.Context, adminEmail string, scopes ...string) (*google.Credential, error)
}

// HarvesterConfig configures a Harvester.
type HarvesterConfig struct {
	Credentials CredentialSource

	// NewService builds the Gmail client for each call (default: NewServiceFactory()).
	NewService ServiceFactory

	// PageSize is the list page size (default: 100).
	PageSize int64

	// Workers bounds concurrent message fetches (default: 4, 1 = sequential).
	Workers int

	// RequestsPerSecond limits message fetches. 0 disables limiting.
	RequestsPerSecond float64
	Burst             int

	// APITimeout bounds each Gmail API call (default: 30s).
	APITimeout time.Duration

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

// Harvester lists the messages of a mailbox in a date range and classifies their headers.
type Harvester struct {
	cfg     HarvesterConfig
	limiter batch.Limiter
	logger  *slog.Logger
}

// NewHarvester creates a Harvester.
func NewHarvester(cfg HarvesterConfig) *Harvester {
	if cfg.NewService == nil {
		cfg.NewService = NewServiceFactory()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.APITimeout <= 0 {
		cfg.APITimeout = DefaultAPITimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &Harvester{
		cfg:    cfg,
		logger: logging.WithService(logger, instrumentation.ServiceGmail),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return h
}

// Harvest lists every message of mailboxID matching r, fetches each one raw and
// classifies its header block.
//
// Items keep listing order. A message that cannot be fetched or decoded becomes
// an item carrying only its id and error; the rest of the batch continues.
// Credential failures, listing failures and cancellation fail the whole call.
func (h *Harvester) Harvest(ctx context.Context, adminEmail, mailboxID string, r DateRange) (*HarvestReport, error) {
	if err := google.ValidateAdminEmail(adminEmail); err != nil {
		return nil, err
	}
	mailboxID = strings.TrimSpace(mailboxID)
	if mailboxID == "" {
		return nil, apperr.Required("mailboxId")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	report := &HarvestReport{
		RunID:   ulid.Make().String(),
		Mailbox: mailboxID,
		Query:   r.Query(),
	}
	logger := h.logger.With(slog.String("run_id", report.RunID), logging.Domain(adminEmail))

	cred, err := h.cfg.Credentials.Acquire(ctx, adminEmail, google.ScopeGmailReadonly)
	if err != nil {
		return nil, err
	}
	svc, err := h.cfg.NewService(ctx, cred.Client(ctx))
	if err != nil {
		return nil, err
	}

	ids, err := h.listAll(ctx, svc, mailboxID, report.Query)
	if err != nil {
		return nil, err
	}
	logger.Debug("listed messages", slog.Int("count", len(ids)), slog.String("query", report.Query))

	items, err := batch.Process(ctx, ids, batch.Options{Workers: h.cfg.Workers, Limiter: h.limiter},
		func(ctx context.Context, id string) (HeaderAnalysis, error) {
			return h.analyze(ctx, svc, mailboxID, id)
		})
	if err != nil {
		return nil, fmt.Errorf("harvest aborted: %w", err)
	}

	report.Items = make([]HeaderAnalysis, 0, len(items))
	for _, it := range items {
		if it.Err != nil {
			h.cfg.Metrics.RecordHarvestItemError(ctx, string(apperr.KindOf(it.Err)))
			logger.Warn("message skipped", slog.String("message_id", it.ID), logging.Err(it.Err))
			report.Items = append(report.Items, HeaderAnalysis{ID: it.ID, Error: it.Err.Error()})
			continue
		}
		if it.Value.Verdict == VerdictSpam {
			report.Spam++
		}
		report.Items = append(report.Items, it.Value)
	}
	report.Summary = batch.Summarize(items)

	logger.Info("harvest completed",
		slog.Int("total", report.Summary.Total),
		slog.Int("failed", report.Summary.Failed),
		slog.Int("spam", report.Spam))
	return report, nil
}

// listAll follows NextPageToken until the listing is exhausted.
func (h *Harvester) listAll(ctx context.Context, svc MessageService, mailbox, query string) ([]string, error) {
	ids := []string{}
	pageToken := ""
	for {
		var page []string
		var next string
		err := h.call(ctx, instrumentation.OperationList, func(ctx context.Context) error {
			var err error
			page, next, err = svc.ListMessageIDs(ctx, mailbox, query, pageToken, h.cfg.PageSize)
			return err
		})
		if err != nil {
			return nil, apperr.FromGoogle(instrumentation.ServiceGmail, "messages.list", err)
		}
		ids = append(ids, page...)
		if next == "" {
			return ids, nil
		}
		pageToken = next
	}
}

func (h *Harvester) analyze(ctx context.Context, svc MessageService, mailbox, id string) (HeaderAnalysis, error) {
	var raw string
	err := h.call(ctx, instrumentation.OperationGet, func(ctx context.Context) error {
		var err error
		raw, err = svc.GetRaw(ctx, mailbox, id)
		return err
	})
	if err != nil {
		return HeaderAnalysis{}, apperr.FromGoogle(instrumentation.ServiceGmail, "messages.get", err)
	}

	msg, err := DecodeRaw(raw)
	if err != nil {
		return HeaderAnalysis{}, err
	}

	header := HeaderText(msg)
	analysis := Classify(header)
	h.cfg.Metrics.RecordClassification(ctx, strings.ToLower(string(analysis.Verdict)))

	return HeaderAnalysis{
		ID:         id,
		Subject:    Subject(header),
		Verdict:    analysis.Verdict,
		Findings:   analysis.Findings,
		SpamReport: analysis.Report(),
	}, nil
}

// call runs one Gmail API call under the per-call timeout.
func (h *Harvester) call(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.APITimeout)
	defer cancel()
	return instrumentation.ObserveGoogleCall(ctx, h.cfg.Metrics, instrumentation.ServiceGmail, operation, fn)
}
