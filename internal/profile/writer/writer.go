// Package writer persists identity references with "first write wins, then
// capped appends" semantics on top of the repository's create-if-absent.
//
// The writer keeps two per-instance markers:
//   - attempted: (account, normalized name) pairs already stored or found. A
//     repeated Store for the pair returns Cached without touching the repository.
//   - in-flight: accounts with a write currently running. A concurrent Store for
//     the same account returns InProgress without touching the repository.
package writer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"profileguard/internal/profile/metrics"
	"profileguard/internal/profile/models"
	"profileguard/internal/profile/ports"
	id "profileguard/pkg/domain"
	dErrors "profileguard/pkg/domain-errors"
	"profileguard/pkg/platform/audit"
	"profileguard/pkg/requestcontext"
)

type (
	Repository     = ports.Repository
	AuditPublisher = ports.AuditPublisher
)

type Writer struct {
	repo           Repository
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	clock          func() time.Time

	mu        sync.Mutex
	attempted map[id.AccountID]map[string]struct{}
	inFlight  map[id.AccountID]struct{}
}

type Option func(*Writer)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		w.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Writer) {
		w.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(w *Writer) {
		w.auditPublisher = publisher
	}
}

// WithClock overrides the storedAt stamp source. Without it the request time
// from the context is used.
func WithClock(clock func() time.Time) Option {
	return func(w *Writer) {
		w.clock = clock
	}
}

func New(repo Repository, opts ...Option) (*Writer, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}

	w := &Writer{
		repo:      repo,
		attempted: make(map[id.AccountID]map[string]struct{}),
		inFlight:  make(map[id.AccountID]struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Store records identity as a reference for the account unless it is already
// known. Errors are returned as-is in meaning: the caller decides whether to
// fail open or closed.
func (w *Writer) Store(ctx context.Context, accountID id.AccountID, identity models.ArtifactIdentity, source id.Source) (models.StoreResult, error) {
	if accountID.IsNil() {
		return models.StoreResult{}, dErrors.New(dErrors.CodeBadRequest, "account_id is required")
	}
	if !identity.HasName() {
		return models.StoreResult{}, dErrors.New(dErrors.CodeInvalidInput, "identity name is required")
	}
	if identity.IsSample() {
		return models.StoreResult{}, dErrors.New(dErrors.CodeInvalidInput, "sample profile is never stored")
	}

	key := identity.NormalizedName()

	w.mu.Lock()
	if w.attemptedLocked(accountID, key) {
		w.mu.Unlock()
		w.metrics.IncrementWriterResult("cached")
		return models.StoreResult{Cached: true}, nil
	}
	if _, busy := w.inFlight[accountID]; busy {
		w.mu.Unlock()
		w.metrics.IncrementWriterResult("in_progress")
		return models.StoreResult{InProgress: true}, nil
	}
	w.inFlight[accountID] = struct{}{}
	w.mu.Unlock()

	ref := identity.Reference(source, w.now(ctx))

	start := time.Now()
	res, err := w.repo.CreateReferenceIfAbsent(ctx, accountID, ref)
	w.metrics.ObserveRepositoryLatency("create_reference_if_absent", time.Since(start))

	w.mu.Lock()
	delete(w.inFlight, accountID)
	if err == nil && (res.Created || res.Existing) {
		w.markAttemptedLocked(accountID, key)
	}
	w.mu.Unlock()

	if err != nil {
		w.metrics.IncrementWriterResult("error")
		if w.logger != nil {
			w.logger.ErrorContext(ctx, "failed to store identity reference",
				"account_id", accountID.String(),
				"source", source.String(),
				"error", err,
			)
		}
		return models.StoreResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store identity reference")
	}

	switch {
	case res.Created:
		w.metrics.IncrementWriterResult("stored")
		ports.LogAudit(ctx, w.logger, w.auditPublisher, audit.EventReferenceStored, accountID,
			"source", source.String(),
			"reference_id", ref.ID.String(),
		)
		return models.StoreResult{Stored: true}, nil
	case res.Existing:
		w.metrics.IncrementWriterResult("already_exists")
		return models.StoreResult{AlreadyExists: true}, nil
	default:
		w.metrics.IncrementWriterResult("limit_reached")
		if w.logger != nil {
			w.logger.InfoContext(ctx, "identity reference limit reached",
				"account_id", accountID.String(),
				"source", source.String(),
			)
		}
		return models.StoreResult{LimitReached: true}, nil
	}
}

// HasAttempted reports whether the (account, name) pair is marked as stored.
func (w *Writer) HasAttempted(accountID id.AccountID, name string) bool {
	key := models.ArtifactIdentity{Name: name}.NormalizedName()
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attemptedLocked(accountID, key)
}

// Forget drops the attempted markers for one account, e.g. on logout or
// after a slot purchase.
func (w *Writer) Forget(accountID id.AccountID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.attempted, accountID)
}

// Reset drops every attempted marker. In-flight markers belong to running
// calls and are left alone.
func (w *Writer) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempted = make(map[id.AccountID]map[string]struct{})
}

func (w *Writer) attemptedLocked(accountID id.AccountID, key string) bool {
	names, ok := w.attempted[accountID]
	if !ok {
		return false
	}
	_, ok = names[key]
	return ok
}

func (w *Writer) markAttemptedLocked(accountID id.AccountID, key string) {
	names, ok := w.attempted[accountID]
	if !ok {
		names = make(map[string]struct{})
		w.attempted[accountID] = names
	}
	names[key] = struct{}{}
}

func (w *Writer) now(ctx context.Context) time.Time {
	if w.clock != nil {
		return w.clock()
	}
	return requestcontext.Now(ctx)
}
