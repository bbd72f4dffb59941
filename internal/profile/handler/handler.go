// Package handler exposes the profile guard over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"profileguard/internal/profile/models"
	"profileguard/internal/profile/ports"
	"profileguard/internal/profile/quota"
	id "profileguard/pkg/domain"
	dErrors "profileguard/pkg/domain-errors"
	"profileguard/pkg/platform/audit"
	"profileguard/pkg/platform/httputil"
	"profileguard/pkg/platform/sentinel"
	"profileguard/pkg/requestcontext"
)

// Guard decides access for one artifact.
type Guard interface {
	Decide(ctx context.Context, accountID id.AccountID, artifact models.ArtifactIdentity, source id.Source) models.Decision
	LastBlocked(accountID id.AccountID) (models.ArtifactIdentity, bool)
}

// Writer stores references and owns the attempted markers.
type Writer interface {
	Store(ctx context.Context, accountID id.AccountID, identity models.ArtifactIdentity, source id.Source) (models.StoreResult, error)
	Forget(accountID id.AccountID)
}

// Reader is the read side of the repository.
type Reader interface {
	GetReferenceSet(ctx context.Context, accountID id.AccountID) (models.ReferenceSet, error)
	GetQuotaInfo(ctx context.Context, accountID id.AccountID) (models.AccountQuotaInfo, error)
}

// Handler wires profile endpoints to the guard, the writer and the store.
type Handler struct {
	guard          Guard
	writer         Writer
	reader         Reader
	admin          ports.AccountAdmin
	auditPublisher ports.AuditPublisher
	logger         *slog.Logger
}

// New constructs a profile handler. admin and auditPublisher may be nil.
func New(guard Guard, writer Writer, reader Reader, admin ports.AccountAdmin, auditPublisher ports.AuditPublisher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		guard:          guard,
		writer:         writer,
		reader:         reader,
		admin:          admin,
		auditPublisher: auditPublisher,
		logger:         logger,
	}
}

// Register mounts the account-facing endpoints. The caller applies auth.
func (h *Handler) Register(r chi.Router) {
	r.Post("/profile/access/check", h.HandleCheck)
	r.Get("/profile/references", h.HandleListReferences)
	r.Post("/profile/references", h.HandleStoreReference)
	r.Delete("/profile/references/cache", h.HandleResetCache)
}

// RegisterAdmin mounts operator endpoints. The caller applies the admin token check.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Put("/admin/accounts/{account_id}/quota", h.HandleSetQuota)
}

// HandleCheck handles POST /profile/access/check.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	accountID, ok := h.requireAccount(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[IdentityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	decision := h.guard.Decide(ctx, accountID, req.Identity(), req.ParsedSource())

	h.logger.InfoContext(ctx, "profile access checked",
		"request_id", requestID,
		"account_id", accountID.String(),
		"outcome", string(decision.Outcome),
		"allowed", decision.Allowed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	status := http.StatusOK
	if decision.Outcome == models.OutcomeUnavailable {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, FromDecision(decision))
}

// HandleListReferences handles GET /profile/references.
func (h *Handler) HandleListReferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	accountID, ok := h.requireAccount(w, ctx)
	if !ok {
		return
	}

	set, err := h.reader.GetReferenceSet(ctx, accountID)
	if err != nil {
		h.writeStoreError(w, ctx, requestID, "failed to load identity references", err)
		return
	}
	info, err := h.reader.GetQuotaInfo(ctx, accountID)
	if err != nil {
		h.writeStoreError(w, ctx, requestID, "failed to load quota", err)
		return
	}

	resp := FromReferenceSet(set, info)
	if blocked, ok := h.guard.LastBlocked(accountID); ok {
		resp.LastBlocked = &blocked
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleStoreReference handles POST /profile/references: the upload flow
// captures the first reference without running an access check.
func (h *Handler) HandleStoreReference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	accountID, ok := h.requireAccount(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[IdentityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.writer.Store(ctx, accountID, req.Identity(), req.ParsedSource())
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInvalidInput) || dErrors.Is(err, dErrors.CodeBadRequest) {
			httputil.WriteError(w, err)
			return
		}
		h.writeStoreError(w, ctx, requestID, "failed to store identity reference", err)
		return
	}

	status := http.StatusOK
	switch {
	case result.Stored:
		status = http.StatusCreated
	case result.InProgress:
		status = http.StatusAccepted
	case result.LimitReached:
		status = http.StatusConflict
	}
	httputil.WriteJSON(w, status, result)
}

// HandleResetCache handles DELETE /profile/references/cache.
func (h *Handler) HandleResetCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := h.requireAccount(w, ctx)
	if !ok {
		return
	}

	h.writer.Forget(accountID)
	ports.LogAudit(ctx, h.logger, h.auditPublisher, audit.EventReferenceCacheReset, accountID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetQuota handles PUT /admin/accounts/{account_id}/quota.
func (h *Handler) HandleSetQuota(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if h.admin == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "account administration is not enabled"))
		return
	}

	accountID, err := id.ParseAccountID(chi.URLParam(r, "account_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[SetQuotaRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	info := req.QuotaInfo()

	if err := h.admin.SetQuotaInfo(ctx, accountID, info); err != nil {
		h.writeStoreError(w, ctx, requestID, "failed to update quota", err)
		return
	}
	// A new slot must not be masked by markers recorded under the old quota.
	h.writer.Forget(accountID)

	ports.LogAudit(ctx, h.logger, h.auditPublisher, audit.EventQuotaUpdated, accountID,
		"plan_tier", info.PlanTier.String(),
		"actor_id", "admin",
	)

	httputil.WriteJSON(w, http.StatusOK, &QuotaResponse{
		AccountID:      accountID.String(),
		PlanTier:       info.PlanTier.String(),
		PurchasedSlots: info.PurchasedSlots,
		TotalSlots:     quota.Calculate(info, 0).Total,
	})
}

func (h *Handler) requireAccount(w http.ResponseWriter, ctx context.Context) (id.AccountID, bool) {
	accountID := requestcontext.AccountID(ctx)
	if accountID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return "", false
	}
	return accountID, true
}

func (h *Handler) writeStoreError(w http.ResponseWriter, ctx context.Context, requestID, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestID,
		"account_id", requestcontext.AccountID(ctx).String(),
		"error", err,
	)
	if errors.Is(err, sentinel.ErrUnavailable) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, models.UnavailableMessage))
		return
	}
	httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, msg))
}
