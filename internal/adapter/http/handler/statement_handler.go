package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/parceldesk/ledger/internal/adapter/http/dto"
	"github.com/parceldesk/ledger/internal/infrastructure/metrics"
	"github.com/parceldesk/ledger/internal/usecase"
)

// StatementService defines the behavior needed by StatementHandler.
type StatementService interface {
	GetStatement(ctx context.Context, input usecase.StatementInput) (*usecase.Statement, error)
}

// RecalcService defines the recalculation behavior needed by
// StatementHandler.
type RecalcService interface {
	Recalculate(ctx context.Context, accountID string) (*usecase.RecalcResult, error)
	Verify(ctx context.Context, accountID string) (*usecase.VerifyResult, error)
}

// StatementHandler serves account statements and recalculation
// endpoints.
type StatementHandler struct {
	statementUC StatementService
	recalcUC    RecalcService
	metrics     *metrics.Metrics
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementUC StatementService, recalcUC RecalcService, m *metrics.Metrics) *StatementHandler {
	return &StatementHandler{
		statementUC: statementUC,
		recalcUC:    recalcUC,
		metrics:     m,
	}
}

// GetStatement returns one page of an account's ledger. With
// recalculate=true the full-history engine runs before the page is
// sliced.
func (h *StatementHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	input := usecase.StatementInput{
		AccountID:   id,
		From:        parseTimeQuery(r, "from"),
		To:          parseTimeQuery(r, "to"),
		Page:        parseIntQuery(r, "page", 1),
		Limit:       parseIntQuery(r, "limit", 0),
		Recalculate: parseBoolQuery(r, "recalculate"),
	}

	statement, err := h.statementUC.GetStatement(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get statement", err.Error())
		return
	}

	if h.metrics != nil {
		mode := "stored"
		if input.Recalculate {
			mode = "recalculated"
		}
		h.metrics.StatementsServed.WithLabelValues(mode).Inc()
	}

	writeJSON(w, http.StatusOK, dto.StatementFromUseCase(statement))
}

// Recalculate rebuilds the account's running balances from its full
// history.
func (h *StatementHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	start := time.Now()
	result, err := h.recalcUC.Recalculate(r.Context(), id)
	if err != nil {
		h.recordRecalc("unknown", "error", nil, time.Since(start))
		writeError(w, mapDomainError(err), "failed to recalculate", err.Error())
		return
	}

	h.recordRecalc(string(result.Account.Kind), "ok", result, time.Since(start))

	writeJSON(w, http.StatusOK, dto.RecalculationFromUseCase(result))
}

// Verify replays the account's history without writing and reports
// whether the stored balances match.
func (h *StatementHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	result, err := h.recalcUC.Verify(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to verify", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.VerificationFromUseCase(result))
}

func (h *StatementHandler) recordRecalc(kind, status string, result *usecase.RecalcResult, elapsed time.Duration) {
	if h.metrics == nil {
		return
	}

	h.metrics.RecalculationsTotal.WithLabelValues(kind, status).Inc()
	h.metrics.RecalculationDuration.Observe(elapsed.Seconds())

	if result == nil {
		return
	}

	h.metrics.RecalculatedTransactions.Observe(float64(result.Updated))
	if result.Warnings > 0 {
		h.metrics.SentinelWarnings.Inc()
	}

	balance, _ := result.FinalBalance.Float64()
	h.metrics.AccountBalance.WithLabelValues(result.Account.ID, kind).Set(balance)
}
