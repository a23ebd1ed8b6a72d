package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parceldesk/ledger/internal/adapter/http/dto"
	"github.com/parceldesk/ledger/internal/domain"
	"github.com/parceldesk/ledger/internal/infrastructure/metrics"
	"github.com/parceldesk/ledger/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	Append(ctx context.Context, input usecase.AppendTransactionInput) (*domain.Transaction, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	transactionUC TransactionService
	accountUC     AccountService
	metrics       *metrics.Metrics
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService, accountUC AccountService, m *metrics.Metrics) *TransactionHandler {
	return &TransactionHandler{
		transactionUC: transactionUC,
		accountUC:     accountUC,
		metrics:       m,
	}
}

// Append appends a transaction to an account's ledger. A
// starting-balance reference upserts the account's sentinel row
// instead of adding a new one.
func (h *TransactionHandler) Append(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.AppendTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.transactionUC.Append(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to append transaction", err.Error())
		return
	}

	if h.metrics != nil {
		if account, err := h.accountUC.GetAccount(r.Context(), id); err == nil {
			h.metrics.TransactionsAppended.WithLabelValues(string(account.Kind), string(txn.Type)).Inc()
		}
		amount, _ := txn.Amount.Float64()
		h.metrics.TransactionAmount.Observe(amount)
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}
