package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/parceldesk/ledger/internal/adapter/http/dto"
	"github.com/parceldesk/ledger/internal/domain"
	"github.com/parceldesk/ledger/internal/usecase"
)

type transactionServiceStub struct {
	appendFn func(ctx context.Context, input usecase.AppendTransactionInput) (*domain.Transaction, error)
}

func (s *transactionServiceStub) Append(ctx context.Context, input usecase.AppendTransactionInput) (*domain.Transaction, error) {
	return s.appendFn(ctx, input)
}

func TestTransactionHandler_Append_Success(t *testing.T) {
	var captured usecase.AppendTransactionInput
	handler := NewTransactionHandler(&transactionServiceStub{
		appendFn: func(ctx context.Context, input usecase.AppendTransactionInput) (*domain.Transaction, error) {
			captured = input
			return &domain.Transaction{
				ID:              "t-1",
				AccountID:       input.AccountID,
				Type:            input.Type,
				Amount:          input.Amount,
				Description:     input.Description,
				PreviousBalance: decimal.Zero,
				NewBalance:      input.Amount,
			}, nil
		},
	}, &accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return &domain.Account{ID: id, Kind: domain.PartyVendor}, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.AppendTransactionRequest{
		Type:        "DEBIT",
		Amount:      decimal.RequireFromString("42.50"),
		Description: "freight charges",
		Invoice:     "17",
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost,
		"/accounts/acc-1/transactions", bytes.NewReader(body)), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Append(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.AccountID != "acc-1" || captured.Invoice != "17" {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "t-1" || !resp.NewBalance.Equal(decimal.RequireFromString("42.5")) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTransactionHandler_Append_ValidationError(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		appendFn: func(ctx context.Context, input usecase.AppendTransactionInput) (*domain.Transaction, error) {
			return nil, domain.ErrMissingDescription
		},
	}, nil, nil)

	body, _ := json.Marshal(dto.AppendTransactionRequest{Type: "DEBIT"})
	req := withURLParam(httptest.NewRequest(http.MethodPost,
		"/accounts/acc-1/transactions", bytes.NewReader(body)), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Append(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransactionHandler_Append_InvalidJSON(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		appendFn: func(ctx context.Context, input usecase.AppendTransactionInput) (*domain.Transaction, error) {
			t.Fatal("Append should not be called for invalid payload")
			return nil, nil
		},
	}, nil, nil)

	req := withURLParam(httptest.NewRequest(http.MethodPost,
		"/accounts/acc-1/transactions", bytes.NewBufferString("not json")), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Append(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
