package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	adaptershttp "github.com/parceldesk/ledger/internal/adapter/http"
	"github.com/parceldesk/ledger/internal/adapter/http/dto"
	"github.com/parceldesk/ledger/internal/adapter/http/handler"
	"github.com/parceldesk/ledger/internal/adapter/repository/postgres"
	redisrepo "github.com/parceldesk/ledger/internal/adapter/repository/redis"
	infraredis "github.com/parceldesk/ledger/internal/infrastructure/redis"
	"github.com/parceldesk/ledger/internal/usecase"
	"github.com/parceldesk/ledger/tests/testutil"
)

func newAPIServer(t *testing.T, testDB *testutil.TestDB) (http.Handler, func()) {
	t.Helper()

	ctx := context.Background()
	pool := testDB.Pool

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	txnRepo := postgres.NewTransactionRepository(pool)
	idGen := postgres.NewULIDGenerator()

	accountUC := usecase.NewAccountUseCase(accountRepo, idGen)
	transactionUC := usecase.NewTransactionUseCase(txManager, accountRepo, txnRepo,
		postgres.NewJournalRepository(pool), idGen, nil)
	recalcUC := usecase.NewRecalcUseCase(txManager, accountRepo, txnRepo,
		postgres.NewInvoiceRepository(pool), postgres.NewPaymentRepository(pool),
		postgres.NewNoteRepository(pool),
		redisrepo.NewAccountLocker(redisClient, time.Minute),
		postgres.NewRetrier(), nil)
	statementUC := usecase.NewStatementUseCase(recalcUC, accountRepo, txnRepo)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		StatementHandler:   handler.NewStatementHandler(statementUC, recalcUC, nil),
		TransactionHandler: handler.NewTransactionHandler(transactionUC, accountUC, nil),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:   redisrepo.NewIdempotencyStore(redisClient),
		Logger:             zerolog.Nop(),
	})

	return router, func() { redisClient.Close() }
}

func TestStatementEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	router, closeRedis := newAPIServer(t, testDB)
	defer closeRedis()

	// Create the account through the API.
	createBody, _ := json.Marshal(dto.CreateAccountRequest{
		Kind:        "CUSTOMER",
		CompanyName: "Fjord Distribution AS",
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/", bytes.NewReader(createBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating account, got %d: %s", rec.Code, rec.Body.String())
	}

	var account dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &account); err != nil {
		t.Fatalf("failed to decode account: %v", err)
	}

	appendTxn := func(typ string, amount string, desc string, created time.Time) {
		t.Helper()
		body, _ := json.Marshal(dto.AppendTransactionRequest{
			Type:        typ,
			Amount:      decimal.RequireFromString(amount),
			Description: desc,
			Date:        &created,
		})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/"+account.ID+"/transactions", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 appending transaction, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	appendTxn("DEBIT", "100", "freight charge", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	appendTxn("CREDIT", "25", "partial settlement", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+account.ID+"/statement?recalculate=true", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching statement, got %d: %s", rec.Code, rec.Body.String())
	}

	var statement dto.StatementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &statement); err != nil {
		t.Fatalf("failed to decode statement: %v", err)
	}

	if len(statement.Lines) != 2 {
		t.Fatalf("expected 2 statement lines, got %d", len(statement.Lines))
	}

	// Newest voucher date first; its running balance matches the
	// account balance.
	top := statement.Lines[0]
	if top.Description != "partial settlement" {
		t.Fatalf("expected newest transaction first, got %q", top.Description)
	}
	if !top.NewBalance.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected top line balance 75, got %s", top.NewBalance)
	}
	if !statement.Account.CurrentBalance.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected account balance 75, got %s", statement.Account.CurrentBalance)
	}
}

func TestRecalculateEndpointConflict(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	router, closeRedis := newAPIServer(t, testDB)
	defer closeRedis()

	account := testDB.CreateTestAccount(ctx, "VENDOR", "Polar Express AB")

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	// Hold the account lock to simulate a recalculation in flight.
	locker := redisrepo.NewAccountLocker(redisClient, time.Minute)
	release, err := locker.Acquire(ctx, account.ID)
	if err != nil {
		t.Fatalf("failed to acquire lock: %v", err)
	}
	defer func() { _ = release(ctx) }()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/"+account.ID+"/recalculate", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while lock is held, got %d: %s", rec.Code, rec.Body.String())
	}
}
