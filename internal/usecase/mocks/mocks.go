package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/parceldesk/ledger/internal/domain"
	"github.com/parceldesk/ledger/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc           func(ctx context.Context, account *domain.Account) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	ListFunc             func(ctx context.Context, kind domain.PartyKind, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.CurrentBalance = balance
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, kind domain.PartyKind, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, kind, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if kind == "" || acc.Kind == kind {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	rows []*domain.Transaction

	CreateFunc                 func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	ListByAccountFunc          func(ctx context.Context, accountID string) ([]*domain.Transaction, error)
	ListPageFunc               func(ctx context.Context, accountID string, from, to *time.Time, limit, offset int) ([]*domain.Transaction, int64, error)
	UpdateBalancesFunc         func(ctx context.Context, tx usecase.Transaction, id string, previous, current decimal.Decimal) error
	FindStartingBalanceFunc    func(ctx context.Context, accountID string) (*domain.Transaction, error)
	RewriteStartingBalanceFunc func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

// Seed inserts transactions directly, preserving insertion order.
func (m *MockTransactionRepository) Seed(txns ...*domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, txns...)
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, txn)
	return nil
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, t := range m.rows {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MockTransactionRepository) ListPage(ctx context.Context, accountID string, from, to *time.Time, limit, offset int) ([]*domain.Transaction, int64, error) {
	if m.ListPageFunc != nil {
		return m.ListPageFunc(ctx, accountID, from, to, limit, offset)
	}
	all, _ := m.ListByAccount(ctx, accountID)
	var filtered []*domain.Transaction
	for _, t := range all {
		if from != nil && t.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && t.CreatedAt.After(*to) {
			continue
		}
		filtered = append(filtered, t)
	}
	total := int64(len(filtered))
	if offset > len(filtered) {
		offset = len(filtered)
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *MockTransactionRepository) UpdateBalances(ctx context.Context, tx usecase.Transaction, id string, previous, current decimal.Decimal) error {
	if m.UpdateBalancesFunc != nil {
		return m.UpdateBalancesFunc(ctx, tx, id, previous, current)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.rows {
		if t.ID == id {
			t.PreviousBalance = previous
			t.NewBalance = current
			return nil
		}
	}
	return domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) FindStartingBalance(ctx context.Context, accountID string) (*domain.Transaction, error) {
	if m.FindStartingBalanceFunc != nil {
		return m.FindStartingBalanceFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.rows {
		if t.AccountID == accountID && t.Kind == domain.KindStartingBalance {
			return t, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) RewriteStartingBalance(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.RewriteStartingBalanceFunc != nil {
		return m.RewriteStartingBalanceFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.rows {
		if t.ID == txn.ID {
			m.rows[i] = txn
			return nil
		}
	}
	return domain.ErrTransactionNotFound
}

// MockJournalRepository is a mock implementation of JournalRepository.
type MockJournalRepository struct {
	mu      sync.RWMutex
	entries []*domain.JournalEntry

	CreateFunc            func(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error
	DeleteByReferenceFunc func(ctx context.Context, tx usecase.Transaction, reference string) error
	ListByReferenceFunc   func(ctx context.Context, reference string) ([]*domain.JournalEntry, error)
}

func NewMockJournalRepository() *MockJournalRepository {
	return &MockJournalRepository{}
}

func (m *MockJournalRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockJournalRepository) DeleteByReference(ctx context.Context, tx usecase.Transaction, reference string) error {
	if m.DeleteByReferenceFunc != nil {
		return m.DeleteByReferenceFunc(ctx, tx, reference)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.Reference != reference {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

func (m *MockJournalRepository) ListByReference(ctx context.Context, reference string) ([]*domain.JournalEntry, error) {
	if m.ListByReferenceFunc != nil {
		return m.ListByReferenceFunc(ctx, reference)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.JournalEntry
	for _, e := range m.entries {
		if e.Reference == reference {
			out = append(out, e)
		}
	}
	return out, nil
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository.
type MockInvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[string]*domain.Invoice

	ListByNumbersFunc func(ctx context.Context, numbers []string) ([]*domain.Invoice, error)
}

func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{invoices: make(map[string]*domain.Invoice)}
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[invoice.InvoiceNumber] = invoice
	return nil
}

func (m *MockInvoiceRepository) ListByNumbers(ctx context.Context, numbers []string) ([]*domain.Invoice, error) {
	if m.ListByNumbersFunc != nil {
		return m.ListByNumbersFunc(ctx, numbers)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Invoice
	for _, n := range numbers {
		if inv, ok := m.invoices[n]; ok {
			out = append(out, inv)
		}
	}
	return out, nil
}

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments []*domain.Payment

	LatestDatesFunc func(ctx context.Context, invoiceNumbers []string, accountID, paymentType string) (map[string]time.Time, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{}
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = append(m.payments, payment)
	return nil
}

func (m *MockPaymentRepository) LatestDates(ctx context.Context, invoiceNumbers []string, accountID, paymentType string) (map[string]time.Time, error) {
	if m.LatestDatesFunc != nil {
		return m.LatestDatesFunc(ctx, invoiceNumbers, accountID, paymentType)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[string]bool, len(invoiceNumbers))
	for _, n := range invoiceNumbers {
		wanted[n] = true
	}
	out := make(map[string]time.Time)
	for _, p := range m.payments {
		if !wanted[p.Invoice] || p.AccountID != accountID || p.TransactionType != paymentType {
			continue
		}
		if existing, ok := out[p.Invoice]; !ok || p.Date.After(existing) {
			out[p.Invoice] = p.Date
		}
	}
	return out, nil
}

// MockNoteRepository is a mock implementation of NoteRepository.
type MockNoteRepository struct {
	mu    sync.RWMutex
	notes map[string]*domain.Note

	ListByNumbersFunc func(ctx context.Context, numbers []string) ([]*domain.Note, error)
}

func NewMockNoteRepository() *MockNoteRepository {
	return &MockNoteRepository{notes: make(map[string]*domain.Note)}
}

func (m *MockNoteRepository) Create(ctx context.Context, note *domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[note.Number] = note
	return nil
}

func (m *MockNoteRepository) ListByNumbers(ctx context.Context, numbers []string) ([]*domain.Note, error) {
	if m.ListByNumbersFunc != nil {
		return m.ListByNumbersFunc(ctx, numbers)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Note
	for _, n := range numbers {
		if note, ok := m.notes[n]; ok {
			out = append(out, note)
		}
	}
	return out, nil
}

// MockTransaction is a mock database transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	LastTx *MockTransaction
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.LastTx = &MockTransaction{}
	return m.LastTx, nil
}

// MockAccountLocker is a mock AccountLocker.
type MockAccountLocker struct {
	mu   sync.Mutex
	held map[string]bool

	AcquireFunc func(ctx context.Context, accountID string) (func(context.Context) error, error)
}

func NewMockAccountLocker() *MockAccountLocker {
	return &MockAccountLocker{held: make(map[string]bool)}
}

func (m *MockAccountLocker) Acquire(ctx context.Context, accountID string) (func(context.Context) error, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, accountID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[accountID] {
		return nil, domain.ErrRecalculationInProgress
	}
	m.held[accountID] = true
	return func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.held, accountID)
		return nil
	}, nil
}

// MockRetrier runs the operation once without retrying.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockIDGenerator generates sequential IDs.
type MockIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return "id-" + strconv.Itoa(m.next)
}
