package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidKind     = errors.New("kind must be VENDOR or CUSTOMER")

	// Transaction errors
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrInvalidTransactionType = errors.New("type must be DEBIT or CREDIT")
	ErrInvalidAmount          = errors.New("amount must be non-negative")
	ErrMissingDescription     = errors.New("description is required")

	// Recalculation errors
	ErrRecalculationInProgress = errors.New("recalculation already in progress for account")
)
