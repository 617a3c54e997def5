package domain

import "errors"

// Domain errors
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrBorrowerNotFound     = errors.New("borrower not found")
	ErrLoanNotFound         = errors.New("loan not found")
	ErrInstallmentNotFound  = errors.New("installment not found")
	ErrUnmatchedNotFound    = errors.New("unmatched payment not found")
	ErrDuplicateTransaction = errors.New("transaction already processed")
	ErrScheduleExists       = errors.New("loan already has an installment schedule")
	ErrPaymentUnresolved    = errors.New("payment could not be resolved to a loan")
)
