package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoanValidate(t *testing.T) {
	valid := Loan{
		Principal:      decimal.NewFromInt(1000),
		TotalPayable:   decimal.NewFromInt(1200),
		Duration:       12,
		RepaymentCycle: CycleMonthly,
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid loan, got %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Loan)
		wantErr error
	}{
		{"zero principal", func(l *Loan) { l.Principal = decimal.Zero }, ErrLoanPrincipalInvalid},
		{"payable below principal", func(l *Loan) { l.TotalPayable = decimal.NewFromInt(900) }, ErrLoanTotalPayableInvalid},
		{"zero duration", func(l *Loan) { l.Duration = 0 }, ErrLoanDurationInvalid},
		{"bad cycle", func(l *Loan) { l.RepaymentCycle = "daily" }, ErrLoanCycleInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := valid
			tt.mutate(&loan)
			if err := loan.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoanTransitions(t *testing.T) {
	tests := []struct {
		from    LoanStatus
		to      LoanStatus
		allowed bool
	}{
		{LoanStatusDraft, LoanStatusPendingApproval, true},
		{LoanStatusPendingApproval, LoanStatusApproved, true},
		{LoanStatusPendingApproval, LoanStatusRejected, true},
		{LoanStatusApproved, LoanStatusActive, true},
		{LoanStatusApproved, LoanStatusRejected, true},
		{LoanStatusActive, LoanStatusCompleted, true},
		{LoanStatusDraft, LoanStatusActive, false},
		{LoanStatusActive, LoanStatusRejected, false},
		{LoanStatusCompleted, LoanStatusActive, false},
		{LoanStatusRejected, LoanStatusApproved, false},
	}

	for _, tt := range tests {
		loan := &Loan{Status: tt.from}
		if got := loan.CanTransitionTo(tt.to); got != tt.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.allowed, got)
		}
	}
}
