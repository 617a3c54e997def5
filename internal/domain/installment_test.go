package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestEffectiveStatus_PaidWinsOverOverdue(t *testing.T) {
	inst := &Installment{
		ExpectedAmount: decimal.NewFromInt(100),
		PaidAmount:     decimal.NewFromInt(100),
		DueDate:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if got := inst.EffectiveStatus(now); got != InstallmentPaid {
		t.Errorf("Expected paid, got %s", got)
	}
}

func TestEffectiveStatus_OverdueOverlay(t *testing.T) {
	inst := &Installment{
		ExpectedAmount: decimal.NewFromInt(100),
		PaidAmount:     decimal.NewFromInt(40),
		DueDate:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Status:         InstallmentPartial,
	}
	now := time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC)

	if got := inst.EffectiveStatus(now); got != InstallmentOverdue {
		t.Errorf("Expected overdue, got %s", got)
	}
}

func TestEffectiveStatus_NotOverdueOnDueDate(t *testing.T) {
	due := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	inst := &Installment{
		ExpectedAmount: decimal.NewFromInt(100),
		PaidAmount:     decimal.Zero,
		DueDate:        due,
	}
	// Late in the evening of the due date is still on time
	now := time.Date(2024, 1, 15, 23, 30, 0, 0, time.UTC)

	if got := inst.EffectiveStatus(now); got != InstallmentUnpaid {
		t.Errorf("Expected unpaid, got %s", got)
	}
}

func TestEffectiveStatus_PartialBeforeDue(t *testing.T) {
	inst := &Installment{
		ExpectedAmount: decimal.NewFromInt(100),
		PaidAmount:     decimal.NewFromInt(30),
		DueDate:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	if got := inst.EffectiveStatus(now); got != InstallmentPartial {
		t.Errorf("Expected partial, got %s", got)
	}
}

func TestStoredStatus(t *testing.T) {
	expected := decimal.NewFromInt(100)

	if got := StoredStatus(expected, expected); got != InstallmentPaid {
		t.Errorf("Expected paid, got %s", got)
	}
	if got := StoredStatus(decimal.NewFromInt(50), expected); got != InstallmentPartial {
		t.Errorf("Expected partial, got %s", got)
	}
	if got := StoredStatus(decimal.Zero, expected); got != InstallmentUnpaid {
		t.Errorf("Expected unpaid, got %s", got)
	}
}
