package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kopahq/kopa-backend/internal/domain"
	"github.com/shopspring/decimal"
)

func TestGenerateSchedule_Monthly(t *testing.T) {
	loanID := uuid.New()
	disbursed := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	schedule := GenerateSchedule(loanID, decimal.NewFromInt(1200), 12, domain.CycleMonthly, disbursed)

	if len(schedule) != 12 {
		t.Fatalf("Expected 12 installments, got %d", len(schedule))
	}

	expected := decimal.NewFromInt(100)
	for i, inst := range schedule {
		if inst.InstallmentNumber != int32(i+1) {
			t.Errorf("Installment %d: expected number %d, got %d", i, i+1, inst.InstallmentNumber)
		}
		if !inst.ExpectedAmount.Equal(expected) {
			t.Errorf("Installment %d: expected amount 100, got %s", i, inst.ExpectedAmount)
		}
		if !inst.PaidAmount.IsZero() {
			t.Errorf("Installment %d: expected zero paid amount", i)
		}
		if inst.Status != domain.InstallmentUnpaid {
			t.Errorf("Installment %d: expected unpaid, got %s", i, inst.Status)
		}
	}

	// First due one month after disbursement, last one year after
	first := time.Date(2024, 2, 15, 10, 30, 0, 0, time.UTC)
	last := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	if !schedule[0].DueDate.Equal(first) {
		t.Errorf("Expected first due date %v, got %v", first, schedule[0].DueDate)
	}
	if !schedule[11].DueDate.Equal(last) {
		t.Errorf("Expected last due date %v, got %v", last, schedule[11].DueDate)
	}
}

func TestGenerateSchedule_Weekly(t *testing.T) {
	disbursed := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	schedule := GenerateSchedule(uuid.New(), decimal.NewFromInt(400), 4, domain.CycleWeekly, disbursed)

	if len(schedule) != 4 {
		t.Fatalf("Expected 4 installments, got %d", len(schedule))
	}
	for i, inst := range schedule {
		want := disbursed.AddDate(0, 0, 7*(i+1))
		if !inst.DueDate.Equal(want) {
			t.Errorf("Installment %d: expected due %v, got %v", i+1, want, inst.DueDate)
		}
	}
}

func TestGenerateSchedule_Deterministic(t *testing.T) {
	loanID := uuid.New()
	disbursed := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	a := GenerateSchedule(loanID, decimal.NewFromInt(900), 6, domain.CycleMonthly, disbursed)
	b := GenerateSchedule(loanID, decimal.NewFromInt(900), 6, domain.CycleMonthly, disbursed)

	for i := range a {
		if !a[i].ExpectedAmount.Equal(b[i].ExpectedAmount) || !a[i].DueDate.Equal(b[i].DueDate) {
			t.Fatalf("Installment %d differs between runs", i+1)
		}
	}
}

func TestGenerateSchedule_RoundingResidual(t *testing.T) {
	// 100 / 3 rounds to 33.33 per installment; the schedule bills 99.99 and
	// the remaining cent is settled through the loan-level balance
	schedule := GenerateSchedule(uuid.New(), decimal.NewFromInt(100), 3, domain.CycleMonthly, time.Now())

	want := decimal.RequireFromString("33.33")
	total := decimal.Zero
	for _, inst := range schedule {
		if !inst.ExpectedAmount.Equal(want) {
			t.Errorf("Expected 33.33, got %s", inst.ExpectedAmount)
		}
		total = total.Add(inst.ExpectedAmount)
	}
	if !total.Equal(decimal.RequireFromString("99.99")) {
		t.Errorf("Expected schedule total 99.99, got %s", total)
	}
}

func TestGenerateSchedule_ZeroDuration(t *testing.T) {
	if got := GenerateSchedule(uuid.New(), decimal.NewFromInt(100), 0, domain.CycleMonthly, time.Now()); got != nil {
		t.Errorf("Expected nil schedule for zero duration, got %d installments", len(got))
	}
}
