package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCallbackValidate_Success(t *testing.T) {
	req := &CallbackRequest{
		TransactionType: "Pay Bill",
		TransID:         "RKTQDM7W6S",
		TransAmount:     "150.00",
		BillRefNumber:   "invoice-1",
		MSISDN:          "254712345678",
		FirstName:       "John",
		LastName:        "Doe",
	}
	now := time.Now()

	event, err := req.Validate(now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if event.TransID != "RKTQDM7W6S" {
		t.Errorf("Expected trans id RKTQDM7W6S, got %s", event.TransID)
	}
	if !event.Amount.Equal(decimal.RequireFromString("150.00")) {
		t.Errorf("Expected amount 150.00, got %s", event.Amount)
	}
	if event.PayerName != "John Doe" {
		t.Errorf("Expected payer name John Doe, got %s", event.PayerName)
	}
	if !event.ReceivedAt.Equal(now) {
		t.Errorf("Expected receipt time to be carried through")
	}
}

func TestCallbackValidate_MissingTransID(t *testing.T) {
	req := &CallbackRequest{TransAmount: "100"}

	_, err := req.Validate(time.Now())
	if !errors.Is(err, ErrCallbackTransIDMissing) {
		t.Errorf("Expected ErrCallbackTransIDMissing, got %v", err)
	}
}

func TestCallbackValidate_BadAmount(t *testing.T) {
	req := &CallbackRequest{TransID: "ABC123", TransAmount: "not-a-number"}

	_, err := req.Validate(time.Now())
	if !errors.Is(err, ErrCallbackAmountInvalid) {
		t.Errorf("Expected ErrCallbackAmountInvalid, got %v", err)
	}
}
