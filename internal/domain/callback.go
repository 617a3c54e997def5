package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrCallbackTransIDMissing = errors.New("callback is missing TransID")
	ErrCallbackAmountInvalid  = errors.New("callback TransAmount is not a valid amount")
)

// CallbackRequest is the raw mobile-money C2B confirmation payload as posted
// by the gateway. All fields arrive as strings.
type CallbackRequest struct {
	TransactionType   string `json:"TransactionType"`
	TransID           string `json:"TransID"`
	TransTime         string `json:"TransTime"`
	TransAmount       string `json:"TransAmount"`
	BusinessShortCode string `json:"BusinessShortCode"`
	BillRefNumber     string `json:"BillRefNumber"`
	MSISDN            string `json:"MSISDN"`
	FirstName         string `json:"FirstName"`
	MiddleName        string `json:"MiddleName"`
	LastName          string `json:"LastName"`
}

// PaymentEvent is the validated, typed form of a callback. Business logic
// only ever sees this, never the raw request.
type PaymentEvent struct {
	TransID    string
	Amount     decimal.Decimal
	BillRef    string
	MSISDN     string
	PayerName  string
	ReceivedAt time.Time
}

// Validate checks the callback against the schema the pipeline requires and
// produces the typed event. TransID must be present and TransAmount must
// parse to a decimal; everything else is optional.
func (r *CallbackRequest) Validate(now time.Time) (*PaymentEvent, error) {
	if r.TransID == "" {
		return nil, ErrCallbackTransIDMissing
	}
	amount, err := decimal.NewFromString(r.TransAmount)
	if err != nil {
		return nil, ErrCallbackAmountInvalid
	}
	name := r.FirstName
	if r.LastName != "" {
		if name != "" {
			name += " "
		}
		name += r.LastName
	}
	return &PaymentEvent{
		TransID:    r.TransID,
		Amount:     amount,
		BillRef:    r.BillRefNumber,
		MSISDN:     r.MSISDN,
		PayerName:  name,
		ReceivedAt: now,
	}, nil
}
