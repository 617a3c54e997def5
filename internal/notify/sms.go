package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kopahq/kopa-backend/internal/config"
	"github.com/kopahq/kopa-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Notifier sends a balance notification to a borrower after a repayment has
// durably committed. Implementations are best-effort: callers log and swallow
// failures, which must never affect the financial outcome.
type Notifier interface {
	SendBalanceNotification(ctx context.Context, phone string, n BalanceNotification) error
}

// BalanceNotification carries the post-payment state for the SMS body
type BalanceNotification struct {
	LoanID  string
	Amount  decimal.Decimal
	Balance decimal.Decimal
	Status  domain.LoanStatus
}

// SMSNotifier posts form-encoded messages to the SMS gateway
type SMSNotifier struct {
	cfg    config.SMSConfig
	client *http.Client
}

// NewSMSNotifier creates an SMSNotifier with the given HTTP client.
// Pass nil to use a default client with a sane timeout.
func NewSMSNotifier(cfg config.SMSConfig, client *http.Client) *SMSNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SMSNotifier{cfg: cfg, client: client}
}

// SendBalanceNotification delivers the balance SMS to a local-format phone number
func (s *SMSNotifier) SendBalanceNotification(ctx context.Context, phone string, n BalanceNotification) error {
	if s.cfg.GatewayURL == "" {
		return fmt.Errorf("sms gateway not configured")
	}

	form := url.Values{}
	form.Set("username", s.cfg.Username)
	form.Set("to", phone)
	form.Set("message", buildMessage(n))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.GatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apiKey", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}

func buildMessage(n BalanceNotification) string {
	return fmt.Sprintf("Payment of %s received for loan %s. Outstanding balance: %s. Loan status: %s.",
		n.Amount.StringFixed(2), truncateID(n.LoanID), n.Balance.StringFixed(2), n.Status)
}

// truncateID shortens a loan id for the SMS body
func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
