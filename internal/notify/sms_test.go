package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kopahq/kopa-backend/internal/config"
	"github.com/kopahq/kopa-backend/internal/domain"
	"github.com/shopspring/decimal"
)

func TestSendBalanceNotification_Success(t *testing.T) {
	var gotForm map[string]string
	var gotAPIKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("Failed to parse form: %v", err)
		}
		gotForm = map[string]string{
			"username": r.FormValue("username"),
			"to":       r.FormValue("to"),
			"message":  r.FormValue("message"),
		}
		gotAPIKey = r.Header.Get("apiKey")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSMSNotifier(config.SMSConfig{
		GatewayURL: server.URL,
		Username:   "kopa",
		APIKey:     "sms-key",
	}, server.Client())

	err := notifier.SendBalanceNotification(context.Background(), "0712345678", BalanceNotification{
		LoanID:  "3f2a1b9c-0000-0000-0000-000000000000",
		Amount:  decimal.NewFromInt(150),
		Balance: decimal.NewFromInt(850),
		Status:  domain.LoanStatusActive,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotForm["username"] != "kopa" {
		t.Errorf("Expected username kopa, got %s", gotForm["username"])
	}
	if gotForm["to"] != "0712345678" {
		t.Errorf("Expected to 0712345678, got %s", gotForm["to"])
	}
	if gotAPIKey != "sms-key" {
		t.Errorf("Expected apiKey header sms-key, got %s", gotAPIKey)
	}
	if !strings.Contains(gotForm["message"], "150.00") || !strings.Contains(gotForm["message"], "850.00") {
		t.Errorf("Expected message to carry amount and balance, got %q", gotForm["message"])
	}
	if !strings.Contains(gotForm["message"], "3f2a1b9c") {
		t.Errorf("Expected message to carry the shortened loan id, got %q", gotForm["message"])
	}
}

func TestSendBalanceNotification_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := NewSMSNotifier(config.SMSConfig{GatewayURL: server.URL}, server.Client())

	err := notifier.SendBalanceNotification(context.Background(), "0712345678", BalanceNotification{
		Amount:  decimal.NewFromInt(10),
		Balance: decimal.NewFromInt(90),
	})
	if err == nil {
		t.Error("Expected error for gateway failure")
	}
}

func TestSendBalanceNotification_Unconfigured(t *testing.T) {
	notifier := NewSMSNotifier(config.SMSConfig{}, nil)

	err := notifier.SendBalanceNotification(context.Background(), "0712345678", BalanceNotification{})
	if err == nil {
		t.Error("Expected error when gateway is not configured")
	}
}
