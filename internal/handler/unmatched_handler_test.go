package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/kopahq/kopa-backend/internal/domain"
	"github.com/kopahq/kopa-backend/internal/service"
	"github.com/kopahq/kopa-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func TestGetPendingUnmatched(t *testing.T) {
	e := echo.New()
	unmatchedRepo := testutil.NewMockUnmatchedRepository()
	h := NewUnmatchedHandler(service.NewUnmatchedService(unmatchedRepo))

	unmatchedRepo.AddRecord(&domain.UnmatchedPayment{
		TransID: "TX1",
		Amount:  decimal.NewFromInt(50),
		Status:  domain.UnmatchedPending,
	})
	unmatchedRepo.AddRecord(&domain.UnmatchedPayment{
		TransID: "TX2",
		Amount:  decimal.NewFromInt(75),
		Status:  domain.UnmatchedResolved,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unmatched-payments", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetPending(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var records []*domain.UnmatchedPayment
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 pending record, got %d", len(records))
	}
	if records[0].TransID != "TX1" {
		t.Errorf("Expected TX1, got %s", records[0].TransID)
	}
}

func TestResolveUnmatched_Success(t *testing.T) {
	e := echo.New()
	unmatchedRepo := testutil.NewMockUnmatchedRepository()
	h := NewUnmatchedHandler(service.NewUnmatchedService(unmatchedRepo))

	record := &domain.UnmatchedPayment{
		ID:      uuid.New(),
		TransID: "TX1",
		Amount:  decimal.NewFromInt(50),
		Status:  domain.UnmatchedPending,
	}
	unmatchedRepo.AddRecord(record)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/unmatched-payments/"+record.ID.String()+"/resolve", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(record.ID.String())

	if err := h.Resolve(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var resolved domain.UnmatchedPayment
	if err := json.Unmarshal(rec.Body.Bytes(), &resolved); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resolved.Status != domain.UnmatchedResolved {
		t.Errorf("Expected resolved, got %s", resolved.Status)
	}
}

func TestResolveUnmatched_NotFound(t *testing.T) {
	e := echo.New()
	h := NewUnmatchedHandler(service.NewUnmatchedService(testutil.NewMockUnmatchedRepository()))

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/unmatched-payments/"+id+"/resolve", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)

	if err := h.Resolve(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
