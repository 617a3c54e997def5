package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/kopahq/kopa-backend/internal/domain"
	"github.com/kopahq/kopa-backend/internal/service"
	"github.com/kopahq/kopa-backend/internal/testutil"
	"github.com/labstack/echo/v4"
)

func TestCreateBorrower_Created(t *testing.T) {
	e := echo.New()
	borrowerRepo := testutil.NewMockBorrowerRepository()
	h := NewBorrowerHandler(service.NewBorrowerService(borrowerRepo))

	body := `{"organizationId": "` + uuid.New().String() + `", "firstName": "Jane", "lastName": "Doe", "phone": "0712345678"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/borrowers", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateBorrower(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var borrower domain.Borrower
	if err := json.Unmarshal(rec.Body.Bytes(), &borrower); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if borrower.Phone != "0712345678" {
		t.Errorf("Expected phone 0712345678, got %s", borrower.Phone)
	}
}

func TestCreateBorrower_InvalidPhone(t *testing.T) {
	e := echo.New()
	h := NewBorrowerHandler(service.NewBorrowerService(testutil.NewMockBorrowerRepository()))

	// International format is rejected; borrowers are stored in local format
	body := `{"organizationId": "` + uuid.New().String() + `", "firstName": "Jane", "phone": "254712345678"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/borrowers", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateBorrower(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetBorrower_NotFound(t *testing.T) {
	e := echo.New()
	h := NewBorrowerHandler(service.NewBorrowerService(testutil.NewMockBorrowerRepository()))

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/borrowers/"+id, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)

	if err := h.GetBorrower(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestGetBorrowers_Success(t *testing.T) {
	e := echo.New()
	borrowerRepo := testutil.NewMockBorrowerRepository()
	h := NewBorrowerHandler(service.NewBorrowerService(borrowerRepo))

	orgID := uuid.New()
	borrowerRepo.AddBorrower(&domain.Borrower{ID: uuid.New(), OrganizationID: orgID, Phone: "0712345678"})
	borrowerRepo.AddBorrower(&domain.Borrower{ID: uuid.New(), OrganizationID: orgID, Phone: "0722345678"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/borrowers?organizationId="+orgID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetBorrowers(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var borrowers []*domain.Borrower
	if err := json.Unmarshal(rec.Body.Bytes(), &borrowers); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(borrowers) != 2 {
		t.Errorf("Expected 2 borrowers, got %d", len(borrowers))
	}
}
