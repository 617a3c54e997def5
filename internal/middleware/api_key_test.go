package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runAPIKeyMiddleware(t *testing.T, key, presented string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/loans", nil)
	if presented != "" {
		req.Header.Set(APIKeyHeader, presented)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := NewAPIKeyMiddleware(key)
	handler := mw.Authenticate()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return rec
}

func TestAPIKey_Valid(t *testing.T) {
	rec := runAPIKeyMiddleware(t, "secret-key", "secret-key")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}

func TestAPIKey_Missing(t *testing.T) {
	rec := runAPIKeyMiddleware(t, "secret-key", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestAPIKey_Wrong(t *testing.T) {
	rec := runAPIKeyMiddleware(t, "secret-key", "wrong-key")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}
