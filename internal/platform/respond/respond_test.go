package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestOK(t *testing.T) {
	c, rec := newContext()
	if err := OK(c, map[string]string{"id": "p-1"}); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if !env.Success {
		t.Error("expected success=true")
	}
	if env.Message != "" {
		t.Errorf("unexpected message %q", env.Message)
	}
}

func TestError(t *testing.T) {
	c, rec := newContext()
	if err := BadRequest(c, "vitals payload is empty"); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Success {
		t.Error("expected success=false")
	}
	if env.Message != "vitals payload is empty" {
		t.Errorf("message = %q", env.Message)
	}
	if env.Data != nil {
		t.Error("expected no data on error")
	}
}
