package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return c, handler(c)
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "doc-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:     RoleDoctor,
		FullName: "Dr. Asha Rao",
	}
	mw := JWTMiddleware(JWTConfig{Secret: testSecret})
	c, err := doRequest(t, mw, "Bearer "+signToken(t, claims))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := c.Request().Context()
	if got := UserIDFromContext(ctx); got != "doc-1" {
		t.Errorf("user id = %q, want doc-1", got)
	}
	if got := RoleFromContext(ctx); got != RoleDoctor {
		t.Errorf("role = %q, want %q", got, RoleDoctor)
	}
	if got := NameFromContext(ctx); got != "Dr. Asha Rao" {
		t.Errorf("name = %q, want Dr. Asha Rao", got)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{Secret: testSecret})
	_, err := doRequest(t, mw, "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_BadSignature(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "doc-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatal(err)
	}
	mw := JWTMiddleware(JWTConfig{Secret: testSecret})
	_, reqErr := doRequest(t, mw, "Bearer "+s)
	httpErr, ok := reqErr.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", reqErr)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "doc-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	mw := JWTMiddleware(JWTConfig{Secret: testSecret})
	_, err := doRequest(t, mw, "Bearer "+signToken(t, claims))
	if err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		wantOK  bool
	}{
		{"matching role", RoleCoordinator, []string{RoleCoordinator}, true},
		{"admin bypasses", RoleAdmin, []string{RoleDoctor}, true},
		{"wrong role", RoleCoordinator, []string{RoleDoctor}, false},
		{"no role", "", []string{RoleDoctor}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			ctx := context.WithValue(req.Context(), UserRoleKey, tt.role)
			req = req.WithContext(ctx)
			c := e.NewContext(req, httptest.NewRecorder())

			handler := RequireRole(tt.allowed...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			err := handler(c)
			if tt.wantOK && err != nil {
				t.Errorf("expected pass, got %v", err)
			}
			if !tt.wantOK {
				httpErr, ok := err.(*echo.HTTPError)
				if !ok || httpErr.Code != http.StatusForbidden {
					t.Errorf("expected 403, got %v", err)
				}
			}
		})
	}
}

func TestDevAuthMiddleware_Defaults(t *testing.T) {
	c, err := doRequest(t, DevAuthMiddleware(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := RoleFromContext(c.Request().Context()); got != RoleAdmin {
		t.Errorf("role = %q, want %q", got, RoleAdmin)
	}
}
