package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/campushealth/portal/internal/access"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, sub, role string) string {
	t.Helper()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func runJWT(t *testing.T, authorization string) (*httptest.ResponseRecorder, access.Actor, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got access.Actor
	h := JWTMiddleware(testSecret)(func(c echo.Context) error {
		got, _ = ActorFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	err := h(c)
	return rec, got, err
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	_, actor, err := runJWT(t, "Bearer "+signToken(t, "stu-42", "student"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actor.ID != "stu-42" || actor.Role != access.RoleStudent {
		t.Errorf("actor = %+v", actor)
	}
}

func TestJWTMiddleware_MissingToken(t *testing.T) {
	_, _, err := runJWT(t, "")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("got %v, want 401", err)
	}
}

func TestJWTMiddleware_BadSignature(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             "student",
	}
	raw, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	_, _, err := runJWT(t, "Bearer "+raw)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("got %v, want 401", err)
	}
}

func TestJWTMiddleware_UnknownRole(t *testing.T) {
	_, _, err := runJWT(t, "Bearer "+signToken(t, "x", "superuser"))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("got %v, want 401", err)
	}
}

func TestDevAuthMiddleware_Headers(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Actor-ID", "doc-1")
	req.Header.Set("X-Actor-Role", "doctor")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got access.Actor
	h := DevAuthMiddleware()(func(c echo.Context) error {
		got, _ = ActorFromContext(c.Request().Context())
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "doc-1" || got.Role != access.RoleDoctor {
		t.Errorf("actor = %+v", got)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	run := func(actor access.Actor, roles ...access.Role) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetRequest(c.Request().WithContext(WithActor(c.Request().Context(), actor)))
		return RequireRole(roles...)(next)(c)
	}

	if err := run(access.Actor{ID: "p", Role: access.RolePharmacist}, access.RolePharmacist); err != nil {
		t.Errorf("pharmacist denied: %v", err)
	}
	if err := run(access.Actor{ID: "a", Role: access.RoleAdmin}, access.RolePharmacist); err != nil {
		t.Errorf("admin bypass failed: %v", err)
	}
	err := run(access.Actor{ID: "s", Role: access.RoleStudent}, access.RolePharmacist)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("student got %v, want 403", err)
	}
}
