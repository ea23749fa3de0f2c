// Tests run against a real in-memory SQLite DB — no mocking.
// Covers: success paths, error paths, response shape, status codes.
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	domainauth "github.com/matiasleandrokruk/acmedesk/internal/domain/auth"
	"github.com/matiasleandrokruk/acmedesk/internal/infra/sqlite"
)

// TestMain sets JWT_SECRET for the whole handlers package; GenerateJWT
// panics without it.
func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret-key-32-chars-min!!!") //nolint:errcheck
	os.Exit(m.Run())
}

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()

	db, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("sqlite.NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}

	return NewAuthHandler(domainauth.NewService(db))
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestAuthHandler_Register_Success(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(t)

	rr := postJSON(t, h.Register, "/auth/register",
		`{"email":"alice@acme.com","password":"SecurePass123!","displayName":"Alice","workspaceName":"Acme Corp"}`)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d; want 201, body %s", rr.Code, rr.Body.String())
	}

	var resp AuthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" || resp.UserID == "" || resp.WorkspaceID == "" {
		t.Errorf("response has empty fields: %+v", resp)
	}
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(t)

	cases := map[string]string{
		"missing email":     `{"password":"x","workspaceName":"Acme"}`,
		"missing password":  `{"email":"a@b.com","workspaceName":"Acme"}`,
		"missing workspace": `{"email":"a@b.com","password":"x"}`,
		"invalid json":      `{not json`,
	}
	for name, body := range cases {
		rr := postJSON(t, h.Register, "/auth/register", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d; want 400", name, rr.Code)
		}
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(t)
	body := `{"email":"dup@acme.com","password":"SecurePass123!","workspaceName":"Acme Corp"}`

	if rr := postJSON(t, h.Register, "/auth/register", body); rr.Code != http.StatusCreated {
		t.Fatalf("first register status = %d; want 201", rr.Code)
	}

	rr := postJSON(t, h.Register, "/auth/register", body)
	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d; want 409", rr.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(t)
	postJSON(t, h.Register, "/auth/register",
		`{"email":"eve@acme.com","password":"SecurePass123!","workspaceName":"Acme Corp"}`)

	rr := postJSON(t, h.Login, "/auth/login", `{"email":"eve@acme.com","password":"SecurePass123!"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200, body %s", rr.Code, rr.Body.String())
	}

	var resp AuthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("login response missing token")
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(t)
	postJSON(t, h.Register, "/auth/register",
		`{"email":"grace@acme.com","password":"SecurePass123!","workspaceName":"Acme Corp"}`)

	rr := postJSON(t, h.Login, "/auth/login", `{"email":"grace@acme.com","password":"wrong"}`)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want 401", rr.Code)
	}
}

func TestAuthHandler_Login_UnknownEmail(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(t)

	rr := postJSON(t, h.Login, "/auth/login", `{"email":"nobody@acme.com","password":"x"}`)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want 401", rr.Code)
	}
}
