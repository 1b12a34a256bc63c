package http_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/proprio/propertyhub/internal/config"
	apihttp "github.com/proprio/propertyhub/internal/http"
	"github.com/proprio/propertyhub/internal/repo/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() config.Config {
	return config.Config{
		Env:                 "test",
		JWTSecret:           "integration-test-secret",
		JWTAccessTTLMinutes: 5,
		AllowedOrigins:      []string{"http://localhost:5173"},
		AuthRateLimit:       1000,
		AuthRateWindow:      time.Minute,
		APIRateLimit:        1000,
	}
}

func newTestRouter() *gin.Engine {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return apihttp.NewRouterWithStores(log, testConfig(), memory.NewUsersRepo(), memory.NewPropertiesRepo())
}

func do(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request

	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	out := map[string]any{}

	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to unmarshal body %q: %v", w.Body.String(), err)
	}

	return out
}

func register(t *testing.T, r http.Handler, email, password string) string {
	t.Helper()

	w := do(r, http.MethodPost, "/register", "", `{"email":"`+email+`","password":"`+password+`"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: got status %d, body=%s", email, w.Code, w.Body.String())
	}

	id, _ := decode(t, w)["id"].(string)

	if id == "" {
		t.Fatalf("register %s: no id in response %s", email, w.Body.String())
	}

	return id
}

func login(t *testing.T, r http.Handler, email, password string) string {
	t.Helper()

	w := do(r, http.MethodPost, "/login", "", `{"email":"`+email+`","password":"`+password+`"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("login %s: got status %d, body=%s", email, w.Code, w.Body.String())
	}

	token, _ := decode(t, w)["token"].(string)

	if token == "" {
		t.Fatalf("login %s: no token in %s", email, w.Body.String())
	}

	return token
}

func TestRegisterAndLoginFlow(t *testing.T) {
	r := newTestRouter()

	id := register(t, r, "alice@example.com", "password123")

	if id == "" {
		t.Fatal("expected a user id")
	}

	// the hash never crosses the wire
	w := do(r, http.MethodPost, "/register", "", `{"email":"bob@example.com","password":"password123"}`)

	if strings.Contains(w.Body.String(), "passwordHash") || strings.Contains(w.Body.String(), "password123") {
		t.Fatalf("credential material leaked: %s", w.Body.String())
	}

	// duplicate email
	w = do(r, http.MethodPost, "/register", "", `{"email":"alice@example.com","password":"otherpassword"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: got status %d, want 400", w.Code)
	}

	// unknown email
	w = do(r, http.MethodPost, "/login", "", `{"email":"ghost@example.com","password":"password123"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown email login: got status %d, want 404", w.Code)
	}

	// wrong password
	w = do(r, http.MethodPost, "/login", "", `{"email":"alice@example.com","password":"wrongpassword"}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password login: got status %d, want 401", w.Code)
	}

	token := login(t, r, "alice@example.com", "password123")

	// logout succeeds with a valid token and fails without one
	w = do(r, http.MethodPost, "/logout", token, "")

	if w.Code != http.StatusOK {
		t.Fatalf("logout: got status %d, body=%s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPost, "/logout", "", "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("logout without token: got status %d, want 401", w.Code)
	}
}

func TestUserAccessRules(t *testing.T) {
	r := newTestRouter()

	aliceID := register(t, r, "alice@example.com", "password123")
	bobID := register(t, r, "bob@example.com", "password123")

	aliceToken := login(t, r, "alice@example.com", "password123")

	// no token at all
	w := do(r, http.MethodGet, "/users/"+aliceID, "", "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous user fetch: got status %d, want 401", w.Code)
	}

	// own record
	w = do(r, http.MethodGet, "/users/"+aliceID, aliceToken, "")

	if w.Code != http.StatusOK {
		t.Fatalf("self fetch: got status %d, body=%s", w.Code, w.Body.String())
	}

	// someone else's record
	w = do(r, http.MethodGet, "/users/"+bobID, aliceToken, "")

	if w.Code != http.StatusForbidden {
		t.Fatalf("cross-user fetch: got status %d, want 403", w.Code)
	}

	// listing is reserved for admins
	w = do(r, http.MethodGet, "/users", aliceToken, "")

	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin list: got status %d, want 403", w.Code)
	}

	// partial update of own record
	w = do(r, http.MethodPost, "/users/"+aliceID, aliceToken, `{"firstName":"Alice"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("self update: got status %d, body=%s", w.Code, w.Body.String())
	}

	if got := decode(t, w)["firstName"]; got != "Alice" {
		t.Fatalf("firstName not updated, got %v", got)
	}

	// delete own record, then the token's subject no longer resolves
	w = do(r, http.MethodDelete, "/users/"+aliceID, aliceToken, "")

	if w.Code != http.StatusOK {
		t.Fatalf("self delete: got status %d, body=%s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/users/"+aliceID, aliceToken, "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("fetch after delete: got status %d, want 404", w.Code)
	}
}

func TestPropertyLifecycle(t *testing.T) {
	r := newTestRouter()

	register(t, r, "owner@example.com", "password123")
	register(t, r, "other@example.com", "password123")

	ownerToken := login(t, r, "owner@example.com", "password123")
	otherToken := login(t, r, "other@example.com", "password123")

	// create with defaults for everything absent
	w := do(r, http.MethodPost, "/properties", ownerToken, `{"name":"Villa Rose","city":"Paris"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("create: got status %d, body=%s", w.Code, w.Body.String())
	}

	created := decode(t, w)
	propID, _ := created["id"].(string)

	if propID == "" {
		t.Fatalf("create: no id in %s", w.Body.String())
	}

	if created["address"] != "Unknown" {
		t.Fatalf("create: expected default address, got %v", created["address"])
	}

	users, _ := created["users"].([]any)

	if len(users) != 1 {
		t.Fatalf("create: expected the creator alone in the access set, got %v", created["users"])
	}

	// creator reads it back, a stranger does not
	w = do(r, http.MethodGet, "/properties/"+propID, ownerToken, "")

	if w.Code != http.StatusOK {
		t.Fatalf("owner fetch: got status %d, body=%s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/properties/"+propID, otherToken, "")

	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger fetch: got status %d, want 403", w.Code)
	}

	// listing is admin-only
	w = do(r, http.MethodGet, "/properties", ownerToken, "")

	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin list: got status %d, want 403", w.Code)
	}

	// PATCH merges the single field and keeps the rest
	w = do(r, http.MethodPatch, "/properties/"+propID, ownerToken, `{"city":"Lyon"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("patch: got status %d, body=%s", w.Code, w.Body.String())
	}

	patched := decode(t, w)

	if patched["city"] != "Lyon" || patched["name"] != "Villa Rose" {
		t.Fatalf("patch did not merge: %s", w.Body.String())
	}

	// strangers cannot modify or delete
	w = do(r, http.MethodPatch, "/properties/"+propID, otherToken, `{"city":"Nice"}`)

	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger patch: got status %d, want 403", w.Code)
	}

	w = do(r, http.MethodDelete, "/properties/"+propID, otherToken, "")

	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger delete: got status %d, want 403", w.Code)
	}

	// owner deletes, and the id stops resolving
	w = do(r, http.MethodDelete, "/properties/"+propID, ownerToken, "")

	if w.Code != http.StatusOK {
		t.Fatalf("owner delete: got status %d, body=%s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/properties/"+propID, ownerToken, "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("fetch after delete: got status %d, want 404", w.Code)
	}

	w = do(r, http.MethodDelete, "/properties/"+propID, ownerToken, "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: got status %d, want 404", w.Code)
	}
}

func TestGinModeFollowsConfigEnv(t *testing.T) {
	prev := gin.Mode()
	defer gin.SetMode(prev)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	gin.SetMode(gin.DebugMode)

	cfg := testConfig()
	cfg.Env = "prod"
	apihttp.NewRouterWithStores(log, cfg, memory.NewUsersRepo(), memory.NewPropertiesRepo())

	if gin.Mode() != gin.ReleaseMode {
		t.Fatalf("env %q: got mode %q, want release", cfg.Env, gin.Mode())
	}

	gin.SetMode(gin.DebugMode)

	cfg.Env = "dev"
	apihttp.NewRouterWithStores(log, cfg, memory.NewUsersRepo(), memory.NewPropertiesRepo())

	if gin.Mode() != gin.DebugMode {
		t.Fatalf("env %q: got mode %q, want debug left untouched", cfg.Env, gin.Mode())
	}
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter()

	w := do(r, http.MethodGet, "/healthz", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("healthz: got status %d", w.Code)
	}

	w = do(r, http.MethodGet, "/readyz", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("readyz: got status %d, body=%s", w.Code, w.Body.String())
	}
}
