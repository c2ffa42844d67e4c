package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hanapbuhay/backend/internal/config"
	"github.com/hanapbuhay/backend/internal/middleware"
	"github.com/hanapbuhay/backend/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-for-server",
			Issuer:             "hanapbuhay-test",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
			ContinuationExpiry: 30 * time.Minute,
		},
		Geo: config.GeoConfig{
			MaxDistanceKm: 3.0,
			DefaultLat:    14.605104730989897,
			DefaultLng:    121.0288131464939,
		},
		RateLimit: config.RateLimitConfig{RequestsPerWindow: 100, WindowSeconds: 60},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

// newTestServer builds a server with no database or Redis behind it. Only
// routes that fail before touching storage are exercised here.
func newTestServer() *APIServer {
	gin.SetMode(gin.TestMode)
	return NewAPIServer(testConfig(), nil, nil)
}

func signAccessToken(t *testing.T, cfg *config.Config, role models.Role) string {
	t.Helper()

	claims := &middleware.Claims{
		AccountID: uuid.New().String(),
		Role:      string(role),
		Email:     "caller@test.local",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "access",
			Issuer:    cfg.JWT.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.Secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func request(srv *APIServer, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer()
	w := request(srv, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "healthy") {
		t.Fatalf("unexpected health body: %s", w.Body.String())
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	srv := newTestServer()

	paths := []struct{ method, path string }{
		{http.MethodPost, "/booking/request"},
		{http.MethodGet, "/booking/requests"},
		{http.MethodPost, "/booking/accept/" + uuid.New().String()},
		{http.MethodGet, "/messages/conversations"},
		{http.MethodPost, "/messages/send"},
		{http.MethodPost, "/reviews"},
		{http.MethodGet, "/notifications"},
		{http.MethodPost, "/reports"},
		{http.MethodGet, "/admin/reports"},
	}

	for _, p := range paths {
		if w := request(srv, p.method, p.path, "", ""); w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", p.method, p.path, w.Code)
		}
	}
}

func TestRoleGates(t *testing.T) {
	srv := newTestServer()
	cfg := testConfig()

	workerToken := signAccessToken(t, cfg, models.RoleWorker)
	clientToken := signAccessToken(t, cfg, models.RoleClient)

	// Clients book, workers decide
	if w := request(srv, http.MethodPost, "/booking/request", workerToken, `{}`); w.Code != http.StatusForbidden {
		t.Errorf("worker creating booking: expected 403, got %d", w.Code)
	}
	if w := request(srv, http.MethodPost, "/booking/accept/"+uuid.New().String(), clientToken, ""); w.Code != http.StatusForbidden {
		t.Errorf("client accepting booking: expected 403, got %d", w.Code)
	}
	if w := request(srv, http.MethodPost, "/reviews", workerToken, `{}`); w.Code != http.StatusForbidden {
		t.Errorf("worker submitting review: expected 403, got %d", w.Code)
	}

	// Admin console is admin-only
	for _, token := range []string{workerToken, clientToken} {
		if w := request(srv, http.MethodGet, "/admin/reports", token, ""); w.Code != http.StatusForbidden {
			t.Errorf("non-admin listing reports: expected 403, got %d", w.Code)
		}
	}
}

func TestValidationFailures(t *testing.T) {
	srv := newTestServer()
	cfg := testConfig()

	// Registration payloads are validated before any storage access
	cases := []string{
		`{}`,
		`{"email": "not-an-email", "password": "Secret#1!", "role": "client"}`,
		`{"email": "a@b.test", "password": "short", "role": "client"}`,
		`{"email": "a@b.test", "password": "Secret#1!", "role": "admin"}`,
	}
	for _, body := range cases {
		if w := request(srv, http.MethodPost, "/auth/register", "", body); w.Code != http.StatusBadRequest {
			t.Errorf("register %s: expected 400, got %d", body, w.Code)
		}
	}

	clientToken := signAccessToken(t, cfg, models.RoleClient)
	if w := request(srv, http.MethodPost, "/booking/request", clientToken, `{"serviceDetails": "no worker"}`); w.Code != http.StatusBadRequest {
		t.Errorf("booking without worker: expected 400, got %d", w.Code)
	}
	if w := request(srv, http.MethodPost, "/reviews", clientToken, `{"jobRequestId": "`+uuid.New().String()+`", "rating": 9}`); w.Code != http.StatusBadRequest {
		t.Errorf("out-of-range rating: expected 400, got %d", w.Code)
	}

	workerToken := signAccessToken(t, cfg, models.RoleWorker)
	if w := request(srv, http.MethodPost, "/booking/accept/not-a-uuid", workerToken, ""); w.Code != http.StatusBadRequest {
		t.Errorf("malformed job id: expected 400, got %d", w.Code)
	}
}

func TestNearbyWorkers_InvalidCoordinates(t *testing.T) {
	srv := newTestServer()

	if w := request(srv, http.MethodGet, "/workers/nearby?lat=abc", "", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad latitude, got %d", w.Code)
	}
	if w := request(srv, http.MethodGet, "/workers/nearby?lng=abc", "", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad longitude, got %d", w.Code)
	}
}

func TestErrorEnvelopeCarriesRequestID(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	req.Header.Set("X-Request-ID", "test-request-id")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "test-request-id") {
		t.Fatalf("error envelope should echo the request id: %s", w.Body.String())
	}
}
