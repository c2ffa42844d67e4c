package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hanapbuhay/backend/internal/config"
	"github.com/hanapbuhay/backend/internal/models"
)

var testJWTConfig = &config.JWTConfig{
	Secret:             "test-secret-key-for-middleware",
	Issuer:             "hanapbuhay-test",
	AccessTokenExpiry:  time.Hour,
	RefreshTokenExpiry: 24 * time.Hour,
	ContinuationExpiry: 30 * time.Minute,
}

func signTestToken(t *testing.T, accountID uuid.UUID, role models.Role, subject string, expiry time.Duration) string {
	t.Helper()

	claims := &Claims{
		AccountID: accountID.String(),
		Role:      string(role),
		Email:     "caller@test.local",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    testJWTConfig.Issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTConfig.Secret))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return signed
}

func newTestRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := NewJWTAuthenticator(testJWTConfig)

	handlers := append([]gin.HandlerFunc{auth.JWTAuth()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"account_id": GetAccountIDFromContext(c).String(),
			"role":       string(GetRoleFromContext(c)),
		})
	})
	router.GET("/protected", handlers...)
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	router := newTestRouter()
	if w := doRequest(router, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestJWTAuth_MalformedHeader(t *testing.T) {
	router := newTestRouter()
	for _, header := range []string{"garbage", "Basic abc", "Bearer"} {
		if w := doRequest(router, header); w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, w.Code)
		}
	}
}

func TestJWTAuth_ValidToken(t *testing.T) {
	router := newTestRouter()
	accountID := uuid.New()
	token := signTestToken(t, accountID, models.RoleClient, "access", time.Hour)

	w := doRequest(router, "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	router := newTestRouter()
	token := signTestToken(t, uuid.New(), models.RoleClient, "access", -time.Minute)

	w := doRequest(router, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestJWTAuth_RefreshTokenRejectedAsAccess(t *testing.T) {
	router := newTestRouter()
	token := signTestToken(t, uuid.New(), models.RoleClient, "refresh", time.Hour)

	if w := doRequest(router, "Bearer "+token); w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token should not pass access auth, got %d", w.Code)
	}

	continuation := signTestToken(t, uuid.New(), models.RoleClient, "profile", time.Hour)
	if w := doRequest(router, "Bearer "+continuation); w.Code != http.StatusUnauthorized {
		t.Fatalf("continuation token should not pass access auth, got %d", w.Code)
	}
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	router := newTestRouter()

	claims := &Claims{
		AccountID: uuid.New().String(),
		Role:      string(models.RoleClient),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "access",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("attacker-secret"))
	if err != nil {
		t.Fatalf("Failed to sign forged token: %v", err)
	}

	if w := doRequest(router, "Bearer "+forged); w.Code != http.StatusUnauthorized {
		t.Fatalf("forged token should be rejected, got %d", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	workerOnly := newTestRouter(RequireWorker())

	clientToken := signTestToken(t, uuid.New(), models.RoleClient, "access", time.Hour)
	if w := doRequest(workerOnly, "Bearer "+clientToken); w.Code != http.StatusForbidden {
		t.Fatalf("client should be refused on worker route, got %d", w.Code)
	}

	workerToken := signTestToken(t, uuid.New(), models.RoleWorker, "access", time.Hour)
	if w := doRequest(workerOnly, "Bearer "+workerToken); w.Code != http.StatusOK {
		t.Fatalf("worker should pass worker route, got %d", w.Code)
	}

	adminOnly := newTestRouter(RequireAdmin())
	if w := doRequest(adminOnly, "Bearer "+workerToken); w.Code != http.StatusForbidden {
		t.Fatalf("worker should be refused on admin route, got %d", w.Code)
	}
	adminToken := signTestToken(t, uuid.New(), models.RoleAdmin, "access", time.Hour)
	if w := doRequest(adminOnly, "Bearer "+adminToken); w.Code != http.StatusOK {
		t.Fatalf("admin should pass admin route, got %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString("request_id")})
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a generated X-Request-ID header")
	}

	// A caller-supplied id is propagated
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "caller-supplied" {
		t.Fatalf("expected caller-supplied request id, got %q", got)
	}
}
