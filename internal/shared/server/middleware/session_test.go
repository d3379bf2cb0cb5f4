package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"promotore-backend/internal/shared/auth"
)

func newTestSigner(t *testing.T) *auth.SessionSigner {
	t.Helper()
	signer, err := auth.NewSessionSigner("middleware-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionSigner: %v", err)
	}
	return signer
}

func sessionRouter(signer *auth.SessionSigner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Session(signer))

	api := router.Group("/api", RequireAPI())
	api.GET("/whoami", func(c *gin.Context) {
		id, _ := IdentityFromContext(c)
		c.JSON(http.StatusOK, gin.H{"username": id.Username, "user_id": id.UserID})
	})

	pages := router.Group("/", RequirePage("/login"))
	pages.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "dashboard")
	})
	return router
}

func TestRequireAPIWithoutSession(t *testing.T) {
	router := sessionRouter(newTestSigner(t))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/whoami", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["erro"] != "Não autenticado" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestRequireAPIWithSession(t *testing.T) {
	signer := newTestSigner(t)
	router := sessionRouter(signer)
	token, err := signer.Sign(auth.Identity{UserID: 3, Username: "admin"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["username"] != "admin" || body["user_id"] != float64(3) {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestRequirePageRedirects(t *testing.T) {
	router := sessionRouter(newTestSigner(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "garbage"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}
