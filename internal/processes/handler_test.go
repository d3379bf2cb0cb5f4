package processes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"promotore-backend/internal/shared/auth"
	"promotore-backend/internal/shared/server/middleware"
)

func newTestRouter(svc *Service, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		middleware.SetIdentity(c, auth.Identity{UserID: userID, Username: "admin"})
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(&router.RouterGroup)
	return router
}

func TestCreateHandlerForm(t *testing.T) {
	svc, _, _ := newTestService()
	router := newTestRouter(svc, 1)

	form := url.Values{"nome_cliente": {"Maria Silva"}, "cpf": {"123.456.789-00"}}
	req := httptest.NewRequest(http.MethodPost, "/novo_processo", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Sucesso  bool    `json:"sucesso"`
		Processo Process `json:"processo"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Sucesso || body.Processo.ClientName != "Maria Silva" || body.Processo.Status != StatusAwaitingDocuments {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestCreateHandlerRequiresName(t *testing.T) {
	svc, _, _ := newTestService()
	router := newTestRouter(svc, 1)

	req := httptest.NewRequest(http.MethodPost, "/novo_processo", strings.NewReader(`{"cpf":"1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestDetailHandlerNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	router := newTestRouter(svc, 1)

	for _, path := range []string{"/processo/42", "/processo/abc"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, resp.Code)
		}
		if got := resp.Body.String(); got != `{"erro":"Processo não encontrado"}` {
			t.Fatalf("%s: unexpected body %s", path, got)
		}
	}
}

func TestStatsAndRecentHandlers(t *testing.T) {
	svc, _, _ := newTestService()
	router := newTestRouter(svc, 1)
	for _, name := range []string{"A", "B"} {
		if _, err := svc.Create(t.Context(), 1, name, "000"); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/estatisticas", nil))
	if got := resp.Body.String(); got != `{"total":2,"concluidos":0,"pendentes":2}` {
		t.Fatalf("unexpected stats: %s", got)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/processos-recentes", nil))
	var recent []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &recent); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent, got %d", len(recent))
	}
	for _, key := range []string{"id", "nome_cliente", "cpf", "status", "criado_em"} {
		if _, ok := recent[0][key]; !ok {
			t.Fatalf("missing key %s in %v", key, recent[0])
		}
	}
}
