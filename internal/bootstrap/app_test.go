package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	sharedauth "promotore-backend/internal/shared/auth"
	"promotore-backend/internal/shared/config"
)

type stubExtractor struct {
	paths []string
}

func (s *stubExtractor) Extract(_ context.Context, filePath, instruction string) (string, error) {
	s.paths = append(s.paths, filePath)
	return "texto de " + instruction[strings.LastIndex(instruction, " ")+1:], nil
}

func testConfig(t *testing.T) config.Config {
	return config.Config{
		Env:            "test",
		DatabaseDriver: config.DriverMemory,
		FileStoreType:  "local",
		UploadDir:      t.TempDir(),
		SecretKey:      "test-secret",
		MaxUploadBytes: 1 << 20,
		AdminUsername:  "admin",
		AdminPassword:  "admin123",
	}
}

func TestBuildRequiresAPIKeyOutsideDev(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = "production"
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatalf("expected error without OPENAI_API_KEY in production")
	}
}

func TestBuildRejectsPostgresWithoutURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDriver = config.DriverPostgres
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}

func TestEndToEndMemory(t *testing.T) {
	app, err := Build(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	stub := &stubExtractor{}
	app.IngestionPipeline.Extractor = stub
	router := app.Router

	form := url.Values{"username": {"admin"}, "password": {"admin123"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusFound {
		t.Fatalf("login: expected 302, got %d", resp.Code)
	}
	var session *http.Cookie
	for _, c := range resp.Result().Cookies() {
		if c.Name == sharedauth.CookieName {
			session = c
		}
	}
	if session == nil {
		t.Fatalf("login: missing session cookie")
	}

	do := func(req *http.Request) *httptest.ResponseRecorder {
		req.AddCookie(session)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	req = httptest.NewRequest(http.MethodPost, "/novo_processo", strings.NewReader(`{"nome_cliente":"Maria Silva","cpf":"123"}`))
	req.Header.Set("Content-Type", "application/json")
	resp = do(req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("novo_processo: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, name := range []string{"RG.pdf", "notas.txt"} {
		fw, _ := mw.CreateFormFile("files[]", name)
		fw.Write([]byte("%PDF-1.4\n"))
	}
	mw.Close()
	req = httptest.NewRequest(http.MethodPost, "/upload/1", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp = do(req)
	if resp.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = do(httptest.NewRequest(http.MethodPost, "/processar/1", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("processar: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if len(stub.paths) != 1 {
		t.Fatalf("expected one extraction, got %v", stub.paths)
	}

	resp = do(httptest.NewRequest(http.MethodGet, "/processo/1", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("detail: expected 200, got %d", resp.Code)
	}
	var detail struct {
		Status string            `json:"status"`
		Score  int               `json:"score_conformidade"`
		Data   map[string]string `json:"dados_extraidos"`
		Docs   []json.RawMessage `json:"documentos"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.Status != "processado" || detail.Score != 85 || len(detail.Docs) != 1 {
		t.Fatalf("unexpected detail %+v", detail)
	}
	if detail.Data["RG.pdf"] != "texto de RG.pdf" {
		t.Fatalf("unexpected extracted data %v", detail.Data)
	}

	resp = do(httptest.NewRequest(http.MethodGet, "/api/estatisticas", nil))
	if resp.Body.String() != `{"total":1,"concluidos":1,"pendentes":0}` {
		t.Fatalf("unexpected stats %s", resp.Body.String())
	}

	resp = do(httptest.NewRequest(http.MethodGet, "/processo/1/relatorio", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("relatorio: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAPIWithoutSession(t *testing.T) {
	app, err := Build(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/processos", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
