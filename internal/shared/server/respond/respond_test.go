package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"promotore-backend/internal/shared/telemetry"
)

func TestErrorWritesErroBodyAndLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	restore := telemetry.SetLogger(zap.New(core))
	defer restore()

	router := gin.New()
	router.GET("/processo/:id", func(c *gin.Context) {
		c.Set("processId", int64(9))
		Error(c, http.StatusNotFound, "Processo não encontrado")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/processo/9", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["erro"] != "Processo não encontrado" {
		t.Fatalf("unexpected body: %v", body)
	}

	entries := logs.FilterMessage("http.error").All()
	if len(entries) != 1 {
		t.Fatalf("expected one http.error log, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level for 4xx, got %s", entries[0].Level)
	}
	if entries[0].ContextMap()["process_id"] != int64(9) {
		t.Fatalf("expected process_id field, got %v", entries[0].ContextMap())
	}
}
