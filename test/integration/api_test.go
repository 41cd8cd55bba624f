package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/board-settings/internal/application"
	"github.com/eugenenazirov/board-settings/internal/config"
)

func performRequest(t *testing.T, handler http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIntegrationFlow(t *testing.T) {
	t.Setenv("BOARD_NAME", "")
	t.Setenv("BOARD_LED_PIN_WS2812", "")
	t.Setenv("USE_TIMER_ONE", "")

	path := filepath.Join(t.TempDir(), "board.yaml")
	body := `
board:
  name: Greenhouse
  led:
    rgb: {r: 15, g: 12, b: 13}
  timer: timer_one
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(&config.CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.EnableRequestLogging = false

	app, err := application.New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	handler := app.Server().Handler

	rec := performRequest(t, handler, http.MethodGet, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	rec = performRequest(t, handler, http.MethodGet, "/api/settings/BOARD_NAME")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from value lookup, got %d", rec.Code)
	}
	var value struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&value); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if value.Value != "Greenhouse" {
		t.Fatalf("unexpected board name %q", value.Value)
	}

	rec = performRequest(t, handler, http.MethodGet, "/api/settings/header")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from header, got %d", rec.Code)
	}
	header := rec.Body.String()
	for _, want := range []string{"#define USE_TIMER_ONE", "//#define BOARD_LED_PIN_WS2812", "#define BOARD_LED_PIN_G"} {
		if !strings.Contains(header, want) {
			t.Fatalf("expected header to contain %q, got:\n%s", want, header)
		}
	}
}
