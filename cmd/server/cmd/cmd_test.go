package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"nomora-backend/internal/config"
	"nomora-backend/internal/logging"
)

// writeTestConfig writes a config pointing at the dataset test fixtures.
func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()
	dishes, err := filepath.Abs("../../../internal/dataset/testdata/dish_sales.csv")
	if err != nil {
		t.Fatal(err)
	}
	ingredients, err := filepath.Abs("../../../internal/dataset/testdata/ingredient_waste.csv")
	if err != nil {
		t.Fatal(err)
	}

	content := fmt.Sprintf("data:\n  dishes_csv: %q\n  ingredients_csv: %q\nlog:\n  level: error\n%s", dishes, ingredients, extra)
	path := filepath.Join(t.TempDir(), "nomora.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "--version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "nomora ") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestAsk(t *testing.T) {
	cfg := writeTestConfig(t, "")

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "remove",
			args: []string{"ask", "which", "dishes", "should", "I", "remove"},
			want: []string{"Dishes to Consider Removing/Repurposing", "Avocado Toast", "Mushroom Curry", "category: remove"},
		},
		{
			name: "profit",
			args: []string{"ask", "what is the profit of palak paneer"},
			want: []string{"**Palak Paneer** has a profit margin of ₹150"},
		},
		{
			name: "unmatched in keyword mode",
			args: []string{"ask", "--mode", "keyword", "tell me a joke"},
			want: []string{"I'm sorry, I didn't understand that question."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append(tt.args, "--config", cfg)...)
			if err != nil {
				t.Fatalf("ask failed: %v\n%s", err, out)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("expected output to contain %q, got:\n%s", w, out)
				}
			}
		})
	}
}

func TestAskRejectsBadMode(t *testing.T) {
	cfg := writeTestConfig(t, "")
	if _, err := run(t, "ask", "--mode", "psychic", "hello", "--config", cfg); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestAskMissingData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nomora.yaml")
	content := "data:\n  dishes_csv: /nonexistent/dishes.csv\n  ingredients_csv: /nonexistent/waste.csv\nlog:\n  level: error\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "ask", "hello", "--config", path); err == nil {
		t.Error("expected error when datasets are missing")
	}
}

func TestExport(t *testing.T) {
	cfg := writeTestConfig(t, "")
	target := filepath.Join(t.TempDir(), "report.xlsx")

	out, err := run(t, "export", target, "--config", cfg)
	if err != nil {
		t.Fatalf("export failed: %v\n%s", err, out)
	}

	f, err := excelize.OpenFile(target)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()
	if got := len(f.GetSheetList()); got != 5 {
		t.Errorf("expected 5 sheets, got %d", got)
	}
}

func TestInitConfig(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nomora.yaml")

	if _, err := run(t, "init-config", target); err != nil {
		t.Fatalf("init-config failed: %v", err)
	}
	if _, err := run(t, "init-config", target); err == nil {
		t.Error("expected error when file exists")
	}
	if _, err := run(t, "init-config", target, "--force"); err != nil {
		t.Errorf("forced init-config failed: %v", err)
	}

	cfg, err := config.Load(target)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if cfg.Server.Port != 8001 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestAppHandler(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Server.AllowedOrigins = []string{"http://dash.test"}

	a, err := newApp(cfg, logging.NewNoop())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	srv := a.handler()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("root: expected 200, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://dash.test")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://dash.test" {
		t.Errorf("expected CORS header for allowed origin, got %q", got)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before data is loaded, got %d", rec.Code)
	}
}

func TestNewSource(t *testing.T) {
	cfg := config.NewConfig()
	if got := newSource(cfg).Describe(); !strings.HasPrefix(got, "csv:") {
		t.Errorf("expected csv source, got %q", got)
	}

	cfg.Data.Source = config.SourcePostgres
	cfg.Data.PostgresDSN = "postgres://localhost/nomora?sslmode=disable"
	if got := newSource(cfg).Describe(); !strings.HasPrefix(got, "postgres:") {
		t.Errorf("expected postgres source, got %q", got)
	}
}
