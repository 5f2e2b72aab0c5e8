package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "nomora-backend/internal/errors"
	"nomora-backend/internal/models"
)

func TestGenerate(t *testing.T) {
	var got GenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(GenerateResponse{Response: "<think>hmm</think>\n Cut the avocado order. "})
	}))
	defer srv.Close()

	svc := NewService(srv.URL+"/", "llama3", 0)
	text, err := svc.Generate(context.Background(), "what now?")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "Cut the avocado order." {
		t.Errorf("text = %q", text)
	}
	if got.Model != "llama3" || got.Prompt != "what now?" || got.Stream {
		t.Errorf("unexpected request body: %+v", got)
	}
}

func TestStripThinking(t *testing.T) {
	tests := map[string]string{
		"<think>plan</think>Answer":         "Answer",
		"Intro <think>plan</think> and end": "Intro  and end",
		"no block here":                     "no block here",
		"</think> before <think>":           "</think> before <think>",
	}
	for in, want := range tests {
		if got := stripThinking(in); got != want {
			t.Errorf("stripThinking(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
		{"empty", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"response": "  "}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewService(srv.URL, "", 0).Generate(context.Background(), "hi")
			if !errors.Is(err, apperrors.ErrModel) {
				t.Errorf("expected ErrModel, got %v", err)
			}
		})
	}
}

func TestSetConfig(t *testing.T) {
	svc := NewService("", "", 0)
	if cfg := svc.Config(); cfg.BaseURL != DefaultBaseURL || cfg.Model != DefaultModel {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	svc.SetConfig(Config{Model: "mistral"})
	if cfg := svc.Config(); cfg.BaseURL != DefaultBaseURL || cfg.Model != "mistral" {
		t.Errorf("partial update lost fields: %+v", cfg)
	}
}

func TestBuildPrompt(t *testing.T) {
	snap := &models.Snapshot{
		Dishes:      []models.Dish{{Name: "Palak Paneer", WeeklyOrders: 8, ProfitMargin: 150, PrimaryWasteIngredient: "Spinach", WastePercentage: 28}},
		Ingredients: []models.Ingredient{{Name: "Spinach", AvgWaste: 28, WasteUnit: "%", SuggestedAction: "Use in soups"}},
	}
	prompt := BuildPrompt("  which dish is vegan? ", snap)

	for _, want := range []string{
		"- Palak Paneer | 8 | ₹150 | Spinach 28.0%",
		"- Spinach | 28% | Use in soups",
		"Question: which dish is vegan?\nAnswer:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
