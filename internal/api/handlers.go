package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"nomora-backend/internal/analytics"
	"nomora-backend/internal/chat"
	"nomora-backend/internal/dataset"
	apperrors "nomora-backend/internal/errors"
	"nomora-backend/internal/export"
	"nomora-backend/internal/llm"
	"nomora-backend/internal/logging"
	"nomora-backend/internal/models"
	"nomora-backend/internal/state"
)

const (
	MaxFileSize    = 10 * 1024 * 1024 // 10MB
	ReportFilename = "nomora-report.xlsx"
)

type Handler struct {
	State      *state.AppState
	Bot        *chat.Bot
	LLMService *llm.Service
	Thresholds analytics.Thresholds
	TopN       int
	Logger     *logging.Logger
}

func NewHandler(st *state.AppState, bot *chat.Bot, llmSvc *llm.Service, th analytics.Thresholds, topN int, logger *logging.Logger) *Handler {
	if topN <= 0 {
		topN = analytics.DefaultTopN
	}
	if logger == nil {
		logger = logging.Global()
	}
	return &Handler{
		State:      st,
		Bot:        bot,
		LLMService: llmSvc,
		Thresholds: th,
		TopN:       topN,
		Logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)
	r.Get("/api/status", h.GetStatus)
	r.Post("/api/reload", h.Reload)
	r.Post("/upload", h.Upload)

	// Dashboard
	r.Get("/api/dashboard", h.GetDashboard)
	r.Get("/api/dishes/low-performers", h.GetLowPerformers)
	r.Get("/api/dishes/margin-overlap", h.GetMarginOverlap)
	r.Get("/api/dishes/{name}", h.GetDish)
	r.Get("/api/ingredients/top-waste", h.GetTopWaste)
	r.Get("/api/ingredients/{name}", h.GetIngredient)
	r.Get("/api/suggestions", h.GetSuggestions)
	r.Get("/api/stock", h.GetStockAdvice)
	r.Get("/api/charts/waste", h.GetWasteChart)
	r.Get("/api/charts/dish-performance", h.GetDishPerformanceChart)
	r.Get("/api/export.xlsx", h.ExportReport)

	// Chatbot
	r.Post("/api/chat", h.Chat)

	r.Get("/config/ollama", h.GetOllamaConfig)
	r.Post("/config/ollama", h.SaveOllamaConfig)
}

// ============================================================================
// Health & Status
// ============================================================================

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.State.Snapshot()

	resp := models.StatusResponse{
		Loaded:   snap != nil,
		ChatMode: string(h.Bot.Router().Mode()),
	}
	if snap != nil {
		loadedAt := snap.LoadedAt
		resp.Origin = snap.Origin
		resp.LoadedAt = &loadedAt
		resp.Dishes = models.DatasetStatus{Loaded: len(snap.Dishes) > 0, Rows: len(snap.Dishes)}
		resp.Ingredients = models.DatasetStatus{Loaded: len(snap.Ingredients) > 0, Rows: len(snap.Ingredients)}
		resp.HasShelfLife = snap.HasShelfLife()
	}

	writeJSON(w, resp)
}

// Reload re-reads both datasets from the configured source
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	snap, err := h.State.Reload(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to reload data: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"success":     true,
		"origin":      snap.Origin,
		"dishes":      len(snap.Dishes),
		"ingredients": len(snap.Ingredients),
	})
}

// ============================================================================
// Upload
// ============================================================================

// Upload replaces one dataset with an uploaded CSV. The previous snapshot
// stays active when the file does not parse.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFileSize)
	if err := r.ParseMultipartForm(MaxFileSize); err != nil {
		http.Error(w, "File too large", http.StatusBadRequest)
		return
	}

	name := strings.ToLower(strings.TrimSpace(r.FormValue("dataset")))
	if name != state.DatasetDishes && name != state.DatasetIngredients {
		http.Error(w, "dataset must be dishes or ingredients", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		http.Error(w, "Only CSV files are allowed", http.StatusBadRequest)
		return
	}

	filename := filepath.Base(header.Filename)
	table, err := dataset.ReadTable(filename, file)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to parse CSV: %v", err), http.StatusBadRequest)
		return
	}

	snap, err := h.State.Replace(name, table)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apperrors.ErrDataset) {
			status = http.StatusBadRequest
		}
		http.Error(w, fmt.Sprintf("Failed to load %s: %v", name, err), status)
		return
	}

	rows := len(snap.Dishes)
	if name == state.DatasetIngredients {
		rows = len(snap.Ingredients)
	}
	writeJSON(w, models.UploadResponse{
		Message: fmt.Sprintf("File '%s' uploaded successfully", header.Filename),
		Dataset: name,
		Rows:    rows,
	})
}

// ============================================================================
// Dashboard
// ============================================================================

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, analytics.Summarize(snap, h.Thresholds))
}

func (h *Handler) GetLowPerformers(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, analytics.LowPerformers(snap.Dishes, h.Thresholds))
}

func (h *Handler) GetMarginOverlap(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, analytics.MarginOverlap(snap.Dishes))
}

// GetDish returns one dish by name with its overlap score filled in
func (h *Handler) GetDish(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	d, found := analytics.FindDish(snap.Dishes, name)
	if !found {
		http.Error(w, apperrors.NotFound("dish", name).Error(), http.StatusNotFound)
		return
	}
	d.OverlapScore = analytics.OverlapScore(d)
	writeJSON(w, d)
}

func (h *Handler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	ing, found := analytics.FindIngredient(snap.Ingredients, name)
	if !found {
		http.Error(w, apperrors.NotFound("ingredient", name).Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, ing)
}

func (h *Handler) GetTopWaste(w http.ResponseWriter, r *http.Request) {
	n, err := getIntParam(r, "n", h.TopN)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, analytics.TopWaste(snap.Ingredients, n))
}

func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, analytics.Suggestions(snap.Ingredients))
}

func (h *Handler) GetStockAdvice(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, analytics.StockAdvice(snap.Ingredients, h.Thresholds.MinWaste))
}

func (h *Handler) GetWasteChart(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, analytics.WasteBreakdown(snap.Ingredients))
}

func (h *Handler) GetDishPerformanceChart(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, analytics.DishPerformance(snap.Dishes))
}

// ExportReport streams the dashboard as an xlsx workbook
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReport(&buf, snap, export.Options{Thresholds: h.Thresholds, TopN: h.TopN}); err != nil {
		h.Logger.Error("report export failed", "error", err)
		http.Error(w, "Failed to export report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ReportFilename))
	w.Header().Set("Content-Type", export.ContentType)
	w.Write(buf.Bytes())
}

// ============================================================================
// Chat
// ============================================================================

type ChatRequest struct {
	Query string `json:"query"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	resp, err := h.Bot.Answer(r.Context(), req.Query)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotLoaded) {
			http.Error(w, "Data not loaded", http.StatusServiceUnavailable)
			return
		}
		h.Logger.Error("chat answer failed", "error", err)
		http.Error(w, "Failed to answer query", http.StatusInternalServerError)
		return
	}

	writeJSON(w, resp)
}

// ============================================================================
// Ollama Config
// ============================================================================

func (h *Handler) GetOllamaConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.LLMService.Config()
	writeJSON(w, models.OllamaConfig{BaseURL: cfg.BaseURL, Model: cfg.Model})
}

func (h *Handler) SaveOllamaConfig(w http.ResponseWriter, r *http.Request) {
	var config models.OllamaConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	h.LLMService.SetConfig(llm.Config{BaseURL: config.BaseURL, Model: config.Model})
	cfg := h.LLMService.Config()
	h.Logger.Info("ollama config updated", "base_url", cfg.BaseURL, "model", cfg.Model)

	writeJSON(w, map[string]interface{}{
		"success": true,
		"message": "Ollama configuration saved successfully",
		"config":  models.OllamaConfig{BaseURL: cfg.BaseURL, Model: cfg.Model},
	})
}

// ============================================================================
// Helpers
// ============================================================================

// snapshot writes a 503 and reports false when nothing is loaded
func (h *Handler) snapshot(w http.ResponseWriter) (*models.Snapshot, bool) {
	snap := h.State.Snapshot()
	if snap == nil {
		http.Error(w, "Data not loaded", http.StatusServiceUnavailable)
		return nil, false
	}
	return snap, true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func getIntParam(r *http.Request, name string, defaultVal int) (int, error) {
	valStr := r.URL.Query().Get(name)
	if valStr == "" {
		return defaultVal, nil
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return val, nil
}
