package cmd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"nomora-backend/internal/analytics"
	"nomora-backend/internal/api"
	"nomora-backend/internal/chat"
	"nomora-backend/internal/config"
	"nomora-backend/internal/dataset"
	"nomora-backend/internal/llm"
	"nomora-backend/internal/logging"
	"nomora-backend/internal/state"
)

// app wires the services shared by every command
type app struct {
	cfg        *config.Config
	logger     *logging.Logger
	thresholds analytics.Thresholds
	state      *state.AppState
	llm        *llm.Service
	bot        *chat.Bot
}

func newApp(cfg *config.Config, logger *logging.Logger) (*app, error) {
	mode, err := chat.ParseMode(cfg.Chat.Mode)
	if err != nil {
		return nil, err
	}

	th := cfg.Thresholds()
	st := state.New(newSource(cfg), logger)
	llmService := llm.NewService(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Timeout)
	router := chat.NewRouter(mode, cfg.Chat.FuzzyThreshold)
	bot := chat.NewBot(router, st, llmService, chat.Options{
		Thresholds: th,
		TopN:       cfg.Analytics.TopN,
		Logger:     logger,
	})

	return &app{
		cfg:        cfg,
		logger:     logger,
		thresholds: th,
		state:      st,
		llm:        llmService,
		bot:        bot,
	}, nil
}

func newSource(cfg *config.Config) dataset.Source {
	if cfg.Data.Source == config.SourcePostgres {
		return dataset.NewPostgresSource(cfg.Data.PostgresDSN, cfg.Data.DishTable, cfg.Data.IngredientTable)
	}
	return dataset.NewCSVSource(cfg.Data.DishesCSV, cfg.Data.IngredientsCSV)
}

// handler builds the HTTP router with middleware and CORS
func (a *app) handler() http.Handler {
	h := api.NewHandler(a.state, a.bot, a.llm, a.thresholds, a.cfg.Analytics.TopN, a.logger)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Nomora backend is running"))
	})

	h.RegisterRoutes(r)
	return r
}
