package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nomora-backend/internal/dataset"
	"nomora-backend/internal/logging"
	"nomora-backend/internal/models"
)

// Dataset names accepted by Replace
const (
	DatasetDishes      = "dishes"
	DatasetIngredients = "ingredients"
)

// AppState holds the loaded snapshot. A snapshot is never modified after it
// is published; reloads and uploads swap in a new one.
type AppState struct {
	mu     sync.RWMutex
	snap   *models.Snapshot
	source dataset.Source
	logger *logging.Logger
}

// New creates state backed by source. Nothing is loaded until Reload.
func New(source dataset.Source, logger *logging.Logger) *AppState {
	if logger == nil {
		logger = logging.Global()
	}
	return &AppState{source: source, logger: logger}
}

// Snapshot returns the current snapshot or nil
func (s *AppState) Snapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Set publishes a snapshot
func (s *AppState) Set(snap *models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// Reload loads a fresh snapshot from the source. On failure the previous
// snapshot stays in place.
func (s *AppState) Reload(ctx context.Context) (*models.Snapshot, error) {
	if s.source == nil {
		return nil, fmt.Errorf("no data source configured")
	}
	snap, err := s.source.Load(ctx)
	if err != nil {
		s.logger.Error("dataset reload failed", "source", s.source.Describe(), "error", err)
		return nil, err
	}
	s.Set(snap)
	s.logger.Info("dataset loaded", "source", snap.Origin, "dishes", len(snap.Dishes), "ingredients", len(snap.Ingredients))
	return snap, nil
}

// Replace parses table as the named dataset and publishes a snapshot that
// combines it with the other, currently loaded, dataset.
func (s *AppState) Replace(name string, table *dataset.Table) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := &models.Snapshot{LoadedAt: time.Now(), Origin: "upload:" + table.Name}
	if s.snap != nil {
		next.Dishes = s.snap.Dishes
		next.Ingredients = s.snap.Ingredients
		next.ShelfLifeColumn = s.snap.ShelfLifeColumn
	}

	switch name {
	case DatasetDishes:
		dishes, err := dataset.DishesFromTable(table)
		if err != nil {
			return nil, err
		}
		next.Dishes = dishes
	case DatasetIngredients:
		ingredients, err := dataset.IngredientsFromTable(table)
		if err != nil {
			return nil, err
		}
		next.Ingredients = ingredients
		next.ShelfLifeColumn = dataset.HasShelfLifeColumn(table)
	default:
		return nil, fmt.Errorf("unknown dataset %q", name)
	}

	s.snap = next
	s.logger.Info("dataset replaced", "dataset", name, "file", table.Name, "dishes", len(next.Dishes), "ingredients", len(next.Ingredients))
	return next, nil
}
