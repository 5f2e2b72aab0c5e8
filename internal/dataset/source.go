package dataset

import (
	"context"
	"os"
	"path/filepath"
	"time"

	apperrors "nomora-backend/internal/errors"
	"nomora-backend/internal/models"
)

// Source produces a fresh snapshot of both datasets
type Source interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Describe() string
}

// LoadTableFile opens and reads a CSV file
func LoadTableFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewDataError(filepath.Base(path), "open failed", err)
	}
	defer file.Close()

	return ReadTable(filepath.Base(path), file)
}

// LoadDishes reads the dish sales CSV at path
func LoadDishes(path string) ([]models.Dish, error) {
	t, err := LoadTableFile(path)
	if err != nil {
		return nil, err
	}
	return DishesFromTable(t)
}

// LoadIngredients reads the ingredient waste CSV at path
func LoadIngredients(path string) ([]models.Ingredient, error) {
	ingredients, _, err := loadIngredients(path)
	return ingredients, err
}

// loadIngredients also reports whether the file has a shelf life column
func loadIngredients(path string) ([]models.Ingredient, bool, error) {
	t, err := LoadTableFile(path)
	if err != nil {
		return nil, false, err
	}
	ingredients, err := IngredientsFromTable(t)
	if err != nil {
		return nil, false, err
	}
	return ingredients, HasShelfLifeColumn(t), nil
}

// CSVSource loads both datasets from files on disk
type CSVSource struct {
	DishPath       string
	IngredientPath string
}

// NewCSVSource creates a CSV backed source
func NewCSVSource(dishPath, ingredientPath string) *CSVSource {
	return &CSVSource{DishPath: dishPath, IngredientPath: ingredientPath}
}

func (s *CSVSource) Load(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dishes, err := LoadDishes(s.DishPath)
	if err != nil {
		return nil, err
	}
	ingredients, shelfColumn, err := loadIngredients(s.IngredientPath)
	if err != nil {
		return nil, err
	}

	return &models.Snapshot{
		Dishes:          dishes,
		Ingredients:     ingredients,
		Origin:          s.Describe(),
		LoadedAt:        time.Now(),
		ShelfLifeColumn: shelfColumn,
	}, nil
}

func (s *CSVSource) Describe() string {
	return "csv:" + s.DishPath + "," + s.IngredientPath
}
