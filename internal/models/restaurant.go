package models

import "time"

// Dish is one row of the dish sales table
type Dish struct {
	Name                   string   `json:"dish_name"`
	WeeklyOrders           int      `json:"weekly_orders"`
	Ingredients            []string `json:"ingredients"`
	IngredientCost         int      `json:"ingredient_cost"`
	ProfitMargin           int      `json:"profit_margin"`
	PrimaryWasteIngredient string   `json:"primary_waste_ingredient"`
	WastePercentage        float64  `json:"waste_percentage"`
	OverlapScore           int      `json:"overlap_score"`
}

// Waste units for Ingredient.WasteUnit
const (
	WasteUnitPercent = "%"
	WasteUnitKg      = "kg"
)

// Ingredient is one row of the ingredient waste table
type Ingredient struct {
	Name               string   `json:"ingredient"`
	AvgWaste           float64  `json:"avg_waste"`
	WasteUnit          string   `json:"waste_unit"`
	FrequentlyWastedIn []string `json:"frequently_wasted_in"`
	SuggestedAction    string   `json:"suggested_action"`
	ShelfLifeDays      *int     `json:"shelf_life_days,omitempty"`
}

// Snapshot holds both datasets as loaded together
type Snapshot struct {
	Dishes      []Dish       `json:"dishes"`
	Ingredients []Ingredient `json:"ingredients"`
	Origin      string       `json:"origin"`
	LoadedAt    time.Time    `json:"loaded_at"`

	// ShelfLifeColumn is set when the ingredient table has a shelf life
	// column, even if every cell in it is empty.
	ShelfLifeColumn bool `json:"shelf_life_column"`
}

// HasShelfLife reports whether shelf life data was supplied at all
func (s *Snapshot) HasShelfLife() bool {
	if s.ShelfLifeColumn {
		return true
	}
	for _, ing := range s.Ingredients {
		if ing.ShelfLifeDays != nil {
			return true
		}
	}
	return false
}
