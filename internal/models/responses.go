package models

import "time"

// UploadResponse is returned after a dataset upload replaced a table
type UploadResponse struct {
	Message string `json:"message"`
	Dataset string `json:"dataset"`
	Rows    int    `json:"rows"`
}

// DatasetStatus represents the status of one loaded table
type DatasetStatus struct {
	Loaded bool `json:"loaded"`
	Rows   int  `json:"rows"`
}

// StatusResponse is returned by /api/status
type StatusResponse struct {
	Loaded       bool          `json:"loaded"`
	Origin       string        `json:"origin,omitempty"`
	LoadedAt     *time.Time    `json:"loaded_at,omitempty"`
	Dishes       DatasetStatus `json:"dishes"`
	Ingredients  DatasetStatus `json:"ingredients"`
	ChatMode     string        `json:"chat_mode"`
	HasShelfLife bool          `json:"has_shelf_life"`
}

// Summary is the set of headline KPIs shown on the dashboard
type Summary struct {
	TotalWeeklyOrders      int         `json:"total_weekly_orders"`
	HighestWasteIngredient *Ingredient `json:"highest_waste_ingredient,omitempty"`
	DishesNeedingAttention int         `json:"dishes_needing_attention"`
}

// Suggestion maps an ingredient to its corrective actions
type Suggestion struct {
	Ingredient string   `json:"ingredient"`
	Actions    []string `json:"actions"`
}

// StockAdvice recommends cutting the weekly order of a wasted ingredient
type StockAdvice struct {
	Ingredient       string  `json:"ingredient"`
	AvgWaste         float64 `json:"avg_waste"`
	WasteUnit        string  `json:"waste_unit"`
	ReducePercentage float64 `json:"reduce_percentage"`
}

// Point is one bar of the ingredient waste chart
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// DishPoint is one x position of the dish performance chart
type DishPoint struct {
	Dish            string  `json:"dish"`
	WeeklyOrders    int     `json:"weekly_orders"`
	WastePercentage float64 `json:"waste_percentage"`
}

// OllamaConfig for /config/ollama endpoint
type OllamaConfig struct {
	BaseURL string `json:"baseUrl"`
	Model   string `json:"model"`
}
