// Package analytics holds the dashboard computations over a loaded snapshot.
// Every function is pure: inputs are never modified and results are fresh
// slices.
package analytics

import (
	"math"
	"sort"
	"strings"

	"nomora-backend/internal/models"
)

// Defaults used by the dashboard and the chatbot
const (
	DefaultMaxOrders = 10
	DefaultMinWaste  = 20.0
	DefaultTopN      = 3
)

// Thresholds decide which dishes count as low performers
type Thresholds struct {
	MaxOrders int     `json:"max_orders"`
	MinWaste  float64 `json:"min_waste"`
}

// DefaultThresholds returns orders < 10 and waste > 20%
func DefaultThresholds() Thresholds {
	return Thresholds{MaxOrders: DefaultMaxOrders, MinWaste: DefaultMinWaste}
}

// LowPerformers returns dishes with few weekly orders AND high waste
func LowPerformers(dishes []models.Dish, th Thresholds) []models.Dish {
	out := []models.Dish{}
	for _, d := range dishes {
		if d.WeeklyOrders < th.MaxOrders && d.WastePercentage > th.MinWaste {
			out = append(out, d)
		}
	}
	return out
}

// TopWaste returns the n most wasted ingredients, highest first.
// Equal waste keeps the original row order.
func TopWaste(ingredients []models.Ingredient, n int) []models.Ingredient {
	if n <= 0 {
		return []models.Ingredient{}
	}
	sorted := append([]models.Ingredient(nil), ingredients...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AvgWaste > sorted[j].AvgWaste
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// OverlapScore is the number of distinct ingredients a dish uses
func OverlapScore(d models.Dish) int {
	seen := make(map[string]struct{}, len(d.Ingredients))
	for _, ing := range d.Ingredients {
		seen[ing] = struct{}{}
	}
	return len(seen)
}

// MarginOverlap ranks dishes by profit margin then overlap score, both
// descending. The returned dishes carry their OverlapScore.
func MarginOverlap(dishes []models.Dish) []models.Dish {
	ranked := make([]models.Dish, len(dishes))
	for i, d := range dishes {
		d.OverlapScore = OverlapScore(d)
		ranked[i] = d
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ProfitMargin != ranked[j].ProfitMargin {
			return ranked[i].ProfitMargin > ranked[j].ProfitMargin
		}
		return ranked[i].OverlapScore > ranked[j].OverlapScore
	})
	return ranked
}

// Suggestions maps every ingredient to its list of corrective actions.
// A repeated ingredient keeps its first position and takes the later actions.
func Suggestions(ingredients []models.Ingredient) []models.Suggestion {
	out := []models.Suggestion{}
	pos := make(map[string]int, len(ingredients))
	for _, ing := range ingredients {
		s := models.Suggestion{Ingredient: ing.Name, Actions: splitActions(ing.SuggestedAction)}
		if i, ok := pos[ing.Name]; ok {
			out[i] = s
			continue
		}
		pos[ing.Name] = len(out)
		out = append(out, s)
	}
	return out
}

func splitActions(s string) []string {
	actions := []string{}
	for _, part := range strings.Split(s, ";") {
		if a := strings.TrimSpace(part); a != "" {
			actions = append(actions, a)
		}
	}
	return actions
}

// Summarize computes the dashboard headline metrics
func Summarize(snap *models.Snapshot, th Thresholds) models.Summary {
	summary := models.Summary{}
	for _, d := range snap.Dishes {
		summary.TotalWeeklyOrders += d.WeeklyOrders
	}
	if top := TopWaste(snap.Ingredients, 1); len(top) == 1 {
		summary.HighestWasteIngredient = &top[0]
	}
	summary.DishesNeedingAttention = len(LowPerformers(snap.Dishes, th))
	return summary
}

// WasteBreakdown is the per-ingredient waste series in row order
func WasteBreakdown(ingredients []models.Ingredient) []models.Point {
	points := make([]models.Point, 0, len(ingredients))
	for _, ing := range ingredients {
		points = append(points, models.Point{Label: ing.Name, Value: ing.AvgWaste})
	}
	return points
}

// DishPerformance is the weekly orders vs waste series in row order
func DishPerformance(dishes []models.Dish) []models.DishPoint {
	points := make([]models.DishPoint, 0, len(dishes))
	for _, d := range dishes {
		points = append(points, models.DishPoint{
			Dish:            d.Name,
			WeeklyOrders:    d.WeeklyOrders,
			WastePercentage: d.WastePercentage,
		})
	}
	return points
}

// StockAdvice lists ingredients wasted above minWaste, worst first, with a
// suggested cut to the weekly order of half the waste figure.
func StockAdvice(ingredients []models.Ingredient, minWaste float64) []models.StockAdvice {
	advice := []models.StockAdvice{}
	for _, ing := range TopWaste(ingredients, len(ingredients)) {
		if ing.AvgWaste <= minWaste {
			continue
		}
		advice = append(advice, models.StockAdvice{
			Ingredient:       ing.Name,
			AvgWaste:         ing.AvgWaste,
			WasteUnit:        ing.WasteUnit,
			ReducePercentage: math.Round(ing.AvgWaste/2*10) / 10,
		})
	}
	return advice
}

// FindDish looks a dish up by name, ignoring case
func FindDish(dishes []models.Dish, name string) (models.Dish, bool) {
	for _, d := range dishes {
		if strings.EqualFold(strings.TrimSpace(name), d.Name) {
			return d, true
		}
	}
	return models.Dish{}, false
}

// FindIngredient looks an ingredient up by name, ignoring case
func FindIngredient(ingredients []models.Ingredient, name string) (models.Ingredient, bool) {
	for _, ing := range ingredients {
		if strings.EqualFold(strings.TrimSpace(name), ing.Name) {
			return ing, true
		}
	}
	return models.Ingredient{}, false
}
