package analytics

import (
	"reflect"
	"strings"
	"testing"

	"nomora-backend/internal/models"
)

func sampleDishes() []models.Dish {
	return []models.Dish{
		{Name: "Paneer Butter Masala", WeeklyOrders: 42, Ingredients: []string{"Paneer", "Tomato", "Butter", "Cream", "Onion"}, ProfitMargin: 180, WastePercentage: 12},
		{Name: "Palak Paneer", WeeklyOrders: 8, Ingredients: []string{"Paneer", "Spinach", "Cream", "Garlic"}, ProfitMargin: 150, WastePercentage: 28},
		{Name: "Mushroom Curry", WeeklyOrders: 6, Ingredients: []string{"Mushroom", "Onion", "Tomato", "Cream"}, ProfitMargin: 130, WastePercentage: 32},
		{Name: "Dal Makhani", WeeklyOrders: 50, Ingredients: []string{"Urad Dal", "Butter", "Cream", "Tomato", "Butter"}, ProfitMargin: 150, WastePercentage: 5},
		{Name: "Side Salad", WeeklyOrders: 9, Ingredients: []string{"Lettuce"}, ProfitMargin: 40, WastePercentage: 20},
		{Name: "Kheer", WeeklyOrders: 10, Ingredients: []string{"Milk", "Rice"}, ProfitMargin: 90, WastePercentage: 35},
	}
}

func sampleIngredients() []models.Ingredient {
	return []models.Ingredient{
		{Name: "Spinach", AvgWaste: 28, WasteUnit: "%", SuggestedAction: "Use in soups; Make spinach pakoras"},
		{Name: "Mushroom", AvgWaste: 32, WasteUnit: "%", SuggestedAction: "Introduce mushroom soup"},
		{Name: "Cream", AvgWaste: 12, WasteUnit: "%", SuggestedAction: "Use in desserts;  Portion carefully ;"},
		{Name: "Okra", AvgWaste: 28, WasteUnit: "%", SuggestedAction: "Bhindi fry special"},
		{Name: "Avocado", AvgWaste: 40, WasteUnit: "%", SuggestedAction: "Offer guacamole side"},
	}
}

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = name(it)
	}
	return out
}

func dishName(d models.Dish) string      { return d.Name }
func ingName(i models.Ingredient) string { return i.Name }

func TestLowPerformers(t *testing.T) {
	got := names(LowPerformers(sampleDishes(), DefaultThresholds()), dishName)
	// Side Salad sits exactly on the waste threshold, Kheer exactly on the orders threshold
	want := []string{"Palak Paneer", "Mushroom Curry"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LowPerformers = %v, want %v", got, want)
	}

	loose := Thresholds{MaxOrders: 11, MinWaste: 19}
	got = names(LowPerformers(sampleDishes(), loose), dishName)
	want = []string{"Palak Paneer", "Mushroom Curry", "Side Salad", "Kheer"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LowPerformers(loose) = %v, want %v", got, want)
	}
}

func TestTopWaste(t *testing.T) {
	ingredients := sampleIngredients()

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"top three", 3, []string{"Avocado", "Mushroom", "Spinach"}},
		{"ties keep row order", 4, []string{"Avocado", "Mushroom", "Spinach", "Okra"}},
		{"more than available", 10, []string{"Avocado", "Mushroom", "Spinach", "Okra", "Cream"}},
		{"zero", 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(TopWaste(ingredients, tt.n), ingName)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TopWaste(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}

	if ingredients[0].Name != "Spinach" {
		t.Error("TopWaste must not reorder its input")
	}
}

func TestMarginOverlap(t *testing.T) {
	ranked := MarginOverlap(sampleDishes())
	got := names(ranked, dishName)
	// Palak Paneer (4 distinct) and Dal Makhani (4 distinct, Butter repeated) tie on
	// both keys and keep row order.
	want := []string{"Paneer Butter Masala", "Palak Paneer", "Dal Makhani", "Mushroom Curry", "Kheer", "Side Salad"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MarginOverlap = %v, want %v", got, want)
	}
	if ranked[2].OverlapScore != 4 {
		t.Errorf("Dal Makhani overlap = %d, want 4", ranked[2].OverlapScore)
	}
	if ranked[0].OverlapScore != 5 {
		t.Errorf("Paneer Butter Masala overlap = %d, want 5", ranked[0].OverlapScore)
	}
}

func TestMarginOverlapBreaksTiesByOverlap(t *testing.T) {
	dishes := []models.Dish{
		{Name: "Small", ProfitMargin: 100, Ingredients: []string{"A"}},
		{Name: "Large", ProfitMargin: 100, Ingredients: []string{"A", "B", "C"}},
	}
	got := names(MarginOverlap(dishes), dishName)
	if !reflect.DeepEqual(got, []string{"Large", "Small"}) {
		t.Errorf("got %v", got)
	}
	if dishes[0].OverlapScore != 0 {
		t.Error("MarginOverlap must not modify its input")
	}
}

func TestSuggestionsRoundTrip(t *testing.T) {
	original := "Use in soups; Make spinach pakoras; Order smaller batches"
	got := Suggestions([]models.Ingredient{{Name: "Spinach", SuggestedAction: original}})
	if len(got) != 1 {
		t.Fatalf("expected one suggestion, got %d", len(got))
	}
	if joined := strings.Join(got[0].Actions, "; "); joined != original {
		t.Errorf("round trip = %q, want %q", joined, original)
	}
}

func TestSuggestions(t *testing.T) {
	ingredients := append(sampleIngredients(), models.Ingredient{Name: "Spinach", SuggestedAction: "Palak soup"})
	got := Suggestions(ingredients)

	if len(got) != 5 {
		t.Fatalf("expected 5 suggestions, got %d", len(got))
	}
	if got[0].Ingredient != "Spinach" || !reflect.DeepEqual(got[0].Actions, []string{"Palak soup"}) {
		t.Errorf("duplicate ingredient should keep position and take last value: %+v", got[0])
	}
	if !reflect.DeepEqual(got[2].Actions, []string{"Use in desserts", "Portion carefully"}) {
		t.Errorf("actions should be trimmed without empties: %q", got[2].Actions)
	}
}

func TestSummarize(t *testing.T) {
	snap := &models.Snapshot{Dishes: sampleDishes(), Ingredients: sampleIngredients()}
	s := Summarize(snap, DefaultThresholds())

	if s.TotalWeeklyOrders != 125 {
		t.Errorf("TotalWeeklyOrders = %d, want 125", s.TotalWeeklyOrders)
	}
	if s.HighestWasteIngredient == nil || s.HighestWasteIngredient.Name != "Avocado" {
		t.Errorf("HighestWasteIngredient = %+v", s.HighestWasteIngredient)
	}
	if s.DishesNeedingAttention != 2 {
		t.Errorf("DishesNeedingAttention = %d, want 2", s.DishesNeedingAttention)
	}

	empty := Summarize(&models.Snapshot{}, DefaultThresholds())
	if empty.HighestWasteIngredient != nil || empty.TotalWeeklyOrders != 0 {
		t.Errorf("unexpected summary for empty snapshot: %+v", empty)
	}
}

func TestStockAdvice(t *testing.T) {
	advice := StockAdvice(sampleIngredients(), DefaultMinWaste)
	got := make([]string, len(advice))
	for i, a := range advice {
		got[i] = a.Ingredient
	}
	want := []string{"Avocado", "Mushroom", "Spinach", "Okra"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StockAdvice = %v, want %v", got, want)
	}
	if advice[0].ReducePercentage != 20 || advice[2].ReducePercentage != 14 {
		t.Errorf("unexpected reductions: %+v", advice)
	}
}

func TestChartSeries(t *testing.T) {
	points := WasteBreakdown(sampleIngredients())
	if len(points) != 5 || points[4].Label != "Avocado" || points[4].Value != 40 {
		t.Errorf("unexpected waste breakdown: %+v", points)
	}
	perf := DishPerformance(sampleDishes())
	if len(perf) != 6 || perf[1].WeeklyOrders != 8 || perf[1].WastePercentage != 28 {
		t.Errorf("unexpected dish performance: %+v", perf)
	}
}

func TestFind(t *testing.T) {
	if d, ok := FindDish(sampleDishes(), " palak paneer "); !ok || d.ProfitMargin != 150 {
		t.Errorf("FindDish = %+v, %v", d, ok)
	}
	if _, ok := FindDish(sampleDishes(), "Pizza"); ok {
		t.Error("expected Pizza to be missing")
	}
	if ing, ok := FindIngredient(sampleIngredients(), "OKRA"); !ok || ing.AvgWaste != 28 {
		t.Errorf("FindIngredient = %+v, %v", ing, ok)
	}
}
