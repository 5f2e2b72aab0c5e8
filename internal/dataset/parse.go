package dataset

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	apperrors "nomora-backend/internal/errors"
	"nomora-backend/internal/models"
)

// Dish sales headers
const (
	ColDishName        = "Dish Name"
	ColWeeklyOrders    = "Weekly Orders"
	ColIngredients     = "Ingredients"
	ColIngredientCost  = "Ingredient Cost"
	ColProfitMargin    = "Profit Margin"
	ColIngredientWaste = "Ingredient Waste"
)

// Ingredient waste headers
const (
	ColIngredient         = "Ingredient"
	ColAvgWastePct        = "Avg Waste %"
	ColAvgWasteKg         = "Avg Waste (kg)"
	ColFrequentlyWastedIn = "Frequently Wasted In"
	ColSuggestedAction    = "Suggested Action"
	ColShelfLife          = "Shelf Life (days)"
)

var (
	currencyPattern = regexp.MustCompile(`₹\s*([0-9][0-9,]*)`)
	integerPattern  = regexp.MustCompile(`^[0-9][0-9,]*$`)

	errNoAmount    = errors.New("no currency amount")
	errWasteFormat = errors.New(`expected "<ingredient> - <percent>%"`)
)

// ParseCurrency extracts the integer amount from a rupee value such as "₹120".
// A bare integer is accepted as well; thousands separators are ignored.
func ParseCurrency(s string) (int, error) {
	s = strings.TrimSpace(s)
	digits := ""
	if m := currencyPattern.FindStringSubmatch(s); m != nil {
		digits = m[1]
	} else if integerPattern.MatchString(s) {
		digits = s
	}
	if digits == "" {
		return 0, fmt.Errorf("%q: %w", s, errNoAmount)
	}
	return strconv.Atoi(strings.ReplaceAll(digits, ",", ""))
}

// ParseWaste splits a compound "Tomato - 25%" field into its parts
func ParseWaste(s string) (string, float64, error) {
	parts := strings.SplitN(s, " - ", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("%q: %w", s, errWasteFormat)
	}
	name := strings.TrimSpace(parts[0])
	pctText := strings.TrimSpace(strings.ReplaceAll(parts[1], "%", ""))
	pct, err := strconv.ParseFloat(pctText, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%q: %w", s, err)
	}
	return name, pct, nil
}

// SplitList splits comma separated text, trimming items and dropping empties
func SplitList(s string) []string {
	items := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			items = append(items, p)
		}
	}
	return items
}

func requireColumns(t *Table, names ...string) (map[string]int, error) {
	cols := make(map[string]int, len(names))
	for _, n := range names {
		idx, ok := t.Column(n)
		if !ok {
			return nil, apperrors.MissingColumn(t.Name, n)
		}
		cols[n] = idx
	}
	return cols, nil
}

// DishesFromTable converts a dish sales table into typed records.
// Any bad cell fails the whole table.
func DishesFromTable(t *Table) ([]models.Dish, error) {
	cols, err := requireColumns(t, ColDishName, ColWeeklyOrders, ColIngredients,
		ColIngredientCost, ColProfitMargin, ColIngredientWaste)
	if err != nil {
		return nil, err
	}

	dishes := make([]models.Dish, 0, len(t.Rows))
	for i := range t.Rows {
		row := i + 1
		d := models.Dish{
			Name:        t.Cell(i, cols[ColDishName]),
			Ingredients: SplitList(t.Cell(i, cols[ColIngredients])),
		}
		if d.Name == "" {
			return nil, apperrors.BadValue(t.Name, row, ColDishName, errors.New("empty dish name"))
		}

		if d.WeeklyOrders, err = strconv.Atoi(t.Cell(i, cols[ColWeeklyOrders])); err != nil {
			return nil, apperrors.BadValue(t.Name, row, ColWeeklyOrders, err)
		}
		if d.IngredientCost, err = ParseCurrency(t.Cell(i, cols[ColIngredientCost])); err != nil {
			return nil, apperrors.BadValue(t.Name, row, ColIngredientCost, err)
		}
		if d.ProfitMargin, err = ParseCurrency(t.Cell(i, cols[ColProfitMargin])); err != nil {
			return nil, apperrors.BadValue(t.Name, row, ColProfitMargin, err)
		}
		if d.PrimaryWasteIngredient, d.WastePercentage, err = ParseWaste(t.Cell(i, cols[ColIngredientWaste])); err != nil {
			return nil, apperrors.BadValue(t.Name, row, ColIngredientWaste, err)
		}
		dishes = append(dishes, d)
	}
	return dishes, nil
}

// IngredientsFromTable converts an ingredient waste table into typed records.
// The waste metric may be a percentage or a mass in kg; shelf life is optional.
func IngredientsFromTable(t *Table) ([]models.Ingredient, error) {
	cols, err := requireColumns(t, ColIngredient, ColFrequentlyWastedIn, ColSuggestedAction)
	if err != nil {
		return nil, err
	}

	wasteCol, unit, wasteHeader := -1, models.WasteUnitPercent, ColAvgWastePct
	if idx, ok := t.Column(ColAvgWastePct, "Avg Waste", "Waste %"); ok {
		wasteCol = idx
	} else if idx, ok := t.Column(ColAvgWasteKg, "Waste (kg)"); ok {
		wasteCol, unit, wasteHeader = idx, models.WasteUnitKg, ColAvgWasteKg
	} else {
		return nil, apperrors.MissingColumn(t.Name, ColAvgWastePct)
	}
	shelfCol, hasShelf := shelfLifeColumn(t)

	ingredients := make([]models.Ingredient, 0, len(t.Rows))
	for i := range t.Rows {
		row := i + 1
		ing := models.Ingredient{
			Name:               t.Cell(i, cols[ColIngredient]),
			WasteUnit:          unit,
			FrequentlyWastedIn: SplitList(t.Cell(i, cols[ColFrequentlyWastedIn])),
			SuggestedAction:    t.Cell(i, cols[ColSuggestedAction]),
		}
		if ing.Name == "" {
			return nil, apperrors.BadValue(t.Name, row, ColIngredient, errors.New("empty ingredient name"))
		}

		wasteText := strings.TrimSpace(strings.TrimSuffix(t.Cell(i, wasteCol), "%"))
		if ing.AvgWaste, err = strconv.ParseFloat(wasteText, 64); err != nil {
			return nil, apperrors.BadValue(t.Name, row, wasteHeader, err)
		}

		if hasShelf {
			if v := t.Cell(i, shelfCol); v != "" {
				days, err := parseDays(v)
				if err != nil {
					return nil, apperrors.BadValue(t.Name, row, ColShelfLife, err)
				}
				ing.ShelfLifeDays = &days
			}
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, nil
}

// HasShelfLifeColumn reports whether an ingredient table carries the
// optional shelf life column
func HasShelfLifeColumn(t *Table) bool {
	_, ok := shelfLifeColumn(t)
	return ok
}

func shelfLifeColumn(t *Table) (int, bool) {
	return t.Column(ColShelfLife, "Shelf Life", "Shelf Life Days")
}

// parseDays accepts "5" or "5 days"
func parseDays(s string) (int, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, errors.New("empty shelf life")
	}
	return strconv.Atoi(fields[0])
}
