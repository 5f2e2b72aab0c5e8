// Package export renders the dashboard analytics as an xlsx workbook.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"nomora-backend/internal/analytics"
	"nomora-backend/internal/models"
)

// Sheet names in workbook order
const (
	SheetSummary       = "Summary"
	SheetLowPerformers = "Low Performers"
	SheetTopWaste      = "Top Waste"
	SheetMarginOverlap = "Margin Overlap"
	SheetSuggestions   = "Suggestions"
)

// ContentType is the media type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Options tunes the report contents.
type Options struct {
	Thresholds analytics.Thresholds
	TopN       int
}

// Build creates the report workbook for snap. The caller must Close it.
func Build(snap *models.Snapshot, opts Options) (*excelize.File, error) {
	if snap == nil {
		return nil, fmt.Errorf("export: no data loaded")
	}
	if opts.TopN <= 0 {
		opts.TopN = analytics.DefaultTopN
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	summary := analytics.Summarize(snap, opts.Thresholds)
	highest := ""
	if summary.HighestWasteIngredient != nil {
		highest = summary.HighestWasteIngredient.Name
	}
	sheets := []struct {
		name  string
		rows  [][]interface{}
		width float64
	}{
		{
			name: SheetSummary,
			rows: [][]interface{}{
				{"Metric", "Value"},
				{"Total Weekly Orders", summary.TotalWeeklyOrders},
				{"Highest Waste Ingredient", highest},
				{"Dishes Needing Attention", summary.DishesNeedingAttention},
				{"Dishes", len(snap.Dishes)},
				{"Ingredients", len(snap.Ingredients)},
				{"Source", snap.Origin},
			},
			width: 28,
		},
		{name: SheetLowPerformers, rows: lowPerformerRows(snap.Dishes, opts.Thresholds), width: 24},
		{name: SheetTopWaste, rows: topWasteRows(snap.Ingredients, opts.TopN), width: 24},
		{name: SheetMarginOverlap, rows: marginOverlapRows(snap.Dishes), width: 24},
		{name: SheetSuggestions, rows: suggestionRows(snap.Ingredients), width: 40},
	}

	for _, s := range sheets {
		if s.name != SheetSummary {
			if _, err := f.NewSheet(s.name); err != nil {
				f.Close()
				return nil, err
			}
		}
		if err := writeRows(f, s.name, s.rows); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetRowStyle(s.name, 1, 1, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
		lastCol, _ := excelize.ColumnNumberToName(len(s.rows[0]))
		if err := f.SetColWidth(s.name, "A", lastCol, s.width); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// WriteReport builds the workbook and writes it to w.
func WriteReport(w io.Writer, snap *models.Snapshot, opts Options) error {
	f, err := Build(snap, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export: sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func lowPerformerRows(dishes []models.Dish, th analytics.Thresholds) [][]interface{} {
	rows := [][]interface{}{{"Dish Name", "Weekly Orders", "Primary Waste Ingredient", "Waste Percentage"}}
	for _, d := range analytics.LowPerformers(dishes, th) {
		rows = append(rows, []interface{}{d.Name, d.WeeklyOrders, d.PrimaryWasteIngredient, d.WastePercentage})
	}
	return rows
}

func topWasteRows(ingredients []models.Ingredient, n int) [][]interface{} {
	rows := [][]interface{}{{"Ingredient", "Avg Waste", "Unit", "Frequently Wasted In"}}
	for _, ing := range analytics.TopWaste(ingredients, n) {
		rows = append(rows, []interface{}{ing.Name, ing.AvgWaste, ing.WasteUnit, strings.Join(ing.FrequentlyWastedIn, ", ")})
	}
	return rows
}

func marginOverlapRows(dishes []models.Dish) [][]interface{} {
	rows := [][]interface{}{{"Dish Name", "Profit Margin", "Ingredient Cost", "Overlap Score", "Ingredients"}}
	for _, d := range analytics.MarginOverlap(dishes) {
		rows = append(rows, []interface{}{d.Name, d.ProfitMargin, d.IngredientCost, d.OverlapScore, strings.Join(d.Ingredients, ", ")})
	}
	return rows
}

func suggestionRows(ingredients []models.Ingredient) [][]interface{} {
	rows := [][]interface{}{{"Ingredient", "Action"}}
	for _, s := range analytics.Suggestions(ingredients) {
		for _, a := range s.Actions {
			rows = append(rows, []interface{}{s.Ingredient, a})
		}
	}
	return rows
}
