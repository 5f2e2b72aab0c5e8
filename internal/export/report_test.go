package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"nomora-backend/internal/analytics"
	"nomora-backend/internal/dataset"
	"nomora-backend/internal/models"
)

func loadSnapshot(t *testing.T) *models.Snapshot {
	t.Helper()
	src := dataset.NewCSVSource("../dataset/testdata/dish_sales.csv", "../dataset/testdata/ingredient_waste.csv")
	snap, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("load testdata: %v", err)
	}
	return snap
}

func TestWriteReport(t *testing.T) {
	snap := loadSnapshot(t)

	var buf bytes.Buffer
	if err := WriteReport(&buf, snap, Options{Thresholds: analytics.DefaultThresholds()}); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	want := []string{SheetSummary, SheetLowPerformers, SheetTopWaste, SheetMarginOverlap, SheetSuggestions}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sheet %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	low, err := f.GetRows(SheetLowPerformers)
	if err != nil {
		t.Fatal(err)
	}
	if len(low) != 4 {
		t.Fatalf("expected header + 3 low performers, got %d rows", len(low))
	}
	if low[0][0] != "Dish Name" || low[1][0] != "Palak Paneer" || low[3][0] != "Avocado Toast" {
		t.Errorf("unexpected low performer rows: %v", low)
	}

	waste, err := f.GetRows(SheetTopWaste)
	if err != nil {
		t.Fatal(err)
	}
	if len(waste) != 4 || waste[1][0] != "Avocado" || waste[1][1] != "40" || waste[3][0] != "Spinach" {
		t.Errorf("unexpected top waste rows: %v", waste)
	}

	suggestions, err := f.GetRows(SheetSuggestions)
	if err != nil {
		t.Fatal(err)
	}
	if len(suggestions) != 14 {
		t.Errorf("expected 13 actions plus header, got %d rows", len(suggestions))
	}

	total, err := f.GetCellValue(SheetSummary, "B2")
	if err != nil {
		t.Fatal(err)
	}
	if total != "208" {
		t.Errorf("expected total weekly orders 208, got %q", total)
	}
}

func TestBuildTopN(t *testing.T) {
	snap := loadSnapshot(t)

	f, err := Build(snap, Options{Thresholds: analytics.DefaultThresholds(), TopN: 5})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetTopWaste)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 6 {
		t.Errorf("expected header + 5 rows, got %d", len(rows))
	}
}

func TestBuildWithoutData(t *testing.T) {
	if _, err := Build(nil, Options{}); err == nil {
		t.Error("expected error for nil snapshot")
	}
}
