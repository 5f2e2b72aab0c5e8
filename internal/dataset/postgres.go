package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/lib/pq"

	apperrors "nomora-backend/internal/errors"
	"nomora-backend/internal/models"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresSource loads both datasets from two Postgres tables that use the
// same column names as the CSV files.
type PostgresSource struct {
	DSN             string
	DishTable       string
	IngredientTable string

	open func(driver, dsn string) (*sql.DB, error)
}

// NewPostgresSource creates a Postgres backed source
func NewPostgresSource(dsn, dishTable, ingredientTable string) *PostgresSource {
	if dishTable == "" {
		dishTable = "dish_sales"
	}
	if ingredientTable == "" {
		ingredientTable = "ingredient_waste"
	}
	return &PostgresSource{
		DSN:             dsn,
		DishTable:       dishTable,
		IngredientTable: ingredientTable,
		open:            sql.Open,
	}
}

func (p *PostgresSource) Describe() string {
	return "postgres:" + p.DishTable + "," + p.IngredientTable
}

func (p *PostgresSource) Load(ctx context.Context) (*models.Snapshot, error) {
	for _, name := range []string{p.DishTable, p.IngredientTable} {
		if !tableNamePattern.MatchString(name) {
			return nil, apperrors.ConfigInvalid("data table", fmt.Sprintf("invalid table name %q", name))
		}
	}

	db, err := p.open("postgres", p.DSN)
	if err != nil {
		return nil, apperrors.NewDataError("postgres", "open failed", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, apperrors.NewDataError("postgres", "ping failed", err)
	}

	dishTable, err := queryTable(ctx, db, p.DishTable)
	if err != nil {
		return nil, err
	}
	dishes, err := DishesFromTable(dishTable)
	if err != nil {
		return nil, err
	}

	ingTable, err := queryTable(ctx, db, p.IngredientTable)
	if err != nil {
		return nil, err
	}
	ingredients, err := IngredientsFromTable(ingTable)
	if err != nil {
		return nil, err
	}

	return &models.Snapshot{
		Dishes:          dishes,
		Ingredients:     ingredients,
		Origin:          p.Describe(),
		LoadedAt:        time.Now(),
		ShelfLifeColumn: HasShelfLifeColumn(ingTable),
	}, nil
}

// selectAll reads a whole table in physical row order. ctid follows insert
// order for tables loaded once (COPY or INSERT) and not updated since, which
// stands in for the CSV row order that analytics tie-breaks rely on.
func selectAll(name string) string {
	return fmt.Sprintf(`SELECT * FROM "%s" ORDER BY ctid`, name)
}

// queryTable reads every row of a table as text so CSV and database rows
// go through the same parsing.
func queryTable(ctx context.Context, db *sql.DB, name string) (*Table, error) {
	// name is validated against tableNamePattern by the caller
	rows, err := db.QueryContext(ctx, selectAll(name))
	if err != nil {
		return nil, apperrors.NewDataError(name, "query failed", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, apperrors.NewDataError(name, "read columns failed", err)
	}

	var records [][]string
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, apperrors.NewDataError(name, "scan failed", err)
		}

		record := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				record[i] = v.String
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDataError(name, "row iteration failed", err)
	}

	return NewTable(name, columns, records), nil
}
