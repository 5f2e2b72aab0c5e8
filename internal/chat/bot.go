package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"nomora-backend/internal/analytics"
	apperrors "nomora-backend/internal/errors"
	"nomora-backend/internal/llm"
	"nomora-backend/internal/logging"
	"nomora-backend/internal/models"
)

// Fixed replies
const (
	HelpMessage     = "I'm sorry, I didn't understand that question. Please try rephrasing."
	GreetingMessage = "Hello! I'm Nomora, your restaurant assistant. Ask me which dishes to remove or repurpose, " +
		"which ingredients are wasted most, for new dish ideas, about high-margin dishes with overlapping ingredients, " +
		"how to adjust stock, a dish's profit or an ingredient's shelf life."
	DishNotFoundMessage       = "Sorry, I couldn't find a dish by that name in the sales data."
	IngredientNotFoundMessage = "Sorry, I couldn't find that ingredient in the waste data."
	NoShelfLifeMessage        = "Shelf-life data is not available in the ingredient waste table."
)

// SnapshotProvider returns the current data snapshot, or nil if none is loaded
type SnapshotProvider interface {
	Snapshot() *models.Snapshot
}

// Table is tabular response content. Columns fixes the display order of the
// keys in each row.
type Table struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

// Response is one chatbot answer
type Response struct {
	ID       string   `json:"id"`
	Query    string   `json:"query"`
	Category Category `json:"category"`
	Stage    Stage    `json:"stage"`
	Title    string   `json:"title,omitempty"`
	Text     string   `json:"text,omitempty"`
	Table    *Table   `json:"table,omitempty"`
}

// Options tunes the analytics used in answers
type Options struct {
	Thresholds analytics.Thresholds
	TopN       int
	Logger     *logging.Logger
}

// Bot answers queries against the current snapshot
type Bot struct {
	router *Router
	data   SnapshotProvider
	gen    llm.Generator
	opts   Options
	fuzzy  *FuzzyMatcher
}

// NewBot creates a bot. gen may be nil outside ModeModel.
func NewBot(router *Router, data SnapshotProvider, gen llm.Generator, opts Options) *Bot {
	if opts.Thresholds == (analytics.Thresholds{}) {
		opts.Thresholds = analytics.DefaultThresholds()
	}
	if opts.TopN <= 0 {
		opts.TopN = analytics.DefaultTopN
	}
	if opts.Logger == nil {
		opts.Logger = logging.Global()
	}
	return &Bot{router: router, data: data, gen: gen, opts: opts, fuzzy: NewFuzzyMatcher()}
}

// Router returns the router the bot uses
func (b *Bot) Router() *Router {
	return b.router
}

// Answer routes the query and renders the matching category. It fails only
// when no snapshot is loaded.
func (b *Bot) Answer(ctx context.Context, query string) (Response, error) {
	snap := b.data.Snapshot()
	if snap == nil {
		return Response{}, apperrors.ErrNotLoaded
	}

	match := b.router.Route(query)
	resp := Response{
		ID:       uuid.New().String(),
		Query:    query,
		Category: match.Category,
		Stage:    match.Stage,
	}
	b.opts.Logger.Debug("routed query", "category", match.Category, "stage", match.Stage, "phrase", match.Phrase, "score", match.Score)

	switch match.Category {
	case CategoryRemove:
		b.renderRemove(&resp, snap)
	case CategoryWaste:
		b.renderWaste(&resp, snap)
	case CategorySuggest:
		b.renderSuggest(&resp, snap)
	case CategoryOverlap:
		b.renderOverlap(&resp, snap)
	case CategoryStock:
		b.renderStock(&resp, snap)
	case CategoryGreeting:
		resp.Text = GreetingMessage
	case CategoryProfit:
		b.renderProfit(&resp, snap, query)
	case CategoryShelfLife:
		b.renderShelfLife(&resp, snap, query)
	default:
		b.renderFallback(ctx, &resp, snap, query)
	}
	return resp, nil
}

// newTable starts a table with no rows so it encodes as [] rather than null
func newTable(columns ...string) *Table {
	return &Table{Columns: columns, Rows: []map[string]interface{}{}}
}

func (b *Bot) renderRemove(resp *Response, snap *models.Snapshot) {
	th := b.opts.Thresholds
	low := analytics.LowPerformers(snap.Dishes, th)

	resp.Title = "Dishes to Consider Removing/Repurposing"
	if len(low) == 0 {
		resp.Text = fmt.Sprintf("No dish has fewer than %d weekly orders with more than %g%% waste.", th.MaxOrders, th.MinWaste)
	} else {
		resp.Text = fmt.Sprintf("%d dish(es) have fewer than %d weekly orders and waste more than %g%% of their main ingredient.",
			len(low), th.MaxOrders, th.MinWaste)
	}

	table := newTable("Dish Name", "Weekly Orders", "Primary Waste Ingredient", "Waste Percentage")
	for _, d := range low {
		table.Rows = append(table.Rows, map[string]interface{}{
			"Dish Name":                d.Name,
			"Weekly Orders":            d.WeeklyOrders,
			"Primary Waste Ingredient": d.PrimaryWasteIngredient,
			"Waste Percentage":         d.WastePercentage,
		})
	}
	resp.Table = table
}

func (b *Bot) renderWaste(resp *Response, snap *models.Snapshot) {
	resp.Title = "Most Wasted Ingredients"
	table := newTable("Ingredient", "Avg Waste", "Frequently Wasted In")
	for _, ing := range analytics.TopWaste(snap.Ingredients, b.opts.TopN) {
		table.Rows = append(table.Rows, map[string]interface{}{
			"Ingredient":           ing.Name,
			"Avg Waste":            formatWaste(ing),
			"Frequently Wasted In": strings.Join(ing.FrequentlyWastedIn, ", "),
		})
	}
	resp.Table = table
}

func (b *Bot) renderSuggest(resp *Response, snap *models.Snapshot) {
	resp.Title = "Suggested Waste Reduction Actions"
	blocks := []string{}
	for _, s := range analytics.Suggestions(snap.Ingredients) {
		blocks = append(blocks, fmt.Sprintf("**%s**:\n- %s", s.Ingredient, strings.Join(s.Actions, "\n- ")))
	}
	resp.Text = strings.Join(blocks, "\n\n")
}

func (b *Bot) renderOverlap(resp *Response, snap *models.Snapshot) {
	resp.Title = "High Margin Dishes with Ingredient Overlap"
	table := newTable("Dish Name", "Profit Margin", "Overlap Score", "Ingredients")
	for _, d := range analytics.MarginOverlap(snap.Dishes) {
		table.Rows = append(table.Rows, map[string]interface{}{
			"Dish Name":     d.Name,
			"Profit Margin": d.ProfitMargin,
			"Overlap Score": d.OverlapScore,
			"Ingredients":   strings.Join(d.Ingredients, ", "),
		})
	}
	resp.Table = table
}

func (b *Bot) renderStock(resp *Response, snap *models.Snapshot) {
	resp.Title = "Stock Adjustment Recommendations"
	advice := analytics.StockAdvice(snap.Ingredients, b.opts.Thresholds.MinWaste)
	if len(advice) == 0 {
		resp.Text = fmt.Sprintf("No ingredient is wasted above %g. Current stock levels look fine.", b.opts.Thresholds.MinWaste)
		return
	}
	table := newTable("Ingredient", "Avg Waste", "Reduce Order By %")
	for _, a := range advice {
		table.Rows = append(table.Rows, map[string]interface{}{
			"Ingredient":        a.Ingredient,
			"Avg Waste":         fmt.Sprintf("%g%s", a.AvgWaste, a.WasteUnit),
			"Reduce Order By %": a.ReducePercentage,
		})
	}
	resp.Table = table
}

func (b *Bot) renderProfit(resp *Response, snap *models.Snapshot, query string) {
	resp.Title = "Dish Profitability"
	names := make([]string, len(snap.Dishes))
	for i, d := range snap.Dishes {
		names[i] = d.Name
	}
	idx, ok := b.findNamed(query, names)
	if !ok {
		resp.Text = DishNotFoundMessage
		return
	}
	d := snap.Dishes[idx]
	resp.Text = fmt.Sprintf("**%s** has a profit margin of ₹%d on an ingredient cost of ₹%d, with %d orders this week.",
		d.Name, d.ProfitMargin, d.IngredientCost, d.WeeklyOrders)
}

func (b *Bot) renderShelfLife(resp *Response, snap *models.Snapshot, query string) {
	resp.Title = "Ingredient Shelf Life"
	if !snap.HasShelfLife() {
		resp.Text = NoShelfLifeMessage
		return
	}
	names := make([]string, len(snap.Ingredients))
	for i, ing := range snap.Ingredients {
		names[i] = ing.Name
	}
	idx, ok := b.findNamed(query, names)
	if !ok {
		resp.Text = IngredientNotFoundMessage
		return
	}
	ing := snap.Ingredients[idx]
	if ing.ShelfLifeDays == nil {
		resp.Text = fmt.Sprintf("No shelf life is recorded for **%s**.", ing.Name)
		return
	}
	resp.Text = fmt.Sprintf("**%s** has a shelf life of %d day(s).", ing.Name, *ing.ShelfLifeDays)
}

func (b *Bot) renderFallback(ctx context.Context, resp *Response, snap *models.Snapshot, query string) {
	resp.Text = HelpMessage
	if b.router.Mode() != ModeModel || b.gen == nil {
		return
	}

	text, err := b.gen.Generate(ctx, llm.BuildPrompt(query, snap))
	if err != nil {
		b.opts.Logger.Warn("model fallback failed", "error", err)
		return
	}
	resp.Stage = StageModel
	resp.Title = "Nomora AI"
	resp.Text = text
}

// findNamed finds which name the query mentions. An exact word match wins,
// preferring the longest name; outside keyword mode a fuzzy match over
// same-length word windows is tried next.
func (b *Bot) findNamed(query string, names []string) (int, bool) {
	tokens := Tokenize(query)

	best, bestLen := -1, 0
	for i, name := range names {
		nameTokens := Tokenize(name)
		if len(nameTokens) > bestLen && containsPhrase(tokens, nameTokens) {
			best, bestLen = i, len(nameTokens)
		}
	}
	if best >= 0 {
		return best, true
	}
	if b.router.Mode() == ModeKeyword {
		return -1, false
	}

	bestScore := 0.0
	for i, name := range names {
		nameTokens := Tokenize(name)
		for start := 0; start+len(nameTokens) <= len(tokens); start++ {
			score := b.fuzzy.NameSimilarity(tokens[start:start+len(nameTokens)], nameTokens)
			if score >= b.router.threshold && score > bestScore {
				best, bestScore = i, score
			}
		}
	}
	return best, best >= 0
}

func formatWaste(ing models.Ingredient) string {
	if ing.WasteUnit == models.WasteUnitKg {
		return fmt.Sprintf("%g kg", ing.AvgWaste)
	}
	return fmt.Sprintf("%g%%", ing.AvgWaste)
}
