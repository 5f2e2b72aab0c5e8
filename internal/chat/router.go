// Package chat answers free-text questions about the restaurant data using a
// fixed decision table of phrase categories, with optional fuzzy matching and
// a language model fallback.
package chat

import (
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "nomora-backend/internal/errors"
)

// Category is the kind of answer a query is routed to
type Category string

const (
	CategoryRemove    Category = "remove"
	CategoryWaste     Category = "waste"
	CategorySuggest   Category = "suggest"
	CategoryOverlap   Category = "overlap"
	CategoryStock     Category = "stock"
	CategoryGreeting  Category = "greeting"
	CategoryProfit    Category = "profit"
	CategoryShelfLife Category = "shelf_life"
	CategoryNone      Category = "none"
)

// Stage records which step of the router produced the answer
type Stage string

const (
	StageKeyword Stage = "keyword"
	StageFuzzy   Stage = "fuzzy"
	StageModel   Stage = "model"
	StageDefault Stage = "default"
)

// Mode selects how far the router goes before giving up
type Mode string

const (
	ModeKeyword Mode = "keyword"
	ModeFuzzy   Mode = "fuzzy"
	ModeModel   Mode = "model"
)

// DefaultFuzzyThreshold is the minimum word similarity for a fuzzy hit
const DefaultFuzzyThreshold = 0.8

// minFuzzyRunes skips short words like "is" or "me" in the fuzzy stage
const minFuzzyRunes = 3

// minStemRunes is the shortest single-word phrase that also matches longer
// words starting with it ("remove" in "removed"). Shorter ones like "hi"
// must match a whole word.
const minStemRunes = 4

// ParseMode validates a configured router mode
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeKeyword, ModeFuzzy, ModeModel:
		return m, nil
	case "":
		return ModeFuzzy, nil
	default:
		return "", apperrors.ConfigInvalid("chat.mode", "unknown mode "+s,
			string(ModeKeyword), string(ModeFuzzy), string(ModeModel))
	}
}

type rule struct {
	category Category
	phrases  []string
}

// rules is evaluated top to bottom; the first category that matches wins.
var rules = []rule{
	{CategoryRemove, []string{"remove", "removing", "repurpose", "repurposing", "low performing", "low performers", "underperforming", "take off the menu", "drop from menu"}},
	{CategoryWaste, []string{"wasted", "most waste", "highest waste", "waste ingredients", "wastage"}},
	{CategorySuggest, []string{"new dishes", "new dish", "suggest", "suggestion", "suggestions", "ideas", "recommend", "recommendations", "reduce waste"}},
	{CategoryOverlap, []string{"overlapping", "overlap", "high margin", "shared ingredients", "common ingredients"}},
	{CategoryStock, []string{"stock", "inventory", "restock", "order less", "purchasing", "procurement"}},
	{CategoryGreeting, []string{"hello", "hi", "hey", "namaste", "good morning", "good afternoon", "good evening", "thanks", "thank you"}},
	{CategoryProfit, []string{"profit", "profits", "profitable", "margin", "margins"}},
	{CategoryShelfLife, []string{"shelf life", "shelf", "expire", "expiry", "expiration", "spoil", "how long"}},
}

// Match is the routing decision for one query
type Match struct {
	Category Category `json:"category"`
	Stage    Stage    `json:"stage"`
	Phrase   string   `json:"phrase,omitempty"`
	Score    float64  `json:"score,omitempty"`
}

// Router maps a query to a category. It holds no per-query state, so the
// same query always routes the same way.
type Router struct {
	mode      Mode
	threshold float64
	fuzzy     *FuzzyMatcher
}

// NewRouter creates a router. A threshold outside (0,1] uses the default.
func NewRouter(mode Mode, threshold float64) *Router {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultFuzzyThreshold
	}
	if mode == "" {
		mode = ModeFuzzy
	}
	return &Router{mode: mode, threshold: threshold, fuzzy: NewFuzzyMatcher()}
}

// Mode returns the configured router mode
func (r *Router) Mode() Mode {
	return r.mode
}

// Route runs the keyword stage and, outside keyword mode, the fuzzy stage.
// An unmatched query returns CategoryNone with StageDefault.
func (r *Router) Route(query string) Match {
	tokens := Tokenize(query)

	for _, rl := range rules {
		for _, phrase := range rl.phrases {
			if matchesKeyword(tokens, Tokenize(phrase)) {
				return Match{Category: rl.category, Stage: StageKeyword, Phrase: phrase, Score: 1}
			}
		}
	}

	if r.mode == ModeKeyword {
		return Match{Category: CategoryNone, Stage: StageDefault}
	}

	for _, rl := range rules {
		best := Match{}
		for _, phrase := range rl.phrases {
			if strings.Contains(phrase, " ") || utf8.RuneCountInString(phrase) < minFuzzyRunes {
				continue
			}
			for _, tok := range tokens {
				if utf8.RuneCountInString(tok) < minFuzzyRunes {
					continue
				}
				score := r.fuzzy.Similarity(tok, phrase)
				if score >= r.threshold && score > best.Score {
					best = Match{Category: rl.category, Stage: StageFuzzy, Phrase: phrase, Score: score}
				}
			}
		}
		if best.Category != "" {
			return best
		}
	}

	return Match{Category: CategoryNone, Stage: StageDefault}
}

// Tokenize lowercases text and splits it into words. Hyphens, underscores
// and punctuation separate words; apostrophes are dropped.
func Tokenize(s string) []string {
	s = strings.ToLower(strings.ReplaceAll(s, "'", ""))
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// matchesKeyword reports whether the query tokens contain phrase. A single
// word phrase of minStemRunes or more also matches as a word prefix.
func matchesKeyword(tokens, phrase []string) bool {
	if len(phrase) == 1 && utf8.RuneCountInString(phrase[0]) >= minStemRunes {
		for _, tok := range tokens {
			if strings.HasPrefix(tok, phrase[0]) {
				return true
			}
		}
		return false
	}
	return containsPhrase(tokens, phrase)
}

// containsPhrase reports whether phrase occurs as a contiguous run of tokens
func containsPhrase(tokens, phrase []string) bool {
	return indexPhrase(tokens, phrase) >= 0
}

func indexPhrase(tokens, phrase []string) int {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return -1
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		match := true
		for j := range phrase {
			if tokens[i+j] != phrase[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
