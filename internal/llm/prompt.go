package llm

import (
	"fmt"
	"strings"

	"nomora-backend/internal/models"
)

// BuildPrompt wraps a guest question with a compact description of the
// restaurant's data so the model answers from it rather than in general.
func BuildPrompt(question string, snap *models.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("You are Nomora, an assistant that helps a restaurant reduce food waste and improve profit.\n")
	sb.WriteString("Answer briefly and only from the data below. If the data does not cover the question, say so.\n\n")

	if snap != nil {
		sb.WriteString("Dishes (name | weekly orders | profit margin | main waste):\n")
		for _, d := range snap.Dishes {
			sb.WriteString(fmt.Sprintf("- %s | %d | ₹%d | %s %.1f%%\n",
				d.Name, d.WeeklyOrders, d.ProfitMargin, d.PrimaryWasteIngredient, d.WastePercentage))
		}
		sb.WriteString("\nIngredients (name | average waste | suggested action):\n")
		for _, ing := range snap.Ingredients {
			sb.WriteString(fmt.Sprintf("- %s | %g%s | %s\n", ing.Name, ing.AvgWaste, ing.WasteUnit, ing.SuggestedAction))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Question: ")
	sb.WriteString(strings.TrimSpace(question))
	sb.WriteString("\nAnswer:")
	return sb.String()
}
