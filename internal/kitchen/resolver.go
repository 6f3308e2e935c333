package kitchen

import (
	"strings"

	"thallipoli/internal/models"
)

// IngredientResolver decides whether a removal token refers to an
// inventory item. Sales and the assistant both resolve removals through it.
type IngredientResolver interface {
	Matches(item *models.InventoryItem, token string) bool
}

// SubstringResolver matches when the token is contained in the item name,
// ignoring case. One token may match several ingredients.
type SubstringResolver struct{}

func (SubstringResolver) Matches(item *models.InventoryItem, token string) bool {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return false
	}
	return strings.Contains(strings.ToLower(item.Name), token)
}

// IDResolver matches inventory ids exactly
type IDResolver struct{}

func (IDResolver) Matches(item *models.InventoryItem, token string) bool {
	return item.ID == strings.TrimSpace(token)
}

// SplitTokens splits a free-text comma list into trimmed, non-empty tokens
func SplitTokens(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func cleanTokens(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (e *Engine) removed(item *models.InventoryItem, tokens []string) bool {
	for _, t := range tokens {
		if e.resolver.Matches(item, t) {
			return true
		}
	}
	return false
}
