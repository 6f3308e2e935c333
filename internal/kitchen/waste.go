package kitchen

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"thallipoli/internal/models"
	"thallipoli/internal/store"
)

// WasteOutcome says whether a failed dish could be remade
type WasteOutcome string

const (
	WasteRemade  WasteOutcome = "remade"
	WasteBlocked WasteOutcome = "blocked"
)

// WasteResult describes a recorded waste event
type WasteResult struct {
	Outcome            WasteOutcome `json:"outcome"`
	MissingIngredients []string     `json:"missingIngredients"`
	LostRevenue        float64      `json:"lostRevenue"`
	Insight            string       `json:"insight"`
	Warnings           []string     `json:"warnings,omitempty"`
}

// RecordWaste handles a dish that failed after its ingredients were used.
// When the full recipe is still in stock it is drawn again for a remake;
// otherwise nothing is deducted and the sale is counted as lost. Funds are
// never touched.
func (e *Engine) RecordWaste(ctx context.Context, menuItemID, reason string) (*WasteResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, e.fail("waste", invalidInput("A reason is required to record waste"))
	}

	var (
		res      = WasteResult{MissingIngredients: []string{}}
		menuItem *models.MenuItem
	)
	err := e.store.Atomic(ctx, func(tx store.Tx) error {
		var err error
		menuItem, err = tx.GetMenuItem(menuItemID)
		if err != nil {
			return lookupErr(err, "Menu item %s not found", menuItemID)
		}

		needs, missing, err := e.requirements(tx, menuItem, nil, 1)
		if err != nil {
			return err
		}
		for _, need := range needs {
			if need.item.Quantity+moneyEpsilon < need.amount {
				missing = append(missing, need.item.Name)
			}
		}
		if len(missing) > 0 {
			res.Outcome = WasteBlocked
			res.MissingIngredients = missing
			res.LostRevenue = menuItem.Price
			return nil
		}

		for _, need := range needs {
			need.item.Quantity = math.Max(0, need.item.Quantity-need.amount)
			if err := tx.SaveInventoryItem(need.item); err != nil {
				return err
			}
		}
		res.Outcome = WasteRemade
		return nil
	})
	if err != nil {
		return nil, e.fail("waste", err)
	}

	if res.Outcome == WasteRemade {
		e.appendLog(ctx, &res.Warnings, models.LogTypeWaste, 0,
			"Chef reported failure on %s: %s. Ingredients re-allocated for remake.", menuItem.Name, reason)
		res.Insight = fmt.Sprintf("LOSS ALERT: Waste recorded for %s. Reason: %s. Ingredients re-allocated. Cost Impact: Negligible (Stock available).",
			menuItem.Name, reason)
	} else {
		missing := strings.Join(res.MissingIngredients, ", ")
		e.appendLog(ctx, &res.Warnings, models.LogTypeWaste, 0,
			"Chef reported failure on %s, but insufficient stock to remake! Missing: %s", menuItem.Name, missing)
		res.Insight = fmt.Sprintf("LOSS ALERT: Waste recorded for %s. Reason: %s. Missing: %s. Revenue Opportunity Lost: %s",
			menuItem.Name, reason, missing, money(res.LostRevenue))
	}
	e.pushInsight(res.Insight)

	e.recorder.RecordWaste(menuItemID, res.Outcome)
	e.logger.WithFields(logrus.Fields{
		"dish":    menuItemID,
		"outcome": res.Outcome,
	}).Warn("waste recorded")

	if res.Outcome == WasteRemade {
		e.alertLowStock(ctx, &res.Warnings)
	}
	return &res, nil
}
