package kitchen

import (
	"context"
	"errors"
	"fmt"
	"math"

	"thallipoli/internal/models"
	"thallipoli/internal/store"
)

// highRating is the lowest rating that raises ingredient thresholds
const highRating = 4

// thresholdGrowth is applied to every recipe ingredient on a high rating
const thresholdGrowth = 1.05

// Rate folds a 1-5 rating into the dish's running mean. High ratings
// permanently raise the reorder threshold of each of its ingredients.
func (e *Engine) Rate(ctx context.Context, menuItemID string, rating int) (*models.MenuItem, error) {
	if rating < 1 || rating > 5 {
		return nil, e.fail("rate", invalidInput("Rating must be between 1 and 5"))
	}

	var updated *models.MenuItem
	err := e.store.Atomic(ctx, func(tx store.Tx) error {
		item, err := tx.GetMenuItem(menuItemID)
		if err != nil {
			return lookupErr(err, "Menu item %s not found", menuItemID)
		}

		count := item.RatingCount + 1
		item.Rating = (item.Rating*float64(item.RatingCount) + float64(rating)) / float64(count)
		item.RatingCount = count
		if err := tx.SaveMenuItem(item); err != nil {
			return err
		}

		if rating >= highRating {
			seen := make(map[string]bool)
			for _, ing := range item.Ingredients {
				if seen[ing.InventoryID] {
					continue
				}
				seen[ing.InventoryID] = true

				inv, err := tx.GetInventoryItem(ing.InventoryID)
				if err != nil {
					// a recipe line may outlive its inventory item
					if errors.Is(err, store.ErrNotFound) {
						continue
					}
					return err
				}
				inv.Threshold = raiseThreshold(inv.Threshold)
				if err := tx.SaveInventoryItem(inv); err != nil {
					return err
				}
			}
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, e.fail("rate", err)
	}

	if rating >= highRating {
		e.appendLog(ctx, nil, models.LogTypeSystem, 0,
			"High rating (%d/5) for %s. Adjusting ingredient safety thresholds for increased demand.", rating, updated.Name)
	}
	chef := updated.Chef
	if chef == "" {
		chef = "Unknown"
	}
	e.appendLog(ctx, nil, models.LogTypeSystem, 0,
		"New rating for %s (Chef: %s): %d/5", updated.Name, chef, rating)

	e.recorder.RecordRating(menuItemID, rating)
	e.logger.WithField("dish", menuItemID).WithField("rating", rating).
		WithField("average", fmt.Sprintf("%.2f", updated.Rating)).Info("rating submitted")

	if rating >= highRating {
		e.alertLowStock(ctx, nil)
	}
	return updated, nil
}

// raiseThreshold grows a threshold by 5% rounding up. The product is
// rounded to 9 places first so 20*1.05 stays 21.
func raiseThreshold(v float64) float64 {
	return math.Ceil(math.Round(v*thresholdGrowth*1e9) / 1e9)
}
