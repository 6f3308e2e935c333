package kitchen

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"thallipoli/internal/models"
	"thallipoli/internal/store"
)

// SaleRequest carries the modifications and customer details of a sale
type SaleRequest struct {
	Quantity            int      `json:"quantity"`
	Remove              []string `json:"remove,omitempty"`
	Add                 []string `json:"add,omitempty"`
	CustomerName        string   `json:"customerName,omitempty"`
	Allergies           string   `json:"allergies,omitempty"`
	SpecialInstructions string   `json:"specialInstructions,omitempty"`
}

// SaleResult describes a completed sale
type SaleResult struct {
	Order    *models.Order `json:"order"`
	Total    float64       `json:"total"`
	Warnings []string      `json:"warnings,omitempty"`
}

// requirement is the stock a sale draws from one inventory item
type requirement struct {
	item   *models.InventoryItem
	amount float64
}

// Sell sells a menu item. Every ingredient not removed must be in stock
// for the whole quantity or nothing changes.
func (e *Engine) Sell(ctx context.Context, menuItemID string, req SaleRequest) (*SaleResult, error) {
	res, err := e.sell(ctx, menuItemID, req)
	if err != nil {
		return nil, e.fail("sell", err)
	}
	e.alertLowStock(ctx, &res.Warnings)
	return res, nil
}

func (e *Engine) sell(ctx context.Context, menuItemID string, req SaleRequest) (*SaleResult, error) {
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		return nil, invalidInput("Quantity must be at least 1")
	}
	req.Remove = cleanTokens(req.Remove)
	req.Add = cleanTokens(req.Add)
	customer := strings.TrimSpace(req.CustomerName)
	if customer == "" {
		customer = models.DefaultCustomerName
	}

	var (
		res  SaleResult
		dish string
	)
	err := e.store.Atomic(ctx, func(tx store.Tx) error {
		menuItem, err := tx.GetMenuItem(menuItemID)
		if err != nil {
			return lookupErr(err, "Menu item %s not found", menuItemID)
		}
		dish = menuItem.Name

		needs, missing, err := e.requirements(tx, menuItem, req.Remove, float64(req.Quantity))
		if err != nil {
			return err
		}
		for _, need := range needs {
			if need.item.Quantity+moneyEpsilon < need.amount {
				missing = append(missing, need.item.Name)
			}
		}
		if len(missing) > 0 {
			return outOfStock(menuItem.Name, missing)
		}

		for _, need := range needs {
			need.item.Quantity = math.Max(0, need.item.Quantity-need.amount)
			if err := tx.SaveInventoryItem(need.item); err != nil {
				return err
			}
		}

		unit := menuItem.Price + e.addonSurcharge*float64(len(req.Add))
		total := roundCents(unit * float64(req.Quantity))

		funds, err := tx.Funds()
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}
		funds.OperatingFunds += total
		funds.TotalRevenue += total
		if err := tx.SaveFunds(funds); err != nil {
			return err
		}

		order := &models.Order{
			Total:        total,
			CustomerName: customer,
			Allergies:    strings.TrimSpace(req.Allergies),
			Status:       string(models.OrderStatusPending),
			CreatedAt:    e.now(),
			Items: []models.OrderItem{{
				MenuItemID:          menuItem.ID,
				MenuItemName:        menuItem.Name,
				Price:               menuItem.Price,
				Quantity:            req.Quantity,
				RemovedIngredients:  strings.Join(req.Remove, ", "),
				AddedIngredients:    models.StringSlice(req.Add),
				SpecialInstructions: strings.TrimSpace(req.SpecialInstructions),
			}},
		}
		if err := tx.CreateOrder(order); err != nil {
			return err
		}

		res = SaleResult{Order: order, Total: total}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.appendLog(ctx, &res.Warnings, models.LogTypeSale, res.Total,
		"Order #%d: %dx %s%s for %s", res.Order.ID, req.Quantity, dish, modSummary(req.Remove, req.Add), customer)

	e.recorder.RecordSale(menuItemID, req.Quantity, res.Total)
	if funds, err := e.store.Funds(ctx); err == nil {
		e.recorder.SetFunds(funds.OperatingFunds)
	}
	e.logger.WithFields(logrus.Fields{
		"order":    res.Order.ID,
		"dish":     menuItemID,
		"quantity": req.Quantity,
		"total":    res.Total,
	}).Info("sale completed")
	return &res, nil
}

// requirements aggregates the stock a recipe draws, skipping removed
// ingredients. Recipe lines whose inventory item no longer exists are
// reported as missing.
func (e *Engine) requirements(tx store.Tx, menuItem *models.MenuItem, remove []string, units float64) ([]*requirement, []string, error) {
	var (
		needs   []*requirement
		byID    = make(map[string]*requirement)
		missing []string
	)
	for _, ing := range menuItem.Ingredients {
		if need, ok := byID[ing.InventoryID]; ok {
			need.amount += ing.Quantity * units
			continue
		}
		item, err := tx.GetInventoryItem(ing.InventoryID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				missing = append(missing, ing.InventoryID)
				continue
			}
			return nil, nil, fmt.Errorf("store: %w", err)
		}
		if e.removed(item, remove) {
			continue
		}
		need := &requirement{item: item, amount: ing.Quantity * units}
		byID[item.ID] = need
		needs = append(needs, need)
	}
	return needs, missing, nil
}

func modSummary(remove, add []string) string {
	var parts []string
	if len(remove) > 0 {
		parts = append(parts, "-"+strings.Join(remove, ","))
	}
	if len(add) > 0 {
		parts = append(parts, "+"+strings.Join(add, ","))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (Mods: " + strings.Join(parts, " ") + ")"
}

// CartLine is one line of a checkout
type CartLine struct {
	MenuItemID string `json:"menuItemId"`
	SaleRequest
}

// LineResult is the outcome of one cart line
type LineResult struct {
	MenuItemID string        `json:"menuItemId"`
	Success    bool          `json:"success"`
	Order      *models.Order `json:"order,omitempty"`
	Total      float64       `json:"total"`
	Error      string        `json:"error,omitempty"`
	Kind       ErrorKind     `json:"kind,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
}

// CheckoutResult describes a checkout. Insights holds the insights this
// checkout produced.
type CheckoutResult struct {
	Lines        []LineResult `json:"lines"`
	Total        float64      `json:"total"`
	SuccessCount int          `json:"successCount"`
	Insights     []string     `json:"insights,omitempty"`
}

// Checkout sells every cart line independently; a failed line does not
// stop the others. Checkouts with at least one sold line feed the batch
// analysis.
func (e *Engine) Checkout(ctx context.Context, lines []CartLine) (*CheckoutResult, error) {
	if len(lines) == 0 {
		return nil, e.fail("checkout", invalidInput("Cart is empty"))
	}

	res := &CheckoutResult{Lines: make([]LineResult, 0, len(lines))}
	var sold []string
	for _, line := range lines {
		lr := LineResult{MenuItemID: line.MenuItemID}
		sale, err := e.sell(ctx, line.MenuItemID, line.SaleRequest)
		if err != nil {
			e.fail("checkout", err)
			lr.Error = err.Error()
			lr.Kind = KindOf(err)
			if lr.Kind == "" {
				lr.Error = fmt.Sprintf("Sale of %s could not be recorded", line.MenuItemID)
				lr.Kind = KindInternal
			}
			res.Lines = append(res.Lines, lr)
			continue
		}
		lr.Success = true
		lr.Order = sale.Order
		lr.Total = sale.Total
		lr.Warnings = sale.Warnings
		res.Lines = append(res.Lines, lr)

		res.Total += sale.Total
		res.SuccessCount++
		sold = append(sold, sale.Order.Items[0].MenuItemName)
	}
	res.Total = roundCents(res.Total)

	var warnings []string
	e.alertLowStock(ctx, &warnings)
	if len(warnings) > 0 && len(res.Lines) > 0 {
		last := &res.Lines[len(res.Lines)-1]
		last.Warnings = append(last.Warnings, warnings...)
	}

	if res.SuccessCount == 0 {
		return res, nil
	}

	if insight, ok := e.recordBatch(checkoutSummary{items: sold, total: res.Total}); ok {
		res.Insights = append(res.Insights, insight)
	}
	funds, err := e.store.Funds(ctx)
	if err != nil {
		e.logger.WithError(err).Warn("failed to read funds after checkout")
	} else if funds.OperatingFunds < e.lowFundsMark {
		insight := fmt.Sprintf("CRITICAL: Operating funds low (<%s). Restock carefully.", strings.TrimSuffix(money(e.lowFundsMark), ".00"))
		e.pushInsight(insight)
		res.Insights = append(res.Insights, insight)
	}
	return res, nil
}

// RecentOrders returns the newest orders with their items
func (e *Engine) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	orders, err := e.store.RecentOrders(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return orders, nil
}

// AdvanceOrder moves an order to another workflow status
func (e *Engine) AdvanceOrder(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, e.fail("advance_order", invalidInput("Unknown order status %q", status))
	}
	order, err := e.store.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, e.fail("advance_order", lookupErr(err, "Order #%d not found", orderID))
	}
	e.appendLog(ctx, nil, models.LogTypeSystem, 0, "Order #%d is now %s", order.ID, status)
	return order, nil
}
