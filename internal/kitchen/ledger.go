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

// RestockResult describes a completed restock
type RestockResult struct {
	Item           models.InventoryItem `json:"item"`
	NewQuantity    float64              `json:"newQuantity"`
	Cost           float64              `json:"cost"`
	RemainingFunds float64              `json:"remainingFunds"`
	Warnings       []string             `json:"warnings,omitempty"`
}

// FundsResult describes the balance after funds were added
type FundsResult struct {
	NewFunds float64  `json:"newFunds"`
	Warnings []string `json:"warnings,omitempty"`
}

// FinancialStatus summarizes the money position of the restaurant
type FinancialStatus struct {
	OperatingFunds float64 `json:"operatingFunds"`
	TotalRevenue   float64 `json:"totalRevenue"`
	TotalCost      float64 `json:"totalCost"`
	NetProfit      float64 `json:"netProfit"`
	InventoryValue float64 `json:"inventoryValue"`
	LowStockCount  int     `json:"lowStockCount"`
	Status         string  `json:"status"`
}

// Financial status values
const (
	FundsStable   = "stable"
	FundsCritical = "critical"
)

func validAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// ListInventory returns every inventory item
func (e *Engine) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	items, err := e.store.ListInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return items, nil
}

// Restock buys amount units of an inventory item with operating funds.
// The purchase is refused when it costs more than the funds on hand.
func (e *Engine) Restock(ctx context.Context, itemID string, amount float64) (*RestockResult, error) {
	if !validAmount(amount) {
		return nil, e.fail("restock", invalidInput("Restock amount must be greater than zero"))
	}

	var res RestockResult
	err := e.store.Atomic(ctx, func(tx store.Tx) error {
		item, err := tx.GetInventoryItem(itemID)
		if err != nil {
			return lookupErr(err, "Inventory item %s not found", itemID)
		}
		funds, err := tx.Funds()
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}

		cost := amount * item.PricePerUnit
		if cost > funds.OperatingFunds+moneyEpsilon {
			return &Error{
				Kind: KindInsufficientFunds,
				Message: fmt.Sprintf("Insufficient funds to restock %s: need %s, have %s",
					item.Name, money(cost), money(funds.OperatingFunds)),
			}
		}

		item.Quantity += amount
		item.LastRestocked = e.now()
		funds.OperatingFunds -= cost
		funds.TotalCost += cost

		if err := tx.SaveInventoryItem(item); err != nil {
			return err
		}
		if err := tx.SaveFunds(funds); err != nil {
			return err
		}

		res = RestockResult{
			Item:           *item,
			NewQuantity:    item.Quantity,
			Cost:           cost,
			RemainingFunds: funds.OperatingFunds,
		}
		return nil
	})
	if err != nil {
		return nil, e.fail("restock", err)
	}

	item := res.Item
	e.appendLog(ctx, &res.Warnings, models.LogTypeRestock, -res.Cost,
		"Replenished %s%s of %s", qty(amount), item.Unit, item.Name)
	e.appendLog(ctx, &res.Warnings, models.LogTypeEmail, 0,
		"RESTOCK NOTIFICATION: %s has been replenished by %s %s", item.Name, qty(amount), item.Unit)

	e.recorder.RecordRestock(item.ID, res.Cost)
	e.recorder.SetFunds(res.RemainingFunds)
	e.logger.WithFields(logrus.Fields{
		"item":   item.ID,
		"amount": amount,
		"cost":   res.Cost,
	}).Info("inventory restocked")

	e.alertLowStock(ctx, &res.Warnings)
	return &res, nil
}

// LowStock returns the items at or below their threshold
func (e *Engine) LowStock(ctx context.Context) ([]models.InventoryItem, error) {
	items, err := e.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	low := make([]models.InventoryItem, 0)
	for _, item := range items {
		if item.IsLow() {
			low = append(low, item)
		}
	}
	return low, nil
}

// alertLowStock appends an email alert for each low item unless a matching
// alert is already among the most recent log entries.
func (e *Engine) alertLowStock(ctx context.Context, warnings *[]string) {
	low, err := e.LowStock(ctx)
	if err != nil {
		e.logger.WithError(err).Warn("low stock scan failed")
		return
	}
	e.recorder.SetLowStock(len(low))
	if len(low) == 0 {
		return
	}

	for _, item := range low {
		recent, err := e.store.RecentLogs(ctx, alertLookback)
		if err != nil {
			e.logger.WithError(err).Warn("failed to read recent logs")
			return
		}
		marker := fmt.Sprintf("%s is %s", item.Name, item.Status())
		duplicate := false
		for _, entry := range recent {
			if strings.Contains(entry.Message, marker) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		e.appendLog(ctx, warnings, models.LogTypeEmail, 0,
			"ALERT: %s (%.2f %s remaining)", marker, item.Quantity, item.Unit)
	}
}

// AddFunds credits operating funds
func (e *Engine) AddFunds(ctx context.Context, amount float64) (*FundsResult, error) {
	if !validAmount(amount) {
		return nil, e.fail("add_funds", invalidInput("Amount must be greater than zero"))
	}

	var res FundsResult
	err := e.store.Atomic(ctx, func(tx store.Tx) error {
		funds, err := tx.Funds()
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}
		funds.OperatingFunds += amount
		if err := tx.SaveFunds(funds); err != nil {
			return err
		}
		res.NewFunds = funds.OperatingFunds
		return nil
	})
	if err != nil {
		return nil, e.fail("add_funds", err)
	}

	// capital injections are not revenue
	e.appendLog(ctx, &res.Warnings, models.LogTypeSystem, 0, "Funds Added: %s", money(amount))
	e.recorder.SetFunds(res.NewFunds)
	return &res, nil
}

// AddInventoryItem registers a new ingredient
func (e *Engine) AddInventoryItem(ctx context.Context, item models.InventoryItem) (*models.InventoryItem, error) {
	if err := models.ValidateInventoryItem(&item); err != nil {
		return nil, e.fail("add_inventory", invalidInput("Invalid inventory item: %v", err))
	}
	if item.LastRestocked.IsZero() {
		item.LastRestocked = e.now()
	}

	if err := e.store.AddInventoryItem(ctx, &item); err != nil {
		if errors.Is(err, store.ErrConflict) {
			err = &Error{
				Kind:    KindInvalidInput,
				Message: fmt.Sprintf("Inventory item %s or SKU %s already exists", item.ID, item.SKU),
				Err:     err,
			}
		} else {
			err = fmt.Errorf("store: %w", err)
		}
		return nil, e.fail("add_inventory", err)
	}

	e.appendLog(ctx, nil, models.LogTypeSystem, 0, "Added inventory item %s (%s)", item.Name, item.SKU)
	e.alertLowStock(ctx, nil)
	return &item, nil
}

// FinancialStatus reports funds, revenue, cost and inventory value
func (e *Engine) FinancialStatus(ctx context.Context) (*FinancialStatus, error) {
	funds, err := e.store.Funds(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	items, err := e.ListInventory(ctx)
	if err != nil {
		return nil, err
	}

	status := &FinancialStatus{
		OperatingFunds: funds.OperatingFunds,
		TotalRevenue:   funds.TotalRevenue,
		TotalCost:      funds.TotalCost,
		NetProfit:      roundCents(funds.TotalRevenue - funds.TotalCost),
		Status:         FundsStable,
	}
	for _, item := range items {
		status.InventoryValue += item.Value()
		if item.IsLow() {
			status.LowStockCount++
		}
	}
	status.InventoryValue = roundCents(status.InventoryValue)
	if funds.OperatingFunds < e.lowFundsMark {
		status.Status = FundsCritical
	}
	return status, nil
}
