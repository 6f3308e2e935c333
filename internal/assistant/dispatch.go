package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"thallipoli/internal/kitchen"
	"thallipoli/internal/models"
)

// toolError is the result of a tool call that could not be carried out
type toolError struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type lowStockItem struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	Threshold float64 `json:"threshold"`
}

type inventoryStatus struct {
	TotalItems    int            `json:"totalItems"`
	LowStockItems []lowStockItem `json:"lowStockItems"`
	TotalValue    float64        `json:"totalValue"`
}

type orderPlaced struct {
	OrderID             uint     `json:"orderId"`
	Item                string   `json:"item"`
	Quantity            int      `json:"quantity"`
	Total               float64  `json:"total"`
	CustomerName        string   `json:"customerName"`
	Allergies           string   `json:"allergies,omitempty"`
	RemovedIngredients  string   `json:"removedIngredients,omitempty"`
	SpecialInstructions string   `json:"specialInstructions,omitempty"`
	Warnings            []string `json:"warnings,omitempty"`
}

type recentOrders struct {
	Orders []models.Order `json:"orders"`
}

type fundsAdded struct {
	Added    float64  `json:"added"`
	NewFunds float64  `json:"newFunds"`
	Warnings []string `json:"warnings,omitempty"`
}

type restockArgs struct {
	ItemID   string  `json:"itemId"`
	Quantity float64 `json:"quantity"`
}

type menuItemArgs struct {
	MenuItemName string `json:"menuItemName"`
}

type orderArgs struct {
	MenuItemID          string  `json:"menuItemId"`
	CustomerName        string  `json:"customerName"`
	Allergies           string  `json:"allergies"`
	RemovedIngredients  string  `json:"removedIngredients"`
	SpecialInstructions string  `json:"specialInstructions"`
	Quantity            float64 `json:"quantity"`
}

type limitArgs struct {
	Limit float64 `json:"limit"`
}

type amountArgs struct {
	Amount float64 `json:"amount"`
}

// dispatch runs one tool call against the engine. Failures come back as a
// toolError payload so the model can explain them.
func (s *Service) dispatch(ctx context.Context, name, arguments string) interface{} {
	result, err := s.call(ctx, name, arguments)
	if err != nil {
		s.logger.WithError(err).WithField("tool", name).Warn("tool call failed")
		return toolError{Error: err.Error(), Kind: string(kitchen.KindOf(err))}
	}
	return result
}

func decodeArgs(arguments string, dst interface{}) error {
	if strings.TrimSpace(arguments) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(arguments), dst); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}

func (s *Service) call(ctx context.Context, name, arguments string) (interface{}, error) {
	switch name {
	case ToolInventoryStatus:
		return s.inventoryStatus(ctx)

	case ToolRestockItem:
		var args restockArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return nil, err
		}
		id, err := s.resolveInventoryID(ctx, args.ItemID)
		if err != nil {
			return nil, err
		}
		return s.engine.Restock(ctx, id, args.Quantity)

	case ToolMenuInfo:
		return s.engine.MenuOverview(ctx)

	case ToolMenuItemDetails:
		var args menuItemArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return nil, err
		}
		return s.engine.FindMenuItem(ctx, args.MenuItemName)

	case ToolProcessOrder:
		var args orderArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return nil, err
		}
		return s.processOrder(ctx, args)

	case ToolRecentOrders:
		var args limitArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return nil, err
		}
		orders, err := s.engine.RecentOrders(ctx, int(args.Limit))
		if err != nil {
			return nil, err
		}
		return &recentOrders{Orders: orders}, nil

	case ToolFinancialStatus:
		return s.engine.FinancialStatus(ctx)

	case ToolAddFunds:
		var args amountArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return nil, err
		}
		res, err := s.engine.AddFunds(ctx, args.Amount)
		if err != nil {
			return nil, err
		}
		return &fundsAdded{Added: args.Amount, NewFunds: res.NewFunds, Warnings: res.Warnings}, nil

	case ToolInsights:
		return s.engine.StrategicSummary(ctx)

	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
}

func (s *Service) inventoryStatus(ctx context.Context) (*inventoryStatus, error) {
	items, err := s.engine.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	status := &inventoryStatus{TotalItems: len(items), LowStockItems: []lowStockItem{}}
	for i := range items {
		status.TotalValue += items[i].Value()
		if items[i].IsLow() {
			status.LowStockItems = append(status.LowStockItems, lowStockItem{
				Name:      items[i].Name,
				Quantity:  items[i].Quantity,
				Unit:      items[i].Unit,
				Threshold: items[i].Threshold,
			})
		}
	}
	status.TotalValue = math.Round(status.TotalValue*100) / 100
	return status, nil
}

// resolveInventoryID accepts an inventory id or a name that matches
// exactly one item
func (s *Service) resolveInventoryID(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	items, err := s.engine.ListInventory(ctx)
	if err != nil {
		return "", err
	}
	var matches []string
	needle := strings.ToLower(ref)
	for i := range items {
		if items[i].ID == ref || strings.EqualFold(items[i].SKU, ref) {
			return items[i].ID, nil
		}
		if needle != "" && strings.Contains(strings.ToLower(items[i].Name), needle) {
			matches = append(matches, items[i].ID)
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	// let the engine report the miss in its own words
	return ref, nil
}

func (s *Service) processOrder(ctx context.Context, args orderArgs) (*orderPlaced, error) {
	quantity := 1
	if args.Quantity != 0 {
		if args.Quantity != math.Trunc(args.Quantity) {
			return nil, &kitchen.Error{Kind: kitchen.KindInvalidInput, Message: "Quantity must be a whole number"}
		}
		quantity = int(args.Quantity)
	}

	dish, err := s.engine.FindMenuItem(ctx, args.MenuItemID)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Sell(ctx, dish.ID, kitchen.SaleRequest{
		Quantity:            quantity,
		Remove:              kitchen.SplitTokens(args.RemovedIngredients),
		CustomerName:        args.CustomerName,
		Allergies:           args.Allergies,
		SpecialInstructions: args.SpecialInstructions,
	})
	if err != nil {
		return nil, err
	}

	return &orderPlaced{
		OrderID:             res.Order.ID,
		Item:                dish.Name,
		Quantity:            quantity,
		Total:               res.Total,
		CustomerName:        res.Order.CustomerName,
		Allergies:           res.Order.Allergies,
		RemovedIngredients:  strings.Join(kitchen.SplitTokens(args.RemovedIngredients), ", "),
		SpecialInstructions: args.SpecialInstructions,
		Warnings:            res.Warnings,
	}, nil
}
