package assistant

import (
	"fmt"
	"strings"

	"thallipoli/internal/kitchen"
)

// Format renders a tool result as plain text. It is used when the model
// returns no follow-up answer.
func Format(result interface{}) string {
	var b strings.Builder

	switch r := result.(type) {
	case toolError:
		return "Sorry, that didn't work: " + r.Error

	case *inventoryStatus:
		if len(r.LowStockItems) == 0 {
			return fmt.Sprintf("All inventory levels are healthy. You have %d items with a total value of $%.2f.", r.TotalItems, r.TotalValue)
		}
		b.WriteString("Inventory Alert!\n\nLow stock items:\n")
		for _, item := range r.LowStockItems {
			fmt.Fprintf(&b, "- %s: %g %s (threshold: %g)\n", item.Name, item.Quantity, item.Unit, item.Threshold)
		}
		fmt.Fprintf(&b, "\nTotal inventory value: $%.2f", r.TotalValue)

	case *kitchen.RestockResult:
		fmt.Fprintf(&b, "Restocked successfully!\n\n- Item: %s\n- New Quantity: %g %s\n- Cost: $%.2f\n- Remaining Budget: $%.2f",
			r.Item.Name, r.NewQuantity, r.Item.Unit, r.Cost, r.RemainingFunds)

	case *kitchen.MenuOverview:
		fmt.Fprintf(&b, "Menu Overview\n\nWe have %d items across %d categories.\n\nTop Rated:\n", r.TotalItems, len(r.Categories))
		for _, m := range r.TopRated {
			fmt.Fprintf(&b, "- %s - $%.2f (%.1f stars)\n", m.Name, m.Price, m.Rating)
		}

	case *kitchen.MenuItemDetails:
		ingredients := "No ingredients listed"
		if len(r.IngredientNames) > 0 {
			ingredients = strings.Join(r.IngredientNames, ", ")
		}
		fmt.Fprintf(&b, "%s - $%.2f\n\n%s\n\nIngredients: %s\nPrep Time: %s\n\nBefore I place your order, do you have any allergies or would you like any ingredients removed?",
			r.Name, r.Price, r.Description, ingredients, r.PrepTime)

	case *orderPlaced:
		fmt.Fprintf(&b, "Order #%d confirmed!\n\n- Item: %s", r.OrderID, r.Item)
		if r.Quantity > 1 {
			fmt.Fprintf(&b, " x%d", r.Quantity)
		}
		fmt.Fprintf(&b, "\n- Total: $%.2f\n", r.Total)
		if r.RemovedIngredients != "" {
			fmt.Fprintf(&b, "- Removed: %s\n", r.RemovedIngredients)
		}
		if r.SpecialInstructions != "" {
			fmt.Fprintf(&b, "- Notes: %s\n", r.SpecialInstructions)
		}
		if r.Allergies != "" {
			fmt.Fprintf(&b, "- Allergies noted: %s\n", r.Allergies)
		}
		b.WriteString("\nYour order is being prepared. Thank you!")

	case *recentOrders:
		if len(r.Orders) == 0 {
			return "No recent orders found."
		}
		fmt.Fprintf(&b, "Recent Orders (%d):\n\n", len(r.Orders))
		for i, o := range r.Orders {
			fmt.Fprintf(&b, "%d. Order #%d - $%.2f (%s)\n", i+1, o.ID, o.Total, o.Status)
			for _, item := range o.Items {
				fmt.Fprintf(&b, "   - %s", item.MenuItemName)
				if item.RemovedIngredients != "" {
					fmt.Fprintf(&b, " (no %s)", item.RemovedIngredients)
				}
				b.WriteString("\n")
			}
		}

	case *kitchen.FinancialStatus:
		status := "Healthy"
		if r.Status == kitchen.FundsCritical {
			status = "Low funds - restock carefully!"
		}
		fmt.Fprintf(&b, "Financial Summary\n\n- Operating Budget: $%.2f\n- Total Revenue: $%.2f\n- Total Costs: $%.2f\n- Net Profit: $%.2f\n\nStatus: %s",
			r.OperatingFunds, r.TotalRevenue, r.TotalCost, r.NetProfit, status)

	case *fundsAdded:
		fmt.Fprintf(&b, "Funds added successfully!\n\n- Added: $%.2f\n- New Budget: $%.2f", r.Added, r.NewFunds)

	case *kitchen.StrategicSummary:
		fmt.Fprintf(&b, "Strategic Insights\n\n- Recent Orders: %d\n- Low Stock Items: %d\n", r.RecentOrderCount, r.LowStockCount)
		if len(r.LowStockItems) > 0 {
			fmt.Fprintf(&b, "- Items needing attention: %s\n", strings.Join(r.LowStockItems, ", "))
		}
		top := "N/A"
		if len(r.TopMenuItems) > 0 {
			top = strings.Join(r.TopMenuItems, ", ")
		}
		fmt.Fprintf(&b, "- Top Sellers: %s", top)
		for _, insight := range r.Insights {
			fmt.Fprintf(&b, "\n- %s", insight)
		}

	default:
		return "Action completed successfully."
	}

	return strings.TrimRight(b.String(), "\n")
}
