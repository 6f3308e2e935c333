package assistant

import "github.com/tmc/langchaingo/llms"

// Tool names offered to the model
const (
	ToolInventoryStatus = "get_inventory_status"
	ToolRestockItem     = "restock_item"
	ToolMenuInfo        = "get_menu_info"
	ToolMenuItemDetails = "get_menu_item_details"
	ToolProcessOrder    = "process_order"
	ToolRecentOrders    = "get_recent_orders"
	ToolFinancialStatus = "get_financial_status"
	ToolAddFunds        = "add_funds"
	ToolInsights        = "get_ai_insights"
)

type schema map[string]interface{}

func object(properties schema, required ...string) schema {
	if required == nil {
		required = []string{}
	}
	return schema{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func field(typ, description string) schema {
	return schema{"type": typ, "description": description}
}

func tool(name, description string, parameters schema) llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// Tools returns the function definitions the assistant may call
func Tools() []llms.Tool {
	return []llms.Tool{
		tool(ToolInventoryStatus, "Get current inventory levels and low stock items", object(schema{})),
		tool(ToolRestockItem, "Restock an inventory item with a specified quantity. The cost is paid from the operating budget.", object(schema{
			"itemId":   field("string", "The inventory item ID, or its name"),
			"quantity": field("number", "Quantity to add"),
		}, "itemId", "quantity")),
		tool(ToolMenuInfo, "Get menu items and their details", object(schema{})),
		tool(ToolMenuItemDetails, "Get detailed info about a specific menu item including ingredients, to help the customer make allergy-aware choices", object(schema{
			"menuItemName": field("string", "The name of the menu item (partial match supported)"),
		}, "menuItemName")),
		tool(ToolProcessOrder, "Process a complete order after confirming allergies and modifications with the customer", object(schema{
			"menuItemId":          field("string", "The menu item ID to order"),
			"customerName":        field("string", "Customer's name (default: Walk-in)"),
			"allergies":           field("string", "Customer's allergies if any"),
			"removedIngredients":  field("string", "Comma-separated list of ingredients to remove"),
			"specialInstructions": field("string", "Any special instructions for the order"),
			"quantity":            field("number", "Number of items (default: 1)"),
		}, "menuItemId")),
		tool(ToolRecentOrders, "Get recent orders for the live feed and insights", object(schema{
			"limit": field("number", "Number of orders to retrieve (default: 10)"),
		})),
		tool(ToolFinancialStatus, "Get current operating funds, revenue, and costs", object(schema{})),
		tool(ToolAddFunds, "Add funds to the operating budget", object(schema{
			"amount": field("number", "Amount to add to budget"),
		}, "amount")),
		tool(ToolInsights, "Get insights about sales and inventory", object(schema{})),
	}
}
