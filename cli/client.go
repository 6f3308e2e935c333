package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultBaseURL = "http://localhost:8080"

// ApiClient handles requests to the Thallipoli API
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
}

// NewApiClient creates a new API client
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("THALLIPOLI_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &ApiClient{
		httpClient: &http.Client{
			// chat turns wait on the model
			Timeout: 60 * time.Second,
		},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

// APIError is a rejected request as reported by the server
type APIError struct {
	Status  int
	Message string   `json:"error"`
	Kind    string   `json:"kind"`
	Missing []string `json:"missing"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status code: %d", e.Status)
	}
	return e.Message
}

// InventoryItem represents an item in the kitchen inventory
type InventoryItem struct {
	ID           string  `json:"id"`
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	Threshold    float64 `json:"threshold"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Category     string  `json:"category"`
}

// Status mirrors the server's stock classification
func (i InventoryItem) Status() string {
	switch {
	case i.Quantity <= 0:
		return "DEPLETED"
	case i.Quantity <= i.Threshold:
		return "LOW STOCK"
	}
	return "IN STOCK"
}

// MenuItem represents a dish on the menu
type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	PrepTime    string  `json:"prepTime"`
	Category    string  `json:"category"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"ratingCount"`
	Chef        string  `json:"chef"`
}

// Order represents a customer order
type Order struct {
	ID           uint        `json:"id"`
	Total        float64     `json:"total"`
	CustomerName string      `json:"customerName"`
	Allergies    string      `json:"allergies"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	Items        []OrderItem `json:"items"`
}

// OrderItem represents a line of an order
type OrderItem struct {
	MenuItemID          string   `json:"menuItemId"`
	MenuItemName        string   `json:"menuItemName"`
	Price               float64  `json:"price"`
	Quantity            int      `json:"quantity"`
	RemovedIngredients  string   `json:"removedIngredients"`
	AddedIngredients    []string `json:"addedIngredients"`
	SpecialInstructions string   `json:"specialInstructions"`
}

// OrderRequest places a single-dish order
type OrderRequest struct {
	MenuItemID          string `json:"menuItemId"`
	Quantity            int    `json:"quantity"`
	CustomerName        string `json:"customerName,omitempty"`
	Allergies           string `json:"allergies,omitempty"`
	RemovedIngredients  string `json:"removedIngredients,omitempty"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

// OrderResult is the server's answer to a placed order
type OrderResult struct {
	OrderID  uint     `json:"orderId"`
	Total    float64  `json:"total"`
	Warnings []string `json:"warnings"`
}

// RestockResult is the server's answer to a restock
type RestockResult struct {
	NewQuantity    float64  `json:"newQuantity"`
	Cost           float64  `json:"cost"`
	RemainingFunds float64  `json:"remainingFunds"`
	Warnings       []string `json:"warnings"`
}

// Stats is the financial status of the restaurant
type Stats struct {
	OperatingFunds float64 `json:"operatingFunds"`
	TotalRevenue   float64 `json:"totalRevenue"`
	TotalCost      float64 `json:"totalCost"`
	NetProfit      float64 `json:"netProfit"`
	InventoryValue float64 `json:"inventoryValue"`
	LowStockCount  int     `json:"lowStockCount"`
	Status         string  `json:"status"`
}

// LogEntry is one line of the activity log
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Amount    float64   `json:"amount"`
}

// ChatReply is the assistant's answer
type ChatReply struct {
	ConversationID uint   `json:"conversationId"`
	Response       string `json:"response"`
}

// CheckHealth checks if the API is up and running
func (c *ApiClient) CheckHealth() (bool, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("API health check failed with status code: %d", resp.StatusCode)
	}
	return true, nil
}

func (c *ApiClient) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

// GetInventory retrieves every inventory item
func (c *ApiClient) GetInventory() ([]InventoryItem, error) {
	var items []InventoryItem
	err := c.do(http.MethodGet, "/api/inventory", nil, &items)
	return items, err
}

// Restock buys quantity units of an inventory item
func (c *ApiClient) Restock(itemID string, quantity float64) (*RestockResult, error) {
	var res RestockResult
	err := c.do(http.MethodPost, "/api/inventory/"+url.PathEscape(itemID)+"/restock",
		map[string]float64{"quantity": quantity}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetMenu retrieves the menu
func (c *ApiClient) GetMenu() ([]MenuItem, error) {
	var menu []MenuItem
	err := c.do(http.MethodGet, "/api/menu", nil, &menu)
	return menu, err
}

// GetOrders retrieves the most recent orders
func (c *ApiClient) GetOrders(limit int) ([]Order, error) {
	var orders []Order
	err := c.do(http.MethodGet, fmt.Sprintf("/api/orders/recent?limit=%d", limit), nil, &orders)
	return orders, err
}

// CreateOrder places a new order
func (c *ApiClient) CreateOrder(req OrderRequest) (*OrderResult, error) {
	var res OrderResult
	if err := c.do(http.MethodPost, "/api/orders", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateOrderStatus moves an order to another status
func (c *ApiClient) UpdateOrderStatus(id uint, status string) (*Order, error) {
	var order Order
	err := c.do(http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", id),
		map[string]string{"status": status}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetStats retrieves the financial status
func (c *ApiClient) GetStats() (*Stats, error) {
	var stats Stats
	if err := c.do(http.MethodGet, "/api/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// AddFunds credits the operating budget
func (c *ApiClient) AddFunds(amount float64) (float64, error) {
	var res struct {
		NewFunds float64 `json:"newFunds"`
	}
	err := c.do(http.MethodPost, "/api/funds/add", map[string]float64{"amount": amount}, &res)
	return res.NewFunds, err
}

// GetLogs retrieves the newest activity log entries
func (c *ApiClient) GetLogs(limit int) ([]LogEntry, error) {
	var logs []LogEntry
	err := c.do(http.MethodGet, fmt.Sprintf("/api/logs?limit=%d", limit), nil, &logs)
	return logs, err
}

// GetInsights retrieves the current insights
func (c *ApiClient) GetInsights() ([]string, error) {
	var res struct {
		Insights []string `json:"insights"`
	}
	err := c.do(http.MethodGet, "/api/insights", nil, &res)
	return res.Insights, err
}

// Chat sends one message to the assistant
func (c *ApiClient) Chat(conversationID uint, message string) (*ChatReply, error) {
	var reply ChatReply
	err := c.do(http.MethodPost, "/api/chat", map[string]interface{}{
		"conversationId": conversationID,
		"message":        message,
	}, &reply)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}
