// Package api exposes the kitchen engine over HTTP.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"thallipoli/internal/assistant"
	"thallipoli/internal/feed"
	"thallipoli/internal/kitchen"
	"thallipoli/internal/models"
	"thallipoli/internal/monitoring"
	"thallipoli/internal/store"
)

// Config holds the dependencies of the HTTP layer. Assistant, Hub and
// Monitor are optional.
type Config struct {
	Engine    *kitchen.Engine
	Assistant *assistant.Service
	Hub       *feed.Hub
	Monitor   *monitoring.Monitor
	Logger    *logrus.Logger
	Seed      store.SeedData
}

// KitchenAPI represents the main API handler for the kitchen
type KitchenAPI struct {
	Router    *gin.Engine
	Engine    *kitchen.Engine
	Assistant *assistant.Service
	Hub       *feed.Hub

	logger *logrus.Entry
	seed   store.SeedData
}

// NewKitchenAPI creates a new kitchen API instance
func NewKitchenAPI(cfg Config) *KitchenAPI {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))
	if cfg.Monitor != nil {
		router.Use(cfg.Monitor.Middleware())
	}

	api := &KitchenAPI{
		Router:    router,
		Engine:    cfg.Engine,
		Assistant: cfg.Assistant,
		Hub:       cfg.Hub,
		logger:    logger.WithField("component", "api"),
		seed:      cfg.Seed,
	}

	api.setupRoutes()
	return api
}

// setupRoutes configures all API endpoints
func (k *KitchenAPI) setupRoutes() {
	k.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Thallipoli API is running"})
	})

	v1 := k.Router.Group("/api")
	{
		v1.POST("/init", k.Init)

		// Inventory management
		v1.GET("/inventory", k.GetInventory)
		v1.POST("/inventory", k.AddInventoryItem)
		v1.GET("/inventory/low-stock", k.GetLowStock)
		v1.POST("/inventory/restock", k.RestockItem)
		v1.POST("/inventory/:id/restock", k.RestockItem)

		// Menu
		v1.GET("/menu", k.GetMenu)
		v1.GET("/menu/:id", k.GetMenuItem)
		v1.POST("/menu/:id/rate", k.RateMenuItem)
		v1.POST("/menu/:id/waste", k.RecordWaste)

		// Orders and sales
		v1.POST("/orders", k.CreateOrder)
		v1.GET("/orders/recent", k.GetRecentOrders)
		v1.PATCH("/orders/:id/status", k.UpdateOrderStatus)
		v1.POST("/sales/checkout", k.Checkout)

		// Funds and reporting
		v1.POST("/funds/add", k.AddFunds)
		v1.GET("/stats", k.GetStats)
		v1.GET("/logs", k.GetLogs)
		v1.GET("/insights", k.GetInsights)
		v1.GET("/analytics/forecast", k.GetForecast)
		v1.GET("/analytics/chefs", k.GetChefPerformance)
		v1.GET("/analytics/menu", k.GetMenuOverview)
		v1.GET("/analytics/summary", k.GetSummary)

		// Assistant
		v1.POST("/chat", k.Chat)
		v1.GET("/conversations", k.ListConversations)
		v1.GET("/conversations/:id/messages", k.GetConversationMessages)
		v1.DELETE("/conversations/:id", k.DeleteConversation)
	}

	if k.Hub != nil {
		k.Router.GET("/ws", k.Hub.ServeWS)
		v1.GET("/ws", k.Hub.ServeWS)
	}
}

// Init seeds the store when it is empty
func (k *KitchenAPI) Init(c *gin.Context) {
	seeded, err := k.Engine.Store().Seed(c.Request.Context(), k.seed)
	if err != nil {
		respondError(c, err)
		return
	}
	if seeded {
		k.logger.Info("store seeded with default data")
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "seeded": seeded})
}

// Inventory management handlers

func (k *KitchenAPI) GetInventory(c *gin.Context) {
	items, err := k.Engine.ListInventory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (k *KitchenAPI) AddInventoryItem(c *gin.Context) {
	var item models.InventoryItem
	if !bind(c, &item) {
		return
	}
	created, err := k.Engine.AddInventoryItem(c.Request.Context(), item)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (k *KitchenAPI) GetLowStock(c *gin.Context) {
	items, err := k.Engine.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type restockRequest struct {
	ItemID   string  `json:"itemId"`
	Quantity float64 `json:"quantity"`
}

// RestockItem serves both the item route and the body-addressed route
func (k *KitchenAPI) RestockItem(c *gin.Context) {
	var req restockRequest
	if !bind(c, &req) {
		return
	}
	if id := c.Param("id"); id != "" {
		req.ItemID = id
	}
	if req.ItemID == "" {
		badRequest(c, "itemId is required")
		return
	}

	res, err := k.Engine.Restock(c.Request.Context(), req.ItemID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"item":           res.Item,
		"newQuantity":    res.NewQuantity,
		"cost":           res.Cost,
		"remainingFunds": res.RemainingFunds,
		"warnings":       res.Warnings,
	})
}

// Menu handlers

func (k *KitchenAPI) GetMenu(c *gin.Context) {
	menu, err := k.Engine.ListMenu(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

func (k *KitchenAPI) GetMenuItem(c *gin.Context) {
	details, err := k.Engine.FindMenuItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

type rateRequest struct {
	Rating int `json:"rating"`
}

func (k *KitchenAPI) RateMenuItem(c *gin.Context) {
	var req rateRequest
	if !bind(c, &req) {
		return
	}
	item, err := k.Engine.Rate(c.Request.Context(), c.Param("id"), req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type wasteRequest struct {
	Reason string `json:"reason"`
}

func (k *KitchenAPI) RecordWaste(c *gin.Context) {
	var req wasteRequest
	if !bind(c, &req) {
		return
	}
	res, err := k.Engine.RecordWaste(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Order and sales handlers

type orderRequest struct {
	MenuItemID          string   `json:"menuItemId"`
	Quantity            int      `json:"quantity"`
	CustomerName        string   `json:"customerName"`
	Allergies           string   `json:"allergies"`
	RemovedIngredients  string   `json:"removedIngredients"`
	AddedIngredients    []string `json:"addedIngredients"`
	SpecialInstructions string   `json:"specialInstructions"`
}

func (k *KitchenAPI) CreateOrder(c *gin.Context) {
	var req orderRequest
	if !bind(c, &req) {
		return
	}
	if req.MenuItemID == "" {
		badRequest(c, "menuItemId is required")
		return
	}

	res, err := k.Engine.Sell(c.Request.Context(), req.MenuItemID, kitchen.SaleRequest{
		Quantity:            req.Quantity,
		Remove:              kitchen.SplitTokens(req.RemovedIngredients),
		Add:                 req.AddedIngredients,
		CustomerName:        req.CustomerName,
		Allergies:           req.Allergies,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"orderId":  res.Order.ID,
		"order":    res.Order,
		"total":    res.Total,
		"warnings": res.Warnings,
	})
}

func (k *KitchenAPI) GetRecentOrders(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 10)
	if !ok {
		return
	}
	orders, err := k.Engine.RecentOrders(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (k *KitchenAPI) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req statusRequest
	if !bind(c, &req) {
		return
	}
	order, err := k.Engine.AdvanceOrder(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type checkoutRequest struct {
	Items []kitchen.CartLine `json:"items"`
}

func (k *KitchenAPI) Checkout(c *gin.Context) {
	var req checkoutRequest
	if !bind(c, &req) {
		return
	}
	res, err := k.Engine.Checkout(c.Request.Context(), req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Funds and reporting handlers

type fundsRequest struct {
	Amount float64 `json:"amount"`
}

func (k *KitchenAPI) AddFunds(c *gin.Context) {
	var req fundsRequest
	if !bind(c, &req) {
		return
	}
	res, err := k.Engine.AddFunds(c.Request.Context(), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "newFunds": res.NewFunds, "warnings": res.Warnings})
}

func (k *KitchenAPI) GetStats(c *gin.Context) {
	status, err := k.Engine.FinancialStatus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (k *KitchenAPI) GetLogs(c *gin.Context) {
	limit, ok := queryInt(c, "limit", store.MaxLogs)
	if !ok {
		return
	}
	logs, err := k.Engine.RecentLogs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (k *KitchenAPI) GetInsights(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"insights":     k.Engine.Insights(),
		"pendingBatch": k.Engine.PendingBatch(),
	})
}

func (k *KitchenAPI) GetForecast(c *gin.Context) {
	forecast, err := k.Engine.DemandForecast(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, forecast)
}

func (k *KitchenAPI) GetChefPerformance(c *gin.Context) {
	chefs, err := k.Engine.ChefPerformance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chefs)
}

func (k *KitchenAPI) GetMenuOverview(c *gin.Context) {
	overview, err := k.Engine.MenuOverview(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (k *KitchenAPI) GetSummary(c *gin.Context) {
	summary, err := k.Engine.StrategicSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid id "+strconv.Quote(c.Param("id")))
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		badRequest(c, "Invalid "+key+" "+strconv.Quote(raw))
		return 0, false
	}
	return n, true
}
