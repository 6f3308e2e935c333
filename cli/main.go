package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const (
	viewMain      = "main"
	viewInventory = "inventory"
	viewMenu      = "menu"
	viewOrders    = "orders"
	viewDetail    = "order_detail"
	viewStats     = "stats"
	viewLogs      = "logs"
	viewChat      = "chat"
)

// input actions
const (
	actionRestock = "restock"
	actionOrder   = "order"
	actionFunds   = "funds"
	actionChat    = "chat"
)

// Model defines the application state
type Model struct {
	mainMenu      list.Model
	inventoryView table.Model
	menuView      table.Model
	orderList     list.Model
	orderDetail   Order
	orders        []Order
	stats         *Stats
	insights      []string
	logs          []LogEntry
	chatLog       []string
	conversation  uint
	textInput     textinput.Model
	inputAction   string
	spinner       spinner.Model
	client        *ApiClient
	loading       bool
	currentView   string
	status        string
	error         string
}

// item represents a list item
type item struct {
	title, desc string
}

// FilterValue implements list.Item interface
func (i item) FilterValue() string { return i.title }

// Title implements list.Item interface
func (i item) Title() string { return i.title }

// Description implements list.Item interface
func (i item) Description() string { return i.desc }

// Initialize the model
func initialModel(client *ApiClient) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	items := []list.Item{
		item{title: "Inventory", desc: "Stock levels and restocking"},
		item{title: "Menu", desc: "Dishes, prices and ratings"},
		item{title: "Orders", desc: "Recent orders and order workflow"},
		item{title: "Finances", desc: "Operating funds, revenue and insights"},
		item{title: "Activity Log", desc: "Sales, restocks, waste and alerts"},
		item{title: "Assistant", desc: "Chat with the restaurant assistant"},
		item{title: "Exit", desc: "Exit the application"},
	}
	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "Thallipoli"

	inventoryTable := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 8},
			{Title: "Name", Width: 24},
			{Title: "Quantity", Width: 14},
			{Title: "Threshold", Width: 10},
			{Title: "Price", Width: 8},
			{Title: "Status", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	menuTable := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 8},
			{Title: "Name", Width: 26},
			{Title: "Category", Width: 10},
			{Title: "Price", Width: 8},
			{Title: "Rating", Width: 14},
			{Title: "Chef", Width: 16},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	orderList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	orderList.Title = "Recent Orders"

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 60

	return Model{
		mainMenu:      mainMenu,
		inventoryView: inventoryTable,
		menuView:      menuTable,
		orderList:     orderList,
		spinner:       s,
		textInput:     ti,
		client:        client,
		currentView:   viewMain,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.EnterAltScreen)
}

func (m *Model) startInput(action, placeholder string) tea.Cmd {
	m.inputAction = action
	m.textInput.Placeholder = placeholder
	m.textInput.SetValue("")
	m.error = ""
	return m.textInput.Focus()
}

func (m *Model) stopInput() {
	m.inputAction = ""
	m.textInput.Blur()
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.mainMenu.SetSize(msg.Width-h, msg.Height-v)
		m.orderList.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil

	case tea.KeyMsg:
		if m.inputAction != "" {
			return m.updateInput(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			m.error = ""
			m.status = ""
			if m.currentView == viewDetail {
				m.currentView = viewOrders
				return m, fetchOrders(m.client)
			}
			m.currentView = viewMain
			return m, nil
		case "enter":
			return m.selectEntry()
		case "r":
			switch m.currentView {
			case viewInventory:
				if row := m.inventoryView.SelectedRow(); row != nil {
					cmd := m.startInput(actionRestock, "Quantity to restock "+row[1])
					return m, cmd
				}
			case viewStats:
				return m, fetchStats(m.client)
			case viewLogs:
				return m, fetchLogs(m.client)
			}
		case "n":
			if m.currentView == viewOrders {
				cmd := m.startInput(actionOrder, "menu id, quantity, customer, remove (a|b), allergies")
				return m, cmd
			}
		case "f":
			if m.currentView == viewStats {
				cmd := m.startInput(actionFunds, "Amount to add")
				return m, cmd
			}
		case "i":
			if m.currentView == viewChat {
				cmd := m.startInput(actionChat, "Ask the assistant...")
				return m, cmd
			}
		case "p", "c", "x":
			if m.currentView == viewDetail {
				status := map[string]string{"p": "preparing", "c": "completed", "x": "cancelled"}[msg.String()]
				return m, updateOrderStatus(m.client, m.orderDetail.ID, status)
			}
		}

	case inventoryMsg:
		m.loading = false
		m.inventoryView.SetRows(inventoryRows(msg.items))
		return m, nil
	case menuMsg:
		m.loading = false
		m.menuView.SetRows(menuRows(msg.items))
		return m, nil
	case ordersMsg:
		m.loading = false
		m.orders = msg.orders
		return m, m.orderList.SetItems(convertOrdersToItems(msg.orders))
	case orderDetailMsg:
		m.orderDetail = msg.order
		m.currentView = viewDetail
		return m, nil
	case statsMsg:
		m.loading = false
		m.stats = msg.stats
		m.insights = msg.insights
		return m, nil
	case logsMsg:
		m.loading = false
		m.logs = msg.logs
		return m, nil
	case chatMsg:
		m.loading = false
		m.conversation = msg.reply.ConversationID
		m.chatLog = append(m.chatLog, "Assistant: "+msg.reply.Response)
		return m, nil
	case errorMsg:
		m.loading = false
		m.error = msg.err
		return m, nil
	case confirmMsg:
		m.loading = false
		m.error = ""
		m.status = msg.message
		return m, msg.refresh
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.currentView {
	case viewMain:
		m.mainMenu, cmd = m.mainMenu.Update(msg)
	case viewInventory:
		m.inventoryView, cmd = m.inventoryView.Update(msg)
	case viewMenu:
		m.menuView, cmd = m.menuView.Update(msg)
	case viewOrders:
		m.orderList, cmd = m.orderList.Update(msg)
	}
	return m, cmd
}

func (m Model) selectEntry() (tea.Model, tea.Cmd) {
	switch m.currentView {
	case viewMain:
		selected, ok := m.mainMenu.SelectedItem().(item)
		if !ok {
			return m, nil
		}
		m.loading = true
		m.status = ""
		switch selected.title {
		case "Exit":
			return m, tea.Quit
		case "Inventory":
			m.currentView = viewInventory
			return m, fetchInventory(m.client)
		case "Menu":
			m.currentView = viewMenu
			return m, fetchMenu(m.client)
		case "Orders":
			m.currentView = viewOrders
			return m, fetchOrders(m.client)
		case "Finances":
			m.currentView = viewStats
			return m, fetchStats(m.client)
		case "Activity Log":
			m.currentView = viewLogs
			return m, fetchLogs(m.client)
		case "Assistant":
			m.loading = false
			m.currentView = viewChat
			cmd := m.startInput(actionChat, "Ask the assistant...")
			return m, cmd
		}
	case viewOrders:
		if selected, ok := m.orderList.SelectedItem().(orderItem); ok {
			for _, o := range m.orders {
				if o.ID == selected.id {
					order := o
					return m, func() tea.Msg { return orderDetailMsg{order: order} }
				}
			}
		}
	case viewDetail:
		m.currentView = viewOrders
		return m, fetchOrders(m.client)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.stopInput()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.textInput.Value())
		action := m.inputAction
		m.stopInput()
		if value == "" {
			return m, nil
		}
		m.loading = true
		switch action {
		case actionRestock:
			amount, err := strconv.ParseFloat(value, 64)
			if err != nil {
				m.loading = false
				m.error = fmt.Sprintf("Invalid quantity %q", value)
				return m, nil
			}
			return m, restockItem(m.client, m.inventoryView.SelectedRow()[0], amount)
		case actionFunds:
			amount, err := strconv.ParseFloat(value, 64)
			if err != nil {
				m.loading = false
				m.error = fmt.Sprintf("Invalid amount %q", value)
				return m, nil
			}
			return m, addFunds(m.client, amount)
		case actionOrder:
			req, err := parseOrderInput(value)
			if err != nil {
				m.loading = false
				m.error = err.Error()
				return m, nil
			}
			return m, createOrder(m.client, req)
		case actionChat:
			m.chatLog = append(m.chatLog, "You: "+value)
			focus := m.startInput(actionChat, "Ask the assistant...")
			return m, tea.Batch(sendChat(m.client, m.conversation, value), focus)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	var body string
	switch m.currentView {
	case viewMain:
		return docStyle.Render(m.mainMenu.View())
	case viewInventory:
		body = titleStyle.Render("Inventory") + "\n\n" + m.inventoryView.View() +
			"\n" + dimStyle.Render("'r' restock selected item, 'esc' back")
	case viewMenu:
		body = titleStyle.Render("Menu") + "\n\n" + m.menuView.View() +
			"\n" + dimStyle.Render("'esc' back")
	case viewOrders:
		body = titleStyle.Render("Orders") + "\n\n" + m.orderList.View() +
			"\n" + dimStyle.Render("'n' new order, 'enter' details, 'esc' back")
	case viewDetail:
		body = orderDetailView(m.orderDetail)
	case viewStats:
		body = statsView(m.stats, m.insights)
	case viewLogs:
		body = logsView(m.logs)
	case viewChat:
		body = titleStyle.Render("Assistant") + "\n\n" + strings.Join(m.chatLog, "\n\n") +
			"\n\n" + dimStyle.Render("'i' to type, 'enter' to send, 'esc' to stop typing")
	default:
		body = "Loading..."
	}

	if m.inputAction != "" {
		body += "\n\n" + m.textInput.View()
	}
	if m.loading {
		body += "\n\n" + m.spinner.View() + " working..."
	}
	if m.status != "" {
		body += "\n\n" + successStyle.Render(m.status)
	}
	if m.error != "" {
		body += "\n\n" + errorStyle.Render(m.error)
	}
	return docStyle.Render(body)
}

// Custom message types for the tea.Model
type inventoryMsg struct {
	items []InventoryItem
}

type menuMsg struct {
	items []MenuItem
}

type ordersMsg struct {
	orders []Order
}

type orderDetailMsg struct {
	order Order
}

type statsMsg struct {
	stats    *Stats
	insights []string
}

type logsMsg struct {
	logs []LogEntry
}

type chatMsg struct {
	reply *ChatReply
}

type errorMsg struct {
	err string
}

// confirmMsg reports a completed action and the command that reloads the view
type confirmMsg struct {
	message string
	refresh tea.Cmd
}

// orderItem represents an order in the list
type orderItem struct {
	id     uint
	title  string
	desc   string
	status string
}

func (i orderItem) Title() string       { return i.title }
func (i orderItem) Description() string { return i.desc }
func (i orderItem) FilterValue() string { return i.title }

func failed(action string, err error) tea.Msg {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Kind != "" {
		return errorMsg{err: fmt.Sprintf("%s: %s (%s)", action, apiErr.Message, apiErr.Kind)}
	}
	return errorMsg{err: fmt.Sprintf("%s: %v", action, err)}
}

func fetchInventory(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		items, err := client.GetInventory()
		if err != nil {
			return failed("Error fetching inventory", err)
		}
		return inventoryMsg{items: items}
	}
}

func fetchMenu(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		items, err := client.GetMenu()
		if err != nil {
			return failed("Error fetching menu", err)
		}
		return menuMsg{items: items}
	}
}

// fetchOrders retrieves orders from the API
func fetchOrders(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		orders, err := client.GetOrders(25)
		if err != nil {
			return failed("Error fetching orders", err)
		}
		return ordersMsg{orders: orders}
	}
}

func fetchStats(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		stats, err := client.GetStats()
		if err != nil {
			return failed("Error fetching stats", err)
		}
		insights, err := client.GetInsights()
		if err != nil {
			return failed("Error fetching insights", err)
		}
		return statsMsg{stats: stats, insights: insights}
	}
}

func fetchLogs(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		logs, err := client.GetLogs(50)
		if err != nil {
			return failed("Error fetching logs", err)
		}
		return logsMsg{logs: logs}
	}
}

func restockItem(client *ApiClient, id string, amount float64) tea.Cmd {
	return func() tea.Msg {
		res, err := client.Restock(id, amount)
		if err != nil {
			return failed("Restock failed", err)
		}
		return confirmMsg{
			message: fmt.Sprintf("Restocked %s: now %g, cost $%.2f, $%.2f left", id, res.NewQuantity, res.Cost, res.RemainingFunds),
			refresh: fetchInventory(client),
		}
	}
}

func addFunds(client *ApiClient, amount float64) tea.Cmd {
	return func() tea.Msg {
		funds, err := client.AddFunds(amount)
		if err != nil {
			return failed("Adding funds failed", err)
		}
		return confirmMsg{message: fmt.Sprintf("Operating funds now $%.2f", funds), refresh: fetchStats(client)}
	}
}

// createOrder sends a new order to the API
func createOrder(client *ApiClient, req OrderRequest) tea.Cmd {
	return func() tea.Msg {
		res, err := client.CreateOrder(req)
		if err != nil {
			return failed("Error creating order", err)
		}
		return confirmMsg{message: fmt.Sprintf("Order #%d created, total $%.2f", res.OrderID, res.Total), refresh: fetchOrders(client)}
	}
}

func updateOrderStatus(client *ApiClient, id uint, status string) tea.Cmd {
	return func() tea.Msg {
		order, err := client.UpdateOrderStatus(id, status)
		if err != nil {
			return failed("Error updating order", err)
		}
		return orderDetailMsg{order: *order}
	}
}

func sendChat(client *ApiClient, conversation uint, message string) tea.Cmd {
	return func() tea.Msg {
		reply, err := client.Chat(conversation, message)
		if err != nil {
			return failed("Assistant error", err)
		}
		return chatMsg{reply: reply}
	}
}

// parseOrderInput reads "menu id, quantity, customer, remove a|b, allergies".
// Only the menu id is required.
func parseOrderInput(input string) (OrderRequest, error) {
	fields := strings.Split(input, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	req := OrderRequest{MenuItemID: fields[0], Quantity: 1}
	if req.MenuItemID == "" {
		return req, fmt.Errorf("a menu item id is required")
	}
	if len(fields) > 1 && fields[1] != "" {
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			return req, fmt.Errorf("invalid quantity %q", fields[1])
		}
		req.Quantity = n
	}
	if len(fields) > 2 {
		req.CustomerName = fields[2]
	}
	if len(fields) > 3 && fields[3] != "" {
		var removed []string
		for _, r := range strings.Split(fields[3], "|") {
			if r = strings.TrimSpace(r); r != "" {
				removed = append(removed, r)
			}
		}
		req.RemovedIngredients = strings.Join(removed, ", ")
	}
	if len(fields) > 4 {
		req.Allergies = strings.Join(fields[4:], ", ")
	}
	return req, nil
}

func inventoryRows(items []InventoryItem) []table.Row {
	rows := make([]table.Row, len(items))
	for i, it := range items {
		rows[i] = table.Row{
			it.ID,
			it.Name,
			fmt.Sprintf("%g %s", it.Quantity, it.Unit),
			fmt.Sprintf("%g", it.Threshold),
			fmt.Sprintf("$%.2f", it.PricePerUnit),
			it.Status(),
		}
	}
	return rows
}

func menuRows(items []MenuItem) []table.Row {
	rows := make([]table.Row, len(items))
	for i, it := range items {
		rows[i] = table.Row{
			it.ID,
			it.Name,
			it.Category,
			fmt.Sprintf("$%.2f", it.Price),
			fmt.Sprintf("%.2f (%d)", it.Rating, it.RatingCount),
			it.Chef,
		}
	}
	return rows
}

// convertOrdersToItems converts API orders to list items
func convertOrdersToItems(orders []Order) []list.Item {
	items := make([]list.Item, len(orders))
	for i, order := range orders {
		names := make([]string, 0, len(order.Items))
		for _, it := range order.Items {
			names = append(names, fmt.Sprintf("%dx %s", it.Quantity, it.MenuItemName))
		}
		items[i] = orderItem{
			id:     order.ID,
			title:  fmt.Sprintf("Order #%d - %s", order.ID, order.CustomerName),
			desc:   fmt.Sprintf("%s - $%.2f - %s", strings.Join(names, ", "), order.Total, order.Status),
			status: order.Status,
		}
	}
	return items
}

// orderDetailView creates a detailed view of an order
func orderDetailView(order Order) string {
	view := titleStyle.Render(fmt.Sprintf("Order #%d Details", order.ID)) + "\n\n"
	view += fmt.Sprintf("Customer: %s\n", order.CustomerName)
	view += fmt.Sprintf("Status: %s\n", order.Status)
	view += fmt.Sprintf("Total: $%.2f\n", order.Total)
	view += fmt.Sprintf("Received: %s\n", order.CreatedAt.Format(time.RFC1123))
	if order.Allergies != "" {
		view += errorStyle.Render("Allergies: "+order.Allergies) + "\n"
	}

	view += "\nItems:\n"
	for i, it := range order.Items {
		view += fmt.Sprintf("%d. %s (x%d) - $%.2f\n", i+1, it.MenuItemName, it.Quantity, it.Price)
		if it.RemovedIngredients != "" {
			view += fmt.Sprintf("   No: %s\n", it.RemovedIngredients)
		}
		if len(it.AddedIngredients) > 0 {
			view += fmt.Sprintf("   Extra: %s\n", strings.Join(it.AddedIngredients, ", "))
		}
		if it.SpecialInstructions != "" {
			view += fmt.Sprintf("   Notes: %s\n", it.SpecialInstructions)
		}
	}

	view += "\n" + dimStyle.Render("'p' preparing, 'c' completed, 'x' cancelled, 'enter' back to list")
	return view
}

func statsView(stats *Stats, insights []string) string {
	view := titleStyle.Render("Finances") + "\n\n"
	if stats == nil {
		return view + "No data yet"
	}
	view += fmt.Sprintf("Operating Funds: $%.2f\n", stats.OperatingFunds)
	view += fmt.Sprintf("Total Revenue:   $%.2f\n", stats.TotalRevenue)
	view += fmt.Sprintf("Total Cost:      $%.2f\n", stats.TotalCost)
	view += fmt.Sprintf("Net Profit:      $%.2f\n", stats.NetProfit)
	view += fmt.Sprintf("Inventory Value: $%.2f\n", stats.InventoryValue)
	view += fmt.Sprintf("Low Stock Items: %d\n\n", stats.LowStockCount)
	if stats.Status == "critical" {
		view += errorStyle.Render("Funds critical") + "\n"
	} else {
		view += successStyle.Render("Funds stable") + "\n"
	}

	if len(insights) > 0 {
		view += "\n" + infoStyle.Render("Insights") + "\n"
		for _, insight := range insights {
			view += "• " + insight + "\n"
		}
	}
	view += "\n" + dimStyle.Render("'f' add funds, 'r' refresh, 'esc' back")
	return view
}

func logsView(logs []LogEntry) string {
	view := titleStyle.Render("Activity Log") + "\n\n"
	if len(logs) == 0 {
		view += "No activity yet\n"
	}
	for _, entry := range logs {
		amount := ""
		if entry.Amount != 0 {
			amount = fmt.Sprintf(" (%+.2f)", entry.Amount)
		}
		view += fmt.Sprintf("%s  %-8s %s%s\n", entry.Timestamp.Format("15:04:05"), entry.Type, entry.Message, amount)
	}
	view += "\n" + dimStyle.Render("'r' refresh, 'esc' back")
	return view
}

func main() {
	client := NewApiClient()
	if ok, err := client.CheckHealth(); !ok {
		fmt.Printf("Warning: API server at %s is not available: %v\n", client.BaseURL, err)
	}

	p := tea.NewProgram(initialModel(client))
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
