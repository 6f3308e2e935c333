// Package assistant runs the conversational assistant. The model may call
// a fixed set of tools, each of which goes through the kitchen engine.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"

	"thallipoli/internal/kitchen"
	"thallipoli/internal/models"
	"thallipoli/internal/store"
)

var (
	// ErrEmptyMessage is returned when a chat message has no text
	ErrEmptyMessage = errors.New("message is required")
	// ErrConversationNotFound is returned for an unknown conversation id
	ErrConversationNotFound = errors.New("conversation not found")
)

const (
	defaultTemperature = 0.3
	defaultMaxHistory  = 20
	titleLength        = 40

	noAnswer = "I apologize, but I couldn't process that request."
)

// Chat outcomes reported to the recorder
const (
	OutcomeAnswered = "answered"
	OutcomeTools    = "tools"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// Recorder counts chat turns by outcome
type Recorder interface {
	RecordChat(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordChat(string) {}

// Reply is the answer to one chat turn
type Reply struct {
	ConversationID uint     `json:"conversationId"`
	Response       string   `json:"response"`
	ToolCalls      []string `json:"toolCalls,omitempty"`
}

// Service holds the model and the engine it operates on
type Service struct {
	engine      *kitchen.Engine
	store       store.Store
	model       llms.Model
	logger      *logrus.Entry
	recorder    Recorder
	temperature float64
	maxHistory  int
}

// Option configures a Service
type Option func(*Service)

func WithLogger(logger *logrus.Logger) Option {
	return func(s *Service) {
		s.logger = logger.WithField("component", "assistant")
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

func WithTemperature(t float64) Option {
	return func(s *Service) {
		s.temperature = t
	}
}

// WithMaxHistory limits how many earlier messages are sent to the model
func WithMaxHistory(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxHistory = n
		}
	}
}

// New creates an assistant bound to engine
func New(engine *kitchen.Engine, model llms.Model, opts ...Option) *Service {
	logger := logrus.New()
	s := &Service{
		engine:      engine,
		store:       engine.Store(),
		model:       model,
		logger:      logger.WithField("component", "assistant"),
		recorder:    nopRecorder{},
		temperature: defaultTemperature,
		maxHistory:  defaultMaxHistory,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chat answers message within a conversation. A zero conversationID starts
// a new conversation. Both the message and the answer are persisted.
func (s *Service) Chat(ctx context.Context, conversationID uint, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := s.conversation(ctx, conversationID, message)
	if err != nil {
		return nil, err
	}
	if err := s.store.AppendMessage(ctx, &models.Message{
		ConversationID: conv.ID,
		Role:           models.RoleUser,
		Content:        message,
	}); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	history, err := s.store.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	prompt, err := s.systemPrompt(ctx)
	if err != nil {
		return nil, err
	}

	content := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeSystem, prompt)}
	content = append(content, s.historyParts(history)...)

	answer, calls, outcome, err := s.respond(ctx, content)
	if err != nil {
		s.recorder.RecordChat(OutcomeError)
		return nil, err
	}
	s.recorder.RecordChat(outcome)

	if err := s.store.AppendMessage(ctx, &models.Message{
		ConversationID: conv.ID,
		Role:           models.RoleAssistant,
		Content:        answer,
	}); err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"conversation": conv.ID,
		"tools":        calls,
		"outcome":      outcome,
	}).Info("chat turn answered")

	return &Reply{ConversationID: conv.ID, Response: answer, ToolCalls: calls}, nil
}

func (s *Service) conversation(ctx context.Context, id uint, message string) (*models.Conversation, error) {
	if id == 0 {
		conv, err := s.store.CreateConversation(ctx, title(message))
		if err != nil {
			return nil, fmt.Errorf("failed to create conversation: %w", err)
		}
		return conv, nil
	}
	conv, err := s.store.GetConversation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrConversationNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return conv, nil
}

// respond runs the tool loop: one call with tools, the tool results, then
// one follow-up call for the final wording
func (s *Service) respond(ctx context.Context, content []llms.MessageContent) (string, []string, string, error) {
	resp, err := s.model.GenerateContent(ctx, content,
		llms.WithTools(Tools()),
		llms.WithTemperature(s.temperature),
	)
	if err != nil {
		return "", nil, "", fmt.Errorf("model request failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return noAnswer, nil, OutcomeFallback, nil
	}

	choice := resp.Choices[0]
	if len(choice.ToolCalls) == 0 {
		if strings.TrimSpace(choice.Content) == "" {
			return noAnswer, nil, OutcomeFallback, nil
		}
		return choice.Content, nil, OutcomeAnswered, nil
	}

	calls := make([]string, 0, len(choice.ToolCalls))
	results := make([]interface{}, 0, len(choice.ToolCalls))
	request := llms.MessageContent{Role: llms.ChatMessageTypeAI}
	if choice.Content != "" {
		request.Parts = append(request.Parts, llms.TextPart(choice.Content))
	}
	var answers []llms.MessageContent

	for _, call := range choice.ToolCalls {
		if call.FunctionCall == nil {
			continue
		}
		name := call.FunctionCall.Name
		result := s.dispatch(ctx, name, call.FunctionCall.Arguments)
		calls = append(calls, name)
		results = append(results, result)

		payload, err := json.Marshal(result)
		if err != nil {
			return "", nil, "", fmt.Errorf("failed to encode %s result: %w", name, err)
		}
		request.Parts = append(request.Parts, call)
		answers = append(answers, llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{llms.ToolCallResponse{
				ToolCallID: call.ID,
				Name:       name,
				Content:    string(payload),
			}},
		})
	}
	if len(results) == 0 {
		return noAnswer, nil, OutcomeFallback, nil
	}

	content = append(content, request)
	content = append(content, answers...)

	followUp, err := s.model.GenerateContent(ctx, content, llms.WithTemperature(s.temperature))
	if err == nil && followUp != nil && len(followUp.Choices) > 0 {
		if text := strings.TrimSpace(followUp.Choices[0].Content); text != "" {
			return text, calls, OutcomeTools, nil
		}
	}
	if err != nil {
		s.logger.WithError(err).Warn("follow-up request failed, formatting tool results")
	}

	parts := make([]string, 0, len(results))
	for _, result := range results {
		parts = append(parts, Format(result))
	}
	return strings.Join(parts, "\n\n"), calls, OutcomeFallback, nil
}

func (s *Service) historyParts(history []models.Message) []llms.MessageContent {
	if len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}
	out := make([]llms.MessageContent, 0, len(history))
	for _, m := range history {
		role := llms.ChatMessageTypeHuman
		if m.Role == models.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		out = append(out, llms.TextParts(role, m.Content))
	}
	return out
}

func (s *Service) systemPrompt(ctx context.Context) (string, error) {
	funds, err := s.engine.FinancialStatus(ctx)
	if err != nil {
		return "", err
	}
	low, err := s.engine.LowStock(ctx)
	if err != nil {
		return "", err
	}
	inventory, err := s.engine.ListInventory(ctx)
	if err != nil {
		return "", err
	}
	menu, err := s.engine.ListMenu(ctx)
	if err != nil {
		return "", err
	}

	lowNames := "None - all stock levels healthy"
	if len(low) > 0 {
		names := make([]string, len(low))
		for i := range low {
			names[i] = low[i].Name
		}
		lowNames = strings.Join(names, ", ")
	}
	dishes := make([]string, len(menu))
	for i := range menu {
		dishes[i] = fmt.Sprintf("%s (ID: %s)", menu[i].Name, menu[i].ID)
	}

	return fmt.Sprintf(systemTemplate,
		funds.OperatingFunds, lowNames, len(menu), len(inventory), strings.Join(dishes, ", ")), nil
}

func title(message string) string {
	message = strings.Join(strings.Fields(message), " ")
	if utf8.RuneCountInString(message) <= titleLength {
		return message
	}
	runes := []rune(message)
	return strings.TrimSpace(string(runes[:titleLength])) + "..."
}

const systemTemplate = `You are THALLIPOLI AI, a friendly and helpful assistant for the restaurant THALLIPOLI. You speak in a warm, professional manner.

CURRENT RESTAURANT STATUS:
- Operating Budget: $%.2f
- Low Stock Alerts: %s
- Active Menu Items: %d
- Inventory Items: %d

AVAILABLE MENU ITEMS (use these exact IDs when processing orders):
%s

ORDER FLOW:
1. Use get_menu_item_details to show the customer the item's ingredients.
2. Ask whether they have any allergies or want any ingredients removed.
3. Wait for their answer before processing the order.
4. Only after they confirm, call process_order with their preferences.

RESPONSE RULES:
- Never return raw JSON or code to the user.
- Use bullet points for lists and keep answers concise.
- When a tool reports an error, explain it plainly and suggest a next step.
- Confirm completed actions clearly.`
