package assistant

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"thallipoli/internal/kitchen"
	"thallipoli/internal/models"
	"thallipoli/internal/store"
)

// MockLLM is a mock implementation of llms.Model
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llms.ContentResponse), args.Error(1)
}

type countingRecorder struct {
	outcomes []string
}

func (r *countingRecorder) RecordChat(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

func text(content string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: content}}}
}

func toolCall(name, arguments string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{
		ToolCalls: []llms.ToolCall{{
			ID:           "call-1",
			Type:         "function",
			FunctionCall: &llms.FunctionCall{Name: name, Arguments: arguments},
		}},
	}}}
}

func newTestService(t *testing.T, model llms.Model) (*Service, *kitchen.Engine, *countingRecorder) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s := store.NewMemoryStore()
	_, err := s.Seed(context.Background(), store.DefaultSeed())
	require.NoError(t, err)

	engine := kitchen.New(s, kitchen.WithLogger(logger))
	rec := &countingRecorder{}
	return New(engine, model, WithLogger(logger), WithRecorder(rec)), engine, rec
}

func stock(t *testing.T, e *kitchen.Engine, id string) float64 {
	t.Helper()
	item, err := e.Store().GetInventoryItem(context.Background(), id)
	require.NoError(t, err)
	return item.Quantity
}

func TestChatPlainAnswer(t *testing.T) {
	llm := new(MockLLM)
	llm.On("GenerateContent", mock.Anything, mock.Anything).Return(text("Hello! How can I help?"), nil).Once()

	svc, engine, rec := newTestService(t, llm)
	reply, err := svc.Chat(context.Background(), 0, "  Hi there  ")
	require.NoError(t, err)

	assert.Equal(t, "Hello! How can I help?", reply.Response)
	assert.Empty(t, reply.ToolCalls)
	assert.Equal(t, []string{OutcomeAnswered}, rec.outcomes)

	conv, err := engine.Store().GetConversation(context.Background(), reply.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "Hi there", conv.Title)

	msgs, err := engine.Store().ListMessages(context.Background(), reply.ConversationID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, "Hi there", msgs[0].Content)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)

	sent := llm.Calls[0].Arguments.Get(1).([]llms.MessageContent)
	require.Len(t, sent, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, sent[0].Role)
	prompt := sent[0].Parts[0].(llms.TextContent).Text
	assert.Contains(t, prompt, "Operating Budget: $5000.00")
	assert.Contains(t, prompt, "Classic Cheeseburger (ID: menu-1)")
	llm.AssertExpectations(t)
}

func TestChatProcessOrderGoesThroughEngine(t *testing.T) {
	llm := new(MockLLM)
	llm.On("GenerateContent", mock.Anything, mock.Anything).
		Return(toolCall(ToolProcessOrder, `{"menuItemId":"menu-1","customerName":"Ana","removedIngredients":"tomato, lettuce","allergies":"dairy"}`), nil).Once()
	llm.On("GenerateContent", mock.Anything, mock.Anything).Return(text("Your cheeseburger is on its way."), nil).Once()

	svc, engine, rec := newTestService(t, llm)
	reply, err := svc.Chat(context.Background(), 0, "One cheeseburger, no tomato or lettuce")
	require.NoError(t, err)

	assert.Equal(t, "Your cheeseburger is on its way.", reply.Response)
	assert.Equal(t, []string{ToolProcessOrder}, reply.ToolCalls)
	assert.Equal(t, []string{OutcomeTools}, rec.outcomes)

	assert.InDelta(t, 49.8, stock(t, engine, "inv-1"), 1e-9)
	assert.Equal(t, 20.0, stock(t, engine, "inv-4"))
	assert.Equal(t, 15.0, stock(t, engine, "inv-5"))

	orders, err := engine.RecentOrders(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Ana", orders[0].CustomerName)
	assert.Equal(t, "dairy", orders[0].Allergies)

	followUp := llm.Calls[1].Arguments.Get(1).([]llms.MessageContent)
	last := followUp[len(followUp)-1]
	assert.Equal(t, llms.ChatMessageTypeTool, last.Role)
	response := last.Parts[0].(llms.ToolCallResponse)
	assert.Equal(t, "call-1", response.ToolCallID)
	assert.Contains(t, response.Content, `"orderId":1`)
	llm.AssertExpectations(t)
}

func TestChatFallsBackToFormatter(t *testing.T) {
	llm := new(MockLLM)
	llm.On("GenerateContent", mock.Anything, mock.Anything).Return(toolCall(ToolFinancialStatus, "{}"), nil).Once()
	llm.On("GenerateContent", mock.Anything, mock.Anything).Return(text("   "), nil).Once()

	svc, _, rec := newTestService(t, llm)
	reply, err := svc.Chat(context.Background(), 0, "How are we doing?")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(reply.Response, "Financial Summary"))
	assert.Contains(t, reply.Response, "- Operating Budget: $5000.00")
	assert.Contains(t, reply.Response, "Status: Healthy")
	assert.Equal(t, []string{OutcomeFallback}, rec.outcomes)
}

func TestChatReportsEngineErrors(t *testing.T) {
	llm := new(MockLLM)
	llm.On("GenerateContent", mock.Anything, mock.Anything).Return(toolCall(ToolRestockItem, `{"itemId":"inv-1","quantity":1000}`), nil).Once()
	llm.On("GenerateContent", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited")).Once()

	svc, engine, _ := newTestService(t, llm)
	reply, err := svc.Chat(context.Background(), 0, "Buy a ton of beef")
	require.NoError(t, err)

	assert.Equal(t, "Sorry, that didn't work: Insufficient funds to restock Premium Ground Beef: need $12500.00, have $5000.00", reply.Response)
	assert.Equal(t, 50.0, stock(t, engine, "inv-1"))

	funds, err := engine.FinancialStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5000.0, funds.OperatingFunds)
}

func TestChatRestockByName(t *testing.T) {
	llm := new(MockLLM)
	llm.On("GenerateContent", mock.Anything, mock.Anything).Return(toolCall(ToolRestockItem, `{"itemId":"truffle","quantity":2}`), nil).Once()
	llm.On("GenerateContent", mock.Anything, mock.Anything).Return(text("Done."), nil).Once()

	svc, engine, _ := newTestService(t, llm)
	_, err := svc.Chat(context.Background(), 0, "Restock truffle oil by 2")
	require.NoError(t, err)

	assert.Equal(t, 7.0, stock(t, engine, "inv-9"))
}

func TestChatContinuesConversation(t *testing.T) {
	llm := new(MockLLM)
	llm.On("GenerateContent", mock.Anything, mock.Anything).Return(text("First."), nil).Once()
	llm.On("GenerateContent", mock.Anything, mock.Anything).Return(text("Second."), nil).Once()

	svc, _, _ := newTestService(t, llm)
	first, err := svc.Chat(context.Background(), 0, "one")
	require.NoError(t, err)
	second, err := svc.Chat(context.Background(), first.ConversationID, "two")
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)

	// system prompt plus user, assistant, user
	sent := llm.Calls[1].Arguments.Get(1).([]llms.MessageContent)
	require.Len(t, sent, 4)
	assert.Equal(t, llms.ChatMessageTypeAI, sent[2].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, sent[3].Role)
}

func TestChatRejectsBadInput(t *testing.T) {
	llm := new(MockLLM)
	svc, _, _ := newTestService(t, llm)

	_, err := svc.Chat(context.Background(), 0, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.Chat(context.Background(), 42, "hello")
	assert.ErrorIs(t, err, ErrConversationNotFound)
	llm.AssertNotCalled(t, "GenerateContent", mock.Anything, mock.Anything)
}

func TestChatModelFailure(t *testing.T) {
	llm := new(MockLLM)
	llm.On("GenerateContent", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()

	svc, _, rec := newTestService(t, llm)
	_, err := svc.Chat(context.Background(), 0, "hello")
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, []string{OutcomeError}, rec.outcomes)
}

func TestTitleIsTruncated(t *testing.T) {
	assert.Equal(t, "short", title("short"))
	long := strings.Repeat("abcd ", 20)
	got := title(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len([]rune(got)), titleLength+3)
}
