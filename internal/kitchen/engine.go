// Package kitchen keeps inventory, funds, orders and the activity log
// consistent. Every mutation runs as one store.Atomic unit; logs are
// appended after commit and never roll a mutation back.
package kitchen

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"thallipoli/internal/models"
	"thallipoli/internal/store"
)

const (
	// DefaultAddonSurcharge is charged per added ingredient per unit sold
	DefaultAddonSurcharge = 2.00
	// DefaultLowFundsMark is the balance under which checkouts raise a warning insight
	DefaultLowFundsMark = 1000.0

	maxInsights   = 5
	batchSize     = 10
	alertLookback = 5
	moneyEpsilon  = 1e-9
)

// Recorder receives operational measurements from the engine
type Recorder interface {
	RecordSale(menuItem string, quantity int, total float64)
	RecordRestock(itemID string, cost float64)
	RecordWaste(menuItem string, outcome WasteOutcome)
	RecordRating(menuItem string, rating int)
	RecordFailure(operation string, kind ErrorKind)
	RecordLogFailure()
	SetFunds(funds float64)
	SetLowStock(count int)
}

// Observer is notified of every appended log entry and emitted insight
type Observer interface {
	OnLog(entry models.LogEntry)
	OnInsight(insight string)
}

// Engine applies sales, restocks, waste, ratings and analytics to a store
type Engine struct {
	store     store.Store
	logger    *logrus.Entry
	resolver  IngredientResolver
	recorder  Recorder
	observers []Observer
	now       func() time.Time

	addonSurcharge float64
	lowFundsMark   float64

	mu       sync.Mutex
	insights []string
	batch    []checkoutSummary
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger; the engine adds its own component field
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.WithField("component", "kitchen")
	}
}

// WithResolver replaces the removal resolver
func WithResolver(r IngredientResolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithObserver adds an event observer
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithAddonSurcharge sets the per-ingredient add-on price
func WithAddonSurcharge(v float64) Option {
	return func(e *Engine) {
		e.addonSurcharge = v
	}
}

// WithLowFundsMark sets the low funds warning threshold
func WithLowFundsMark(v float64) Option {
	return func(e *Engine) {
		e.lowFundsMark = v
	}
}

// New creates an engine over s
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:          s,
		logger:         logrus.StandardLogger().WithField("component", "kitchen"),
		resolver:       SubstringResolver{},
		recorder:       nopRecorder{},
		now:            time.Now,
		addonSurcharge: DefaultAddonSurcharge,
		lowFundsMark:   DefaultLowFundsMark,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the underlying store
func (e *Engine) Store() store.Store {
	return e.store
}

// fail records a failed operation and passes the error through
func (e *Engine) fail(op string, err error) error {
	kind := KindOf(err)
	e.recorder.RecordFailure(op, kind)
	entry := e.logger.WithField("op", op).WithError(err)
	if kind == "" {
		entry.Error("operation failed")
	} else {
		entry.WithField("kind", kind).Debug("operation rejected")
	}
	return err
}

type nopRecorder struct{}

func (nopRecorder) RecordSale(string, int, float64) {}
func (nopRecorder) RecordRestock(string, float64) {}
func (nopRecorder) RecordWaste(string, WasteOutcome) {}
func (nopRecorder) RecordRating(string, int) {}
func (nopRecorder) RecordFailure(string, ErrorKind) {}
func (nopRecorder) RecordLogFailure() {}
func (nopRecorder) SetFunds(float64) {}
func (nopRecorder) SetLowStock(int) {}
