package kitchen

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"thallipoli/internal/models"
)

// RecentLogs returns the newest activity log entries first
func (e *Engine) RecentLogs(ctx context.Context, limit int) ([]models.LogEntry, error) {
	logs, err := e.store.RecentLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return logs, nil
}

// appendLog writes an activity entry. A failure is logged and returned as
// a warning; the mutation that produced the entry stays committed.
func (e *Engine) appendLog(ctx context.Context, warnings *[]string, typ models.LogType, amount float64, format string, args ...interface{}) {
	entry := models.LogEntry{
		ID:        uuid.NewString(),
		Timestamp: e.now(),
		Type:      string(typ),
		Message:   fmt.Sprintf(format, args...),
		Amount:    amount,
	}
	if err := e.store.AppendLog(ctx, &entry); err != nil {
		e.recorder.RecordLogFailure()
		e.logger.WithError(err).WithField("type", typ).Warn("failed to append log entry")
		if warnings != nil {
			*warnings = append(*warnings, fmt.Sprintf("activity log not recorded: %s", entry.Message))
		}
		return
	}
	for _, o := range e.observers {
		o.OnLog(entry)
	}
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// qty renders a quantity without trailing zeros
func qty(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
