package kitchen

import (
	"fmt"
)

// checkoutSummary is what the batch analysis keeps of a checkout
type checkoutSummary struct {
	items []string
	total float64
}

// Insights returns the newest insights first
func (e *Engine) Insights() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]string, len(e.insights))
	copy(out, e.insights)
	return out
}

// PendingBatch reports how many checkouts are waiting for the next batch analysis
func (e *Engine) PendingBatch() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.batch)
}

func (e *Engine) pushInsight(insight string) {
	e.mu.Lock()
	e.insights = append([]string{insight}, e.insights...)
	if len(e.insights) > maxInsights {
		e.insights = e.insights[:maxInsights]
	}
	e.mu.Unlock()

	for _, o := range e.observers {
		o.OnInsight(insight)
	}
}

// recordBatch adds a checkout to the batch buffer. When the buffer is full
// it is summarized into an insight and emptied.
func (e *Engine) recordBatch(s checkoutSummary) (string, bool) {
	e.mu.Lock()
	e.batch = append(e.batch, s)
	if len(e.batch) < batchSize {
		e.mu.Unlock()
		return "", false
	}
	batch := e.batch
	e.batch = nil
	e.mu.Unlock()

	insight := batchInsight(batch)
	e.pushInsight(insight)
	e.logger.WithField("checkouts", len(batch)).Info("batch analysis emitted")
	return insight, true
}

func batchInsight(batch []checkoutSummary) string {
	var total float64
	counts := make(map[string]int)
	var order []string
	for _, s := range batch {
		total += s.total
		for _, name := range s.items {
			if counts[name] == 0 {
				order = append(order, name)
			}
			counts[name]++
		}
	}

	top, topCount := "None", 0
	for _, name := range order {
		if counts[name] > topCount {
			top, topCount = name, counts[name]
		}
	}

	return fmt.Sprintf("BATCH ANALYSIS (Last %d Orders): Avg Order Value: %s. Top Seller: %s (%d sold). Restock priority: %s ingredients.",
		len(batch), money(total/float64(len(batch))), top, topCount, top)
}
