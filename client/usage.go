package client

import "sync"

// Usage is accumulated token consumption and cost for one caller.
type Usage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	Cost         float64 `json:"cost_usd"`
}

func (u *Usage) add(in, out int, cost float64) {
	u.InputTokens += in
	u.OutputTokens += out
	u.TotalTokens += in + out
	u.Cost += cost
}

// UsageTracker aggregates usage per caller and in total. It is read by the
// progress UI while the pipeline is running, hence the lock.
type UsageTracker struct {
	mu      sync.RWMutex
	callers map[string]*Usage
	total   Usage
}

func NewUsageTracker() *UsageTracker {
	return &UsageTracker{
		callers: make(map[string]*Usage),
	}
}

func (t *UsageTracker) Record(caller string, inputTokens, outputTokens int, cost float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, ok := t.callers[caller]
	if !ok {
		u = &Usage{}
		t.callers[caller] = u
	}
	u.add(inputTokens, outputTokens, cost)
	t.total.add(inputTokens, outputTokens, cost)
}

// Caller returns a copy of the usage recorded for one caller.
func (t *UsageTracker) Caller(name string) Usage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if u, ok := t.callers[name]; ok {
		return *u
	}
	return Usage{}
}

// Totals returns a copy of the usage recorded across all callers.
func (t *UsageTracker) Totals() Usage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.total
}
