package usage

import "time"

// Data is the root structure stored on disk.
type Data struct {
	Version   string          `json:"version"`
	Events    []Event         `json:"events,omitempty"` // most recent maxEvents only
	Aggregate AggregatedStats `json:"aggregate"`
}

// Event is one text-generation call.
type Event struct {
	Timestamp    time.Time `json:"timestamp"`
	Model        string    `json:"model"`
	Report       string    `json:"report"` // schema name, e.g. sleep_report
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
}

// AggregatedStats holds counters broken down by model and report schema.
type AggregatedStats struct {
	Total    TokenCounts            `json:"total"`
	Calls    int64                  `json:"calls"`
	ByModel  map[string]TokenCounts `json:"by_model"`
	ByReport map[string]TokenCounts `json:"by_report"`
}

// TokenCounts holds input/output sums.
type TokenCounts struct {
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
	Total  int64 `json:"total"`
}

func (tc *TokenCounts) Add(input, output int) {
	tc.Input += int64(input)
	tc.Output += int64(output)
	tc.Total += int64(input + output)
}
