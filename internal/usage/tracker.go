// Package usage keeps a running tally of text-generation tokens spent on
// reports, persisted as JSON next to the config.
package usage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const maxEvents = 200

// Tracker records token usage. It is safe for concurrent use; nothing is
// written until Save.
type Tracker struct {
	mu       sync.Mutex
	data     Data
	filePath string
	dirty    bool
	now      func() time.Time
}

// NewTracker loads the usage file at path. A missing file starts empty.
func NewTracker(path string) (*Tracker, error) {
	t := &Tracker{
		filePath: path,
		now:      time.Now,
		data:     Data{Version: "1.0"},
	}
	if err := t.Load(); err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}
	return t, nil
}

// Load reads the usage data from disk.
func (t *Tracker) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := os.ReadFile(t.filePath)
	if os.IsNotExist(err) {
		t.ensureMaps()
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, &t.data); err != nil {
		return err
	}
	t.ensureMaps()
	return nil
}

func (t *Tracker) ensureMaps() {
	if t.data.Aggregate.ByModel == nil {
		t.data.Aggregate.ByModel = make(map[string]TokenCounts)
	}
	if t.data.Aggregate.ByReport == nil {
		t.data.Aggregate.ByReport = make(map[string]TokenCounts)
	}
}

// Save writes the usage data to disk if anything changed since the last
// load or save.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.dirty {
		return nil
	}

	data, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(t.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create usage directory: %w", err)
	}
	if err := os.WriteFile(t.filePath, data, 0644); err != nil {
		return err
	}
	t.dirty = false
	return nil
}

// Track records one generation call.
func (t *Tracker) Track(model, report string, input, output int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.Aggregate.Total.Add(input, output)
	t.data.Aggregate.Calls++
	addToMap(t.data.Aggregate.ByModel, model, input, output)
	addToMap(t.data.Aggregate.ByReport, report, input, output)

	t.data.Events = append(t.data.Events, Event{
		Timestamp:    t.now().UTC(),
		Model:        model,
		Report:       report,
		InputTokens:  input,
		OutputTokens: output,
	})
	if len(t.data.Events) > maxEvents {
		t.data.Events = append([]Event(nil), t.data.Events[len(t.data.Events)-maxEvents:]...)
	}
	t.dirty = true
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() AggregatedStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.data.Aggregate
	stats.ByModel = copyTokenCountsMap(stats.ByModel)
	stats.ByReport = copyTokenCountsMap(stats.ByReport)
	return stats
}

// Events returns a copy of the retained events, oldest first.
func (t *Tracker) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Event(nil), t.data.Events...)
}

func copyTokenCountsMap(src map[string]TokenCounts) map[string]TokenCounts {
	if src == nil {
		return nil
	}
	dst := make(map[string]TokenCounts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addToMap(m map[string]TokenCounts, key string, input, output int) {
	entry := m[key]
	entry.Add(input, output)
	m[key] = entry
}
