package podds

import (
	"sort"
	"sync"
	"time"
)

// OddsSnapshot is one observed price for one market/pick at a moment in time
type OddsSnapshot struct {
	FixtureID  string
	Market     string
	Pick       string
	Price      float64
	Bookmaker  string
	ObservedAt time.Time
}

// OddsHistory buffers time-ordered price snapshots per fixture and market.
// It is passed explicitly into the anomaly detector rather than living as
// process-global state, is not durable, and is expected to be Reset on a
// daily boundary by whoever owns the refresh loop. Writes per fixture key are
// serialized by the mutex.
type OddsHistory struct {
	mu       sync.RWMutex
	fixtures map[string]map[string][]OddsSnapshot
}

// NewOddsHistory creates an empty buffer
func NewOddsHistory() *OddsHistory {
	return &OddsHistory{
		fixtures: map[string]map[string][]OddsSnapshot{},
	}
}

// Record appends a snapshot to its fixture/market sequence, keeping the
// sequence ordered by observation time
func (h *OddsHistory) Record(snap OddsSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	markets, ok := h.fixtures[snap.FixtureID]
	if !ok {
		markets = map[string][]OddsSnapshot{}
		h.fixtures[snap.FixtureID] = markets
	}

	snaps := append(markets[snap.Market], snap)
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].ObservedAt.Before(snaps[j].ObservedAt)
	})
	markets[snap.Market] = snaps
}

// Snapshots returns a copy of the ordered sequence for one fixture/market
func (h *OddsHistory) Snapshots(fixtureID, market string) []OddsSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	markets, ok := h.fixtures[fixtureID]
	if !ok {
		return nil
	}
	snaps := markets[market]
	if len(snaps) == 0 {
		return nil
	}
	out := make([]OddsSnapshot, len(snaps))
	copy(out, snaps)
	return out
}

// Markets lists the markets with recorded history for a fixture, sorted for
// deterministic iteration
func (h *OddsHistory) Markets(fixtureID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	markets, ok := h.fixtures[fixtureID]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(markets))
	for name := range markets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset clears the whole buffer; callers invoke this at the daily boundary
func (h *OddsHistory) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fixtures = map[string]map[string][]OddsSnapshot{}
}
