package podds

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOddsHistoryOrdersByObservationTime(t *testing.T) {
	history := NewOddsHistory()
	now := time.Now()

	// Recorded out of order on purpose
	history.Record(OddsSnapshot{FixtureID: "f1", Market: MarketMatchResult, Pick: PickHome, Price: 1.90, ObservedAt: now})
	history.Record(OddsSnapshot{FixtureID: "f1", Market: MarketMatchResult, Pick: PickHome, Price: 1.70, ObservedAt: now.Add(-2 * time.Hour)})
	history.Record(OddsSnapshot{FixtureID: "f1", Market: MarketMatchResult, Pick: PickHome, Price: 1.80, ObservedAt: now.Add(-1 * time.Hour)})

	snaps := history.Snapshots("f1", MarketMatchResult)
	require.Len(t, snaps, 3)
	assert.Equal(t, 1.70, snaps[0].Price, "Oldest observation first")
	assert.Equal(t, 1.80, snaps[1].Price)
	assert.Equal(t, 1.90, snaps[2].Price)
}

func TestOddsHistorySnapshotsReturnsCopy(t *testing.T) {
	history := NewOddsHistory()
	history.Record(OddsSnapshot{FixtureID: "f1", Market: MarketBTTS, Pick: PickYes, Price: 1.80, ObservedAt: time.Now()})

	snaps := history.Snapshots("f1", MarketBTTS)
	snaps[0].Price = 99.0

	again := history.Snapshots("f1", MarketBTTS)
	assert.Equal(t, 1.80, again[0].Price, "Mutating a returned slice must not touch the buffer")
}

func TestOddsHistoryMarketsSortedAndScoped(t *testing.T) {
	history := NewOddsHistory()
	now := time.Now()
	history.Record(OddsSnapshot{FixtureID: "f1", Market: MarketOver25, Pick: PickOver, Price: 1.85, ObservedAt: now})
	history.Record(OddsSnapshot{FixtureID: "f1", Market: MarketBTTS, Pick: PickYes, Price: 1.80, ObservedAt: now})
	history.Record(OddsSnapshot{FixtureID: "f2", Market: MarketMatchResult, Pick: PickHome, Price: 2.10, ObservedAt: now})

	assert.Equal(t, []string{MarketBTTS, MarketOver25}, history.Markets("f1"))
	assert.Equal(t, []string{MarketMatchResult}, history.Markets("f2"))
	assert.Nil(t, history.Markets("unknown"))
	assert.Nil(t, history.Snapshots("f1", MarketMatchResult))
}

func TestOddsHistoryReset(t *testing.T) {
	history := NewOddsHistory()
	history.Record(OddsSnapshot{FixtureID: "f1", Market: MarketMatchResult, Pick: PickHome, Price: 2.00, ObservedAt: time.Now()})

	history.Reset()
	assert.Nil(t, history.Snapshots("f1", MarketMatchResult))
	assert.Nil(t, history.Markets("f1"))
}

func TestOddsHistoryConcurrentAccess(t *testing.T) {
	history := NewOddsHistory()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				history.Record(OddsSnapshot{
					FixtureID:  "f1",
					Market:     MarketMatchResult,
					Pick:       PickHome,
					Price:      2.00,
					ObservedAt: now.Add(time.Duration(n*100+j) * time.Second),
				})
				history.Snapshots("f1", MarketMatchResult)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, history.Snapshots("f1", MarketMatchResult), 800)
}
