package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/villagesim/internal/engine"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAppendAndReadEvents(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.AppendEvent(engine.Event{
		Tick: 10, Day: 0, Hour: 1, Source: "Aldric Miller", Action: "chopped_wood",
		Fields: map[string]any{"amount": 12.5},
	}))
	require.NoError(t, db.AppendEvent(engine.Event{
		Tick: 20, Day: 0, Hour: 2, Source: "Berta Smith", Action: "crafted_item",
	}))

	events, err := db.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "crafted_item", events[0].Action, "newest first")
	assert.Equal(t, "chopped_wood", events[1].Action)
	assert.Equal(t, 12.5, events[1].Fields["amount"])
}

func TestAppendEventsBatch(t *testing.T) {
	db := openTestDB(t)

	batch := []engine.Event{
		{Tick: 1, Day: 0, Source: "a", Action: "settled"},
		{Tick: 2, Day: 1, Source: "b", Action: "died"},
		{Tick: 3, Day: 1, Source: "c", Action: "socialized"},
	}
	require.NoError(t, db.AppendEvents(batch))

	day1, err := db.EventsForDay(1)
	require.NoError(t, err)
	require.Len(t, day1, 2)
	assert.Equal(t, "died", day1[0].Action)
	assert.Equal(t, "socialized", day1[1].Action)
}

func TestDailyStatsUpsert(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.WriteStats(engine.Stats{
		Day: 3, Population: 14, Deaths: 1, AvgHealth: 88.5, AvgFood: 62.0,
		TotalFood: 140.0, TotalWood: 95.0, ActiveThreats: 1,
	}))
	// Same day written again replaces the row.
	require.NoError(t, db.WriteStats(engine.Stats{
		Day: 3, Population: 13, Deaths: 2, AvgHealth: 80.0, AvgFood: 55.0,
		TotalFood: 120.0, TotalWood: 90.0, ActiveThreats: 0,
	}))

	st, err := db.StatsForDay(3)
	require.NoError(t, err)
	assert.Equal(t, 13, st.Population)
	assert.Equal(t, 2, st.Deaths)
	assert.InDelta(t, 80.0, st.AvgHealth, 1e-9)
}

func TestEmptyBatchIsNoop(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AppendEvents(nil))
	events, err := db.RecentEvents(5)
	require.NoError(t, err)
	assert.Empty(t, events)
}
