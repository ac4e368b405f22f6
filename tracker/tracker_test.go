package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vainnor/freq-bridge/models"
)

func fixedTime() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestSweepEvictsStaleSessions(t *testing.T) {
	var evicted []string
	tr := New(5*time.Second, func(clientID string) {
		evicted = append(evicted, clientID)
	})

	base := fixedTime()
	tr.now = func() time.Time { return base }
	tr.Update("S-stale", models.AircraftStatus{Callsign: "N123AB"})

	tr.now = func() time.Time { return base.Add(2 * time.Second) }
	tr.Update("S-fresh", models.AircraftStatus{Callsign: "N456CD"})

	// S-stale is 6s old, S-fresh is 4s old at sweep time.
	tr.now = func() time.Time { return base.Add(6 * time.Second) }
	tr.Sweep()

	assert.Equal(t, []string{"S-stale"}, evicted)
	stats := tr.Stats()
	assert.Equal(t, 1, stats.Tracked)
	assert.Equal(t, int64(1), stats.TotalEvicted)
}

func TestSweepClearsPrimaryOnEviction(t *testing.T) {
	tr := New(5*time.Second, nil)

	base := fixedTime()
	tr.now = func() time.Time { return base }
	tr.Update("S1", models.AircraftStatus{})
	tr.SetPrimary("S1")

	tr.now = func() time.Time { return base.Add(6 * time.Second) }
	tr.Sweep()

	assert.Empty(t, tr.Primary())
}

func TestSweepKeepsPrimaryOfLiveSession(t *testing.T) {
	tr := New(5*time.Second, nil)

	base := fixedTime()
	tr.now = func() time.Time { return base }
	tr.Update("S-stale", models.AircraftStatus{})

	tr.now = func() time.Time { return base.Add(4 * time.Second) }
	tr.Update("S-live", models.AircraftStatus{})
	tr.SetPrimary("S-live")

	tr.now = func() time.Time { return base.Add(6 * time.Second) }
	tr.Sweep()

	assert.Equal(t, "S-live", tr.Primary())
}

func TestUpdateRefreshesLiveness(t *testing.T) {
	tr := New(5*time.Second, nil)

	base := fixedTime()
	tr.now = func() time.Time { return base }
	tr.Update("S1", models.AircraftStatus{})

	tr.now = func() time.Time { return base.Add(4 * time.Second) }
	tr.Update("S1", models.AircraftStatus{})

	tr.now = func() time.Time { return base.Add(8 * time.Second) }
	tr.Sweep()

	stats := tr.Stats()
	assert.Equal(t, 1, stats.Tracked, "a refreshed session must survive the sweep")
	assert.Equal(t, int64(2), stats.TotalUpdates)
}

func TestEvictionCallbackFaultDoesNotStopSweeps(t *testing.T) {
	calls := 0
	tr := New(5*time.Second, func(clientID string) {
		calls++
		panic("downstream failure")
	})

	base := fixedTime()
	tr.now = func() time.Time { return base }
	tr.Update("S1", models.AircraftStatus{})

	tr.now = func() time.Time { return base.Add(6 * time.Second) }
	tr.safeSweep()
	require.Equal(t, 1, calls)

	tr.Update("S2", models.AircraftStatus{})
	tr.now = func() time.Time { return base.Add(12 * time.Second) }
	tr.safeSweep()
	assert.Equal(t, 2, calls, "a fault in one sweep must not stop subsequent ones")
}
