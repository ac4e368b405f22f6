package tracker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/vainnor/freq-bridge/models"
)

// Stats is a snapshot of the tracker's counters.
type Stats struct {
	Tracked      int       `json:"tracked"`
	TotalUpdates int64     `json:"total_updates"`
	TotalEvicted int64     `json:"total_evicted"`
	Primary      string    `json:"primary,omitempty"`
	StartTime    time.Time `json:"start_time"`
}

// Tracker keeps the set of live simulator sessions and evicts the ones that
// stop reporting position.
type Tracker struct {
	mu       sync.Mutex
	aircraft map[string]*models.TrackedAircraft
	primary  string
	stale    time.Duration
	onEvict  func(clientID string)
	stats    Stats

	// Overridable for tests
	now func() time.Time
}

// New creates a tracker. onEvict is invoked for every evicted session after
// it has been removed; it may be nil.
func New(staleThreshold time.Duration, onEvict func(clientID string)) *Tracker {
	return &Tracker{
		aircraft: make(map[string]*models.TrackedAircraft),
		stale:    staleThreshold,
		onEvict:  onEvict,
		stats:    Stats{StartTime: time.Now()},
		now:      time.Now,
	}
}

// Update records a position report for a session.
func (t *Tracker) Update(clientID string, status models.AircraftStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.aircraft[clientID] = &models.TrackedAircraft{
		ClientID:    clientID,
		LastUpdated: t.now(),
		Status:      status,
	}
	t.stats.TotalUpdates++
}

// SetPrimary designates a session as the primary one for downstream display.
func (t *Tracker) SetPrimary(clientID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.primary = clientID
}

func (t *Tracker) Primary() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.primary
}

// Run sweeps for stale sessions on a fixed interval until the context is
// cancelled. A fault in one sweep does not stop subsequent ones.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Starting liveness monitor (interval: %v, stale threshold: %v)", interval, t.stale)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.safeSweep()
		}
	}
}

func (t *Tracker) safeSweep() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Error during liveness sweep: %v", r)
		}
	}()
	t.Sweep()
}

// Sweep evicts every session whose last update is older than the stale
// threshold. Eviction clears the primary designation if it pointed at the
// evicted session. It does not remove identity links or touch voice state.
func (t *Tracker) Sweep() {
	t.mu.Lock()
	now := t.now()
	var evicted []string
	for clientID, a := range t.aircraft {
		if now.Sub(a.LastUpdated) > t.stale {
			delete(t.aircraft, clientID)
			if t.primary == clientID {
				t.primary = ""
			}
			t.stats.TotalEvicted++
			evicted = append(evicted, clientID)
		}
	}
	t.mu.Unlock()

	for _, clientID := range evicted {
		log.Printf("Evicted stale session %s", clientID)
		if t.onEvict != nil {
			t.onEvict(clientID)
		}
	}
}

// Stats returns a snapshot of the tracker counters.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.stats
	s.Tracked = len(t.aircraft)
	s.Primary = t.primary
	return s
}
