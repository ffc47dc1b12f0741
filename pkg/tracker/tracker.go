package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/transitlive/transitlive/pkg/archive"
	"github.com/transitlive/transitlive/pkg/feed"
	"github.com/transitlive/transitlive/pkg/heading"
	"github.com/transitlive/transitlive/pkg/poller"
	"github.com/transitlive/transitlive/pkg/transit"
)

// Tracker follows the live vehicles of one configured region. Every completed
// poll produces a fresh canonical snapshot and then reruns the heading
// estimator over it, so the two are always consistent with each other.
type Tracker struct {
	Region RegionConfig

	feed      *feed.Client
	estimator *heading.Estimator
	scheduler *poller.Scheduler
	archiver  *archive.Archiver

	mu       sync.RWMutex
	snapshot map[string]*transit.VehicleRecord
	targets  map[string]float64
}

func NewTracker(region RegionConfig, feedClient *feed.Client, segments heading.SegmentSource, archiver *archive.Archiver) *Tracker {
	projector := heading.NewProjector(region.Latitude, region.Longitude)

	tracker := &Tracker{
		Region: region,

		feed:      feedClient,
		estimator: heading.NewEstimator(heading.GetConfig(), projector, segments),
		archiver:  archiver,

		snapshot: map[string]*transit.VehicleRecord{},
		targets:  map[string]float64{},
	}

	tracker.scheduler = poller.NewScheduler(time.Duration(region.PollInterval), tracker.fetch)

	return tracker
}

// Run polls until the context is cancelled.
func (t *Tracker) Run(ctx context.Context) {
	log.Info().
		Str("region", t.Region.Name).
		Dur("interval", time.Duration(t.Region.PollInterval)).
		Int("radius", t.Region.RadiusMeters).
		Msg("Starting region tracker")

	t.scheduler.Run(ctx)
}

func (t *Tracker) Reload(ctx context.Context) error {
	return t.scheduler.ReloadNow(ctx)
}

func (t *Tracker) SetInterval(interval time.Duration) {
	t.scheduler.SetInterval(interval)
}

func (t *Tracker) Status() poller.Status {
	return t.scheduler.Status()
}

// Snapshot returns the latest canonical vehicle map. The map is a copy; the
// records are shared and must be treated as read-only.
func (t *Tracker) Snapshot() map[string]*transit.VehicleRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := make(map[string]*transit.VehicleRecord, len(t.snapshot))
	for compositeID, record := range t.snapshot {
		snapshot[compositeID] = record
	}

	return snapshot
}

// Vehicle looks up one record by composite id.
func (t *Tracker) Vehicle(compositeID string) *transit.VehicleRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.snapshot[compositeID]
}

// Targets returns the latest per-composite-id heading targets in radians.
func (t *Tracker) Targets() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	targets := make(map[string]float64, len(t.targets))
	for compositeID, target := range t.targets {
		targets[compositeID] = target
	}

	return targets
}

// fetch is the scheduler's fetch function: one poll, normalization, heading
// update and snapshot swap. On error nothing is touched - the previous
// snapshot stays visible until the feed recovers.
func (t *Tracker) fetch(ctx context.Context) error {
	rawVehicles, err := t.feed.Vehicles(ctx, t.Region.Latitude, t.Region.Longitude, t.Region.RadiusMeters)
	if err != nil {
		return err
	}

	t.mu.Lock()
	snapshot := feed.Normalize(rawVehicles, t.snapshot, time.Now())
	t.estimator.Update(snapshot)

	t.snapshot = snapshot
	t.targets = t.estimator.Targets()
	t.mu.Unlock()

	log.Debug().
		Str("region", t.Region.Name).
		Int("vehicles", len(snapshot)).
		Msg("Snapshot updated")

	if t.archiver != nil {
		t.archiver.WriteSnapshot(snapshot)
	}

	return nil
}
