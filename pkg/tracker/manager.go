package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/transitlive/transitlive/pkg/poller"
	"github.com/transitlive/transitlive/pkg/transit"
)

// Manager owns one Tracker per configured region plus the shared trip
// selector, and presents them to the API as a single engine.
type Manager struct {
	Trackers []*Tracker
	Trips    *TripSelector
}

// Run blocks until the context is cancelled and every region tracker has
// stopped.
func (m *Manager) Run(ctx context.Context) {
	trackerPool := pool.New()

	for _, regionTracker := range m.Trackers {
		regionTracker := regionTracker
		trackerPool.Go(func() {
			regionTracker.Run(ctx)
		})
	}

	trackerPool.Wait()
}

// ReloadAll triggers an out-of-band fetch on every region concurrently and
// reports the first failure.
func (m *Manager) ReloadAll(ctx context.Context) error {
	reloadPool := pool.New().WithErrors()

	for _, regionTracker := range m.Trackers {
		regionTracker := regionTracker
		reloadPool.Go(func() error {
			if err := regionTracker.Reload(ctx); err != nil {
				return fmt.Errorf("region %s: %w", regionTracker.Region.Name, err)
			}
			return nil
		})
	}

	return reloadPool.Wait()
}

// Vehicles merges the latest snapshots of every region. Composite ids are
// unique per feed, so regions never collide.
func (m *Manager) Vehicles() map[string]*transit.VehicleRecord {
	vehicles := map[string]*transit.VehicleRecord{}

	for _, regionTracker := range m.Trackers {
		for compositeID, record := range regionTracker.Snapshot() {
			vehicles[compositeID] = record
		}
	}

	return vehicles
}

// Vehicle finds one record by composite id across all regions.
func (m *Manager) Vehicle(compositeID string) *transit.VehicleRecord {
	for _, regionTracker := range m.Trackers {
		if record := regionTracker.Vehicle(compositeID); record != nil {
			return record
		}
	}

	return nil
}

// Targets merges the per-region heading targets.
func (m *Manager) Targets() map[string]float64 {
	targets := map[string]float64{}

	for _, regionTracker := range m.Trackers {
		for compositeID, target := range regionTracker.Targets() {
			targets[compositeID] = target
		}
	}

	return targets
}

// SelectTrip switches the current trip selection and returns its routed path.
func (m *Manager) SelectTrip(ctx context.Context, tripID string) (*transit.RoutedPath, error) {
	if m.Trips == nil {
		return nil, errors.New("trip routing is not configured")
	}

	if err := m.Trips.Select(ctx, tripID); err != nil {
		return nil, err
	}

	return m.Trips.Path(), nil
}

// Statuses returns the scheduler status of every region by name.
func (m *Manager) Statuses() map[string]poller.Status {
	statuses := make(map[string]poller.Status, len(m.Trackers))

	for _, regionTracker := range m.Trackers {
		statuses[regionTracker.Region.Name] = regionTracker.Status()
	}

	return statuses
}
