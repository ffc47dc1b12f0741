package tracker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/transitlive/transitlive/pkg/feed"
	"github.com/transitlive/transitlive/pkg/routing"
	"github.com/transitlive/transitlive/pkg/transit"
)

// endpointToleranceMeters is how far the routed geometry's ends may sit from
// the first and last stop before the path is considered suspect.
const endpointToleranceMeters = 500

// TripSelector holds the currently selected trip and its routed path. Only one
// trip is selected at a time; selecting a new one cancels any stitch still in
// flight for the old one so a slow response can never overwrite a newer
// selection.
type TripSelector struct {
	feed     *feed.Client
	stitcher *routing.Stitcher
	cache    *routing.PathCache

	mu         sync.Mutex
	cancel     context.CancelFunc
	generation uint64
	tripID     string
	path       *transit.RoutedPath
}

func NewTripSelector(feedClient *feed.Client, stitcher *routing.Stitcher, cache *routing.PathCache) *TripSelector {
	return &TripSelector{
		feed:     feedClient,
		stitcher: stitcher,
		cache:    cache,
	}
}

// Select makes tripID the current trip and builds its routed path. An empty
// tripID clears the selection. Fetch and stitch run in the calling goroutine;
// a concurrent Select cancels this one, whose partial result is discarded.
func (t *TripSelector) Select(ctx context.Context, tripID string) error {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}

	t.generation++
	generation := t.generation
	t.tripID = tripID
	t.path = nil

	if tripID == "" {
		t.mu.Unlock()
		return nil
	}

	selectCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.mu.Unlock()

	defer cancel()

	if cached, found := t.cache.Get(selectCtx, tripID); found {
		t.storePath(generation, cached)
		return nil
	}

	stops, err := t.feed.TripDetail(selectCtx, tripID)
	if err != nil {
		return err
	}

	if len(stops) < 2 {
		log.Debug().Str("trip", tripID).Int("stops", len(stops)).Msg("Trip has no routable stop list")
		return nil
	}

	waypoints := make([][]float64, 0, len(stops))
	for _, stop := range stops {
		waypoints = append(waypoints, []float64{stop.Longitude, stop.Latitude})
	}

	path, err := t.stitcher.Path(selectCtx, tripID, waypoints)
	if err != nil {
		return err
	}

	checkPathEndpoints(path, stops)

	if !path.Fallback {
		t.cache.Set(context.Background(), path)
	}

	t.storePath(generation, path)

	return nil
}

// Path returns the routed path of the current selection, or nil while no trip
// is selected or the stitch hasn't finished.
func (t *TripSelector) Path() *transit.RoutedPath {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.path
}

func (t *TripSelector) SelectedTrip() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.tripID
}

// storePath publishes the path unless a newer Select has superseded this one.
func (t *TripSelector) storePath(generation uint64, path *transit.RoutedPath) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.generation == generation {
		t.path = path
	}
}

func checkPathEndpoints(path *transit.RoutedPath, stops []transit.TripStop) {
	if len(path.Coordinates) == 0 {
		return
	}

	first := path.Coordinates[0]
	last := path.Coordinates[len(path.Coordinates)-1]

	firstStop := stops[0]
	lastStop := stops[len(stops)-1]

	startGap := transit.NewPointLocation(first[0], first[1]).
		DistanceFrom(transit.NewPointLocation(firstStop.Longitude, firstStop.Latitude))
	endGap := transit.NewPointLocation(last[0], last[1]).
		DistanceFrom(transit.NewPointLocation(lastStop.Longitude, lastStop.Latitude))

	if startGap > endpointToleranceMeters || endGap > endpointToleranceMeters {
		log.Warn().
			Str("trip", path.TripID).
			Float64("startgap", startGap).
			Float64("endgap", endGap).
			Msg("Routed path endpoints far from trip endpoints")
	}
}
