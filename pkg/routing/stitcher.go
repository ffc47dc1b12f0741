package routing

import (
	"context"
	"errors"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/transitlive/transitlive/pkg/transit"
)

const (
	// DefaultMaxWaypointsPerRequest bounds how many waypoints go into a single
	// routing request; longer trips are split into overlapping chunks.
	DefaultMaxWaypointsPerRequest = 80

	// chunkOverlap makes each chunk start this many waypoints before the end
	// of the previous one so the stitched geometry stays continuous.
	chunkOverlap = 2

	// seamScanLimit is how many leading points of the next chunk are scanned
	// for the duplicated overlap region.
	seamScanLimit = 50

	// DefaultSeamTolerance is the coordinate tolerance (degrees) when matching
	// duplicated points at a chunk seam.
	DefaultSeamTolerance = 1e-5
)

// Stitcher turns a sparse ordered stop list into one continuous dense path by
// querying the routing service chunk-wise and joining the results. Any routing
// failure degrades to the straight-line path through the waypoints - routing
// is a refinement, never a requirement.
type Stitcher struct {
	Source                 RouteSource
	MaxWaypointsPerRequest int
	SeamTolerance          float64
}

func NewStitcher(source RouteSource) *Stitcher {
	return &Stitcher{
		Source:                 source,
		MaxWaypointsPerRequest: DefaultMaxWaypointsPerRequest,
		SeamTolerance:          DefaultSeamTolerance,
	}
}

// Path routes through the waypoints (longitude, latitude pairs). On routing
// failure it returns the straight-line fallback with Fallback set - the only
// error cases are fewer than two waypoints and context cancellation, in which
// case the caller must discard the result.
func (s *Stitcher) Path(ctx context.Context, tripID string, waypoints [][]float64) (*transit.RoutedPath, error) {
	if len(waypoints) < 2 {
		return nil, errors.New("need at least two waypoints to route")
	}

	geometry, err := s.routedGeometry(ctx, waypoints)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		log.Warn().
			Err(err).
			Str("trip", tripID).
			Int("waypoints", len(waypoints)).
			Msg("Routing failed, using straight line fallback")

		fallback := make([][]float64, len(waypoints))
		copy(fallback, waypoints)

		return &transit.RoutedPath{TripID: tripID, Coordinates: fallback, Fallback: true}, nil
	}

	return &transit.RoutedPath{TripID: tripID, Coordinates: geometry}, nil
}

func (s *Stitcher) routedGeometry(ctx context.Context, waypoints [][]float64) ([][]float64, error) {
	limit := s.MaxWaypointsPerRequest
	if limit <= chunkOverlap {
		limit = DefaultMaxWaypointsPerRequest
	}

	if len(waypoints) <= limit {
		return s.Source.Route(ctx, waypoints)
	}

	var path [][]float64
	start := 0

	for {
		end := start + limit
		if end > len(waypoints) {
			end = len(waypoints)
		}

		// One failed chunk aborts the whole operation - a partially routed
		// path would silently jump between stops.
		chunk, err := s.Source.Route(ctx, waypoints[start:end])
		if err != nil {
			return nil, err
		}

		path = s.appendChunk(path, chunk)

		if end == len(waypoints) {
			return path, nil
		}

		start = end - chunkOverlap
	}
}

// appendChunk joins the next chunk onto the stitched path, dropping the
// duplicated overlap region: the last leading point of the chunk that sits
// within tolerance of the current path end wins, everything up to and
// including it is discarded.
func (s *Stitcher) appendChunk(path [][]float64, chunk [][]float64) [][]float64 {
	if len(path) == 0 {
		return append(path, chunk...)
	}

	tolerance := s.SeamTolerance
	if tolerance <= 0 {
		tolerance = DefaultSeamTolerance
	}

	lastPoint := path[len(path)-1]

	scan := seamScanLimit
	if len(chunk) < scan {
		scan = len(chunk)
	}

	cut := -1
	for i := 0; i < scan; i++ {
		if math.Abs(chunk[i][0]-lastPoint[0]) <= tolerance && math.Abs(chunk[i][1]-lastPoint[1]) <= tolerance {
			cut = i
		}
	}

	return append(path, chunk[cut+1:]...)
}
