package heading

import (
	"math"

	"golang.org/x/exp/slices"

	"github.com/transitlive/transitlive/pkg/transit"
)

// State is the motion memory for one physical vehicle. It survives the feed's
// composite-key churn because it is keyed by physical id, which is the whole
// point: a vehicle that moves to the next breadcrumb entry must not have its
// heading reset.
type State struct {
	Position        Point
	Heading         float64
	HasHeading      bool
	StickySegmentID string
}

// Estimator computes a facing-angle target for every vehicle in the canonical
// snapshot by snapping positions onto nearby road geometry, falling back to
// movement-derived headings when no road matches.
type Estimator struct {
	config    Config
	projector Projector
	segments  SegmentSource

	states  map[int]*State
	targets map[string]float64
}

func NewEstimator(config Config, projector Projector, segments SegmentSource) *Estimator {
	return &Estimator{
		config:    config,
		projector: projector,
		segments:  segments,
		states:    map[int]*State{},
		targets:   map[string]float64{},
	}
}

// Update recomputes heading targets for one canonical snapshot. It runs once
// per snapshot swap, not per render frame - the Smoother handles frames.
// Heading state for physical ids absent from the snapshot is dropped.
func (e *Estimator) Update(snapshot map[string]*transit.VehicleRecord) {
	// Breadcrumbs of one physical vehicle update the same state sequentially,
	// so give the pass a deterministic order.
	records := make([]*transit.VehicleRecord, 0, len(snapshot))
	for _, record := range snapshot {
		records = append(records, record)
	}
	slices.SortFunc(records, func(a, b *transit.VehicleRecord) int {
		if a.PhysicalID != b.PhysicalID {
			return a.PhysicalID - b.PhysicalID
		}
		return a.LastStopOrder - b.LastStopOrder
	})

	seen := map[int]bool{}
	targets := make(map[string]float64, len(records))

	for _, record := range records {
		seen[record.PhysicalID] = true
		targets[record.CompositeID] = e.updateVehicle(record)
	}

	for physicalID := range e.states {
		if !seen[physicalID] {
			delete(e.states, physicalID)
		}
	}

	e.targets = targets
}

// Targets returns the latest per-composite-id heading targets. The returned
// map is a copy, callers may keep it across updates.
func (e *Estimator) Targets() map[string]float64 {
	targets := make(map[string]float64, len(e.targets))
	for compositeID, target := range e.targets {
		targets[compositeID] = target
	}

	return targets
}

// StateFor returns the heading state of one physical vehicle, or nil when the
// vehicle isn't present in the latest snapshot.
func (e *Estimator) StateFor(physicalID int) *State {
	return e.states[physicalID]
}

func (e *Estimator) updateVehicle(record *transit.VehicleRecord) float64 {
	position := e.projector.Project(record.Latitude, record.Longitude)

	state, exists := e.states[record.PhysicalID]
	if !exists {
		state = &State{Position: position}
		e.states[record.PhysicalID] = state
	}

	var movementHeading float64
	hasMovement := false

	if exists {
		dx := position.X - state.Position.X
		dz := position.Z - state.Position.Z

		if dx*dx+dz*dz > e.config.MinMovementMeters*e.config.MinMovementMeters {
			movementHeading = math.Atan2(dz, dx)
			hasMovement = true
		}
	}

	// Preferred heading disambiguates the traversal order of matched segments.
	// Movement wins over memory; a defaulted heading counts as neither.
	preferredHeading := 0.0
	hasPreferred := false

	if hasMovement {
		preferredHeading = movementHeading
		hasPreferred = true
	} else if state.HasHeading {
		preferredHeading = state.Heading
		hasPreferred = true
	}

	matchedSegment, matchedHeading, matched := e.bestSegment(position, preferredHeading, hasPreferred, state.StickySegmentID)

	switch {
	case matched:
		state.Heading = matchedHeading
		state.HasHeading = true
		state.Position = position
		state.StickySegmentID = matchedSegment.ID
	case hasMovement:
		state.Heading = movementHeading
		state.HasHeading = true
		state.Position = position
	default:
		// No road match and no real movement: keep whatever heading we had. A
		// brand new vehicle stays at 0 until something better shows up. The
		// stored position is deliberately left alone so jitter can accumulate
		// past the movement threshold.
	}

	return state.Heading
}

func (e *Estimator) bestSegment(position Point, preferredHeading float64, hasPreferred bool, stickySegmentID string) (Segment, float64, bool) {
	var bestSegment Segment
	bestHeading := 0.0
	bestScore := math.MaxFloat64
	found := false

	for _, segment := range e.segments.QueryNearbySegments(position, e.config.QueryRadiusMeters) {
		segmentHeading := math.Atan2(segment.B.Z-segment.A.Z, segment.B.X-segment.A.X)
		deviation := 0.0

		if hasPreferred {
			// A road segment can be traversed either way - take whichever order
			// sits closer to the preferred heading.
			forward := math.Abs(AngleDiff(segmentHeading, preferredHeading))
			backward := math.Abs(AngleDiff(segmentHeading+math.Pi, preferredHeading))

			if backward < forward {
				segmentHeading = NormalizeAngle(segmentHeading + math.Pi)
				deviation = backward
			} else {
				deviation = forward
			}

			if deviation > e.config.MaxHeadingDeviation {
				continue
			}
		}

		perpendicular := position.DistanceFromSegment(segment.A, segment.B)
		weightedDeviation := deviation * e.config.DeviationWeightMeters

		score := perpendicular*perpendicular + weightedDeviation*weightedDeviation
		if stickySegmentID != "" && segment.ID != stickySegmentID {
			score += e.config.SegmentSwitchPenalty
		}

		if score < bestScore {
			bestSegment = segment
			bestHeading = segmentHeading
			bestScore = score
			found = true
		}
	}

	if !found || bestScore > e.config.ScoreCeiling {
		return Segment{}, 0, false
	}

	return bestSegment, bestHeading, true
}
