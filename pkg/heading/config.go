package heading

import (
	"math"
	"os"
	"strconv"
)

// Config holds the estimator's tuning constants. They are empirically tuned
// against real feeds; tests pin the defaults so a change shows up as a diff.
type Config struct {
	// MinMovementMeters is the displacement below which movement is treated as
	// position-fix jitter rather than actual travel.
	MinMovementMeters float64

	// QueryRadiusMeters is how far around the vehicle road segments are
	// considered for snapping.
	QueryRadiusMeters float64

	// MaxHeadingDeviation rejects segments whose direction differs from the
	// preferred heading by more than this cone, so a vehicle never snaps onto a
	// perpendicular cross street.
	MaxHeadingDeviation float64

	// DeviationWeightMeters converts heading deviation (radians) into the same
	// unit as perpendicular distance for scoring.
	DeviationWeightMeters float64

	// SegmentSwitchPenalty is added to the score of every segment that isn't
	// the currently followed one, damping oscillation between two nearly
	// equidistant parallel roads.
	SegmentSwitchPenalty float64

	// ScoreCeiling turns a poor best match into "no usable road match".
	ScoreCeiling float64
}

func DefaultConfig() Config {
	return Config{
		MinMovementMeters:     2.5,
		QueryRadiusMeters:     15,
		MaxHeadingDeviation:   75 * math.Pi / 180,
		DeviationWeightMeters: 8,
		SegmentSwitchPenalty:  100,
		ScoreCeiling:          500,
	}
}

// GetConfig returns the default configuration with any environment overrides
// applied.
func GetConfig() Config {
	config := DefaultConfig()

	overrides := map[string]*float64{
		"TRANSITLIVE_HEADING_MIN_MOVEMENT_METERS":   &config.MinMovementMeters,
		"TRANSITLIVE_HEADING_QUERY_RADIUS_METERS":   &config.QueryRadiusMeters,
		"TRANSITLIVE_HEADING_MAX_DEVIATION_RADIANS": &config.MaxHeadingDeviation,
		"TRANSITLIVE_HEADING_DEVIATION_WEIGHT":      &config.DeviationWeightMeters,
		"TRANSITLIVE_HEADING_SWITCH_PENALTY":        &config.SegmentSwitchPenalty,
		"TRANSITLIVE_HEADING_SCORE_CEILING":         &config.ScoreCeiling,
	}

	for name, target := range overrides {
		if value := os.Getenv(name); value != "" {
			if parsed, err := strconv.ParseFloat(value, 64); err == nil {
				*target = parsed
			}
		}
	}

	return config
}
