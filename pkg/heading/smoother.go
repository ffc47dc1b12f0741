package heading

import "math"

// Smoother rotates a displayed heading toward its target a little every render
// tick. The exponential approach keeps motion organic while the turn rate cap
// stops a big target jump (e.g. across the ±180° wrap) from spinning the
// vehicle instantly.
type Smoother struct {
	// MaxTurnRate bounds rotation, in radians per second.
	MaxTurnRate float64

	// SmoothFactor is the exponential approach rate, per second. Higher values
	// converge faster.
	SmoothFactor float64
}

func NewSmoother() Smoother {
	return Smoother{
		MaxTurnRate:  math.Pi,
		SmoothFactor: 6,
	}
}

// Step advances the displayed heading toward target over dt seconds and
// returns the new displayed heading, normalized into (-π, π].
func (s Smoother) Step(current float64, target float64, dt float64) float64 {
	if dt <= 0 {
		return NormalizeAngle(current)
	}

	difference := AngleDiff(target, current)
	step := difference * (1 - math.Exp(-s.SmoothFactor*dt))

	limit := s.MaxTurnRate * dt
	if step > limit {
		step = limit
	} else if step < -limit {
		step = -limit
	}

	return NormalizeAngle(current + step)
}
