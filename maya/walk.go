package maya

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/tantralabs/mantra/models"
	"github.com/tantralabs/mantra/utils"
)

// Walk is the additive binomial price process the simulated exchange drives
// the underlying with: one up or down step per tick plus gaussian noise.
// The step sizes and probability must combine to zero drift.
type Walk struct {
	UpStep      float64
	DownStep    float64
	UpProb      float64
	NoiseStdDev float64

	rng *rand.Rand
}

func NewWalk(upStep, downStep, upProb, noiseStdDev float64, seed int64) (*Walk, error) {
	if upStep <= 0 || downStep <= 0 {
		return nil, fmt.Errorf("%w: walk steps must be positive, got up %v down %v", models.ErrInvalidModelConfig, upStep, downStep)
	}
	if upProb <= 0 || upProb >= 1 {
		return nil, fmt.Errorf("%w: up probability %v outside (0, 1)", models.ErrInvalidModelConfig, upProb)
	}
	if noiseStdDev < 0 {
		return nil, fmt.Errorf("%w: negative noise std dev %v", models.ErrInvalidModelConfig, noiseStdDev)
	}
	drift := upProb*upStep - (1-upProb)*downStep
	if math.Abs(drift) > 1e-9 {
		return nil, fmt.Errorf("%w: walk drift %v per tick, expected zero", models.ErrInvalidModelConfig, drift)
	}
	return &Walk{
		UpStep:      upStep,
		DownStep:    downStep,
		UpProb:      upProb,
		NoiseStdDev: noiseStdDev,
		rng:         rand.New(rand.NewSource(seed)),
	}, nil
}

// Step advances the spot one tick. Prices floor at zero and land on the
// venue's two decimal grid.
func (w *Walk) Step(spot float64) float64 {
	move := -w.DownStep
	if w.rng.Float64() < w.UpProb {
		move = w.UpStep
	}
	move += w.rng.NormFloat64() * w.NoiseStdDev
	next := spot + move
	if next < 0 {
		next = 0
	}
	return utils.ToFixed(next, 2)
}

// PerTickStdDev is the standard deviation of one tick's move in price units.
func (w *Walk) PerTickStdDev() float64 {
	meanSquare := w.UpProb*w.UpStep*w.UpStep + (1-w.UpProb)*w.DownStep*w.DownStep
	return math.Sqrt(meanSquare + w.NoiseStdDev*w.NoiseStdDev)
}

// AnnualizedVol converts the walk's per tick move at the current spot into
// the annualized vol signal published on snapshots.
func (w *Walk) AnnualizedVol(spot float64, ticksPerYear float64) float64 {
	if spot <= 0 {
		return 0
	}
	return w.PerTickStdDev() / spot * math.Sqrt(ticksPerYear)
}
