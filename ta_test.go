package mantra

import (
	"math"
	"testing"
)

func TestRealizedVolOfAlternatingReturns(t *testing.T) {
	/// A series alternating +1% and -1% log returns has a per tick stddev of
	/// exactly the step, so the annualized vol is step times sqrt(ticks per
	/// year).
	step := math.Log(1.01)
	closes := make([]float64, 60)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] * 1.01
		} else {
			closes[i] = closes[i-1] / 1.01
		}
	}

	vols := RealizedVol(closes, 10, 365)
	expected := step * math.Sqrt(365)
	for _, i := range []int{20, 40, 59} {
		if math.Abs(vols[i]-expected) > 1e-6 {
			t.Errorf("Bad vol at %v: %v, expected %v\n", i, vols[i], expected)
		}
	}
}

func TestRealizedVolOfAFlatSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	vols := RealizedVol(closes, 10, 365)
	for i := 15; i < len(vols); i++ {
		if vols[i] != 0 {
			t.Error("A flat series has vol 0, got", vols[i], "at", i)
		}
	}
}

func TestSmoothVolTracksTheLevel(t *testing.T) {
	vols := make([]float64, 50)
	for i := range vols {
		vols[i] = 0.2
	}
	smoothed := SmoothVol(vols, 5)
	if len(smoothed) != len(vols) {
		t.Fatal("Smoothed length has changed from", len(vols), "to", len(smoothed))
	}
	if math.Abs(smoothed[49]-0.2) > 1e-9 {
		t.Error("An ema of a constant series should hold the level, got", smoothed[49])
	}
}
