package maya

import (
	"errors"
	"math"
	"testing"

	"github.com/tantralabs/mantra/models"
)

func TestWalkRejectsDrift(t *testing.T) {
	if _, err := NewWalk(1, 1, 0.6, 0, 42); !errors.Is(err, models.ErrInvalidModelConfig) {
		t.Error("Expected ErrInvalidModelConfig for a drifting walk, got", err)
	}
	if _, err := NewWalk(2, 1, 1.0/3.0, 0, 42); err != nil {
		t.Error("A 2 up 1 down walk at one third up probability has zero drift, got", err)
	}
	if _, err := NewWalk(-1, 1, 0.5, 0, 42); !errors.Is(err, models.ErrInvalidModelConfig) {
		t.Error("Expected ErrInvalidModelConfig for a negative step, got", err)
	}
	if _, err := NewWalk(1, 1, 0, 0, 42); !errors.Is(err, models.ErrInvalidModelConfig) {
		t.Error("Expected ErrInvalidModelConfig for up probability 0, got", err)
	}
	if _, err := NewWalk(1, 1, 0.5, -0.1, 42); !errors.Is(err, models.ErrInvalidModelConfig) {
		t.Error("Expected ErrInvalidModelConfig for negative noise, got", err)
	}
}

func TestWalkDeterminism(t *testing.T) {
	first, err := NewWalk(1, 1, 0.5, 0.25, 42)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewWalk(1, 1, 0.5, 0.25, 42)
	if err != nil {
		t.Fatal(err)
	}
	spotA, spotB := 100., 100.
	for i := 0; i < 50; i++ {
		spotA = first.Step(spotA)
		spotB = second.Step(spotB)
		if spotA != spotB {
			t.Error("Walks with the same seed diverged at step", i, ":", spotA, "vs", spotB)
			break
		}
	}
}

func TestWalkStepsStayOnGrid(t *testing.T) {
	walk, err := NewWalk(1, 1, 0.5, 0.25, 7)
	if err != nil {
		t.Fatal(err)
	}
	spot := 100.
	for i := 0; i < 200; i++ {
		spot = walk.Step(spot)
		if spot < 0 {
			t.Error("Spot went negative at step", i, ":", spot)
		}
		cents := spot * 100
		if math.Abs(cents-math.Round(cents)) > 1e-6 {
			t.Error("Spot left the two decimal grid at step", i, ":", spot)
		}
	}
}

func TestWalkFloorsAtZero(t *testing.T) {
	walk, err := NewWalk(5, 5, 0.5, 0, 42)
	if err != nil {
		t.Fatal(err)
	}
	spot := 1.
	for i := 0; i < 20; i++ {
		spot = walk.Step(spot)
		if spot < 0 {
			t.Error("Spot went negative at step", i, ":", spot)
		}
	}
}

func TestPerTickStdDev(t *testing.T) {
	walk, err := NewWalk(1, 1, 0.5, 0, 42)
	if err != nil {
		t.Fatal(err)
	}
	if stdDev := walk.PerTickStdDev(); stdDev != 1 {
		t.Error("PerTickStdDev has changed from", 1, "to", stdDev)
	}
	expected := math.Sqrt(365) / 100
	if vol := walk.AnnualizedVol(100, 365); math.Abs(vol-expected) > 1e-12 {
		t.Error("AnnualizedVol has changed from", expected, "to", vol)
	}
	if vol := walk.AnnualizedVol(0, 365); vol != 0 {
		t.Error("AnnualizedVol at zero spot has changed from", 0, "to", vol)
	}
}
