package mantra

import (
	"log"
	"math"

	talib "github.com/markcheno/go-talib"
	"github.com/tantralabs/mantra/models"
)

// RealizedVol returns the rolling annualized close to close volatility of a
// price series. The first inTimePeriod entries are zero, talib convention.
func RealizedVol(closes []float64, inTimePeriod int, ticksPerYear float64) []float64 {
	if inTimePeriod <= 1 {
		log.Fatal("Length of the vol window must be greater than 1")
	}
	returns := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] > 0 && closes[i] > 0 {
			returns[i] = math.Log(closes[i] / closes[i-1])
		}
	}
	vols := talib.StdDev(returns, inTimePeriod, 1)
	annualizer := math.Sqrt(ticksPerYear)
	for i := range vols {
		vols[i] = vols[i] * annualizer
	}
	return vols
}

// SmoothVol smooths a raw vol series with an ema so one jumpy tick does not
// whip the quoter's spreads around.
func SmoothVol(vols []float64, length int) []float64 {
	if length <= 1 {
		log.Fatal("Length of the ema must be greater than 1")
	}
	return talib.Ema(vols, length)
}

// NatrVol derives an annualized vol signal from bar ranges, an alternative
// to close to close vol when the feed carries highs and lows.
func NatrVol(ohlcv models.OHLCV, inTimePeriod int, ticksPerYear float64) []float64 {
	natr := talib.Natr(ohlcv.High, ohlcv.Low, ohlcv.Close, inTimePeriod)
	annualizer := math.Sqrt(ticksPerYear)
	vols := make([]float64, len(natr))
	for i := range natr {
		vols[i] = natr[i] / 100 * annualizer
	}
	return vols
}
