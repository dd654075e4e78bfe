package database

import (
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/tantralabs/mantra/logger"
	"github.com/tantralabs/mantra/models"
)

var BarData []*models.Bar

func GetBars() []*models.Bar {
	return BarData
}

// MergeBars folds new bars into the running set, dropping duplicate
// timestamps and keeping the result oldest first.
func MergeBars(bars []*models.Bar, newBars []*models.Bar) []*models.Bar {
	timestamps := make(map[int64]bool, len(bars))
	for i := range bars {
		timestamps[bars[i].Timestamp] = true
	}
	for y := range newBars {
		if !timestamps[newBars[y].Timestamp] {
			bars = append(bars, newBars[y])
			timestamps[newBars[y].Timestamp] = true
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	return bars
}

// CacheBars writes bars to a local csv so repeated backtests skip the
// database round trip.
func CacheBars(fileName string, bars []*models.Bar) error {
	file, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()
	return gocsv.MarshalFile(&bars, file)
}

// LoadCachedBars reads a csv written by CacheBars.
func LoadCachedBars(fileName string) ([]*models.Bar, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	bars := []*models.Bar{}
	if err := gocsv.UnmarshalFile(file, &bars); err != nil {
		return nil, err
	}
	return bars, nil
}

// GetCandlesWithCache serves bars from memory or the local csv cache when
// either holds enough history, and otherwise fills both from the database.
// A short csv cache is topped up rather than thrown away.
func GetCandlesWithCache(symbol string, exchange string, interval string, numBars int, cacheFile string) []*models.Bar {
	if bars := GetBars(); len(bars) >= numBars {
		return bars[len(bars)-numBars:]
	}
	cached, err := LoadCachedBars(cacheFile)
	if err == nil && len(cached) >= numBars {
		logger.Infof("Loaded %v cached bars for %v from %v\n", len(cached), symbol, cacheFile)
		BarData = cached[len(cached)-numBars:]
		return BarData
	}
	fresh := GetCandles(symbol, exchange, interval, numBars)
	if err == nil {
		fresh = MergeBars(cached, fresh)
	}
	if len(fresh) > numBars {
		fresh = fresh[len(fresh)-numBars:]
	}
	BarData = fresh
	if err := CacheBars(cacheFile, BarData); err != nil {
		logger.Errorf("Could not cache bars to %v: %v\n", cacheFile, err)
	}
	return BarData
}
