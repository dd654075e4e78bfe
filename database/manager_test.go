package database

import (
	"path/filepath"
	"testing"

	"github.com/tantralabs/mantra/models"
)

func testBars(timestamps ...int64) []*models.Bar {
	bars := make([]*models.Bar, len(timestamps))
	for i, ts := range timestamps {
		bars[i] = &models.Bar{
			Timestamp: ts,
			Open:      100,
			High:      101,
			Low:       99,
			Close:     100,
			Volume:    10,
		}
	}
	return bars
}

func TestMergeBars(t *testing.T) {
	/// Merging drops duplicate timestamps and keeps the result oldest first,
	/// whatever order the fresh bars arrive in.
	bars := testBars(1000, 2000, 3000)
	fresh := testBars(4000, 2000, 1500)

	merged := MergeBars(bars, fresh)
	if len(merged) != 5 {
		t.Fatal("Merged length has changed from", 5, "to", len(merged))
	}
	expected := []int64{1000, 1500, 2000, 3000, 4000}
	for i, ts := range expected {
		if merged[i].Timestamp != ts {
			t.Error("Bad timestamp at", i, ":", merged[i].Timestamp, ", expected", ts)
		}
	}
}

func TestBarCacheRoundTrip(t *testing.T) {
	cacheFile := filepath.Join(t.TempDir(), "bars.csv")
	bars := testBars(1000, 2000, 3000)
	bars[1].Close = 105.5

	if err := CacheBars(cacheFile, bars); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadCachedBars(cacheFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != len(bars) {
		t.Fatal("Cached length has changed from", len(bars), "to", len(loaded))
	}
	for i := range bars {
		if loaded[i].Timestamp != bars[i].Timestamp || loaded[i].Close != bars[i].Close {
			t.Error("Bad cached bar at", i, ":", loaded[i])
		}
	}
}

func TestLoadCachedBarsMissingFile(t *testing.T) {
	if _, err := LoadCachedBars(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Expected an error for a missing cache file")
	}
}
