package mantra

import (
	"fmt"
	"log"

	"github.com/tantralabs/mantra/database"
	"github.com/tantralabs/mantra/exchanges"
	"github.com/tantralabs/mantra/logger"
	"github.com/tantralabs/mantra/maya"
	"github.com/tantralabs/mantra/models"
	"github.com/tantralabs/mantra/utils"
)

// LoadReplayFeed turns a bar history into a session config: closes become
// the spot path and the configured vol source becomes the snapshot vol
// signal, close to close realized vol unless the config asks for range vol.
// The warmup window is backfilled with the first usable estimate so every
// tick carries a signal.
func LoadReplayFeed(bars []*models.Bar, simConfig maya.Config, volWindow int, emaLength int) maya.Config {
	if len(bars) == 0 {
		log.Fatal("No bars to build a replay feed from")
	}
	logger.Infof("Replaying %v bars from %v to %v\n", len(bars),
		utils.TimestampToTime(int(bars[0].Timestamp)), utils.TimestampToTime(int(bars[len(bars)-1].Timestamp)))
	ohlcv := utils.GetOHLCV(bars)
	raw := RealizedVol(ohlcv.Close, volWindow, simConfig.TicksPerYear)
	if simConfig.VolSource == exchanges.VolSource().Range {
		raw = NatrVol(ohlcv, volWindow, simConfig.TicksPerYear)
	}
	vols := SmoothVol(raw, emaLength)
	firstUsable := 0.
	for _, vol := range vols {
		if vol > 0 {
			firstUsable = vol
			break
		}
	}
	for i := range vols {
		if vols[i] <= 0 {
			vols[i] = firstUsable
		}
	}
	simConfig.Path = ohlcv.Close
	simConfig.VolSignal = vols
	simConfig.StartPrice = ohlcv.Close[0]
	simConfig.NumTicks = len(ohlcv.Close)
	return simConfig
}

// LoadIVReplayFeed replays bars with recorded implied vols as the snapshot
// vol signal. Prints align to bars by timestamp and the last print carries
// forward; ticks before the first print keep the derived signal.
func LoadIVReplayFeed(bars []*models.Bar, ivs []models.ImpliedVol, simConfig maya.Config, volWindow int, emaLength int) maya.Config {
	config := LoadReplayFeed(bars, simConfig, volWindow, emaLength)
	next := 0
	last := 0.
	for i := range bars {
		for next < len(ivs) && int64(ivs[next].Timestamp) <= bars[i].Timestamp {
			last = ivs[next].IV
			next++
		}
		if last > 0 {
			config.VolSignal[i] = last
		}
	}
	return config
}

// LoadDatabaseFeed pulls bars from the bar store, through the local bar
// cache, and builds a replay config from them.
func LoadDatabaseFeed(symbol string, exchange string, interval string, numBars int, simConfig maya.Config, volWindow int, emaLength int) maya.Config {
	bars := database.GetCandlesWithCache(symbol, exchange, interval, numBars, cacheFileName(symbol, exchange, interval))
	return LoadReplayFeed(bars, simConfig, volWindow, emaLength)
}

// LoadImpliedVolFeed pulls bars and the recorded implied vol history for a
// symbol and replays them together.
func LoadImpliedVolFeed(symbol string, exchange string, interval string, numBars int, simConfig maya.Config, volWindow int, emaLength int) maya.Config {
	bars := database.GetCandlesWithCache(symbol, exchange, interval, numBars, cacheFileName(symbol, exchange, interval))
	ivs := database.LoadImpliedVols(symbol, int(bars[0].Timestamp), int(bars[len(bars)-1].Timestamp))
	return LoadIVReplayFeed(bars, ivs, simConfig, volWindow, emaLength)
}

// LoadCSVFeed builds a replay config from a cached csv of bars.
func LoadCSVFeed(fileName string, simConfig maya.Config, volWindow int, emaLength int) maya.Config {
	bars, err := database.LoadCachedBars(fileName)
	if err != nil {
		log.Fatal(err)
	}
	return LoadReplayFeed(bars, simConfig, volWindow, emaLength)
}

// LoadFeed builds the session config for a named feed type: the seeded
// walk as is, a csv replay, or a database replay with a derived or recorded
// vol signal.
func LoadFeed(feedType string, source string, simConfig maya.Config, volWindow int, emaLength int) maya.Config {
	switch feedType {
	case exchanges.FeedType().Walk:
		return simConfig
	case exchanges.FeedType().Replay:
		return LoadCSVFeed(source, simConfig, volWindow, emaLength)
	case exchanges.FeedType().Database:
		return LoadDatabaseFeed(source, simConfig.Info.Exchange, exchanges.BarInterval().Day, simConfig.NumTicks, simConfig, volWindow, emaLength)
	case exchanges.FeedType().ImpliedVol:
		return LoadImpliedVolFeed(source, simConfig.Info.Exchange, exchanges.BarInterval().Day, simConfig.NumTicks, simConfig, volWindow, emaLength)
	default:
		log.Fatalln(feedType, "is not a supported feed type")
	}
	return simConfig
}

func cacheFileName(symbol string, exchange string, interval string) string {
	return fmt.Sprintf("%v_%v_%v_bars.csv", exchange, symbol, interval)
}
