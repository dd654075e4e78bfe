package models

import (
	"time"
)

// Maker is where a market making session's state lives: the config it was
// started with, the account it quotes out of, and the rolling state the
// engine mutates tick by tick.
type Maker struct {
	Name             string                 // Identifies the session in logs and telemetry
	Config           Config                 // The tunables this session was started with
	Account          Account                // Cash, positions, and the session risk state
	Index            int                    // Ticks processed so far
	Timestamp        time.Time              // Wall clock mapping of the current tick, when replaying bars
	History          []History              // Per tick account snapshots
	Params           Params                 // Initial params, kept for logging after a parameter search
	Result           Result                 // The result of a finished session
	Stats            Stats                  // Fill and quote statistics for a finished session
	LogStats         bool                   // Export session stats to stats.csv
	LogBacktest      bool                   // Export the session history to balance.csv
	LogCloudBacktest bool                   // Export the session history to the cloud db
	LogDatabase      bool                   // Persist the session history to postgres
	Signals          map[string][]float64   // Signal series logged during the session
	State            map[string]interface{} // Scratch state, useful for logging live indicators
	DataLength       int                    // Bars of history needed before the vol signal is trustworthy
	LogLevel         int
	BacktestLogLevel int
}

// NewMaker wires a Maker with a fresh account at the config's starting
// balance.
func NewMaker(config Config) Maker {
	return Maker{
		Name:     config.Name,
		Config:   config,
		Account:  NewAccount(config.Symbol, config.StartingBalance),
		Signals:  make(map[string][]float64),
		State:    make(map[string]interface{}),
		LogLevel: config.LogLevel,
	}
}
