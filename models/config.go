package models

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
)

// The Config struct carries every tunable of a market making session.
type Config struct {
	Name            string  `json:"name"`
	Symbol          string  `json:"symbol"`
	StartingBalance float64 `json:"starting_balance"`
	LogLevel        int     `json:"log_level"`

	// Pricing model
	LatticeSteps int     `json:"lattice_steps"`
	TicksPerYear float64 `json:"ticks_per_year"`
	InterestRate float64 `json:"interest_rate"`

	// Quoting
	BaseSpreadAbs       float64 `json:"base_spread_abs"`
	BaseSpreadPct       float64 `json:"base_spread_pct"`
	JumpSpreadWeight    float64 `json:"jump_spread_weight"`
	DeltaSpreadWeight   float64 `json:"delta_spread_weight"`
	TimeSpreadStrength  float64 `json:"time_spread_strength"`
	MinSpread           float64 `json:"min_spread"`
	MaxSpreadBase       float64 `json:"max_spread_base"`
	MaxSpreadPct        float64 `json:"max_spread_pct"`
	InventorySkewWeight float64 `json:"inventory_skew_weight"`
	QuoteSize           float64 `json:"quote_size"`

	// Risk
	PositionLimit        float64 `json:"position_limit"`
	DeltaLimit           float64 `json:"delta_limit"`
	DrawdownPerTickLimit float64 `json:"drawdown_per_tick_limit"`
	BankruptcyLimit      float64 `json:"bankruptcy_limit"`
	DebounceTicks        int     `json:"debounce_ticks"`
}

// DefaultConfig is a session that quotes sanely out of the box.
func DefaultConfig() Config {
	return Config{
		Name:                 "mantra",
		Symbol:               "SIM",
		StartingBalance:      10000,
		LatticeSteps:         64,
		TicksPerYear:         DefaultTicksPerYear,
		InterestRate:         0,
		BaseSpreadAbs:        0.1,
		BaseSpreadPct:        0.006,
		JumpSpreadWeight:     0.10,
		DeltaSpreadWeight:    0.15,
		TimeSpreadStrength:   1.5,
		MinSpread:            0.03,
		MaxSpreadBase:        10,
		MaxSpreadPct:         0.1,
		InventorySkewWeight:  0.03,
		QuoteSize:            10,
		PositionLimit:        200,
		DeltaLimit:           100,
		DrawdownPerTickLimit: 500,
		BankruptcyLimit:      0,
		DebounceTicks:        10,
	}
}

// Loads a config from a file.
func LoadConfig(fileName string) (config Config) {
	file, _ := ioutil.ReadFile(fileName)
	_ = json.Unmarshal([]byte(file), &config)
	return
}

// Validate rejects configs the engine cannot run with.
func (c Config) Validate() error {
	if c.LatticeSteps < 1 {
		return fmt.Errorf("%w: lattice steps %v", ErrInvalidModelConfig, c.LatticeSteps)
	}
	if c.TicksPerYear <= 0 {
		return fmt.Errorf("%w: ticks per year %v", ErrInvalidModelConfig, c.TicksPerYear)
	}
	if c.MinSpread < 0 {
		return fmt.Errorf("%w: min spread %v", ErrInvalidModelConfig, c.MinSpread)
	}
	if c.MaxSpreadBase < c.MinSpread {
		return fmt.Errorf("%w: max spread %v below min spread %v", ErrInvalidModelConfig, c.MaxSpreadBase, c.MinSpread)
	}
	if c.QuoteSize < 1 {
		return fmt.Errorf("%w: quote size %v", ErrInvalidModelConfig, c.QuoteSize)
	}
	if c.PositionLimit <= 0 {
		return fmt.Errorf("%w: position limit %v", ErrInvalidModelConfig, c.PositionLimit)
	}
	if c.DeltaLimit <= 0 {
		return fmt.Errorf("%w: delta limit %v", ErrInvalidModelConfig, c.DeltaLimit)
	}
	if c.DrawdownPerTickLimit <= 0 {
		return fmt.Errorf("%w: drawdown per tick limit %v", ErrInvalidModelConfig, c.DrawdownPerTickLimit)
	}
	if c.DebounceTicks < 1 {
		return fmt.Errorf("%w: debounce ticks %v", ErrInvalidModelConfig, c.DebounceTicks)
	}
	if c.StartingBalance <= c.BankruptcyLimit {
		return fmt.Errorf("%w: starting balance %v at or below bankruptcy limit %v", ErrInvalidModelConfig, c.StartingBalance, c.BankruptcyLimit)
	}
	return nil
}
