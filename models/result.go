package models

// The Result struct contains information about a finished session.
type Result struct {
	Balance     float64 // Ending equity for the session
	DailyReturn float64 // Average per tick return (in percent)
	MaxDD       float64 // Max equity drawdown during the session
	Score       float64 // Sharpe ratio of the equity curve
	Sortino     float64 // Sortino ratio of the equity curve
	PausedTicks int     // Ticks spent in RiskPaused
	Halted      bool    // True when the session ended in Halted
	Fills       int     // Quote fills absorbed
	Hedges      int     // Hedge orders placed
	Params      string  // Maker params for this session
}
