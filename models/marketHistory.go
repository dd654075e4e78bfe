package models

// Summarizes the state of a single instrument at a given tick, including its
// model values. Rows land in telemetry and the cloud db.
type MarketHistory struct {
	Tick             int
	Timestamp        int
	Symbol           string
	AverageCost      float64
	UnrealizedProfit float64
	RealizedProfit   float64
	Position         float64
	Strike           float64
	ExpiryTick       int
	OptionType       string
	Theo             float64
	Delta            float64
	Gamma            float64
	Theta            float64
	Vega             float64
	Volatility       float64
}

// Constructs a new market history row given a market state and tick.
func NewMarketHistory(market MarketState, tick int, timestamp int) MarketHistory {
	history := MarketHistory{
		Tick:             tick,
		Timestamp:        timestamp,
		Symbol:           market.Symbol,
		AverageCost:      market.AverageCost,
		UnrealizedProfit: market.UnrealizedProfit,
		RealizedProfit:   market.RealizedProfit,
		Position:         market.Position,
	}
	if market.IsOption() {
		history.Strike = market.Contract.Strike
		history.ExpiryTick = market.Contract.ExpiryTick
		history.OptionType = market.Contract.OptionType
		if market.OptionTheo != nil {
			history.Theo = market.OptionTheo.Theo
			history.Delta = market.OptionTheo.Delta
			history.Gamma = market.OptionTheo.Gamma
			history.Theta = market.OptionTheo.Theta
			history.Vega = market.OptionTheo.Vega
			history.Volatility = market.OptionTheo.Volatility
		}
	}
	return history
}
