package models

// The ExchangeInfo struct describes the static shape of the simulated
// exchange: how it lists options and how aggressively flow trades against
// posted quotes.
type ExchangeInfo struct {
	Exchange string

	Slippage       float64 // Slippage incurred on aggressive hedge orders as decimal (i.e. 1% = .01)
	MakerFee       float64 // Fee on passive quote fills, folded into the fill price
	TakerFee       float64 // Fee on aggressive hedge fills, folded into the fill price
	OptionTickSize float64 // Smallest amount by which an option price can vary

	// Listing configs
	OptionStrikeInterval float64 // Spacing of the strike grid
	NumStrikes           int     // Strikes listed around the money per expiry
	ExpiryIntervalTicks  int     // Ticks between consecutive expiries
	NumExpiries          int     // Expiries kept listed at any time

	// Flow configs
	TakerIntensity float64 // Base probability that flow lifts a quote each tick
	FlowDecay      float64 // How fast fill probability decays with the half spread
}

// DefaultExchangeInfo mirrors the listing shape used across tests and
// backtests.
func DefaultExchangeInfo() ExchangeInfo {
	return ExchangeInfo{
		Exchange:             "maya",
		Slippage:             0.0005,
		MakerFee:             0,
		TakerFee:             0.0005,
		OptionTickSize:       0.01,
		OptionStrikeInterval: 5,
		NumStrikes:           10,
		ExpiryIntervalTicks:  30,
		NumExpiries:          2,
		TakerIntensity:       0.7,
		FlowDecay:            1.5,
	}
}
