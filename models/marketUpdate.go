package models

// MarketUpdate is one tick's snapshot from the exchange: the underlying
// level, the annualized vol signal, and any newly listed options.
type MarketUpdate struct {
	Tick            int
	UnderlyingPrice float64
	Volatility      float64
	InterestRate    float64
	NewListings     []OptionContract
}
