package models

// OptionContract is the stateless listing information for one option on the
// simulated exchange.
type OptionContract struct {
	Symbol     string
	Strike     float64
	ExpiryTick int
	OptionType string // "call" or "put"
	TickSize   float64
	ListedTick int
	Underlying string
}
