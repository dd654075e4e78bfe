package models

type MarketStatus int

const (
	Open MarketStatus = iota
	Expired
	Closed
)

var marketStatuses = [...]string{
	"Open",
	"Expired",
	"Closed",
}

func (status MarketStatus) String() string {
	return marketStatuses[status]
}

// MarketState is the engine's running view of a single instrument: position,
// cost basis, and the latest usable mark.
type MarketState struct {
	Symbol           string
	Contract         *OptionContract // nil for the underlying
	Position         float64
	AverageCost      float64
	UnrealizedProfit float64
	RealizedProfit   float64
	LastPrice        float64 // last usable mark
	MarkTick         int     // tick the mark was computed on
	MarkStale        bool    // set when the mark could not be refreshed
	BestBid          float64
	BestAsk          float64
	Status           MarketStatus

	// Only for options
	OptionTheo *OptionTheo
}

func NewMarketState(symbol string, contract *OptionContract) MarketState {
	return MarketState{
		Symbol:   symbol,
		Contract: contract,
		Status:   Open,
	}
}

// MarkToMarket refreshes the unrealized pnl against a new mark.
func (ms *MarketState) MarkToMarket(mark float64, tick int) {
	ms.LastPrice = mark
	ms.MarkTick = tick
	ms.MarkStale = false
	ms.UnrealizedProfit = ms.Position * (mark - ms.AverageCost)
}

// IsOption reports whether this state tracks a listed option.
func (ms *MarketState) IsOption() bool {
	return ms.Contract != nil
}
