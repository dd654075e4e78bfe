package models

type QuoteState int

const (
	Quoted QuoteState = iota
	Withdrawn
)

var quoteStates = [...]string{
	"Quoted",
	"Withdrawn",
}

func (state QuoteState) String() string {
	return quoteStates[state]
}

// Withdrawal reasons carried on quotes we pull.
const (
	WithdrawRiskLimit = "risk_limit"
	WithdrawNoPricing = "pricing_unavailable"
	WithdrawPaused    = "session_paused"
	WithdrawExpired   = "expired"
)

// Quote is a two sided market for one option, or an explicit withdrawal when
// the engine will not show a market this tick. A quoted state always carries
// bid < ask.
type Quote struct {
	Symbol  string
	Tick    int
	State   QuoteState
	Reason  string // withdrawal reason when State == Withdrawn
	Bid     float64
	Ask     float64
	BidSize float64
	AskSize float64
	Theo    float64 // fair value the quote was centered on
	Delta   float64
}

const HedgeReasonDeltaBand = "delta_band"

// HedgeOrder is an aggressive underlying order sent to pull net delta back
// inside the band.
type HedgeOrder struct {
	Tick   int
	Symbol string
	Amount float64 // signed underlying quantity
	Reason string
}
