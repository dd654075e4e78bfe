package mantra

import (
	"math"

	"github.com/tantralabs/mantra/models"
	"github.com/tantralabs/mantra/utils"
)

// Quoter turns fresh theos into two sided markets. It holds no state beyond
// the config: everything else it reads comes from the tick's risk snapshot,
// so the same snapshot always produces the same quotes.
type Quoter struct {
	config models.Config
}

func NewQuoter(config models.Config) *Quoter {
	return &Quoter{config: config}
}

// BuildQuote prices one contract's market off its theo and the current risk
// snapshot. The result is either a Quoted market with bid strictly below
// ask, or a Withdrawn variant naming why no market is shown this tick.
func (q *Quoter) BuildQuote(ms *models.MarketState, netDelta float64, tick int) models.Quote {
	quote := models.Quote{
		Symbol: ms.Symbol,
		Tick:   tick,
	}
	if ms.Contract == nil || ms.Contract.ExpiryTick <= tick {
		quote.State = models.Withdrawn
		quote.Reason = models.WithdrawExpired
		return quote
	}
	theo := ms.OptionTheo
	if theo == nil || ms.MarkStale || math.IsNaN(theo.Theo) || math.IsInf(theo.Theo, 0) || theo.Theo < 0 {
		quote.State = models.Withdrawn
		quote.Reason = models.WithdrawNoPricing
		return quote
	}
	quote.Theo = theo.Theo
	quote.Delta = theo.Delta

	// Hard limits: a contract position at its limit is withdrawn until it
	// normalizes. Net delta past the band edge pulls the book for one tick
	// while the hedger walks exposure back to the edge.
	positionRisk := math.Abs(ms.Position) / q.config.PositionLimit
	deltaRisk := math.Abs(netDelta) / q.config.DeltaLimit
	if positionRisk >= 1 || deltaRisk > 1 {
		quote.State = models.Withdrawn
		quote.Reason = models.WithdrawRiskLimit
		quote.Bid = theo.Theo
		quote.Ask = theo.Theo
		return quote
	}

	halfSpread := q.halfSpread(theo, tick)

	// Inventory skew shifts the mid against the position, clamped so the
	// touch never crosses theo: bid <= theo <= ask under maximal skew.
	skew := q.config.InventorySkewWeight * ms.Position * theo.Gamma * theo.UnderlyingPrice
	skew = math.Max(-halfSpread, math.Min(skew, halfSpread))
	mid := theo.Theo - skew

	tickSize := ms.Contract.TickSize
	bid := utils.ToFixed(math.Floor((mid-halfSpread)/tickSize)*tickSize, 8)
	ask := utils.ToFixed(math.Ceil((mid+halfSpread)/tickSize)*tickSize, 8)
	if bid < 0 {
		bid = 0
	}
	if ask < bid+tickSize {
		ask = utils.ToFixed(bid+tickSize, 8)
	}

	// Admission control on size, not price: the risk increasing side
	// shrinks toward one lot as either limit approaches.
	bidSize, askSize := q.config.QuoteSize, q.config.QuoteSize
	size := math.Max(1, math.Floor(q.config.QuoteSize*(1-math.Max(positionRisk, deltaRisk))))
	switch riskSide(ms.Position, netDelta, theo.Delta) {
	case "bid":
		bidSize = size
	case "ask":
		askSize = size
	}

	quote.State = models.Quoted
	quote.Bid = bid
	quote.Ask = ask
	quote.BidSize = bidSize
	quote.AskSize = askSize
	return quote
}

// halfSpread prices the risk of showing a market: wider when the underlying
// is jumpy, wider for high delta contracts, and wider still as expiry nears
// and gamma becomes unhedgeable.
func (q *Quoter) halfSpread(theo *models.OptionTheo, tick int) float64 {
	c := q.config
	jump := c.JumpSpreadWeight * theo.UnderlyingPrice * theo.Volatility * math.Sqrt(1/c.TicksPerYear)
	deltaLoad := c.DeltaSpreadWeight * math.Min(1, math.Abs(theo.Delta))
	spread := c.BaseSpreadAbs + c.BaseSpreadPct*theo.Theo + jump + deltaLoad
	stepsLeft := theo.ExpiryTick - tick
	spread *= 1 + c.TimeSpreadStrength/float64(1+stepsLeft)
	maxSpread := c.MaxSpreadBase + c.MaxSpreadPct*theo.Theo
	return utils.ConstrainFloat(spread, c.MinSpread, maxSpread, 8) / 2
}

// riskSide is the side of a market that grows risk when it trades: the side
// growing the contract position, or with no position on, the side pushing
// net delta further from zero.
func riskSide(position float64, netDelta float64, delta float64) string {
	if position > 0 {
		return "bid"
	}
	if position < 0 {
		return "ask"
	}
	if netDelta*delta > 0 {
		return "bid"
	}
	if netDelta*delta < 0 {
		return "ask"
	}
	return ""
}
