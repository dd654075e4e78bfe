package mantra

import (
	"fmt"
	"math"

	"github.com/tantralabs/mantra/models"
)

// Hedger walks aggregate delta back inside the band with underlying orders.
// Inside the band it does nothing, so ordinary delta drift never churns the
// book.
type Hedger struct {
	config models.Config
}

func NewHedger(config models.Config) *Hedger {
	return &Hedger{config: config}
}

// EvaluateHedge returns the order that brings net delta back to the nearest
// band edge, or nil inside the band. A nonzero option position without a
// usable theo makes net delta meaningless, so the hedger returns
// ErrIncompleteRiskPicture instead of hedging blind.
func (h *Hedger) EvaluateHedge(account *models.Account, tick int) (*models.HedgeOrder, error) {
	for symbol, ms := range account.MarketStates {
		if !ms.IsOption() || ms.Position == 0 || ms.Status != models.Open {
			continue
		}
		if ms.OptionTheo == nil || ms.MarkStale {
			return nil, fmt.Errorf("%w: no usable theo for open position %v", models.ErrIncompleteRiskPicture, symbol)
		}
	}
	netDelta := account.NetDelta()
	if math.Abs(netDelta) <= h.config.DeltaLimit {
		return nil, nil
	}
	// Hedge to the nearest edge, never to zero. Integer shares, rounded
	// away from zero so the fill lands at or just inside the edge.
	target := math.Copysign(h.config.DeltaLimit, netDelta)
	amount := target - netDelta
	amount = math.Copysign(math.Ceil(math.Abs(amount)), amount)
	return &models.HedgeOrder{
		Tick:   tick,
		Symbol: account.BaseAsset.Symbol,
		Amount: amount,
		Reason: models.HedgeReasonDeltaBand,
	}, nil
}
