package interfaces

import (
	"github.com/tantralabs/mantra/models"
)

// Exchange is the venue surface the engine trades against. The simulated
// exchange implements the full set; replay feeds drive the session half and
// swallow the order flow.
type Exchange interface {
	// StartSession begins streaming market updates and fills into the
	// session channels, one lockstep tick at a time.
	StartSession(channels *models.SessionChannels) error
	// PlaceQuotes replaces our resting markets for the current tick.
	PlaceQuotes(quotes []models.Quote) error
	// PlaceHedge submits an aggressive underlying order, filled at the
	// next tick's price plus slippage.
	PlaceHedge(order models.HedgeOrder) error
	// PostSessionStatus reports the session state machine to the venue.
	PostSessionStatus(status models.SessionStatus) error
}
