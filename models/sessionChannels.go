package models

// SessionChannels carries the lockstep streams between an exchange and the
// engine. Every send blocks on its Complete twin before the exchange moves
// on, so the engine processes each tick exactly once and in order.
type SessionChannels struct {
	MarketUpdateChan         chan MarketUpdate
	MarketUpdateChanComplete chan error
	FillChan                 chan []Fill
	FillChanComplete         chan error
}

func NewSessionChannels() *SessionChannels {
	return &SessionChannels{
		MarketUpdateChan:         make(chan MarketUpdate),
		MarketUpdateChanComplete: make(chan error),
		FillChan:                 make(chan []Fill),
		FillChanComplete:         make(chan error),
	}
}
