package models

// SessionStatus is the per tick risk report posted back to the exchange:
// the state machine position, the equity snapshot behind it, and any
// pricing errors that were suppressed this tick.
type SessionStatus struct {
	Tick          int
	State         SessionState
	Reason        string
	Cash          float64
	Equity        float64
	RealizedPnl   float64
	UnrealizedPnl float64
	NetDelta      float64
	OpenPositions int
	Errors        []string
}
