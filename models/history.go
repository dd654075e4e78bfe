package models

import "time"

// History is one tick's account snapshot, kept for stats and telemetry.
type History struct {
	Tick          int
	Timestamp     time.Time
	Spot          float64
	Cash          float64
	Equity        float64
	RealizedPnl   float64
	UnrealizedPnl float64
	NetDelta      float64
	State         string
}

type BalanceHistory struct {
	Timestamp string  `csv:"timestamp"`
	Tick      int     `csv:"tick"`
	Balance   float64 `csv:"balance"`
	UBalance  float64 `csv:"u_balance"`
}
