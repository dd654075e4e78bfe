package database

type SessionRecord struct {
	Id            int     `db:"id"`
	Timestamp     int     `db:"timestamp"`
	Tick          int     `db:"tick"`
	SessionID     string  `db:"session_id"`
	Name          string  `db:"name"`
	State         string  `db:"state"`
	Spot          float64 `db:"spot"`
	Cash          float64 `db:"cash"`
	Equity        float64 `db:"equity"`
	RealizedPnl   float64 `db:"realized_pnl"`
	UnrealizedPnl float64 `db:"unrealized_pnl"`
	NetDelta      float64 `db:"net_delta"`
}
