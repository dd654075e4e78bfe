package models

// Stats summarizes quoting activity over a finished session.
type Stats struct {
	TotalBuyFills      int
	TotalSellFills     int
	TotalFills         int
	TotalHedges        int
	TotalSettlements   int
	QuotedTicks        int
	WithdrawnQuotes    int
	AverageFillEdge    float64 // Average distance of fills from theo, signed in our favor
	AverageHalfSpread  float64
	HedgedQuantity     float64 // Gross underlying quantity traded by the hedger
	SettlementPnl      float64
	PercentTicksQuoted float64
	PercentTicksPaused float64
}
