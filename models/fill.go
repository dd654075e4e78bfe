package models

// Fill reports an execution against one of our resting quotes or a hedge
// order. Amount is signed from our perspective, positive when we buy.
type Fill struct {
	FillID  string
	Tick    int
	Symbol  string
	Amount  float64
	Price   float64
	IsHedge bool
}
