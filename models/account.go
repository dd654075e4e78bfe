package models

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

type SessionState int

const (
	Active SessionState = iota
	RiskPaused
	Halted
)

var sessionStates = [...]string{
	"Active",
	"RiskPaused",
	"Halted",
}

func (state SessionState) String() string {
	return sessionStates[state]
}

// Session transition reasons carried on status reports.
const (
	ReasonDrawdown   = "drawdown_limit"
	ReasonIncomplete = "incomplete_risk_picture"
	ReasonBankruptcy = "bankruptcy"
	ReasonRecovered  = "recovered"
)

// Account tracks cash, every instrument's state, and the session risk state
// machine. Cash only moves when pnl is realized, so equity is always
// cash + the sum of unrealized pnl.
type Account struct {
	AccountID    string
	BaseAsset    Asset // cash
	MarketStates map[string]*MarketState

	SessionState   SessionState
	SessionReason  string
	SafeTickStreak int // consecutive clean ticks while paused
	LastEquity     float64
}

func NewAccount(baseSymbol string, balance float64) Account {
	accountID := baseSymbol + "_" + strconv.Itoa(int(time.Now().UTC().UnixNano()/1000000))
	baseAsset := Asset{
		Symbol:   baseSymbol,
		Quantity: balance,
	}
	account := Account{
		AccountID:    accountID,
		BaseAsset:    baseAsset,
		MarketStates: make(map[string]*MarketState),
		SessionState: Active,
		LastEquity:   balance,
	}
	underlyingState := NewMarketState(baseSymbol, nil)
	account.MarketStates[baseSymbol] = &underlyingState
	return account
}

// ApplyFill books a signed fill into a market state. Realized pnl moves cash
// immediately; entries and size increases only move the average cost.
func (a *Account) ApplyFill(ms *MarketState, amount float64, price float64) error {
	if amount == 0 {
		return fmt.Errorf("%w: zero fill quantity for %v", ErrInvalidInput, ms.Symbol)
	}
	if price < 0 {
		return fmt.Errorf("%w: negative fill price %v for %v", ErrInvalidInput, price, ms.Symbol)
	}
	position := ms.Position
	adding := position == 0 || (position > 0) == (amount > 0)
	if adding {
		total := position + amount
		ms.AverageCost = (math.Abs(position)*ms.AverageCost + math.Abs(amount)*price) / math.Abs(total)
		ms.Position = total
		return nil
	}
	if math.Abs(amount) <= math.Abs(position) {
		// Reducing or closing: realize pnl on the closed quantity.
		realized := -amount * (price - ms.AverageCost)
		a.BaseAsset.Quantity += realized
		ms.RealizedProfit += realized
		ms.Position = position + amount
		if ms.Position == 0 {
			ms.AverageCost = 0
			ms.UnrealizedProfit = 0
		}
		return nil
	}
	// Flipping through zero: close the whole position, open the rest at the
	// fill price.
	realized := position * (price - ms.AverageCost)
	a.BaseAsset.Quantity += realized
	ms.RealizedProfit += realized
	ms.Position = position + amount
	ms.AverageCost = price
	return nil
}

// SettleExpired cash settles an expired option at its settlement price and
// returns the realized amount.
func (a *Account) SettleExpired(ms *MarketState, settlementPrice float64) float64 {
	realized := ms.Position * (settlementPrice - ms.AverageCost)
	a.BaseAsset.Quantity += realized
	ms.RealizedProfit += realized
	ms.Position = 0
	ms.AverageCost = 0
	ms.UnrealizedProfit = 0
	ms.LastPrice = settlementPrice
	ms.Status = Expired
	return realized
}

// Equity is cash plus the unrealized pnl of every open position.
func (a *Account) Equity() float64 {
	equity := a.BaseAsset.Quantity
	for _, ms := range a.MarketStates {
		if ms.Status == Open && ms.Position != 0 {
			equity += ms.UnrealizedProfit
		}
	}
	return equity
}

// NetDelta aggregates underlying exposure: the underlying position counts
// one for one, each option counts position times model delta.
func (a *Account) NetDelta() float64 {
	netDelta := 0.
	for _, ms := range a.MarketStates {
		if ms.Position == 0 || ms.Status != Open {
			continue
		}
		if ms.IsOption() {
			if ms.OptionTheo != nil {
				netDelta += ms.Position * ms.OptionTheo.Delta
			}
		} else {
			netDelta += ms.Position
		}
	}
	return netDelta
}

// RealizedProfit sums realized pnl across all instruments.
func (a *Account) RealizedProfit() float64 {
	realized := 0.
	for _, ms := range a.MarketStates {
		realized += ms.RealizedProfit
	}
	return realized
}

// UnrealizedProfit sums unrealized pnl across open positions.
func (a *Account) UnrealizedProfit() float64 {
	unrealized := 0.
	for _, ms := range a.MarketStates {
		if ms.Status == Open && ms.Position != 0 {
			unrealized += ms.UnrealizedProfit
		}
	}
	return unrealized
}
