package mantra

import (
	"errors"
	"math"
	"testing"

	"github.com/tantralabs/mantra/models"
)

func newHedgerTestAccount(t *testing.T, underlyingPosition float64, optionPosition float64, delta float64) *models.Account {
	account := models.NewAccount("SIM", 10000)
	account.MarketStates["SIM"].Position = underlyingPosition
	if optionPosition != 0 {
		contract := models.OptionContract{
			Symbol: "SIM-100-30-C", Strike: 100, ExpiryTick: 30,
			OptionType: "call", TickSize: 0.01, Underlying: "SIM",
		}
		theo := models.NewOptionTheo("call", 100, 100, 0, 30, 0, 0.2)
		if err := theo.CalcTheo(64); err != nil {
			t.Fatal(err)
		}
		theo.Delta = delta
		ms := models.NewMarketState(contract.Symbol, &contract)
		ms.OptionTheo = theo
		ms.Position = optionPosition
		account.MarketStates[contract.Symbol] = &ms
	}
	return &account
}

func TestHedgeInsideBandDoesNothing(t *testing.T) {
	hedger := NewHedger(models.DefaultConfig())
	for _, position := range []float64{0, 50, -50, 100, -100} {
		order, err := hedger.EvaluateHedge(newHedgerTestAccount(t, position, 0, 0), 1)
		if err != nil {
			t.Fatal(err)
		}
		if order != nil {
			t.Error("Expected no hedge at net delta", position, "got", order.Amount)
		}
	}
}

func TestHedgeToTheNearestBandEdge(t *testing.T) {
	/// Outside the band the hedger trades back to the edge, never to zero.
	hedger := NewHedger(models.DefaultConfig())

	order, err := hedger.EvaluateHedge(newHedgerTestAccount(t, 130, 0, 0), 1)
	if err != nil {
		t.Fatal(err)
	}
	if order == nil || order.Amount != -30 {
		t.Fatal("Expected a hedge of -30 shares at net delta 130, got", order)
	}
	if order.Symbol != "SIM" || order.Reason != models.HedgeReasonDeltaBand {
		t.Error("Bad hedge order:", order)
	}

	order, err = hedger.EvaluateHedge(newHedgerTestAccount(t, -130, 0, 0), 1)
	if err != nil {
		t.Fatal(err)
	}
	if order == nil || order.Amount != 30 {
		t.Fatal("Expected a hedge of 30 shares at net delta -130, got", order)
	}
}

func TestHedgeRoundsAwayFromZero(t *testing.T) {
	/// Option deltas make net delta fractional; shares are whole. Rounding
	/// away from zero lands the fill at or just inside the edge.
	hedger := NewHedger(models.DefaultConfig())
	account := newHedgerTestAccount(t, 100, 61, 0.5)
	order, err := hedger.EvaluateHedge(account, 1)
	if err != nil {
		t.Fatal(err)
	}
	if order == nil {
		t.Fatal("Expected a hedge at net delta 130.5")
	}
	if order.Amount != -31 {
		t.Error("Hedge amount has changed from", -31, "to", order.Amount)
	}
	if order.Amount != math.Trunc(order.Amount) {
		t.Error("Hedge amount must be whole shares, got", order.Amount)
	}
}

func TestHedgeCountsOptionDelta(t *testing.T) {
	hedger := NewHedger(models.DefaultConfig())
	// 80 underlying plus 100 half delta calls is 130 net.
	order, err := hedger.EvaluateHedge(newHedgerTestAccount(t, 80, 100, 0.5), 1)
	if err != nil {
		t.Fatal(err)
	}
	if order == nil || order.Amount != -30 {
		t.Error("Expected a hedge of -30 shares, got", order)
	}
}

func TestHedgeRefusesAnIncompleteRiskPicture(t *testing.T) {
	hedger := NewHedger(models.DefaultConfig())

	account := newHedgerTestAccount(t, 500, 100, 0.5)
	account.MarketStates["SIM-100-30-C"].OptionTheo = nil
	if _, err := hedger.EvaluateHedge(account, 1); !errors.Is(err, models.ErrIncompleteRiskPicture) {
		t.Error("Expected ErrIncompleteRiskPicture without a theo, got", err)
	}

	account = newHedgerTestAccount(t, 500, 100, 0.5)
	account.MarketStates["SIM-100-30-C"].MarkStale = true
	if _, err := hedger.EvaluateHedge(account, 1); !errors.Is(err, models.ErrIncompleteRiskPicture) {
		t.Error("Expected ErrIncompleteRiskPicture for a stale mark, got", err)
	}

	// A flat contract with no theo is harmless.
	account = newHedgerTestAccount(t, 50, 100, 0.5)
	account.MarketStates["SIM-100-30-C"].Position = 0
	account.MarketStates["SIM-100-30-C"].OptionTheo = nil
	if _, err := hedger.EvaluateHedge(account, 1); err != nil {
		t.Error("A flat position without a theo should not block hedging, got", err)
	}
}
