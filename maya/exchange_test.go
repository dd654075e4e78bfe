package maya

import (
	"math"
	"testing"

	"github.com/tantralabs/mantra/models"
)

const testContractSymbol = "SIM-100-30-C"

func NewTestMaya(t *testing.T) *Maya {
	m, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func ListTestContract(m *Maya) models.OptionContract {
	contract := models.OptionContract{
		Symbol:     testContractSymbol,
		Strike:     100,
		ExpiryTick: 30,
		OptionType: "call",
		TickSize:   0.01,
		ListedTick: 1,
		Underlying: "SIM",
	}
	m.listings[contract.Symbol] = contract
	return contract
}

func TestRollListings(t *testing.T) {
	/// A full board is 11 strikes around the money, calls and puts, for each
	/// listed expiry.
	m := NewTestMaya(t)
	m.tick = 1
	m.spot = 100

	listed := m.rollListings()
	if len(listed) != 44 {
		t.Error("Fresh listings have changed from", 44, "to", len(listed))
	}
	contract, ok := m.listings[testContractSymbol]
	if !ok {
		t.Fatal("Expected the 100 strike call expiring on tick 30 to be listed")
	}
	if contract.Strike != 100 || contract.ExpiryTick != 30 || contract.TickSize != 0.01 {
		t.Error("Bad contract:", contract)
	}

	if relisted := m.rollListings(); len(relisted) != 0 {
		t.Error("Relisting the same tick produced", len(relisted), "contracts")
	}
}

func TestRollListingsExpiresTheFrontBoard(t *testing.T) {
	m := NewTestMaya(t)
	m.tick = 1
	m.spot = 100
	m.rollListings()
	m.quotes[testContractSymbol] = models.Quote{Symbol: testContractSymbol}

	m.tick = 30
	listed := m.rollListings()
	if len(listed) != 22 {
		t.Error("Rolled listings have changed from", 22, "to", len(listed))
	}
	if len(m.listings) != 44 {
		t.Error("Live board has changed from", 44, "to", len(m.listings))
	}
	if _, ok := m.listings[testContractSymbol]; ok {
		t.Error("Expected the tick 30 expiry to leave the board")
	}
	if _, ok := m.quotes[testContractSymbol]; ok {
		t.Error("Expected the expired contract's quote to be cleared")
	}
}

func TestFillHedges(t *testing.T) {
	m := NewTestMaya(t)
	m.tick = 2
	m.spot = 100
	m.pendingHedges = []models.HedgeOrder{
		{Tick: 1, Symbol: "SIM", Amount: 10, Reason: models.HedgeReasonDeltaBand},
		{Tick: 1, Symbol: "SIM", Amount: -10, Reason: models.HedgeReasonDeltaBand},
	}

	fills := m.fillHedges()
	if len(fills) != 2 {
		t.Fatal("Hedge fills have changed from", 2, "to", len(fills))
	}
	// Slippage and the taker fee both load the fill price.
	if fills[0].Price != 100.1 {
		t.Error("Buy hedge price has changed from", 100.1, "to", fills[0].Price)
	}
	if fills[1].Price != 99.9 {
		t.Error("Sell hedge price has changed from", 99.9, "to", fills[1].Price)
	}
	for _, fill := range fills {
		if !fill.IsHedge || fill.Tick != 2 || fill.Symbol != "SIM" {
			t.Error("Bad hedge fill:", fill)
		}
	}
	if len(m.pendingHedges) != 0 {
		t.Error("Expected the hedge queue to drain, got", len(m.pendingHedges))
	}
}

func TestMatchFlowAlwaysLiftsATightQuote(t *testing.T) {
	/// With full taker intensity and no spread decay every resting quote
	/// trades every tick, unit size, at our touch.
	m := NewTestMaya(t)
	m.Info.TakerIntensity = 1
	m.Info.FlowDecay = 0
	m.tick = 5
	m.spot = 100
	ListTestContract(m)
	m.quotes[testContractSymbol] = models.Quote{
		Symbol: testContractSymbol, State: models.Quoted,
		Bid: 4.9, Ask: 5.1, BidSize: 10, AskSize: 10,
	}

	fills := m.matchFlow()
	if len(fills) != 1 {
		t.Fatal("Flow fills have changed from", 1, "to", len(fills))
	}
	fill := fills[0]
	if math.Abs(fill.Amount) != 1 {
		t.Error("Flow fill size has changed from", 1, "to", fill.Amount)
	}
	if fill.Amount == 1 && fill.Price != 4.9 {
		t.Error("A buy fill should price at our bid, got", fill.Price)
	}
	if fill.Amount == -1 && fill.Price != 5.1 {
		t.Error("A sell fill should price at our ask, got", fill.Price)
	}
}

func TestMatchFlowSkipsUnsizedQuotes(t *testing.T) {
	m := NewTestMaya(t)
	m.Info.TakerIntensity = 1
	m.Info.FlowDecay = 0
	m.tick = 5
	ListTestContract(m)
	m.quotes[testContractSymbol] = models.Quote{Symbol: testContractSymbol, State: models.Quoted, Bid: 4.9, Ask: 5.1}

	if fills := m.matchFlow(); len(fills) != 0 {
		t.Error("Unsized quotes filled", len(fills), "times")
	}
}

func TestMatchFlowQuietMarket(t *testing.T) {
	m := NewTestMaya(t)
	m.Info.TakerIntensity = 0
	m.tick = 5
	ListTestContract(m)
	m.quotes[testContractSymbol] = models.Quote{
		Symbol: testContractSymbol, State: models.Quoted,
		Bid: 4.9, Ask: 5.1, BidSize: 10, AskSize: 10,
	}

	if fills := m.matchFlow(); len(fills) != 0 {
		t.Error("A zero intensity market filled", len(fills), "times")
	}
}

func TestPlaceQuotesValidation(t *testing.T) {
	m := NewTestMaya(t)
	m.tick = 5
	ListTestContract(m)

	good := models.Quote{
		Symbol: testContractSymbol, Tick: 5, State: models.Quoted,
		Bid: 4.9, Ask: 5.1, BidSize: 10, AskSize: 10,
	}
	if err := m.PlaceQuotes([]models.Quote{good}); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.quotes[testContractSymbol]; !ok {
		t.Error("Expected the quote to rest on the book")
	}

	unlisted := good
	unlisted.Symbol = "SIM-999-30-C"
	if err := m.PlaceQuotes([]models.Quote{unlisted}); err == nil {
		t.Error("Expected an error for an unlisted symbol")
	}

	crossed := good
	crossed.Bid, crossed.Ask = 5.1, 4.9
	if err := m.PlaceQuotes([]models.Quote{crossed}); err == nil {
		t.Error("Expected an error for a crossed market")
	}

	unsized := good
	unsized.BidSize = 0
	if err := m.PlaceQuotes([]models.Quote{unsized}); err == nil {
		t.Error("Expected an error for an unsized market")
	}

	withdrawal := models.Quote{Symbol: testContractSymbol, Tick: 5, State: models.Withdrawn, Reason: models.WithdrawRiskLimit}
	if err := m.PlaceQuotes([]models.Quote{withdrawal}); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.quotes[testContractSymbol]; ok {
		t.Error("Expected the withdrawal to clear the book")
	}
}

func TestPlaceHedgeValidation(t *testing.T) {
	m := NewTestMaya(t)
	if err := m.PlaceHedge(models.HedgeOrder{Symbol: "OTHER", Amount: 5}); err == nil {
		t.Error("Expected an error for a hedge on a foreign symbol")
	}
	if err := m.PlaceHedge(models.HedgeOrder{Symbol: "SIM", Amount: 0}); err == nil {
		t.Error("Expected an error for a zero quantity hedge")
	}
	if err := m.PlaceHedge(models.HedgeOrder{Symbol: "SIM", Amount: 5}); err != nil {
		t.Fatal(err)
	}
	if len(m.pendingHedges) != 1 {
		t.Error("Hedge queue has changed from", 1, "to", len(m.pendingHedges))
	}
}

func TestSessionStream(t *testing.T) {
	/// Three lockstep ticks: ordered updates, a fresh board on the first one,
	/// then a clean close.
	config := DefaultConfig()
	config.NumTicks = 3
	m, err := New(config)
	if err != nil {
		t.Fatal(err)
	}
	channels := models.NewSessionChannels()
	if err := m.StartSession(channels); err != nil {
		t.Fatal(err)
	}

	var ticks []int
	var firstBoard int
	for update := range channels.MarketUpdateChan {
		ticks = append(ticks, update.Tick)
		if update.Tick == 1 {
			firstBoard = len(update.NewListings)
		}
		if update.UnderlyingPrice <= 0 {
			t.Error("Bad underlying price at tick", update.Tick, ":", update.UnderlyingPrice)
		}
		if update.Volatility <= 0 {
			t.Error("Bad volatility at tick", update.Tick, ":", update.Volatility)
		}
		channels.MarketUpdateChanComplete <- nil
	}

	if len(ticks) != 3 || ticks[0] != 1 || ticks[2] != 3 {
		t.Error("Ticks have changed from [1 2 3] to", ticks)
	}
	if firstBoard != 44 {
		t.Error("First board has changed from", 44, "to", firstBoard)
	}
}

func TestSilentTickClearsRestingQuotes(t *testing.T) {
	/// A tick passing without a quote refresh is an implicit withdrawal. A
	/// maker that goes dark gets filled on the markets that rested through
	/// the next move, then leaves the book entirely.
	config := DefaultConfig()
	config.NumTicks = 6
	config.Info.TakerIntensity = 1
	config.Info.FlowDecay = 0
	m, err := New(config)
	if err != nil {
		t.Fatal(err)
	}
	channels := models.NewSessionChannels()
	if err := m.StartSession(channels); err != nil {
		t.Fatal(err)
	}

	quoted := false
	running := true
	for running {
		select {
		case <-channels.FillChan:
			channels.FillChanComplete <- nil
		case update, ok := <-channels.MarketUpdateChan:
			if !ok {
				running = false
				break
			}
			if !quoted && len(update.NewListings) > 0 {
				contract := update.NewListings[0]
				err := m.PlaceQuotes([]models.Quote{{
					Symbol:  contract.Symbol,
					Tick:    update.Tick,
					State:   models.Quoted,
					Bid:     1,
					Ask:     1.02,
					BidSize: 1,
					AskSize: 1,
				}})
				if err != nil {
					t.Fatal(err)
				}
				quoted = true
			}
			channels.MarketUpdateChanComplete <- nil
		}
	}

	if len(m.FillHistory) != 1 {
		t.Fatal("Expected exactly one fill on the resting market, got", len(m.FillHistory))
	}
	if m.FillHistory[0].Tick != 2 {
		t.Error("Expected the resting market to fill on tick 2, got tick", m.FillHistory[0].Tick)
	}
	if len(m.quotes) != 0 {
		t.Error("Expected the book to be empty after the maker went dark, found", len(m.quotes), "resting quotes")
	}
}
