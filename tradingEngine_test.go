package mantra

import (
	"testing"

	"github.com/tantralabs/mantra/maya"
	"github.com/tantralabs/mantra/models"
)

// recordingExchange is a venue double that accepts everything and keeps what
// the engine emitted.
type recordingExchange struct {
	quoteBatches [][]models.Quote
	hedges       []models.HedgeOrder
	statuses     []models.SessionStatus
}

func (e *recordingExchange) StartSession(channels *models.SessionChannels) error { return nil }

func (e *recordingExchange) PlaceQuotes(quotes []models.Quote) error {
	e.quoteBatches = append(e.quoteBatches, quotes)
	return nil
}

func (e *recordingExchange) PlaceHedge(order models.HedgeOrder) error {
	e.hedges = append(e.hedges, order)
	return nil
}

func (e *recordingExchange) PostSessionStatus(status models.SessionStatus) error {
	e.statuses = append(e.statuses, status)
	return nil
}

func newTestEngine(t *testing.T, config models.Config) (*TradingEngine, *models.Maker, *recordingExchange) {
	t.Helper()
	exchange := &recordingExchange{}
	maker := models.NewMaker(config)
	engine := NewTradingEngine(&maker, exchange)
	return &engine, &maker, exchange
}

func testCallListing(expiryTick int) models.OptionContract {
	return models.OptionContract{
		Symbol:     "SIM-100-C",
		Strike:     100,
		ExpiryTick: expiryTick,
		OptionType: "call",
		TickSize:   0.01,
		Underlying: "SIM",
	}
}

func testUpdate(tick int, spot float64, listings ...models.OptionContract) models.MarketUpdate {
	return models.MarketUpdate{
		Tick:            tick,
		UnderlyingPrice: spot,
		Volatility:      0.2,
		NewListings:     listings,
	}
}

func TestRejectsMalformedUpdates(t *testing.T) {
	engine, maker, exchange := newTestEngine(t, models.DefaultConfig())
	if err := engine.processTick(testUpdate(1, 100, testCallListing(30))); err != nil {
		t.Fatal(err)
	}

	if err := engine.processTick(testUpdate(2, -5)); err == nil {
		t.Error("Expected a rejection for a negative spot")
	}
	badVol := testUpdate(2, 100)
	badVol.Volatility = 0
	if err := engine.processTick(badVol); err == nil {
		t.Error("Expected a rejection for a zero vol signal")
	}
	if err := engine.processTick(testUpdate(0, 100)); err == nil {
		t.Error("Expected a rejection for a tick going backwards")
	}

	// The rejected updates left the session where tick one put it.
	if maker.Index != 1 {
		t.Error("Index has changed from", 1, "to", maker.Index)
	}
	if len(exchange.statuses) != 1 {
		t.Error("Rejected updates should post nothing, got", len(exchange.statuses), "statuses")
	}
}

func TestTickIsIdempotent(t *testing.T) {
	/// Replaying an unchanged snapshot with no new fills reprices to the
	/// same theos and republishes the same markets.
	engine, _, exchange := newTestEngine(t, models.DefaultConfig())
	update := testUpdate(1, 100, testCallListing(30))
	if err := engine.processTick(update); err != nil {
		t.Fatal(err)
	}
	if err := engine.processTick(update); err != nil {
		t.Fatal(err)
	}

	if len(exchange.quoteBatches) != 2 {
		t.Fatal("Quote batches have changed from", 2, "to", len(exchange.quoteBatches))
	}
	first, second := exchange.quoteBatches[0], exchange.quoteBatches[1]
	if len(first) != len(second) {
		t.Fatal("Replayed batch size changed from", len(first), "to", len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Error("Quote changed on replay:", first[i], "vs", second[i])
		}
	}
	if len(exchange.hedges) != 0 {
		t.Error("A flat book hedged", len(exchange.hedges), "times")
	}
}

func TestSettlementAtExpiry(t *testing.T) {
	/// Ten calls bought at 2 settle at tick 30 with spot 110: intrinsic 10 a
	/// contract, 80 realized, and the contract leaves the board.
	engine, maker, _ := newTestEngine(t, models.DefaultConfig())
	if err := engine.processTick(testUpdate(1, 100, testCallListing(30))); err != nil {
		t.Fatal(err)
	}
	engine.pendingFills = []models.Fill{{Symbol: "SIM-100-C", Tick: 1, Amount: 10, Price: 2}}
	if err := engine.processTick(testUpdate(2, 100)); err != nil {
		t.Fatal(err)
	}
	if maker.Account.MarketStates["SIM-100-C"].Position != 10 {
		t.Fatal("Position has changed from", 10, "to", maker.Account.MarketStates["SIM-100-C"].Position)
	}

	if err := engine.processTick(testUpdate(30, 110)); err != nil {
		t.Fatal(err)
	}
	ms := maker.Account.MarketStates["SIM-100-C"]
	if ms.Status != models.Expired || ms.Position != 0 {
		t.Error("Expected the contract settled and flat, got", ms.Status, ms.Position)
	}
	if ms.RealizedProfit != 80 {
		t.Error("Settlement pnl has changed from", 80, "to", ms.RealizedProfit)
	}
	if cash := maker.Account.BaseAsset.Quantity; cash != 10080 {
		t.Error("Cash has changed from", 10080, "to", cash)
	}
	if maker.Stats.TotalSettlements != 1 {
		t.Error("Settlements have changed from", 1, "to", maker.Stats.TotalSettlements)
	}
}

func TestHedgeHysteresis(t *testing.T) {
	/// One hedge back to the band edge, then quiet until delta leaves the
	/// band again.
	engine, maker, exchange := newTestEngine(t, models.DefaultConfig())
	maker.Account.MarketStates["SIM"].Position = 150

	if err := engine.processTick(testUpdate(1, 100)); err != nil {
		t.Fatal(err)
	}
	if len(exchange.hedges) != 1 {
		t.Fatal("Hedges have changed from", 1, "to", len(exchange.hedges))
	}
	if exchange.hedges[0].Amount != -50 {
		t.Error("Hedge amount has changed from", -50, "to", exchange.hedges[0].Amount)
	}

	// The hedge fills, delta sits exactly on the edge, nothing more goes out.
	engine.pendingFills = []models.Fill{{Symbol: "SIM", Tick: 1, Amount: -50, Price: 100, IsHedge: true}}
	if err := engine.processTick(testUpdate(2, 100)); err != nil {
		t.Fatal(err)
	}
	if err := engine.processTick(testUpdate(3, 100)); err != nil {
		t.Fatal(err)
	}
	if len(exchange.hedges) != 1 {
		t.Error("Hedges have changed from", 1, "to", len(exchange.hedges))
	}
	if maker.Account.NetDelta() != 100 {
		t.Error("Net delta has changed from", 100, "to", maker.Account.NetDelta())
	}
}

func TestDrawdownPausesAndDebounceRecovers(t *testing.T) {
	config := models.DefaultConfig()
	config.DrawdownPerTickLimit = 50
	config.DebounceTicks = 2
	engine, maker, exchange := newTestEngine(t, config)

	if err := engine.processTick(testUpdate(1, 100, testCallListing(100))); err != nil {
		t.Fatal(err)
	}
	if maker.Account.SessionState != models.Active {
		t.Fatal("Expected an Active session, got", maker.Account.SessionState)
	}

	// Fake a 100 point single tick loss.
	maker.Account.LastEquity = maker.Account.Equity() + 100
	if err := engine.processTick(testUpdate(2, 100)); err != nil {
		t.Fatal(err)
	}
	if maker.Account.SessionState != models.RiskPaused {
		t.Fatal("Expected RiskPaused after the drawdown, got", maker.Account.SessionState)
	}
	paused := exchange.quoteBatches[len(exchange.quoteBatches)-1]
	for _, quote := range paused {
		if quote.State != models.Withdrawn || quote.Reason != models.WithdrawPaused {
			t.Error("Expected the book pulled while paused, got", quote.State, quote.Reason)
		}
	}

	// One safe tick is not enough, the second one reactivates.
	if err := engine.processTick(testUpdate(3, 100)); err != nil {
		t.Fatal(err)
	}
	if maker.Account.SessionState != models.RiskPaused {
		t.Error("Expected RiskPaused after one safe tick, got", maker.Account.SessionState)
	}
	if err := engine.processTick(testUpdate(4, 100)); err != nil {
		t.Fatal(err)
	}
	if maker.Account.SessionState != models.Active {
		t.Error("Expected Active after the debounce window, got", maker.Account.SessionState)
	}
	recovered := exchange.quoteBatches[len(exchange.quoteBatches)-1]
	for _, quote := range recovered {
		if quote.State != models.Quoted {
			t.Error("Expected live markets after recovery, got", quote.State, quote.Reason)
		}
	}
}

func TestHaltIsTerminal(t *testing.T) {
	/// Equity through the bankruptcy limit halts the session; nothing is
	/// ever emitted again after that.
	engine, maker, exchange := newTestEngine(t, models.DefaultConfig())
	if err := engine.processTick(testUpdate(1, 100, testCallListing(30))); err != nil {
		t.Fatal(err)
	}

	maker.Account.BaseAsset.Quantity = -1
	if err := engine.processTick(testUpdate(2, 100)); err != nil {
		t.Fatal(err)
	}
	if maker.Account.SessionState != models.Halted {
		t.Fatal("Expected Halted below the bankruptcy limit, got", maker.Account.SessionState)
	}
	if last := exchange.statuses[len(exchange.statuses)-1]; last.State != models.Halted || last.Reason != models.ReasonBankruptcy {
		t.Error("Bad halt status:", last.State, last.Reason)
	}

	quoteBatches := len(exchange.quoteBatches)
	statuses := len(exchange.statuses)
	hedges := len(exchange.hedges)
	maker.Account.MarketStates["SIM"].Position = 500
	for tick := 3; tick <= 10; tick++ {
		if err := engine.processTick(testUpdate(tick, 100)); err != nil {
			t.Fatal(err)
		}
	}
	if len(exchange.quoteBatches) != quoteBatches || len(exchange.hedges) != hedges || len(exchange.statuses) != statuses {
		t.Error("A halted session kept emitting: quotes", len(exchange.quoteBatches)-quoteBatches,
			"hedges", len(exchange.hedges)-hedges, "statuses", len(exchange.statuses)-statuses)
	}
}

func TestStaleMarkPausesInsteadOfHedgingBlind(t *testing.T) {
	/// An open position that fails to price makes aggregate delta
	/// untrustworthy: the book gets pulled and no hedge goes out.
	engine, maker, exchange := newTestEngine(t, models.DefaultConfig())
	if err := engine.processTick(testUpdate(1, 100, testCallListing(30))); err != nil {
		t.Fatal(err)
	}
	engine.pendingFills = []models.Fill{{Symbol: "SIM-100-C", Tick: 1, Amount: 10, Price: 2}}
	if err := engine.processTick(testUpdate(2, 100)); err != nil {
		t.Fatal(err)
	}
	hedges := len(exchange.hedges)

	// A vol signal the lattice cannot use slips past validation at 1e9
	// annualized, every contract fails to price.
	broken := testUpdate(3, 100)
	broken.Volatility = 1e9
	if err := engine.processTick(broken); err != nil {
		t.Fatal(err)
	}
	if maker.Account.SessionState != models.RiskPaused {
		t.Error("Expected RiskPaused on an incomplete risk picture, got", maker.Account.SessionState)
	}
	if last := exchange.statuses[len(exchange.statuses)-1]; last.Reason != models.ReasonIncomplete {
		t.Error("Pause reason has changed from", models.ReasonIncomplete, "to", last.Reason)
	}
	if len(exchange.hedges) != hedges {
		t.Error("Hedged blind on a stale mark:", len(exchange.hedges)-hedges, "orders")
	}
}

func TestSimSessionIsDeterministic(t *testing.T) {
	/// A full closed loop session against the simulated exchange: same seed,
	/// same fills, same ending balance.
	runOnce := func() (models.Result, *maya.Maya) {
		simConfig := maya.DefaultConfig()
		simConfig.NumTicks = 40
		exchange, err := maya.New(simConfig)
		if err != nil {
			t.Fatal(err)
		}
		maker := models.NewMaker(models.DefaultConfig())
		engine := NewTradingEngine(&maker, exchange)
		return engine.RunSession(), exchange
	}

	result, exchange := runOnce()
	if len(exchange.StatusHistory) != 40 {
		t.Fatal("Statuses have changed from", 40, "to", len(exchange.StatusHistory))
	}
	for _, quote := range exchange.QuoteHistory {
		if quote.State == models.Quoted && quote.Bid >= quote.Ask {
			t.Error("Crossed market in session:", quote.Symbol, quote.Bid, "/", quote.Ask)
		}
	}
	last := exchange.StatusHistory[len(exchange.StatusHistory)-1]
	if result.Balance != last.Equity {
		t.Error("Result balance", result.Balance, "does not match the final status equity", last.Equity)
	}

	again, exchangeAgain := runOnce()
	if again.Balance != result.Balance {
		t.Error("Seeded sessions diverged:", result.Balance, "vs", again.Balance)
	}
	if len(exchangeAgain.FillHistory) != len(exchange.FillHistory) {
		t.Error("Seeded fill streams diverged:", len(exchange.FillHistory), "vs", len(exchangeAgain.FillHistory))
	}
}
