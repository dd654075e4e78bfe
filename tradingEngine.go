package mantra

import (
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"time"

	"github.com/fatih/structs"
	client "github.com/influxdata/influxdb1-client/v2"
	"github.com/jinzhu/copier"
	"github.com/tantralabs/mantra/database"
	"github.com/tantralabs/mantra/interfaces"
	"github.com/tantralabs/mantra/logger"
	"github.com/tantralabs/mantra/models"
	"github.com/tantralabs/mantra/settings"
	"github.com/tantralabs/mantra/utils"
	"golang.org/x/sync/errgroup"
)

// TradingEngine owns one market making session. It consumes the lockstep
// market update and fill streams, runs the per tick pricing, quoting and
// hedging passes, and drives the session risk state machine. All account
// mutation happens on the engine goroutine; the quoter and hedger only ever
// see a snapshot taken after the tick's bookkeeping is done.
type TradingEngine struct {
	Maker    *models.Maker
	exchange interfaces.Exchange
	quoter   *Quoter
	hedger   *Hedger
	channels *models.SessionChannels

	startAccount models.Account
	startTime    time.Time
	clockStart   time.Time
	isLive       bool
	settings     settings.Config

	pendingFills  []models.Fill
	tickErrors    []string
	lastHedgeTick int
	pausedTicks   int

	halfSpreadSum   float64
	halfSpreadCount int
	fillEdgeSum     float64
}

// NewTradingEngine wires an engine to a venue. A config the engine cannot
// run with is fatal here, before any tick is processed.
func NewTradingEngine(maker *models.Maker, exchange interfaces.Exchange) TradingEngine {
	if err := maker.Config.Validate(); err != nil {
		log.Fatal(err)
	}
	logger.SetLevelFromInt(maker.LogLevel)
	var startAccount models.Account
	copier.Copy(&startAccount, &maker.Account)
	return TradingEngine{
		Maker:         maker,
		exchange:      exchange,
		quoter:        NewQuoter(maker.Config),
		hedger:        NewHedger(maker.Config),
		startAccount:  startAccount,
		clockStart:    time.Now().UTC(),
		lastHedgeTick: -1,
	}
}

// RunSession drives the session to completion: start the venue's stream,
// process ticks until the market update channel closes, then score what
// happened.
func (t *TradingEngine) RunSession() models.Result {
	t.startTime = time.Now()
	t.channels = models.NewSessionChannels()
	if err := t.exchange.StartSession(t.channels); err != nil {
		log.Fatal(err)
	}
	for {
		select {
		case fills := <-t.channels.FillChan:
			if t.Maker.Account.SessionState != models.Halted {
				t.pendingFills = append(t.pendingFills, fills...)
			}
			t.channels.FillChanComplete <- nil
		case update, ok := <-t.channels.MarketUpdateChan:
			if !ok {
				return t.finishSession()
			}
			t.channels.MarketUpdateChanComplete <- t.processTick(update)
		}
	}
}

// Connect runs a live flavored session: credentials come from a settings
// file or an AWS secret, and every tick is recorded to influx.
func (t *TradingEngine) Connect(settingsFileName string, secret bool, test ...bool) models.Result {
	t.isLive = true
	if len(test) > 0 && test[0] {
		t.isLive = false
	}
	utils.LoadENV(secret)
	t.settings = settings.Load(settingsFileName, secret)
	if t.isLive && t.settings.InfluxURL == "" && os.Getenv("MANTRA_LIVE_DB_URL") == "" {
		log.Fatalln("You need to set the `MANTRA_LIVE_DB_URL` env variable")
	}
	return t.RunSession()
}

// processTick is the whole per tick procedure: book buffered fills, settle
// expiries, reprice the board, mark, step the state machine, then quote and
// hedge off a risk snapshot. The returned error acknowledges the update on
// the lockstep channel; a rejected update leaves all state untouched.
func (t *TradingEngine) processTick(update models.MarketUpdate) error {
	account := &t.Maker.Account
	if account.SessionState == models.Halted {
		// Terminal: keep consuming the stream, emit nothing.
		return nil
	}
	if err := t.validateUpdate(update); err != nil {
		logger.Errorf("Rejecting market update at tick %v: %v\n", update.Tick, err)
		return err
	}
	t.tickErrors = nil
	t.registerListings(update)
	t.applyFills()
	t.settleExpired(update)
	incomplete := t.repriceBoard(update)
	t.markBoard(update)

	equity := account.Equity()
	t.stepSessionState(update.Tick, equity, incomplete)

	if account.SessionState != models.Halted {
		riskState := t.snapshotRisk()
		t.publishQuotes(update, &riskState)
		t.placeHedge(update, &riskState)
	}
	t.postStatus(update, equity)

	if account.SessionState == models.RiskPaused {
		t.pausedTicks++
	}
	t.logState(update, equity)
	t.Maker.Index = update.Tick
	account.LastEquity = equity
	return nil
}

// validateUpdate rejects malformed snapshots. The session keeps its prior
// state and waits for the next update.
func (t *TradingEngine) validateUpdate(update models.MarketUpdate) error {
	if update.Tick < t.Maker.Index {
		return fmt.Errorf("%w: tick %v went backwards from %v", models.ErrInvalidInput, update.Tick, t.Maker.Index)
	}
	if update.UnderlyingPrice <= 0 {
		return fmt.Errorf("%w: underlying price %v", models.ErrInvalidInput, update.UnderlyingPrice)
	}
	if update.Volatility <= 0 {
		return fmt.Errorf("%w: volatility signal %v", models.ErrInvalidInput, update.Volatility)
	}
	return nil
}

func (t *TradingEngine) registerListings(update models.MarketUpdate) {
	for _, contract := range update.NewListings {
		contract := contract
		if _, ok := t.Maker.Account.MarketStates[contract.Symbol]; ok {
			continue
		}
		ms := models.NewMarketState(contract.Symbol, &contract)
		t.Maker.Account.MarketStates[contract.Symbol] = &ms
		logger.Debugf("Listed %v at tick %v\n", contract.Symbol, update.Tick)
	}
}

// applyFills books the fills buffered since the last tick, in arrival
// order. A bad fill is recorded and skipped, never partially applied.
func (t *TradingEngine) applyFills() {
	account := &t.Maker.Account
	for _, fill := range t.pendingFills {
		ms, ok := account.MarketStates[fill.Symbol]
		if !ok {
			t.recordTickError(fmt.Errorf("%w: fill for unknown symbol %v", models.ErrInvalidInput, fill.Symbol))
			continue
		}
		if err := account.ApplyFill(ms, fill.Amount, fill.Price); err != nil {
			t.recordTickError(err)
			continue
		}
		if fill.IsHedge {
			t.Maker.Stats.HedgedQuantity += math.Abs(fill.Amount)
			logger.Debugf("Hedge fill %v %v at %v\n", fill.Amount, fill.Symbol, fill.Price)
			continue
		}
		t.Maker.Stats.TotalFills++
		if fill.Amount > 0 {
			t.Maker.Stats.TotalBuyFills++
		} else {
			t.Maker.Stats.TotalSellFills++
		}
		if ms.OptionTheo != nil {
			// Edge against the theo the quote was centered on, signed in
			// our favor.
			t.fillEdgeSum += fill.Amount * (ms.OptionTheo.Theo - fill.Price)
		}
		logger.Debugf("Fill %v %v at %v\n", fill.Amount, fill.Symbol, fill.Price)
	}
	t.pendingFills = nil
}

// settleExpired cash settles every open contract at or past expiry at its
// intrinsic value against the fresh underlying price, then drops it from
// the live board.
func (t *TradingEngine) settleExpired(update models.MarketUpdate) {
	account := &t.Maker.Account
	for _, symbol := range t.optionSymbols() {
		ms := account.MarketStates[symbol]
		if ms.Contract.ExpiryTick > update.Tick {
			continue
		}
		settlement := math.Max(0, update.UnderlyingPrice-ms.Contract.Strike)
		if ms.Contract.OptionType == "put" {
			settlement = math.Max(0, ms.Contract.Strike-update.UnderlyingPrice)
		}
		hadPosition := ms.Position != 0
		realized := account.SettleExpired(ms, settlement)
		if hadPosition {
			t.Maker.Stats.TotalSettlements++
			t.Maker.Stats.SettlementPnl += realized
			logger.Infof("Settled %v at %v for %v at tick %v\n", symbol, settlement, realized, update.Tick)
		}
	}
}

// repriceBoard refreshes every open contract's theo off the new snapshot.
// Contracts are independent, so pricing fans out and joins before anything
// downstream reads a theo. Returns true when an open position is left
// without a usable mark.
func (t *TradingEngine) repriceBoard(update models.MarketUpdate) bool {
	account := &t.Maker.Account
	symbols := t.optionSymbols()
	states := make([]*models.MarketState, len(symbols))
	for i, symbol := range symbols {
		states[i] = account.MarketStates[symbol]
	}
	pricingErrs := make([]error, len(states))
	steps := t.Maker.Config.LatticeSteps
	group := new(errgroup.Group)
	for i := range states {
		i := i
		ms := states[i]
		group.Go(func() error {
			theo := ms.OptionTheo
			if theo == nil {
				theo = models.NewOptionTheo(ms.Contract.OptionType, update.UnderlyingPrice, ms.Contract.Strike,
					update.Tick, ms.Contract.ExpiryTick, update.InterestRate, update.Volatility)
				theo.TicksPerYear = t.Maker.Config.TicksPerYear
				ms.OptionTheo = theo
			} else {
				theo.UnderlyingPrice = update.UnderlyingPrice
				theo.Volatility = update.Volatility
				theo.InterestRate = update.InterestRate
				theo.CurrentTick = update.Tick
			}
			pricingErrs[i] = theo.CalcTheo(steps)
			return nil
		})
	}
	group.Wait()

	incomplete := false
	for i, err := range pricingErrs {
		ms := states[i]
		if err == nil {
			ms.MarkStale = false
			continue
		}
		ms.MarkStale = true
		t.recordTickError(fmt.Errorf("%v: %v", ms.Symbol, err))
		if ms.Position != 0 {
			incomplete = true
		}
	}
	return incomplete
}

// markBoard refreshes marks and unrealized pnl. A contract that failed to
// price keeps its previous mark, flagged stale, so equity stays best effort
// instead of dropping the position.
func (t *TradingEngine) markBoard(update models.MarketUpdate) {
	for _, ms := range t.Maker.Account.MarketStates {
		if ms.Status != models.Open {
			continue
		}
		if !ms.IsOption() {
			ms.MarkToMarket(update.UnderlyingPrice, update.Tick)
			continue
		}
		if ms.MarkStale || ms.OptionTheo == nil {
			continue
		}
		ms.MarkToMarket(ms.OptionTheo.Theo, update.Tick)
	}
}

// stepSessionState runs the bankruptcy, drawdown and debounce transitions.
// Halted is terminal; RiskPaused needs DebounceTicks consecutive safe ticks
// before quoting again.
func (t *TradingEngine) stepSessionState(tick int, equity float64, incomplete bool) {
	account := &t.Maker.Account
	config := t.Maker.Config
	if equity < config.BankruptcyLimit {
		account.SessionState = models.Halted
		account.SessionReason = models.ReasonBankruptcy
		t.recordTickError(fmt.Errorf("%w: equity %.2f below %.2f", models.ErrBankruptcyBreach, equity, config.BankruptcyLimit))
		logger.Errorf("Session halted at tick %v: equity %.2f breached the bankruptcy limit %.2f\n",
			tick, equity, config.BankruptcyLimit)
		return
	}
	drawdown := account.LastEquity - equity
	switch {
	case incomplete:
		t.pauseSession(tick, models.ReasonIncomplete)
	case drawdown > config.DrawdownPerTickLimit:
		t.pauseSession(tick, models.ReasonDrawdown)
	case account.SessionState == models.RiskPaused:
		account.SafeTickStreak++
		if account.SafeTickStreak >= config.DebounceTicks {
			account.SessionState = models.Active
			account.SessionReason = models.ReasonRecovered
			account.SafeTickStreak = 0
			logger.Infof("Session active again at tick %v after %v safe ticks\n", tick, config.DebounceTicks)
		}
	}
}

func (t *TradingEngine) pauseSession(tick int, reason string) {
	account := &t.Maker.Account
	if account.SessionState != models.RiskPaused {
		logger.Infof("Session risk paused at tick %v: %v\n", tick, reason)
	}
	account.SessionState = models.RiskPaused
	account.SessionReason = reason
	account.SafeTickStreak = 0
}

// snapshotRisk deep copies the account for the quoting and hedging passes.
// They read the copy; every mutation stays on the engine's account.
func (t *TradingEngine) snapshotRisk() models.Account {
	var snapshot models.Account
	copier.Copy(&snapshot, &t.Maker.Account)
	snapshot.MarketStates = make(map[string]*models.MarketState, len(t.Maker.Account.MarketStates))
	for symbol, ms := range t.Maker.Account.MarketStates {
		stateCopy := *ms
		if ms.OptionTheo != nil {
			theoCopy := *ms.OptionTheo
			stateCopy.OptionTheo = &theoCopy
		}
		if ms.Contract != nil {
			contractCopy := *ms.Contract
			stateCopy.Contract = &contractCopy
		}
		snapshot.MarketStates[symbol] = &stateCopy
	}
	return snapshot
}

// publishQuotes shows markets while Active and pulls the whole book while
// RiskPaused. Every withdrawal lands in the tick report under its reason.
func (t *TradingEngine) publishQuotes(update models.MarketUpdate, riskState *models.Account) {
	netDelta := riskState.NetDelta()
	paused := t.Maker.Account.SessionState == models.RiskPaused
	var quotes []models.Quote
	quoted := 0
	for _, symbol := range t.optionSymbols() {
		ms, ok := riskState.MarketStates[symbol]
		if !ok || ms.Contract.ExpiryTick <= update.Tick {
			continue
		}
		var quote models.Quote
		if paused {
			quote = models.Quote{Symbol: symbol, Tick: update.Tick, State: models.Withdrawn, Reason: models.WithdrawPaused}
		} else {
			quote = t.quoter.BuildQuote(ms, netDelta, update.Tick)
		}
		if quote.State == models.Quoted {
			quoted++
			t.halfSpreadSum += (quote.Ask - quote.Bid) / 2
			t.halfSpreadCount++
		} else {
			t.Maker.Stats.WithdrawnQuotes++
			t.recordTickError(fmt.Errorf("quote withdrawn for %v: %v", symbol, quote.Reason))
		}
		quotes = append(quotes, quote)
	}
	if len(quotes) == 0 {
		return
	}
	if err := t.exchange.PlaceQuotes(quotes); err != nil {
		logger.Errorf("Failed to place quotes at tick %v: %v\n", update.Tick, err)
		t.recordTickError(err)
		return
	}
	if quoted > 0 {
		t.Maker.Stats.QuotedTicks++
	}
}

// placeHedge runs the delta band check. RiskPaused still hedges, reducing
// exposure is always allowed; Halted never reaches here. At most one hedge
// goes out per tick, which also makes duplicate update delivery harmless.
func (t *TradingEngine) placeHedge(update models.MarketUpdate, riskState *models.Account) {
	if t.lastHedgeTick >= update.Tick {
		return
	}
	order, err := t.hedger.EvaluateHedge(riskState, update.Tick)
	if err != nil {
		t.recordTickError(fmt.Errorf("hedge skipped: %v", err))
		return
	}
	if order == nil {
		return
	}
	if err := t.exchange.PlaceHedge(*order); err != nil {
		logger.Errorf("Failed to place hedge at tick %v: %v\n", update.Tick, err)
		t.recordTickError(err)
		return
	}
	t.lastHedgeTick = update.Tick
	t.Maker.Stats.TotalHedges++
	logger.Infof("Hedging %v %v at tick %v\n", order.Amount, order.Symbol, update.Tick)
}

func (t *TradingEngine) postStatus(update models.MarketUpdate, equity float64) {
	account := &t.Maker.Account
	openPositions := 0
	for _, ms := range account.MarketStates {
		if ms.Status == models.Open && ms.Position != 0 {
			openPositions++
		}
	}
	status := models.SessionStatus{
		Tick:          update.Tick,
		State:         account.SessionState,
		Reason:        account.SessionReason,
		Cash:          account.BaseAsset.Quantity,
		Equity:        equity,
		RealizedPnl:   account.RealizedProfit(),
		UnrealizedPnl: account.UnrealizedProfit(),
		NetDelta:      account.NetDelta(),
		OpenPositions: openPositions,
		Errors:        t.tickErrors,
	}
	if err := t.exchange.PostSessionStatus(status); err != nil {
		logger.Errorf("Failed to post session status at tick %v: %v\n", update.Tick, err)
	}
}

// logState appends the tick's account snapshot to the session history.
func (t *TradingEngine) logState(update models.MarketUpdate, equity float64) {
	account := &t.Maker.Account
	t.Maker.Timestamp = t.clockStart.Add(time.Duration(update.Tick) * 24 * time.Hour)
	t.Maker.History = append(t.Maker.History, models.History{
		Tick:          update.Tick,
		Timestamp:     t.Maker.Timestamp,
		Spot:          update.UnderlyingPrice,
		Cash:          account.BaseAsset.Quantity,
		Equity:        equity,
		RealizedPnl:   account.RealizedProfit(),
		UnrealizedPnl: account.UnrealizedProfit(),
		NetDelta:      account.NetDelta(),
		State:         account.SessionState.String(),
	})
	if t.isLive {
		t.logLiveState(update, equity)
	}
}

// logLiveState records the tick to influx for the live dashboards.
func (t *TradingEngine) logLiveState(update models.MarketUpdate, equity float64) {
	influx := t.getInfluxClient()
	if influx == nil {
		return
	}
	defer influx.Close()
	account := &t.Maker.Account
	bp, _ := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  "mantra",
		Precision: "us",
	})
	tags := map[string]string{
		"maker_name": t.Maker.Name,
		"account_id": account.AccountID,
		"state_type": "live",
	}
	now := time.Now()

	fields := map[string]interface{}{
		"spot":       update.UnderlyingPrice,
		"volatility": update.Volatility,
		"tick":       update.Tick,
	}
	pt, err := client.NewPoint("market", tags, fields, now)
	if err == nil {
		bp.AddPoint(pt)
	}

	fields = map[string]interface{}{
		"cash":           account.BaseAsset.Quantity,
		"equity":         equity,
		"realized_pnl":   account.RealizedProfit(),
		"unrealized_pnl": account.UnrealizedProfit(),
		"net_delta":      account.NetDelta(),
		"session_state":  account.SessionState.String(),
		"session_reason": account.SessionReason,
	}
	pt, err = client.NewPoint("state", tags, fields, now)
	if err == nil {
		bp.AddPoint(pt)
	}

	for _, symbol := range t.optionSymbols() {
		ms := account.MarketStates[symbol]
		if ms.OptionTheo == nil || ms.Position == 0 {
			continue
		}
		marketTags := map[string]string{
			"maker_name": t.Maker.Name,
			"symbol":     symbol,
		}
		row := models.NewMarketHistory(*ms, update.Tick, int(now.Unix()))
		pt, err = client.NewPoint("market_history", marketTags, structs.Map(row), now)
		if err == nil {
			bp.AddPoint(pt)
		}
	}

	if err := client.Client.Write(influx, bp); err != nil {
		logger.Errorf("Failed to write live state to influx: %v\n", err)
	}
}

// getInfluxClient connects to the live metrics db. Credentials come from
// the session settings, falling back to the environment.
func (t *TradingEngine) getInfluxClient() client.Client {
	influxURL := t.settings.InfluxURL
	if influxURL == "" {
		influxURL = os.Getenv("MANTRA_LIVE_DB_URL")
	}
	if influxURL == "" {
		return nil
	}
	influxUser := t.settings.InfluxUser
	if influxUser == "" {
		influxUser = os.Getenv("MANTRA_LIVE_DB_USER")
	}
	influxPassword := t.settings.InfluxPassword
	if influxPassword == "" {
		influxPassword = os.Getenv("MANTRA_LIVE_DB_PASSWORD")
	}
	influx, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     influxURL,
		Username: influxUser,
		Password: influxPassword,
	})
	if err != nil {
		logger.Errorf("Failed to connect to influx: %v\n", err)
		return nil
	}
	return influx
}

// finishSession computes session stats, scores the equity curve and fills
// in the result.
func (t *TradingEngine) finishSession() models.Result {
	startBalance := t.startAccount.BaseAsset.Quantity
	logger.Infof("Session complete after %v ticks, pnl %.2f off a starting balance of %.2f\n",
		t.Maker.Index, t.Maker.Account.Equity()-startBalance, startBalance)
	if len(t.Maker.History) == 0 {
		return models.Result{}
	}
	if t.Maker.Stats.TotalFills > 0 {
		t.Maker.Stats.AverageFillEdge = t.fillEdgeSum / float64(t.Maker.Stats.TotalFills)
	}
	if t.halfSpreadCount > 0 {
		t.Maker.Stats.AverageHalfSpread = t.halfSpreadSum / float64(t.halfSpreadCount)
	}
	t.Maker.Stats.PercentTicksQuoted = float64(t.Maker.Stats.QuotedTicks) / float64(len(t.Maker.History))
	t.Maker.Stats.PercentTicksPaused = float64(t.pausedTicks) / float64(len(t.Maker.History))

	logStats(t.Maker, t.Maker.History, t.startTime)
	if t.Maker.LogDatabase {
		database.LogSessionHistory(*t.Maker, t.Maker.History)
	}
	t.Maker.Result.PausedTicks = t.pausedTicks
	t.Maker.Result.Halted = t.Maker.Account.SessionState == models.Halted
	t.Maker.Result.Fills = t.Maker.Stats.TotalFills
	t.Maker.Result.Hedges = t.Maker.Stats.TotalHedges
	return t.Maker.Result
}

// optionSymbols returns the open option board in a stable order.
func (t *TradingEngine) optionSymbols() []string {
	var symbols []string
	for symbol, ms := range t.Maker.Account.MarketStates {
		if ms.IsOption() && ms.Status == models.Open {
			symbols = append(symbols, symbol)
		}
	}
	sort.Strings(symbols)
	return symbols
}

func (t *TradingEngine) recordTickError(err error) {
	t.tickErrors = append(t.tickErrors, err.Error())
}
