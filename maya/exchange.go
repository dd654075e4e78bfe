// Package maya is the simulated options exchange the engine trades against.
// It walks the underlying tick by tick, keeps a rolling board of strikes and
// expiries listed, sends taker flow into our resting quotes, and fills hedge
// orders at the next tick's price with slippage. Everything is seeded, so a
// session replays exactly.
package maya

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/tantralabs/mantra/logger"
	"github.com/tantralabs/mantra/models"
	"github.com/tantralabs/mantra/utils"
)

type Config struct {
	Symbol       string
	StartPrice   float64
	NumTicks     int
	UpStep       float64
	DownStep     float64
	UpProb       float64
	NoiseStdDev  float64
	InterestRate float64
	TicksPerYear float64
	Seed         int64
	Info         models.ExchangeInfo

	// Path and VolSignal, when set, replay a recorded series instead of
	// walking. VolSignal must align with Path when both are given.
	Path      []float64
	VolSignal []float64
	// VolSource picks how replay feeds derive VolSignal when the recorded
	// data carries none. Empty means close to close realized vol.
	VolSource string
}

func DefaultConfig() Config {
	return Config{
		Symbol:       "SIM",
		StartPrice:   100,
		NumTicks:     250,
		UpStep:       1,
		DownStep:     1,
		UpProb:       0.5,
		NoiseStdDev:  0.25,
		InterestRate: 0,
		TicksPerYear: models.DefaultTicksPerYear,
		Seed:         42,
		Info:         models.DefaultExchangeInfo(),
	}
}

// Maya represents the mock exchange.
type Maya struct {
	Config   Config
	Info     models.ExchangeInfo
	walk     *Walk
	flowRng  *rand.Rand
	channels *models.SessionChannels

	tick           int
	spot           float64
	vol            float64
	listings       map[string]models.OptionContract
	quotes         map[string]models.Quote
	quotedThisTick bool
	pendingHedges  []models.HedgeOrder

	QuoteHistory  []models.Quote
	FillHistory   []models.Fill
	StatusHistory []models.SessionStatus
}

// New builds a simulated exchange. The flow rng is seeded apart from the
// walk rng so fill randomness never disturbs the price path.
func New(config Config) (*Maya, error) {
	if config.StartPrice <= 0 {
		return nil, fmt.Errorf("%w: start price %v", models.ErrInvalidModelConfig, config.StartPrice)
	}
	if len(config.Path) > 0 {
		config.NumTicks = len(config.Path)
	}
	if config.NumTicks < 1 {
		return nil, fmt.Errorf("%w: num ticks %v", models.ErrInvalidModelConfig, config.NumTicks)
	}
	if config.TicksPerYear <= 0 {
		return nil, fmt.Errorf("%w: ticks per year %v", models.ErrInvalidModelConfig, config.TicksPerYear)
	}
	if len(config.VolSignal) > 0 && len(config.VolSignal) != len(config.Path) {
		return nil, fmt.Errorf("%w: vol signal length %v does not match path length %v",
			models.ErrInvalidModelConfig, len(config.VolSignal), len(config.Path))
	}
	walk, err := NewWalk(config.UpStep, config.DownStep, config.UpProb, config.NoiseStdDev, config.Seed)
	if err != nil {
		return nil, err
	}
	return &Maya{
		Config:   config,
		Info:     config.Info,
		walk:     walk,
		flowRng:  rand.New(rand.NewSource(config.Seed + 1)),
		spot:     config.StartPrice,
		listings: make(map[string]models.OptionContract),
		quotes:   make(map[string]models.Quote),
	}, nil
}

// StartSession streams the configured number of ticks into the session
// channels, then closes the market update channel.
func (m *Maya) StartSession(channels *models.SessionChannels) error {
	if channels == nil {
		return fmt.Errorf("%w: nil session channels", models.ErrInvalidInput)
	}
	m.channels = channels
	logger.Infof("Starting maya session with %v ticks at spot %v\n", m.Config.NumTicks, m.spot)
	go m.run()
	return nil
}

func (m *Maya) run() {
	for m.tick = 1; m.tick <= m.Config.NumTicks; m.tick++ {
		m.advanceSpot()

		// Fills first: hedge executions from last tick, then flow against
		// whatever markets were resting through the move.
		fills := m.fillHedges()
		fills = append(fills, m.matchFlow()...)
		if len(fills) > 0 {
			m.FillHistory = append(m.FillHistory, fills...)
			m.channels.FillChan <- fills
			<-m.channels.FillChanComplete
		}

		update := models.MarketUpdate{
			Tick:            m.tick,
			UnderlyingPrice: m.spot,
			Volatility:      m.vol,
			InterestRate:    m.Config.InterestRate,
			NewListings:     m.rollListings(),
		}
		m.quotedThisTick = false
		m.channels.MarketUpdateChan <- update
		<-m.channels.MarketUpdateChanComplete
		if !m.quotedThisTick && len(m.quotes) > 0 {
			// A tick with no quote refresh is an implicit withdrawal. A
			// halted maker must not keep trading off its last markets.
			m.quotes = make(map[string]models.Quote)
		}
	}
	close(m.channels.MarketUpdateChan)
}

func (m *Maya) advanceSpot() {
	if len(m.Config.Path) > 0 {
		m.spot = m.Config.Path[m.tick-1]
		if len(m.Config.VolSignal) > 0 {
			m.vol = m.Config.VolSignal[m.tick-1]
		} else {
			m.vol = m.walk.AnnualizedVol(m.spot, m.Config.TicksPerYear)
		}
		return
	}
	m.spot = m.walk.Step(m.spot)
	m.vol = m.walk.AnnualizedVol(m.spot, m.Config.TicksPerYear)
}

// fillHedges executes every hedge order placed last tick at the fresh spot
// adjusted for slippage.
func (m *Maya) fillHedges() []models.Fill {
	if len(m.pendingHedges) == 0 {
		return nil
	}
	var fills []models.Fill
	for _, order := range m.pendingHedges {
		side := "buy"
		if order.Amount < 0 {
			side = "sell"
		}
		price := utils.ToFixed(utils.AdjustForSlippage(m.spot, side, m.Info.Slippage+m.Info.TakerFee), 2)
		fills = append(fills, models.Fill{
			FillID:  uuid.New().String(),
			Tick:    m.tick,
			Symbol:  order.Symbol,
			Amount:  order.Amount,
			Price:   price,
			IsHedge: true,
		})
	}
	m.pendingHedges = nil
	return fills
}

// matchFlow sends unit size taker flow into resting quotes. The chance a
// quote trades decays with its half spread, so wide defensive markets go
// quiet on their own.
func (m *Maya) matchFlow() []models.Fill {
	symbols := make([]string, 0, len(m.quotes))
	for symbol := range m.quotes {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var fills []models.Fill
	for _, symbol := range symbols {
		quote := m.quotes[symbol]
		contract, ok := m.listings[symbol]
		if !ok || contract.ExpiryTick <= m.tick {
			continue
		}
		halfSpread := (quote.Ask - quote.Bid) / 2
		intensity := m.Info.TakerIntensity * math.Exp(-m.Info.FlowDecay*halfSpread)
		if m.flowRng.Float64() >= intensity {
			continue
		}
		fill := models.Fill{
			FillID: uuid.New().String(),
			Tick:   m.tick,
			Symbol: symbol,
		}
		if m.flowRng.Float64() < 0.5 {
			// Flow lifts our ask, we sell. The maker fee comes out of the
			// fill price.
			if quote.AskSize < 1 {
				continue
			}
			fill.Amount = -1
			fill.Price = quote.Ask * (1 - m.Info.MakerFee)
		} else {
			// Flow hits our bid, we buy.
			if quote.BidSize < 1 {
				continue
			}
			fill.Amount = 1
			fill.Price = quote.Bid * (1 + m.Info.MakerFee)
		}
		fills = append(fills, fill)
	}
	return fills
}

// rollListings expires dead contracts and keeps the rolling board of
// strikes and expiries topped up around the current spot. Returns only the
// contracts listed this tick.
func (m *Maya) rollListings() []models.OptionContract {
	for symbol, contract := range m.listings {
		if contract.ExpiryTick <= m.tick {
			delete(m.listings, symbol)
			delete(m.quotes, symbol)
		}
	}

	interval := m.Info.ExpiryIntervalTicks
	var expiries []int
	base := (m.tick / interval) * interval
	for k := 1; k <= m.Info.NumExpiries; k++ {
		expiries = append(expiries, base+k*interval)
	}

	midStrike := utils.RoundToNearest(m.spot, m.Info.OptionStrikeInterval)
	minStrike := midStrike - m.Info.OptionStrikeInterval*math.Floor(float64(m.Info.NumStrikes)/2)
	maxStrike := midStrike + m.Info.OptionStrikeInterval*math.Ceil(float64(m.Info.NumStrikes)/2)
	strikes := utils.Arange(minStrike, maxStrike, m.Info.OptionStrikeInterval)

	var newListings []models.OptionContract
	for _, expiry := range expiries {
		for _, strike := range strikes {
			if strike <= 0 {
				continue
			}
			for _, optionType := range []string{"call", "put"} {
				symbol := utils.GetOptionSymbol(m.Config.Symbol, strike, expiry, optionType)
				if _, ok := m.listings[symbol]; ok {
					continue
				}
				contract := models.OptionContract{
					Symbol:     symbol,
					Strike:     strike,
					ExpiryTick: expiry,
					OptionType: optionType,
					TickSize:   m.Info.OptionTickSize,
					ListedTick: m.tick,
					Underlying: m.Config.Symbol,
				}
				m.listings[symbol] = contract
				newListings = append(newListings, contract)
			}
		}
	}
	return newListings
}

// PlaceQuotes replaces our resting markets. Quoted entries must be listed,
// uncrossed and sized; withdrawals clear the book for that symbol.
func (m *Maya) PlaceQuotes(quotes []models.Quote) error {
	m.quotedThisTick = true
	for _, quote := range quotes {
		if quote.State == models.Withdrawn {
			delete(m.quotes, quote.Symbol)
			m.QuoteHistory = append(m.QuoteHistory, quote)
			continue
		}
		contract, ok := m.listings[quote.Symbol]
		if !ok {
			return fmt.Errorf("%w: quote for unlisted symbol %v", models.ErrInvalidInput, quote.Symbol)
		}
		if contract.ExpiryTick <= m.tick {
			return fmt.Errorf("%w: quote for expired symbol %v", models.ErrInvalidInput, quote.Symbol)
		}
		if quote.Bid < 0 || quote.Ask <= quote.Bid {
			return fmt.Errorf("%w: crossed or negative market %v/%v for %v", models.ErrInvalidInput, quote.Bid, quote.Ask, quote.Symbol)
		}
		if quote.BidSize < 1 || quote.AskSize < 1 {
			return fmt.Errorf("%w: unsized market for %v", models.ErrInvalidInput, quote.Symbol)
		}
		m.quotes[quote.Symbol] = quote
		m.QuoteHistory = append(m.QuoteHistory, quote)
	}
	return nil
}

// PlaceHedge queues an underlying order for execution at the next tick.
func (m *Maya) PlaceHedge(order models.HedgeOrder) error {
	if order.Symbol != m.Config.Symbol {
		return fmt.Errorf("%w: hedge symbol %v is not the underlying %v", models.ErrInvalidInput, order.Symbol, m.Config.Symbol)
	}
	if order.Amount == 0 {
		return fmt.Errorf("%w: zero hedge amount", models.ErrInvalidInput)
	}
	m.pendingHedges = append(m.pendingHedges, order)
	return nil
}

// PostSessionStatus records the engine's risk report for the tick.
func (m *Maya) PostSessionStatus(status models.SessionStatus) error {
	m.StatusHistory = append(m.StatusHistory, status)
	logger.Debugf("Session status at tick %v: %v (%v), equity %.2f\n",
		status.Tick, status.State, status.Reason, status.Equity)
	return nil
}
