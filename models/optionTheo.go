package models

import (
	"fmt"
	"math"

	"github.com/chobie/go-gaussian"
)

const DefaultTicksPerYear = 365.

// OptionTheo carries the model state for a single listed option. Prices come
// from a Cox-Ross-Rubinstein binomial lattice; Black-Scholes is kept as a
// closed form cross check.
type OptionTheo struct {
	Strike           float64 // Strike price
	UnderlyingPrice  float64 // Underlying price
	InterestRate     float64 // Annualized risk free rate
	Volatility       float64 // Annualized volatility
	CurrentTick      int     // Current engine tick
	ExpiryTick       int     // Tick at which the option settles
	TicksPerYear     float64 // Calendar mapping, ticks per year
	OptionType       string  // "call" or "put"
	Theo             float64 // Lattice theoretical value
	BlackScholesTheo float64 // Closed form cross check value
	Delta            float64 // Change in theo per unit change in underlying
	Gamma            float64 // Change in delta per unit change in underlying
	Theta            float64 // Change in theo per one tick of decay
	Vega             float64 // Change in theo per +0.01 change in volatility
}

const vegaBump = 0.01

func NewOptionTheo(optionType string, uPrice float64, strike float64,
	currentTick int, expiryTick int, r float64, volatility float64) *OptionTheo {
	return &OptionTheo{
		Strike:          strike,
		UnderlyingPrice: uPrice,
		InterestRate:    r,
		CurrentTick:     currentTick,
		ExpiryTick:      expiryTick,
		TicksPerYear:    DefaultTicksPerYear,
		OptionType:      optionType,
		Volatility:      volatility,
		Theo:            -1,
	}
}

func (o *OptionTheo) String() string {
	return fmt.Sprintf("%v %v with expiry tick %v", o.Strike, o.OptionType, o.ExpiryTick)
}

// GetTimeLeft converts a tick horizon into years.
func GetTimeLeft(currentTick int, expiryTick int, ticksPerYear float64) float64 {
	return float64(expiryTick-currentTick) / ticksPerYear
}

func (o *OptionTheo) timeLeft() float64 {
	return GetTimeLeft(o.CurrentTick, o.ExpiryTick, o.TicksPerYear)
}

// GetExpiryValue is the settlement value of the option at a given
// underlying price.
func (o *OptionTheo) GetExpiryValue(currentPrice float64) float64 {
	expiryValue := 0.
	if o.OptionType == "call" {
		expiryValue = currentPrice - o.Strike
	} else if o.OptionType == "put" {
		expiryValue = o.Strike - currentPrice
	}
	if expiryValue < 0 {
		expiryValue = 0
	}
	return expiryValue
}

// CalcTheo prices the option on a CRR lattice with the given number of steps
// and fills in Theo, Delta, Gamma, Vega and Theta. At or past expiry the
// option is worth intrinsic value and delta collapses to 0 or +-1.
func (o *OptionTheo) CalcTheo(steps int) error {
	if steps < 1 {
		return fmt.Errorf("%w: lattice steps %v < 1", ErrInvalidModelConfig, steps)
	}
	if o.TicksPerYear <= 0 {
		return fmt.Errorf("%w: ticks per year %v", ErrInvalidModelConfig, o.TicksPerYear)
	}
	if o.OptionType != "call" && o.OptionType != "put" {
		return fmt.Errorf("%w: option type %q", ErrInvalidModelConfig, o.OptionType)
	}
	tLeft := o.timeLeft()
	if tLeft <= 0 {
		o.Theo = o.GetExpiryValue(o.UnderlyingPrice)
		o.Delta = 0
		if o.OptionType == "call" && o.UnderlyingPrice > o.Strike {
			o.Delta = 1
		} else if o.OptionType == "put" && o.UnderlyingPrice < o.Strike {
			o.Delta = -1
		}
		o.Gamma = 0
		o.Vega = 0
		o.Theta = 0
		return nil
	}
	if o.UnderlyingPrice <= 0 || o.Strike <= 0 {
		return fmt.Errorf("%w: spot %v, strike %v", ErrInvalidInput, o.UnderlyingPrice, o.Strike)
	}
	if o.Volatility < 0 {
		return fmt.Errorf("%w: volatility %v", ErrInvalidInput, o.Volatility)
	}
	if o.Volatility == 0 {
		return fmt.Errorf("%w: zero volatility", ErrPricingUnavailable)
	}

	theo, delta, gamma, err := o.latticeGreeks(o.UnderlyingPrice, o.Volatility, tLeft, steps)
	if err != nil {
		return err
	}
	o.Theo = theo
	o.Delta = delta
	o.Gamma = gamma

	bumped, err := o.latticeTheo(o.UnderlyingPrice, o.Volatility+vegaBump, tLeft, steps)
	if err != nil {
		return err
	}
	o.Vega = bumped - theo

	decayed := o.GetExpiryValue(o.UnderlyingPrice)
	tickLess := GetTimeLeft(o.CurrentTick+1, o.ExpiryTick, o.TicksPerYear)
	if tickLess > 0 {
		decayed, err = o.latticeTheo(o.UnderlyingPrice, o.Volatility, tickLess, steps)
		if err != nil {
			return err
		}
	}
	o.Theta = decayed - theo
	return nil
}

// latticeTheo rolls a CRR lattice back to the root and returns only the
// theoretical value.
func (o *OptionTheo) latticeTheo(spot float64, vol float64, tLeft float64, steps int) (float64, error) {
	dt := tLeft / float64(steps)
	u := math.Exp(vol * math.Sqrt(dt))
	d := 1 / u
	if u-d < 1e-12 {
		return 0, fmt.Errorf("%w: degenerate lattice move %v", ErrPricingUnavailable, u)
	}
	p := (math.Exp(o.InterestRate*dt) - d) / (u - d)
	if p <= 0 || p >= 1 {
		return 0, fmt.Errorf("%w: risk neutral probability %v outside (0, 1)", ErrPricingUnavailable, p)
	}
	disc := math.Exp(-o.InterestRate * dt)

	values := make([]float64, steps+1)
	for j := 0; j <= steps; j++ {
		values[j] = o.GetExpiryValue(spot * math.Pow(u, float64(j)) * math.Pow(d, float64(steps-j)))
	}
	for i := steps; i >= 1; i-- {
		for j := 0; j < i; j++ {
			values[j] = disc * (p*values[j+1] + (1-p)*values[j])
		}
	}
	return values[0], nil
}

// latticeGreeks prices like latticeTheo but snapshots the first two layers on
// the way back, so delta and gamma come from the same lattice as the theo.
func (o *OptionTheo) latticeGreeks(spot float64, vol float64, tLeft float64, steps int) (theo, delta, gamma float64, err error) {
	dt := tLeft / float64(steps)
	u := math.Exp(vol * math.Sqrt(dt))
	d := 1 / u
	if u-d < 1e-12 {
		return 0, 0, 0, fmt.Errorf("%w: degenerate lattice move %v", ErrPricingUnavailable, u)
	}
	p := (math.Exp(o.InterestRate*dt) - d) / (u - d)
	if p <= 0 || p >= 1 {
		return 0, 0, 0, fmt.Errorf("%w: risk neutral probability %v outside (0, 1)", ErrPricingUnavailable, p)
	}
	disc := math.Exp(-o.InterestRate * dt)

	values := make([]float64, steps+1)
	for j := 0; j <= steps; j++ {
		values[j] = o.GetExpiryValue(spot * math.Pow(u, float64(j)) * math.Pow(d, float64(steps-j)))
	}
	var layer1, layer2 []float64
	if steps == 1 {
		layer1 = []float64{values[0], values[1]}
	}
	if steps == 2 {
		layer2 = []float64{values[0], values[1], values[2]}
	}
	for i := steps; i >= 1; i-- {
		for j := 0; j < i; j++ {
			values[j] = disc * (p*values[j+1] + (1-p)*values[j])
		}
		if i-1 == 2 {
			layer2 = []float64{values[0], values[1], values[2]}
		}
		if i-1 == 1 {
			layer1 = []float64{values[0], values[1]}
		}
	}
	theo = values[0]

	if layer1 != nil {
		delta = (layer1[1] - layer1[0]) / (spot*u - spot*d)
	}
	if layer2 != nil {
		du := (layer2[2] - layer2[1]) / (spot*u*u - spot)
		dd := (layer2[1] - layer2[0]) / (spot - spot*d*d)
		gamma = (du - dd) / ((spot*u*u - spot*d*d) / 2)
	}
	return theo, delta, gamma, nil
}

// CalcBlackScholesTheo calculates the closed form value, used to sanity check
// the lattice. European options only.
func (o *OptionTheo) CalcBlackScholesTheo(calcGreeks bool) {
	tLeft := o.timeLeft()
	if tLeft <= 0 {
		o.BlackScholesTheo = o.GetExpiryValue(o.UnderlyingPrice)
		return
	}
	norm := gaussian.NewGaussian(0, 1)
	td1 := o.calcD1(o.Volatility, tLeft)
	td2 := o.calcD2(o.Volatility, tLeft)
	if o.OptionType == "call" {
		o.BlackScholesTheo = o.UnderlyingPrice*norm.Cdf(td1) - o.Strike*math.Exp(-o.InterestRate*tLeft)*norm.Cdf(td2)
	} else if o.OptionType == "put" {
		o.BlackScholesTheo = o.Strike*math.Exp(-o.InterestRate*tLeft)*norm.Cdf(-td2) - o.UnderlyingPrice*norm.Cdf(-td1)
	}
	if calcGreeks {
		nPrime := norm.Pdf(td1)
		if o.OptionType == "call" {
			o.Delta = norm.Cdf(td1)
		} else if o.OptionType == "put" {
			o.Delta = norm.Cdf(td1) - 1
		}
		o.Gamma = nPrime / (o.UnderlyingPrice * o.Volatility * math.Sqrt(tLeft))
		o.Vega = o.UnderlyingPrice * nPrime * math.Sqrt(tLeft) * vegaBump
	}
}

func (o *OptionTheo) calcD1(volatility float64, tLeft float64) float64 {
	return (math.Log(o.UnderlyingPrice/o.Strike) + (o.InterestRate+math.Pow(volatility, 2)/2)*tLeft) / (volatility * math.Sqrt(tLeft))
}

func (o *OptionTheo) calcD2(volatility float64, tLeft float64) float64 {
	return o.calcD1(volatility, tLeft) - volatility*math.Sqrt(tLeft)
}

// ImpliedVol backs a volatility out of an observed price with Newton-Raphson
// on the closed form.
func (o *OptionTheo) ImpliedVol(observedPrice float64) float64 {
	tLeft := o.timeLeft()
	if tLeft <= 0 || observedPrice <= 0 {
		return 0
	}
	norm := gaussian.NewGaussian(0, 1)
	v := math.Sqrt(2*math.Pi/tLeft) * observedPrice / o.UnderlyingPrice
	for i := 0; i < 100; i++ {
		d1 := o.calcD1(v, tLeft)
		d2 := o.calcD2(v, tLeft)
		vega := o.UnderlyingPrice * norm.Pdf(d1) * math.Sqrt(tLeft)
		if vega < 1e-12 {
			break
		}
		cp := 1.0
		if o.OptionType == "put" {
			cp = -1.0
		}
		theo0 := cp*o.UnderlyingPrice*norm.Cdf(cp*d1) - cp*o.Strike*math.Exp(-o.InterestRate*tLeft)*norm.Cdf(cp*d2)
		v = v - (theo0-observedPrice)/vega
		if math.Abs(theo0-observedPrice) < 1e-10 {
			break
		}
	}
	return v
}
