package models

import "errors"

// Sentinel errors shared across the engine. Callers match with errors.Is
// after any amount of %w wrapping.
var (
	// ErrInvalidInput flags malformed inbound data: non-positive spot,
	// negative fill quantities, unknown symbols.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidModelConfig flags unusable model parameters, ex. zero
	// lattice steps or a non-positive tick size.
	ErrInvalidModelConfig = errors.New("invalid model config")

	// ErrPricingUnavailable flags parameter combinations the lattice
	// cannot price, ex. a risk neutral probability outside (0, 1).
	ErrPricingUnavailable = errors.New("pricing unavailable")

	// ErrIncompleteRiskPicture flags a tick on which an open position
	// could not be marked, so aggregate risk is not trustworthy.
	ErrIncompleteRiskPicture = errors.New("incomplete risk picture")

	// ErrBankruptcyBreach flags equity below the bankruptcy limit.
	ErrBankruptcyBreach = errors.New("bankruptcy breach")
)
