package exchanges

import (
	"errors"
	"log"

	"github.com/tantralabs/mantra/models"
)

// LoadExchangeInfo returns the listing and flow shape for a supported
// exchange profile.
func LoadExchangeInfo(exchange string) (models.ExchangeInfo, error) {
	switch exchange {
	case "maya":
		return models.DefaultExchangeInfo(), nil
	case "maya-dense":
		// A denser board: more strikes, tighter spacing, an extra expiry.
		return models.ExchangeInfo{
			Exchange:             "maya-dense",
			Slippage:             0.0005,
			MakerFee:             0,
			TakerFee:             0.0005,
			OptionTickSize:       0.01,
			OptionStrikeInterval: 2.5,
			NumStrikes:           20,
			ExpiryIntervalTicks:  30,
			NumExpiries:          3,
			TakerIntensity:       0.7,
			FlowDecay:            1.5,
		}, nil
	case "maya-quiet":
		// Thin flow, for stress testing inventory that will not clear.
		return models.ExchangeInfo{
			Exchange:             "maya-quiet",
			Slippage:             0.0005,
			MakerFee:             0,
			TakerFee:             0.0005,
			OptionTickSize:       0.01,
			OptionStrikeInterval: 5,
			NumStrikes:           10,
			ExpiryIntervalTicks:  30,
			NumExpiries:          2,
			TakerIntensity:       0.3,
			FlowDecay:            3,
		}, nil
	default:
		log.Println(exchange, "is not a supported exchange")
	}
	return models.ExchangeInfo{}, errors.New("error: exchange not supported")
}
