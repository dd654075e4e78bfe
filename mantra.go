package mantra

import (
	"log"

	"github.com/tantralabs/mantra/logger"
	"github.com/tantralabs/mantra/maya"
	"github.com/tantralabs/mantra/models"
)

// CreateNewMaker builds a Maker from a config, ready to hand to a trading
// engine. The config is validated up front so a bad limit fails the
// session before it starts.
func CreateNewMaker(config models.Config) models.Maker {
	if err := config.Validate(); err != nil {
		log.Fatal(err)
	}
	maker := models.NewMaker(config)
	logger.Infof("Got account with id %v\n", maker.Account.AccountID)
	logger.Infof("Loaded market info with symbol %v\n", maker.Account.BaseAsset.Symbol)
	if maker.LogLevel == 0 {
		maker.LogLevel = logger.LogLevel().Info
	}
	maker.BacktestLogLevel = logger.LogLevel().Info
	return maker
}

// RunSim runs a full market making session against a simulated exchange
// and returns the scored result.
func RunSim(maker *models.Maker, simConfig maya.Config) models.Result {
	exchange, err := maya.New(simConfig)
	if err != nil {
		log.Fatal(err)
	}
	engine := NewTradingEngine(maker, exchange)
	return engine.RunSession()
}
