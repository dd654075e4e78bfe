package settings

import (
	"encoding/json"
	"log"
	"os"

	"github.com/tantralabs/mantra/utils"
)

// Config holds the connection settings for the backing services a live
// session talks to: the bar store and the telemetry db.
type Config struct {
	DatabaseHost     string `json:"database_host"`
	DatabaseUser     string `json:"database_user"`
	DatabasePassword string `json:"database_password"`
	InfluxURL        string `json:"influx_url"`
	InfluxUser       string `json:"influx_user"`
	InfluxPassword   string `json:"influx_password"`
}

// Load reads connection settings from a local json file, or from an
// amazon secrets file when secret is set.
func Load(fileName string, secret bool) (config Config) {
	if secret {
		s := utils.LoadSecret(fileName, true)
		config.DatabaseHost = s.DatabaseURL
		config.DatabaseUser = s.DatabaseUser
		config.DatabasePassword = s.DatabasePassword
		config.InfluxURL = s.InfluxURL
		config.InfluxUser = s.InfluxUser
		config.InfluxPassword = s.InfluxPassword
		return config
	}
	configFile, err := os.Open(fileName)
	if err != nil {
		log.Println(err.Error())
		return config
	}
	defer configFile.Close()
	jsonParser := json.NewDecoder(configFile)
	jsonParser.Decode(&config)
	return config
}
