package models

// Represents credentials for backing services. Should be loaded from AWS
// secrets or a local file.
type Secret struct {
	DatabaseURL      string `json:"database_url"`
	DatabaseUser     string `json:"database_user"`
	DatabasePassword string `json:"database_password"`
	InfluxURL        string `json:"influx_url"`
	InfluxUser       string `json:"influx_user"`
	InfluxPassword   string `json:"influx_password"`
}
