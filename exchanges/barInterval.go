package exchanges

type barInterval struct {
	Minute string
	Hour   string
	Day    string
}

// BarInterval set the base definitions for the supported bar intervals
func BarInterval() barInterval {
	r := barInterval{}
	r.Minute = "1m"
	r.Hour = "1h"
	r.Day = "1d"
	return r
}
