package exchanges

type feedType struct {
	Walk       string
	Replay     string
	Database   string
	ImpliedVol string
}

// FeedType set the base definitions for the supported market feed types
func FeedType() feedType {
	r := feedType{}
	r.Walk = "walk"
	r.Replay = "replay"
	r.Database = "database"
	r.ImpliedVol = "database-iv"
	return r
}
