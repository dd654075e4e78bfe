package exchanges

type volSource struct {
	Close string
	Range string
}

// VolSource set the base definitions for the supported replay vol signals
func VolSource() volSource {
	r := volSource{}
	r.Close = "close"
	r.Range = "range"
	return r
}
