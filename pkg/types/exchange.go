package types

// Exchange is a single observed HTTP request/response pair as delivered
// by the traffic source. Body holds the exact response bytes as they came
// off the wire, without any decoding applied.
type Exchange struct {
	Method     string
	StatusCode int
	URL        string
	Body       []byte

	// ID is an opaque identifier assigned by the traffic source,
	// carried into findings as the source reference.
	ID string
}
