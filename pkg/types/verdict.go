package types

// Verdict is the structured outcome of a single scan call.
// Found is true when the daemon matched a signature; Signature holds the
// matched signature name and is empty whenever Found is false.
type Verdict struct {
	Found     bool   `json:"found"`
	Signature string `json:"signature,omitempty"`
}
