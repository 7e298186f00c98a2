package clamd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rmello/clamtap/pkg/types"
)

// ErrMalformedResponse marks a daemon reply that does not have the
// expected stream-result shape. Callers must treat it as "no verdict",
// never as a clean result.
var ErrMalformedResponse = errors.New("malformed clamd response")

const (
	streamLabel = "stream:"
	statusFound = "FOUND"
	statusClean = "OK"
)

// ParseScanReply classifies a raw INSTREAM reply line into a Verdict.
//
// clamd answers one of:
//
//	stream: OK
//	stream: Eicar-Test-Signature FOUND
//
// Anything else (missing stream label, empty result, unknown status
// token) fails with ErrMalformedResponse.
func ParseScanReply(raw string) (types.Verdict, error) {
	line := strings.TrimSpace(raw)

	rest, ok := strings.CutPrefix(line, streamLabel)
	if !ok {
		return types.Verdict{}, fmt.Errorf("%w: missing %q label in %q", ErrMalformedResponse, streamLabel, raw)
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return types.Verdict{}, fmt.Errorf("%w: empty result in %q", ErrMalformedResponse, raw)
	}

	if rest == statusClean {
		return types.Verdict{}, nil
	}

	if sig, ok := strings.CutSuffix(rest, " "+statusFound); ok {
		return types.Verdict{Found: true, Signature: strings.TrimSpace(sig)}, nil
	}

	return types.Verdict{}, fmt.Errorf("%w: unknown status token in %q", ErrMalformedResponse, raw)
}
