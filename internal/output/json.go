package output

import (
	"encoding/json"
	"io"

	"github.com/rmello/clamtap/pkg/types"
)

// JSONFormatter renders findings as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, findings []types.Finding) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(findings)
}
