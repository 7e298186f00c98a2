package output

import (
	"fmt"
	"io"

	"github.com/rmello/clamtap/pkg/types"
)

// Formatter renders findings to a writer.
type Formatter interface {
	Format(w io.Writer, findings []types.Finding) error
}

// GetFormatter returns the appropriate formatter for the given format string.
func GetFormatter(format string) (Formatter, error) {
	switch format {
	case "table":
		return &TableFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "markdown":
		return &MarkdownFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (supported: table, json, markdown)", format)
	}
}
