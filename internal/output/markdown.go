package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rmello/clamtap/pkg/types"
)

// MarkdownFormatter renders findings as a Markdown table suitable for
// pasting into docs, issues, or pull-request descriptions.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(w io.Writer, findings []types.Finding) error {
	fmt.Fprintln(w, "## Malware findings")
	fmt.Fprintln(w)

	if len(findings) == 0 {
		fmt.Fprintln(w, "_No findings._")
		return nil
	}

	sort.Slice(findings, func(i, j int) bool {
		return types.SeverityRank(findings[i].Severity) < types.SeverityRank(findings[j].Severity)
	})

	fmt.Fprintln(w, "| Severity | Title | URL | Signature |")
	fmt.Fprintln(w, "|----------|-------|-----|-----------|")

	counts := map[types.Severity]int{}
	for _, finding := range findings {
		counts[finding.Severity]++
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			severityBadge(finding.Severity),
			escapeMarkdown(finding.Title),
			escapeMarkdown(finding.ResourceURL),
			escapeMarkdown(finding.Metadata["signature"]),
		)
	}

	fmt.Fprintf(w, "\n%s\n", markdownSummary(counts))
	return nil
}

// severityBadge returns a bold, uppercased severity label for Markdown.
func severityBadge(s types.Severity) string {
	return fmt.Sprintf("**%s**", string(s))
}

// escapeMarkdown escapes pipe characters that would break Markdown tables.
func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func markdownSummary(counts map[types.Severity]int) string {
	total := 0
	for _, c := range counts {
		total += c
	}
	return fmt.Sprintf("**Summary:** %d findings (%d critical, %d high, %d medium, %d low, %d info)",
		total,
		counts[types.SeverityCritical],
		counts[types.SeverityHigh],
		counts[types.SeverityMedium],
		counts[types.SeverityLow],
		counts[types.SeverityInfo],
	)
}
