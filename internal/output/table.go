package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/rmello/clamtap/pkg/types"
)

// TableFormatter renders findings as a colored terminal table.
type TableFormatter struct{}

func (f *TableFormatter) Format(w io.Writer, findings []types.Finding) error {
	fmt.Fprintf(w, "\n%d findings\n", len(findings))

	if len(findings) == 0 {
		fmt.Fprintln(w, "  No findings.")
		return nil
	}

	// Sort by severity (most severe first).
	sort.Slice(findings, func(i, j int) bool {
		return types.SeverityRank(findings[i].Severity) < types.SeverityRank(findings[j].Severity)
	})

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Severity", "Title", "URL", "Signature"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetColumnSeparator("│")

	counts := map[types.Severity]int{}

	for _, finding := range findings {
		counts[finding.Severity]++
		sev := colorSeverity(finding.Severity)
		table.Append([]string{sev, finding.Title, finding.ResourceURL, finding.Metadata["signature"]})
	}

	table.Render()

	fmt.Fprintf(w, "  Summary: %s\n", formatSummary(counts))
	return nil
}

func colorSeverity(s types.Severity) string {
	switch s {
	case types.SeverityCritical:
		return color.RedString("CRITICAL")
	case types.SeverityHigh:
		return color.RedString("HIGH")
	case types.SeverityMedium:
		return color.YellowString("MEDIUM")
	case types.SeverityLow:
		return color.CyanString("LOW")
	case types.SeverityInfo:
		return color.WhiteString("INFO")
	default:
		return string(s)
	}
}

func formatSummary(counts map[types.Severity]int) string {
	total := 0
	for _, c := range counts {
		total += c
	}
	return fmt.Sprintf("%d findings (%d critical, %d high, %d medium, %d low, %d info)",
		total,
		counts[types.SeverityCritical],
		counts[types.SeverityHigh],
		counts[types.SeverityMedium],
		counts[types.SeverityLow],
		counts[types.SeverityInfo],
	)
}
