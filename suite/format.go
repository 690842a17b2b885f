package suite

import (
	"fmt"
	"strings"

	"github.com/gookit/color"
)

// FormatCheckFailure formats a single failed or errored check for
// display.
func FormatCheckFailure(res CheckResult) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(color.Gray.Sprint("--------------------------------------------------------------------------------"))
	b.WriteString("\n")
	if res.Err != "" {
		b.WriteString(color.Red.Sprint("CHECK ERROR"))
	} else {
		b.WriteString(color.Red.Sprint("CHECK FAILED"))
	}
	b.WriteString("\n")
	b.WriteString(color.Bold.Sprint("Check:    "))
	b.WriteString(color.Yellow.Sprintf("%s\n", res.Name))
	b.WriteString(color.Bold.Sprint("Program:  "))
	b.WriteString(fmt.Sprintf("%s\n", res.Program))
	b.WriteString(color.Bold.Sprint("Expr:     "))
	b.WriteString(fmt.Sprintf("%s\n", res.Expr))
	b.WriteString(color.Bold.Sprint("Expected: "))
	b.WriteString(fmt.Sprintf("%s\n", res.Expect))
	if res.Got != "" {
		b.WriteString(color.Bold.Sprint("Got:      "))
		b.WriteString(color.Red.Sprintf("%s\n", res.Got))
	}
	if res.Err != "" {
		b.WriteString(color.Bold.Sprint("Error:    "))
		b.WriteString(color.Red.Sprintf("%s\n", res.Err))
	}
	return b.String()
}

// FormatReport formats the per-check pass/fail lines.
func FormatReport(rep *Report) string {
	var b strings.Builder
	if rep.Suite != "" {
		b.WriteString(color.Cyan.Sprintf("Suite: %s\n", rep.Suite))
	}
	b.WriteString(color.Gray.Sprintf("Run:   %s\n", rep.RunID))
	for _, res := range rep.Results {
		switch {
		case res.Err != "":
			b.WriteString(color.Red.Sprintf("  ! %s (error)\n", res.Name))
		case res.Passed:
			b.WriteString(color.Green.Sprintf("  ✓ %s\n", res.Name))
		default:
			b.WriteString(color.Red.Sprintf("  ✗ %s\n", res.Name))
		}
	}
	return b.String()
}

// FormatStatistics formats the aggregated run statistics.
func FormatStatistics(stats Statistics) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(color.Cyan.Sprint("=== Suite statistics ==="))
	b.WriteString("\n")
	b.WriteString(color.Bold.Sprint("Checks run:         "))
	b.WriteString(fmt.Sprintf("%d\n", stats.Checks))
	b.WriteString(color.Bold.Sprint("Passed:             "))
	b.WriteString(color.Green.Sprintf("%d\n", stats.Passed))

	b.WriteString(color.Bold.Sprint("Failed:             "))
	if stats.Failed > 0 {
		b.WriteString(color.Red.Sprintf("%d\n", stats.Failed))
	} else {
		b.WriteString(fmt.Sprintf("%d\n", stats.Failed))
	}

	b.WriteString(color.Bold.Sprint("Errors:             "))
	if stats.Errors > 0 {
		b.WriteString(color.Red.Sprintf("%d\n", stats.Errors))
	} else {
		b.WriteString(fmt.Sprintf("%d\n", stats.Errors))
	}

	b.WriteString(color.Bold.Sprint("Machine steps:      "))
	b.WriteString(fmt.Sprintf("%d\n", stats.Steps))
	b.WriteString(color.Bold.Sprint("Thunk updates:      "))
	b.WriteString(fmt.Sprintf("%d\n", stats.ThunkUpdates))
	return b.String()
}
