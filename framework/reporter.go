package framework

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// PrintFilterDescription explains up front which tests cannot run this time: any
// excluded by the --run/--skip filters, and any gated on a capability the service
// did not declare in its status response.
func PrintFilterDescription(harness *TestHarness, filters RegexFilters, allCapabilities []string) {
	if filters.MustMatch.IsDefined() {
		fmt.Printf("Running only tests matching %s\n", filters.MustMatch)
	}
	if filters.MustNotMatch.IsDefined() {
		fmt.Printf("Skipping tests matching %s\n", filters.MustNotMatch)
	}

	var missing []string
	for _, c := range allCapabilities {
		if !harness.ServiceHasCapability(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		fmt.Printf("Skipping tests that require capabilities the service did not declare: %s\n",
			strings.Join(missing, ", "))
	}
	if filters.MustMatch.IsDefined() || filters.MustNotMatch.IsDefined() || len(missing) > 0 {
		fmt.Println()
	}
}

var (
	passStyle = color.New(color.FgGreen)
	failStyle = color.New(color.FgRed, color.Bold)
	skipStyle = color.New(color.FgYellow)
)

// PrintResults prints a summary of the test run to standard output. Group nodes are
// not counted as tests; only the leaves under them are.
func PrintResults(results Results) {
	leaves := 0
	for _, test := range results.Tests {
		if len(test.TestID.Path) == 0 || isGroupNode(results, test.TestID) {
			continue
		}
		leaves++
	}

	if skipped := results.SkipCount(); skipped > 0 {
		skipStyle.Printf("Skipped %d tests\n", skipped)
	}
	if results.OK() {
		passStyle.Printf("All %d tests passed\n", leaves)
		return
	}
	failStyle.Printf("FAILED TESTS (%d):\n", len(results.Failures))
	for _, f := range results.Failures {
		failStyle.Printf("  * %s\n", f.TestID)
	}
}
