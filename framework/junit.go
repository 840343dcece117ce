package framework

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"
)

const defaultSuiteName = "contract-tests"

type junitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Skipped  int              `xml:"skipped,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      string          `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr"`
	Cases     []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string         `xml:"name,attr"`
	Classname string         `xml:"classname,attr"`
	Time      string         `xml:"time,attr"`
	Failures  []junitFailure `xml:"failure,omitempty"`
	Skipped   *junitSkipped  `xml:"skipped,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

type junitSkipped struct{}

// WriteJUnitFile writes the results in JUnit XML format, with one testsuite element
// per top-level test group and one testcase per leaf test. Group nodes themselves are
// not reported as cases; their outcome is implied by their children.
func WriteJUnitFile(path string, results Results) error {
	report := makeJUnitReport(results, time.Now())
	data, err := xml.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(xml.Header+string(data)+"\n"), 0644)
}

func makeJUnitReport(results Results, now time.Time) junitTestSuites {
	timestamp := now.Format("2006-01-02T15:04:05")

	var suiteOrder []string
	suites := make(map[string]*junitTestSuite)
	suiteTimes := make(map[string]time.Duration)
	var report junitTestSuites

	for _, test := range results.Tests {
		if len(test.TestID.Path) == 0 || isGroupNode(results, test.TestID) {
			continue
		}
		suiteName := test.TestID.Group()
		if suiteName == "" {
			suiteName = defaultSuiteName
		}
		suite := suites[suiteName]
		if suite == nil {
			suite = &junitTestSuite{Name: suiteName, Timestamp: timestamp}
			suites[suiteName] = suite
			suiteOrder = append(suiteOrder, suiteName)
		}
		suiteTimes[suiteName] += test.Elapsed

		tc := junitTestCase{
			Name:      test.TestID.Path[len(test.TestID.Path)-1],
			Classname: classname(test.TestID),
			Time:      formatSeconds(test.Elapsed),
		}
		switch {
		case test.Skipped:
			tc.Skipped = &junitSkipped{}
			suite.Skipped++
			report.Skipped++
		case len(test.Errors) > 0:
			tc.Failures = append(tc.Failures, junitFailure{
				Message: firstLine(test.Errors[0].Error()),
				Content: joinErrors(test.Errors),
			})
			suite.Failures++
			report.Failures++
		}
		suite.Cases = append(suite.Cases, tc)
		suite.Tests++
		report.Tests++
	}

	var total time.Duration
	for _, name := range suiteOrder {
		suite := suites[name]
		suite.Time = formatSeconds(suiteTimes[name])
		total += suiteTimes[name]
		report.Suites = append(report.Suites, *suite)
	}
	report.Time = formatSeconds(total)
	return report
}

// isGroupNode reports whether any other recorded result is nested under this one.
func isGroupNode(results Results, id TestID) bool {
	for _, other := range results.Tests {
		if len(other.TestID.Path) <= len(id.Path) {
			continue
		}
		matches := true
		for i, name := range id.Path {
			if other.TestID.Path[i] != name {
				matches = false
				break
			}
		}
		if matches {
			return true
		}
	}
	return false
}

func classname(id TestID) string {
	if len(id.Path) < 2 {
		return defaultSuiteName
	}
	return strings.Join(id.Path[:len(id.Path)-1], ".")
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func joinErrors(errs []error) string {
	var ss []string
	for _, err := range errs {
		ss = append(ss, err.Error())
	}
	return strings.Join(ss, "\n\n")
}
