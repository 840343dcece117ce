package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/usersdemo/api-contract-tests/apitests"
	"github.com/usersdemo/api-contract-tests/framework"
	"github.com/usersdemo/api-contract-tests/logging"
)

const statusQueryTimeout = time.Second * 10
const logsDir = "logs"

// Environment variables understood by the demo service. A service launched by
// the harness learns its listen address and database location through these.
const (
	serviceAddrEnvVar     = "USERS_API_ADDR"
	serviceDBPathEnvVar   = "USERS_API_DB"
	serviceLogLevelEnvVar = "USERS_API_LOG_LEVEL"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	var params commandParams
	if !params.Read(args) {
		return 1
	}

	logLevel, err := logging.ParseLevel(params.logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	debug := params.debug || logLevel == logging.LevelDebug
	debugAll := params.debugAll || logLevel == logging.LevelDebug

	logFile, err := logging.NewLogFile(logsDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logFile.Close()
	fmt.Printf("Writing session log to %s\n", logFile.Path)

	// The session logger feeds the log file; with --debug-all it also echoes
	// to the console.
	var sessionLogger framework.Logger = logFile
	if debugAll {
		sessionLogger = logging.Tee(logFile, log.New(os.Stdout, "", log.LstdFlags))
	}

	// With no mode specified, launch the service ourselves, like --local-run.
	if params.serviceURL == "" && params.dockerImage == "" && !params.localRun {
		params.localRun = true
	}

	launchOpts := framework.LaunchOptions{
		ExternalURL:  params.serviceURL,
		DockerImage:  params.dockerImage,
		AddrEnvVar:   serviceAddrEnvVar,
		DBPathEnvVar: serviceDBPathEnvVar,
		ExtraEnv:     []string{serviceLogLevelEnvVar + "=" + logLevel.String()},
		Logger:       sessionLogger,
		Output:       os.Stdout,
	}
	if params.localRun {
		launchOpts.Command = params.serviceCmd
	}

	service, err := framework.LaunchService(launchOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service error: %s\n", err)
		return 1
	}

	// An interrupted run must still stop a service this session started.
	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupted
		fmt.Fprintln(os.Stderr, "\nInterrupted; cleaning up")
		_ = service.Stop()
		os.Exit(1)
	}()

	harness, err := framework.NewTestHarness(
		service,
		params.host,
		params.port,
		statusQueryTimeout,
		sessionLogger,
		os.Stdout,
	)
	if err != nil {
		_ = service.Stop()
		fmt.Fprintf(os.Stderr, "Service error: %s\n", err)
		return 1
	}
	defer func() {
		_ = harness.Close()
	}()

	info := harness.ServiceInfo()
	fmt.Printf("Connected to service: %s\n", info.Description)
	logFile.Printf("Connected to service: %s (capabilities: %s)", info.Description, info.Capabilities)

	fmt.Println()
	framework.PrintFilterDescription(harness, params.filters, apitests.AllCapabilities)

	fmt.Println("Running test suite")

	testLogger := &ConsoleTestLogger{
		DebugOutputOnFailure: debug || debugAll,
		DebugOutputOnSuccess: debugAll,
		Console:              os.Stdout,
		File:                 logFile,
	}

	results := apitests.RunTestSuite(harness, params.filters.AsFilter, testLogger)

	fmt.Println()
	framework.PrintResults(results)
	logFile.Printf("Test run finished: %d failures out of %d tests (%d skipped)",
		len(results.Failures), len(results.Tests), results.SkipCount())

	if params.junitFile != "" {
		if err := framework.WriteJUnitFile(params.junitFile, results); err != nil {
			fmt.Fprintf(os.Stderr, "Could not write JUnit report: %s\n", err)
			return 1
		}
		fmt.Printf("Wrote JUnit report to %s\n", params.junitFile)
	}

	if !results.OK() {
		return 1
	}
	return 0
}
