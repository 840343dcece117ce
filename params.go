package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/usersdemo/api-contract-tests/framework"
)

const defaultPort = 8111
const defaultServiceCommand = "./users-api"

type commandParams struct {
	serviceURL  string
	localRun    bool
	dockerImage string
	serviceCmd  string
	logLevel    string
	junitFile   string
	port        int
	host        string
	filters     framework.RegexFilters
	debug       bool
	debugAll    bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.serviceURL, "source", "",
		"base URL of an already running service; the harness will not manage its lifecycle")
	fs.BoolVar(&c.localRun, "local-run", false,
		"launch the service locally as a child process (the default when no mode is specified)")
	fs.StringVar(&c.dockerImage, "docker-image", "",
		"launch the service in a container from this image")
	fs.StringVar(&c.serviceCmd, "service-cmd", defaultServiceCommand,
		"command used to launch the service with --local-run")
	fs.StringVar(&c.logLevel, "log-level", "info",
		"console log level (debug, info, warn, error)")
	fs.StringVar(&c.junitFile, "junit", "", "write a JUnit XML report to this file")
	fs.StringVar(&c.host, "host", "localhost", "external hostname of the test harness")
	fs.IntVar(&c.port, "port", defaultPort, "port that the test harness will listen on")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument %q\n", fs.Arg(0))
		fs.Usage()
		return false
	}
	return true
}
