// Command gfxsim records synthetic frames through a gfx.Core backed by the software device and
// prints the resulting pool and device statistics as json.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gfxsim: %+v\n", err)
		os.Exit(1)
	}
}

func newLogger(out io.Writer, level string, runID string) (*slog.Logger, error) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	handler := log.NewWithOptions(out, log.Options{
		Level:           parsed,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "gfxsim",
	})
	return slog.New(handler).With(slog.String("run", runID)), nil
}

func run(args []string, stdout io.Writer, stderr io.Writer) error {
	flags := flag.NewFlagSet("gfxsim", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "path to a TOML configuration file")
	frames := flags.Int("frames", 0, "number of frames to simulate, overriding the configuration")
	detailed := flags.Bool("detailed", false, "include every page and heap in the statistics")
	logLevel := flags.String("log-level", "", "log level, overriding the configuration")

	err := flags.Parse(args)
	if err != nil {
		return err
	}

	config := DefaultConfig()
	if *configPath != "" {
		config, err = LoadConfig(*configPath)
		if err != nil {
			return err
		}
	}
	if *frames > 0 {
		config.Frames = *frames
	}
	if *detailed {
		config.DetailedStats = true
	}
	if *logLevel != "" {
		config.LogLevel = *logLevel
	}
	err = config.Validate()
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	logger, err := newLogger(stderr, config.LogLevel, runID)
	if err != nil {
		return err
	}

	simulator, err := NewSimulator(logger, runID, config)
	if err != nil {
		return err
	}
	defer simulator.Close()

	for frame := 0; frame < config.Frames; frame++ {
		err = simulator.RunFrame()
		if err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(stdout, simulator.Report(config.DetailedStats))
	return err
}
