package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	rewind "github.com/rewind-labs/rewind/pkg/rewind/v1"
	rwerrors "github.com/rewind-labs/rewind/pkg/rewind/v1/errors"
	hist "github.com/rewind-labs/rewind/pkg/rewind/v1/history"
	rwlog "github.com/rewind-labs/rewind/pkg/rewind/v1/log"
	rwstate "github.com/rewind-labs/rewind/pkg/rewind/v1/state"

	"github.com/rewind-labs/rewind/internal/config"
	"github.com/rewind-labs/rewind/internal/events"
	"github.com/rewind-labs/rewind/internal/logger"
	"github.com/rewind-labs/rewind/internal/metrics"
	"github.com/rewind-labs/rewind/internal/tracing"
	"github.com/rewind-labs/rewind/internal/travel"
)

const (
	ExitSuccess         = 0
	ExitFailure         = 1
	ExitUsageError      = 2
	DefaultLogLevel     = "info"
	DefaultLogFmt       = "text"
	DefaultEventBusSize = 256
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "validate" {
		runValidateCommand(os.Args[2:])
		return
	}
	if len(os.Args) == 2 && (os.Args[1] == "--version" || os.Args[1] == "-version") {
		printVersion()
		os.Exit(ExitSuccess)
	}
	exitCode := runReplayCommand(os.Args[1:])
	os.Exit(exitCode)
}

func printVersion() {
	fmt.Printf("rewind version %s\n", version)
	fmt.Printf("commit: %s\n", commit)
	fmt.Printf("built: %s\n", buildDate)
	fmt.Printf("go version: %s\n", runtime.Version())
	fmt.Printf("os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func runValidateCommand(args []string) {
	validateFlags := flag.NewFlagSet("validate", flag.ExitOnError)
	sessionPath := validateFlags.String("session", "", "Path to the session YAML file to validate (required)")
	logLevel := validateFlags.String("log-level", DefaultLogLevel, "Log level for validation output (debug, info, warn, error)")

	validateFlags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s validate -session <path> [flags...]\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Validates the structure and schema compatibility of a rewind session.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		validateFlags.PrintDefaults()
	}

	if err := validateFlags.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing validate flags: %v\n", err)
		os.Exit(ExitUsageError)
	}

	if *sessionPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -session flag is required for validation")
		validateFlags.Usage()
		os.Exit(ExitUsageError)
	}

	log := logger.NewLogger(*logLevel, "text", os.Stderr)
	log.Infof("Validating session: %s", *sessionPath)

	_, err := config.LoadSessionFromFile(*sessionPath)
	if err != nil {
		var validationErr *rwerrors.ValidationError
		var configErr *rwerrors.ConfigError
		if errors.As(err, &validationErr) {
			log.Errorf("Session validation failed:\n%s", validationErr.Error())
		} else if errors.As(err, &configErr) {
			log.Errorf("Session configuration error:\n%s", configErr.Error())
		} else {
			log.Errorf("Failed to load or validate session: %v", err)
		}
		os.Exit(ExitFailure)
	}

	log.Infof("Session validation successful: %s", *sessionPath)
	os.Exit(ExitSuccess)
}

func runReplayCommand(args []string) int {
	replayFlags := flag.NewFlagSet("rewind", flag.ExitOnError)
	sessionPath := replayFlags.String("session", "", "Path to the session YAML file (required)")
	logLevel := replayFlags.String("log-level", DefaultLogLevel, "Log level (debug, info, warn, error)")
	logFormat := replayFlags.String("log-format", DefaultLogFmt, "Log format (text, json)")
	printHistory := replayFlags.Bool("print-history", false, "Print every archived snapshot after the replay")
	versionFlag := replayFlags.Bool("version", false, "Print version information and exit")

	replayFlags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags...] -session <path>\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Replays a rewind session: builds the store, dispatches the scripted")
		fmt.Fprintln(os.Stderr, "updates, applies the navigation steps, and prints the final state.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		replayFlags.PrintDefaults()
	}

	if err := replayFlags.Parse(args); err != nil {
		return ExitUsageError
	}

	if *versionFlag {
		printVersion()
		return ExitSuccess
	}

	if *sessionPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -session flag is required")
		replayFlags.Usage()
		return ExitUsageError
	}
	if *logFormat != "text" && *logFormat != "json" {
		fmt.Fprintln(os.Stderr, "Error: -log-format must be 'text' or 'json'")
		return ExitUsageError
	}

	var logWriter io.Writer = os.Stderr
	log := logger.NewLogger(*logLevel, *logFormat, logWriter)
	log = log.With("rewind_version", version)

	log.Infof("rewind v%s starting...", version)
	log.Debugf("Log level: %s", *logLevel)
	log.Debugf("Log format: %s", *logFormat)

	log.Infof("Loading session: %s", *sessionPath)
	session, err := config.LoadSessionFromFile(*sessionPath)
	if err != nil {
		log.Errorf("Failed to load session '%s': %v", *sessionPath, err)
		return ExitFailure
	}

	eventBus := events.NewChannelEventBus(DefaultEventBusSize, log)
	defer eventBus.Close()
	metricsProvider := metrics.NewPrometheusRegistryProvider()
	tracerProvider, err := tracing.NewProviderFromEnv(context.Background())
	if err != nil {
		log.Warnf("Failed to initialize tracing from environment: %v. Using NoOp tracer.", err)
		tracerProvider, _ = tracing.NewNoOpProvider()
	}

	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	eventsTotal := events.NewEventsTotalCounter(metricsProvider.Registry())
	listener := events.NewMetricsEventListener(eventBus, eventsTotal, log)
	go listener.Start(runCtx)

	storeOpts := []rewind.StoreOption{
		rewind.WithEventBus(eventBus),
		rewind.WithMetricsRegistryProvider(metricsProvider),
		rewind.WithTracerProvider(tracerProvider),
	}
	if session.Name != "" {
		storeOpts = append(storeOpts, rewind.WithName(session.Name))
	}
	maxHistory, autoArchive, initialPosition, initialPatches := session.EngineConfig()
	if maxHistory > 0 {
		storeOpts = append(storeOpts, rewind.WithMaxHistory(maxHistory))
	}
	if autoArchive != nil {
		storeOpts = append(storeOpts, rewind.WithAutoArchive(*autoArchive))
	}
	if len(initialPatches) > 0 {
		storeOpts = append(storeOpts, rewind.WithInitialPatches(initialPatches))
		storeOpts = append(storeOpts, rewind.WithInitialPosition(initialPosition))
	}

	initialState := session.InitialState
	initializer := func(update rewind.UpdateFunc, read rwstate.StateReader, store rewind.StoreV1) map[string]interface{} {
		if initialState == nil {
			return map[string]interface{}{}
		}
		return initialState
	}

	store, err := travel.NewStore(log, initializer, storeOpts...)
	if err != nil {
		log.Errorf("Failed to create store: %v", err)
		return ExitFailure
	}
	defer store.Close()

	if err := replaySession(log, store, session); err != nil {
		log.Errorf("Session replay failed: %v", err)
		return ExitFailure
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if shutdownErr := tracerProvider.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warnf("Error shutting down tracer provider: %v", shutdownErr)
	}

	printFinalState(log, store, *printHistory)
	log.Infof("Session replay completed successfully.")
	return ExitSuccess
}

// replaySession dispatches the session's scripted updates, then applies its
// navigation steps, stopping at the first error.
func replaySession(log rwlog.Logger, store rewind.StoreV1, session *config.Session) error {
	for i, step := range session.Updates {
		var err error
		switch {
		case step.Set != nil:
			err = store.Dispatch(hist.Value(step.Set), false)
		case step.Replace != nil:
			err = store.Dispatch(hist.Value(step.Replace), true)
		}
		if err != nil {
			return fmt.Errorf("updates[%d]: %w", i, err)
		}
		log.Debugf("Applied update %d, position=%d", i, store.Controls().Position())
	}

	controls := store.Controls()
	for i, step := range session.Navigation {
		var err error
		switch {
		case step.Back != nil:
			err = controls.Back(*step.Back)
		case step.Forward != nil:
			err = controls.Forward(*step.Forward)
		case step.Go != nil:
			err = controls.Go(*step.Go)
		case step.Reset:
			err = controls.Reset()
		case step.Archive:
			err = controls.Archive()
		}
		if err != nil {
			return fmt.Errorf("navigation[%d]: %w", i, err)
		}
		log.Debugf("Applied navigation %d, position=%d", i, controls.Position())
	}
	return nil
}

// printFinalState writes the final data snapshot, and optionally the full
// archived history, to stdout as JSON. Engine snapshots carry only tracked
// data, so every entry is serializable.
func printFinalState(log rwlog.Logger, store rewind.StoreV1, withHistory bool) {
	controls := store.Controls()
	fmt.Printf("position: %d/%d\n", controls.Position(), controls.Len()-1)

	entries := controls.History()
	if err := printJSON("state", entries[controls.Position()]); err != nil {
		log.Warnf("Failed to render final state: %v", err)
	}

	if withHistory {
		for i, snapshot := range entries {
			if err := printJSON(fmt.Sprintf("history[%d]", i), snapshot); err != nil {
				log.Warnf("Failed to render history entry %d: %v", i, err)
			}
		}
	}
}

func printJSON(label string, value map[string]interface{}) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", label, string(encoded))
	return nil
}
