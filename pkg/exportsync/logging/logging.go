// Package logging provides component loggers for the exportsync CLI.
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    log.Fatal(err)
//	}
//
//	logger := logging.Get("syncer")
//	logger.Info("resource added", "name", "ExportWeapons.json", "hash", "h2")
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Components maps component names to level overrides.
	Components map[string]string

	// Quiet discards everything below the error level.
	Quiet bool

	// Writer receives log output. Defaults to stderr.
	Writer io.Writer
}

// state holds the global logging state.
type state struct {
	mu          sync.Mutex
	initialized bool
	writer      io.Writer
	level       log.Level
	components  map[string]log.Level
	loggers     map[string]*log.Logger
}

var globalState = &state{
	components: make(map[string]log.Level),
	loggers:    make(map[string]*log.Logger),
}

// Init initializes the logging system. Before Init is called, loggers write
// to io.Discard.
func Init(cfg Config) error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	if cfg.Quiet {
		level = log.ErrorLevel
	}
	globalState.level = level

	globalState.components = make(map[string]log.Level)
	for comp, lvl := range cfg.Components {
		parsed, err := log.ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		globalState.components[comp] = parsed
	}

	globalState.writer = cfg.Writer
	if globalState.writer == nil {
		globalState.writer = os.Stderr
	}
	globalState.initialized = true

	// Recreate existing loggers with the new configuration.
	for component := range globalState.loggers {
		globalState.loggers[component] = createLogger(component)
	}

	return nil
}

// Get returns the logger for the given component, creating it on first use.
func Get(component string) *log.Logger {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}

	logger := createLogger(component)
	globalState.loggers[component] = logger
	return logger
}

// createLogger builds a logger for a component. Caller holds the state lock.
func createLogger(component string) *log.Logger {
	level := globalState.level
	if override, ok := globalState.components[component]; ok {
		level = override
	}

	writer := globalState.writer
	if !globalState.initialized {
		writer = io.Discard
	}

	return log.NewWithOptions(writer, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          component,
	})
}
