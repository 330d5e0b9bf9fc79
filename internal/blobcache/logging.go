package blobcache

import (
	"sync"

	"github.com/rs/zerolog"
)

var (
	// loggerMu protects Logger from concurrent access in tests.
	loggerMu sync.RWMutex

	// Logger is the package-level logger for config blob cache operations.
	// Uses a no-op logger by default to avoid logging until explicitly configured.
	// The logger is tagged with component: blobcache for easy filtering.
	Logger = zerolog.Nop()
)

// SetLogger sets the package-level logger for config blob cache operations.
// Call this during application initialization to enable cache logging.
// The logger is automatically tagged with component: blobcache.
//
// Example:
//
//	logger := zerolog.New(os.Stdout).Level(zerolog.DebugLevel)
//	blobcache.SetLogger(&logger)
func SetLogger(l *zerolog.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	Logger = l.With().Str("component", "blobcache").Logger()
}

// logger returns the current package logger.
// This is used internally by cache implementations.
func logger() zerolog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return Logger
}
