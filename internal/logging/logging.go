// Package logging configures the global zerolog logger with rotating file
// output under the XDG data directory.
package logging

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/styleguard/styleguard/internal/storage"
)

const (
	maxLogSizeMB  = 10 // size in MB before rotation
	maxLogBackups = 3  // old files to keep
	maxLogAgeDays = 30 // age in days before deletion
)

// Init initializes the global logger with lumberjack rotation at the given
// level ("debug", "info", "warn", "error").
func Init(level string) error {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logFile, err := storage.New(afero.NewOsFs()).LogPath()
	if err != nil {
		return err
	}

	lj := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
	}

	zerolog.SetGlobalLevel(parsed)
	log.Logger = zerolog.New(lj).With().Timestamp().Logger()
	return nil
}

// InitTest routes the global logger to discard for tests.
func InitTest() {
	log.Logger = zerolog.New(io.Discard)
}
