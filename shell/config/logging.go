package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// LogLevel parses logging.level.
func (cfg Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(cfg.Logging.Level))); err != nil {
		return 0, fmt.Errorf("logging.level %q: %w", cfg.Logging.Level, err)
	}

	return level, nil
}

// NewLogger creates the slog logger described by the logging section, writing to w.
// verbose lowers the level to debug.
func (cfg Config) NewLogger(w io.Writer, verbose bool) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}

	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Logging.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	return slog.New(slog.NewTextHandler(w, opts)), nil
}
