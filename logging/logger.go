// Package logging builds the process-wide *slog.Logger: a colored console
// handler (grounded on cmd/server/logger.go's tint setup) fanned out
// alongside an optional systemd journal handler when one is reachable,
// following the fanout shape in reusee-tai/logs/logger.go.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

const journalSocketPath = "/run/systemd/journal/socket"

// ParseLevel maps the GLOOP_LOG_LEVEL values to a slog.Level, defaulting to
// Info for an unrecognized value.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger from a format name and level. Every format except
// "journal-only" includes the console handler; the journal handler is added
// whenever the systemd journal socket is reachable, and "journal-only"
// without a reachable journal falls back to the console handler.
func New(format string, level slog.Level, output io.Writer) *slog.Logger {
	if output == nil {
		output = os.Stderr
	}

	var handlers []slog.Handler

	if format != "journal-only" {
		handlers = append(handlers, consoleHandler(output, level))
	}

	if journalReachable() {
		journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
			ReplaceGroup: toJournalKey,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = toJournalKey(a.Key)
				return a
			},
		})
		if err != nil {
			// Best-effort: the journal branch just doesn't get added. Log
			// through whatever console handler we already have.
			if len(handlers) > 0 {
				logger := slog.New(handlers[0])
				logger.Warn("systemd journal handler unavailable", "error", err)
			}
		} else {
			handlers = append(handlers, journalHandler)
		}
	}

	if len(handlers) == 0 {
		handlers = append(handlers, consoleHandler(output, level))
	}

	return slog.New(slogmulti.Fanout(handlers...))
}

func consoleHandler(output io.Writer, level slog.Level) slog.Handler {
	return tint.NewHandler(output, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02 15:04:05.000Z07:00",
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Value.Kind() == slog.KindAny {
				if _, ok := a.Value.Any().(error); ok {
					return tint.Attr(9, a)
				}
			}
			return a
		},
	})
}

func journalReachable() bool {
	_, err := os.Stat(journalSocketPath)
	return err == nil
}

func toJournalKey(str string) string {
	str = strings.ToUpper(str)
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, str)
}
