// Package settingslog binds a settings variable to a slog.LevelVar.
package settingslog

import (
	"log/slog"

	"github.com/evan-idocoding/fxkit/rt/settings"
)

// LevelVar registers an enum setting and binds it to a slog.LevelVar.
//
// Accepted values are debug, info, warn and error, case-insensitive. defaultLevel is
// rounded down to the nearest of those.
func LevelVar(s *settings.Settings, key string, defaultLevel slog.Level) (*settings.EnumVar, *slog.LevelVar, error) {
	lv := new(slog.LevelVar)
	def := levelToEnum(defaultLevel)
	lv.Set(enumToLevel(def))

	ev, err := s.Enum(key, def, []string{"debug", "info", "warn", "error"},
		settings.WithOnChange(func(v string) { lv.Set(enumToLevel(v)) }),
	)
	if err != nil {
		return nil, nil, err
	}
	return ev, lv, nil
}

func levelToEnum(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "debug"
	case l < slog.LevelWarn:
		return "info"
	case l < slog.LevelError:
		return "warn"
	default:
		return "error"
	}
}

func enumToLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
