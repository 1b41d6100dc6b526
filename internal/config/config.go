package config

import (
	"fmt"
	"log/slog"
	"strings"

	kongdotenv "github.com/titusjaka/kong-dotenv-go"
)

// Globals are the flags shared by every airsense command. Each flag can also
// be set from the environment or from a .env file named by --env-file.
type Globals struct {
	EnvFile   kongdotenv.ENVFileConfig `kong:"optional,name='env-file',help='Path to a .env file loaded before flags are resolved.'"`
	DB        string                   `kong:"name='db',default='data/airsense.db',env='AIRSENSE_DB',help='Path to the SQLite database.'"`
	LogLevel  string                   `kong:"name='log-level',default='info',env='LOG_LEVEL',help='Log level (debug, info, warn, error).'"`
	LogFormat string                   `kong:"name='log-format',default='text',enum='text,json',env='LOG_FORMAT',help='Log output format (text, json).'"`
}

// Level parses LogLevel.
func (g *Globals) Level() (slog.Level, error) {
	return ParseLogLevel(g.LogLevel)
}

func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
