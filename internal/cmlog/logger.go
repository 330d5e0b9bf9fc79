// Package cmlog builds the sidecar's structured logger from server config,
// adapted from the teacher's internal/proxy.NewLogger: a pretty,
// ANSI-colored console writer when stdout is a terminal, plain JSON lines
// otherwise, never a package-global logger reached for implicitly.
package cmlog

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/omarluq/apimgr-sidecar/internal/serverconfig"
)

// New builds a *zerolog.Logger from the sidecar's logging configuration.
func New(cfg serverconfig.LoggingConfigTop) *zerolog.Logger {
	var output io.Writer = os.Stdout

	if shouldUsePretty(cfg) {
		output = buildConsoleWriter(output)
	}

	logger := zerolog.New(output).
		Level(cfg.ParseLevel()).
		With().
		Timestamp().
		Logger()

	return &logger
}

func shouldUsePretty(cfg serverconfig.LoggingConfigTop) bool {
	if cfg.Pretty {
		return true
	}

	switch cfg.Format {
	case "pretty", "console":
		return true
	case "json":
		return false
	default:
		return isatty.IsTerminal(os.Stdout.Fd())
	}
}

func buildConsoleWriter(output io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:             output,
		TimeFormat:      "15:04:05",
		FormatLevel:     formatLevel,
		FormatMessage:   formatMessage,
		FormatFieldName: formatFieldName,
		FormatFieldValue: func(i interface{}) string {
			return fmt.Sprintf("%s", i)
		},
	}
}

func formatLevel(i interface{}) string {
	levelStr, ok := i.(string)
	if !ok {
		return ""
	}

	levelColors := map[string]string{
		"debug": "\033[36mDBG\033[0m",
		"info":  "\033[32mINF\033[0m",
		"warn":  "\033[33mWRN\033[0m",
		"error": "\033[31mERR\033[0m",
		"fatal": "\033[35mFTL\033[0m",
		"panic": "\033[35mPNC\033[0m",
	}

	if colored, ok := levelColors[levelStr]; ok {
		return colored
	}
	return levelStr
}

func formatMessage(i interface{}) string {
	if i == nil {
		return ""
	}
	return fmt.Sprintf("-> %s", i)
}

func formatFieldName(i interface{}) string {
	return fmt.Sprintf("\033[2m%s=\033[0m", i)
}
