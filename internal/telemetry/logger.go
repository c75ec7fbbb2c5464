package telemetry

import (
	"fmt"
	"strings"

	"github.com/Elite-tch/privacycart/internal/config"

	"github.com/labstack/gommon/log"
)

const textHeader = "${time_rfc3339} ${level} ${prefix}"

// NewLogger builds the application logger. The same logger backs echo so
// request and domain logs share one format.
func NewLogger(cfg config.Log, prefix string) (*log.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	logger := log.New(prefix)
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json", "":
	case "text":
		logger.SetHeader(textHeader)
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}
	return logger, nil
}

func parseLevel(s string) (log.Lvl, error) {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG, nil
	case "info", "":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return 0, fmt.Errorf("unsupported log level %q", s)
}
