package app

import (
	"strings"

	"github.com/charlesng35/sftpctl/pkg/logger"
)

// ConfigureLogging initialises the global logger, defaulting to info level and
// console output.
func ConfigureLogging(level, format string) error {
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	return logger.Init(logger.Config{Level: level, Format: format})
}
