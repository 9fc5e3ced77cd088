package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

const (
	defaultTimeFormat = "15:04:05"
	logFileMaxSize    = 100 * 1024 * 1024 // 100 MB
	logFileBackups    = 3
)

// consoleWriter builds the standard console writer configuration
func consoleWriter(timeFormat string) models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:             models.LogWriterTypeConsole,
		TimeFormat:       timeFormat,
		TextOutput:       true,
		DisableTimestamp: false,
	}
}

// InitLogger initializes the arbor logger from the logging configuration.
// File output goes to logs/valeo.log next to the executable.
func InitLogger(config *Config) arbor.ILogger {
	logger := arbor.NewLogger()

	timeFormat := config.Logging.TimeFormat
	if timeFormat == "" {
		timeFormat = defaultTimeFormat
	}

	toFile := false
	toConsole := false
	for _, output := range config.Logging.Output {
		switch output {
		case "file":
			toFile = true
		case "stdout", "console":
			toConsole = true
		}
	}

	if toFile {
		logFile, err := resolveLogFile()
		if err != nil {
			fmt.Printf("Warning: %v, falling back to console logging\n", err)
			toConsole = true
		} else {
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:             models.LogWriterTypeFile,
				FileName:         logFile,
				TimeFormat:       timeFormat,
				MaxSize:          logFileMaxSize,
				MaxBackups:       logFileBackups,
				TextOutput:       true,
				DisableTimestamp: false,
			})
		}
	}

	if toConsole {
		logger = logger.WithConsoleWriter(consoleWriter(timeFormat))
	}

	return logger.WithLevelFromString(config.Logging.Level)
}

// resolveLogFile returns the log file path under logs/ next to the
// executable, creating the directory if needed.
func resolveLogFile() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	logsDir := filepath.Join(filepath.Dir(execPath), "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create logs directory: %w", err)
	}

	return filepath.Join(logsDir, "valeo.log"), nil
}
