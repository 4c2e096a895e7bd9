package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
	current   Config
)

// Configure installs the logging section of the loaded configuration. Loggers
// created before the call are rebuilt on their next NewLogger lookup.
func Configure(cfg Config) {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	current = cfg
	loggers = make(map[string]*logrus.Entry)
}

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logCfg := current
	logger := logrus.New()

	// Configure Level
	levelStr := "info"
	if os.Getenv("PACKERCI_LOG_LEVEL") != "" {
		levelStr = os.Getenv("PACKERCI_LOG_LEVEL")
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("PACKERCI_LOG_CALLER") == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	var writers []io.Writer

	// The file sink is opt-in; CI workspaces are not a place to drop stray log dirs.
	if logCfg.File.Enabled && logCfg.File.Path != "" {
		logFilePath := expandPath(logCfg.File.Path)
		dir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Warnf("Failed to create log directory %s: %v", dir, err)
		} else if file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			logger.Warnf("Failed to open log file %s: %v", logFilePath, err)
		} else {
			writers = append(writers, file)
		}
	}

	if shouldLogToStderr(logCfg.Format.StructuredToStderr, logger.GetLevel()) {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// shouldLogToStderr decides the stderr sink. In "auto" mode structured logs
// reach stderr when debugging or when stderr is not a terminal, which is the
// normal case inside a CI executor.
func shouldLogToStderr(mode string, level logrus.Level) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	isDebug := os.Getenv("PACKERCI_DEBUG") == "1" || level >= logrus.DebugLevel
	isInteractive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	return isDebug || !isInteractive
}

// expandPath expands tilde in file paths
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
