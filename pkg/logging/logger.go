/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger.go
Description: Logging system for enro. Wraps logrus with level and format selection,
optional timestamped log files with retention, and scan-specific helpers for
classifications, skipped files, read errors and summaries.
*/

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/kleascm/enro/pkg/aggregate"
	"github.com/kleascm/enro/pkg/classify"
	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warn"
	LogLevelError   LogLevel = "error"
	LogLevelFatal   LogLevel = "fatal"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatJSON   LogFormat = "json"
	LogFormatText   LogFormat = "text"
	LogFormatCustom LogFormat = "custom"
)

// log files are named <filePrefix><timestamp>.log
const filePrefix = "enro_"

// LoggerConfig holds the configuration for the logger
type LoggerConfig struct {
	Level     LogLevel  `json:"level"`
	Format    LogFormat `json:"format"`
	OutputDir string    `json:"output_dir"` // empty disables file output
	MaxFiles  int       `json:"max_files"`
	Timestamp bool      `json:"timestamp"`
	Caller    bool      `json:"caller"`
	Colors    bool      `json:"colors"`
	Compress  bool      `json:"compress"`

	// Console receives log output; defaults to stderr so reports on stdout stay clean.
	Console io.Writer `json:"-"`
}

// DefaultConfig returns a console-only info logger with the custom formatter.
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatCustom,
		MaxFiles:  10,
		Timestamp: true,
		Colors:    true,
	}
}

// Validate checks the LoggerConfig for invalid or missing values.
func (c *LoggerConfig) Validate() error {
	if c.OutputDir != "" && c.MaxFiles <= 0 {
		return fmt.Errorf("max_files must be positive")
	}
	switch c.Format {
	case LogFormatJSON, LogFormatText, LogFormatCustom:
	default:
		return fmt.Errorf("unsupported log format: %s", c.Format)
	}
	switch c.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError, LogLevelFatal:
	default:
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
	return nil
}

// Logger provides structured logging for scans
type Logger struct {
	config     *LoggerConfig
	logger     *logrus.Logger
	fields     logrus.Fields
	fileHandle *os.File
	logPath    string
	startTime  time.Time
}

// NewLogger creates a new logger instance
func NewLogger(config *LoggerConfig) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}

	l := &Logger{
		config:    config,
		logger:    logrus.New(),
		fields:    logrus.Fields{},
		startTime: time.Now(),
	}

	if err := l.setup(); err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	return l, nil
}

// setup configures the logger with the given configuration
func (l *Logger) setup() error {
	level, err := logrus.ParseLevel(string(l.config.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.logger.SetLevel(level)
	l.logger.SetReportCaller(l.config.Caller)

	if err := l.setFormatter(); err != nil {
		return err
	}

	console := l.config.Console
	if console == nil {
		console = os.Stderr
	}
	l.logger.SetOutput(console)

	return l.setupFileOutput(console)
}

// setFormatter configures the log formatter
func (l *Logger) setFormatter() error {
	callerPrettyfier := func(f *runtime.Frame) (string, string) {
		return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
	}

	switch l.config.Format {
	case LogFormatJSON:
		l.logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: callerPrettyfier,
		})

	case LogFormatText:
		l.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    l.config.Timestamp,
			TimestampFormat:  time.RFC3339,
			ForceColors:      l.config.Colors,
			DisableColors:    !l.config.Colors,
			CallerPrettyfier: callerPrettyfier,
		})

	case LogFormatCustom:
		l.logger.SetFormatter(&ScanFormatter{
			CustomFormatter: CustomFormatter{
				Timestamp: l.config.Timestamp,
				Caller:    l.config.Caller,
				Colors:    l.config.Colors,
			},
		})

	default:
		return fmt.Errorf("unsupported log format: %s", l.config.Format)
	}

	return nil
}

// setupFileOutput tees log output into a timestamped file under OutputDir
func (l *Logger) setupFileOutput(console io.Writer) error {
	if l.config.OutputDir == "" {
		return nil
	}

	if err := os.MkdirAll(l.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(l.config.OutputDir, fmt.Sprintf("%s%s.log", filePrefix, timestamp))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.fileHandle = file
	l.logPath = path
	l.logger.SetOutput(io.MultiWriter(console, file))

	l.logger.WithFields(logrus.Fields{
		"log_file": path,
		"level":    l.config.Level,
		"format":   l.config.Format,
	}).Debug("Logging initialized")

	return nil
}

// WithRunID returns a logger that tags every entry with the scan's run id.
// The copy shares output and file handles with l.
func (l *Logger) WithRunID(runID string) *Logger {
	c := *l
	c.fields = make(logrus.Fields, len(l.fields)+1)
	for k, v := range l.fields {
		c.fields[k] = v
	}
	c.fields["run_id"] = runID
	return &c
}

func (l *Logger) entry(fields map[string]interface{}) *logrus.Entry {
	e := l.logger.WithFields(l.fields)
	if len(fields) > 0 {
		e = e.WithFields(fields)
	}
	return e
}

// LogClassification logs the verdict for one file
func (l *Logger) LogClassification(path string, cls classify.Classification, entropy float64, size int64, fields map[string]interface{}) {
	l.entry(fields).WithFields(logrus.Fields{
		"path":    path,
		"type":    cls.Tag(),
		"entropy": entropy,
		"size":    size,
	}).Debug("File classified")
}

// LogSkip logs a file that never reached the classifier
func (l *Logger) LogSkip(path string, reason string, fields map[string]interface{}) {
	l.entry(fields).WithFields(logrus.Fields{
		"path":   path,
		"reason": reason,
	}).Debug("File skipped")
}

// LogReadError logs a file that could not be read
func (l *Logger) LogReadError(path string, err error, fields map[string]interface{}) {
	l.entry(fields).WithFields(logrus.Fields{
		"path":  path,
		"error": err.Error(),
	}).Warn("Read failed")
}

// LogSummary logs the final counts of a scan
func (l *Logger) LogSummary(s *aggregate.Summary, fields map[string]interface{}) {
	e := l.entry(fields).WithFields(logrus.Fields{
		"files":           s.Files,
		"average_entropy": s.AverageEntropy(),
		"high_entropy":    s.HighEntropy,
		"uptime":          time.Since(l.startTime),
	})
	for _, c := range s.Categories() {
		e = e.WithField(c.Name, c.Count)
	}
	e.Info("Scan summary")
}

// Close closes the log file and applies the retention policy
func (l *Logger) Close() error {
	if l.fileHandle == nil {
		return nil
	}
	if err := l.fileHandle.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	l.fileHandle = nil

	manager := NewLogManager(l.config.OutputDir, l.config.MaxFiles, l.config.Compress)
	if l.config.Compress {
		if err := manager.CompressLogs(l.logPath); err != nil {
			return fmt.Errorf("failed to compress log files: %w", err)
		}
	}
	if err := manager.CleanupOldLogs(); err != nil {
		return fmt.Errorf("failed to cleanup log files: %w", err)
	}
	return nil
}

// GetLogger returns the underlying logrus logger
func (l *Logger) GetLogger() *logrus.Logger {
	return l.logger
}

// FieldLogger returns an entry carrying the logger's base fields, for library code
// that accepts a logrus.FieldLogger.
func (l *Logger) FieldLogger() logrus.FieldLogger {
	return l.logger.WithFields(l.fields)
}

// LogPath returns the current log file, or "" when logging to the console only
func (l *Logger) LogPath() string {
	return l.logPath
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.entry(fields).Debug(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.entry(fields).Info(msg)
}

// Warning logs a warning message
func (l *Logger) Warning(msg string, fields map[string]interface{}) {
	l.entry(fields).Warn(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.entry(fields).Error(msg)
}
