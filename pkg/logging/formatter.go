/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Custom log formatters for enro. CustomFormatter renders colored,
human-friendly lines; ScanFormatter adds event prefixes and compact values for
scan events.
*/

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CustomFormatter renders one readable line per entry
type CustomFormatter struct {
	Timestamp bool
	Caller    bool
	Colors    bool
}

// Format formats a log entry
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return f.render(entry, "", f.formatValue), nil
}

func (f *CustomFormatter) render(entry *logrus.Entry, prefix string, value func(string, interface{}) string) []byte {
	var output strings.Builder

	if f.Timestamp {
		f.paint(&output, 36, entry.Time.Format("2006-01-02 15:04:05.000")) // Cyan
		output.WriteString(" ")
	}

	f.paint(&output, f.getLevelColor(entry.Level), strings.ToUpper(entry.Level.String()))
	output.WriteString(" ")

	if prefix != "" {
		f.paint(&output, 35, "["+prefix+"]") // Magenta
		output.WriteString(" ")
	}

	if f.Caller && entry.HasCaller() {
		f.paint(&output, 33, fmt.Sprintf("[%s:%d]", entry.Caller.File, entry.Caller.Line)) // Yellow
		output.WriteString(" ")
	}

	output.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		output.WriteString(" ")
		output.WriteString(f.formatFields(entry.Data, value))
	}

	output.WriteString("\n")
	return []byte(output.String())
}

func (f *CustomFormatter) paint(b *strings.Builder, color int, s string) {
	if f.Colors {
		fmt.Fprintf(b, "\033[%dm%s\033[0m", color, s)
		return
	}
	b.WriteString(s)
}

// getLevelColor returns the ANSI color code for a log level
func (f *CustomFormatter) getLevelColor(level logrus.Level) int {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return 37 // White
	case logrus.InfoLevel:
		return 32 // Green
	case logrus.WarnLevel:
		return 33 // Yellow
	case logrus.ErrorLevel:
		return 31 // Red
	case logrus.FatalLevel, logrus.PanicLevel:
		return 35 // Magenta
	default:
		return 37
	}
}

// formatFields renders key=value pairs sorted by key
func (f *CustomFormatter) formatFields(fields logrus.Fields, value func(string, interface{}) string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		v := value(key, fields[key])
		if f.Colors {
			parts = append(parts, fmt.Sprintf("\033[34m%s\033[0m=\033[32m%s\033[0m", key, v)) // Blue key, Green value
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", key, v))
		}
	}
	return strings.Join(parts, " ")
}

// formatValue formats a field value appropriately
func (f *CustomFormatter) formatValue(_ string, value interface{}) string {
	switch v := value.(type) {
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format("15:04:05.000")
	case string:
		if len(v) > 80 {
			return fmt.Sprintf("%s...", v[:80])
		}
		return v
	case []byte:
		if len(v) > 20 {
			return fmt.Sprintf("[%d bytes]", len(v))
		}
		return fmt.Sprintf("%x", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ScanFormatter tags scan events with a short prefix
type ScanFormatter struct {
	CustomFormatter
}

// Format formats scan log entries
func (f *ScanFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return f.render(entry, f.getScanPrefix(entry.Message), f.formatScanValue), nil
}

// getScanPrefix returns a prefix based on the log message
func (f *ScanFormatter) getScanPrefix(message string) string {
	switch {
	case strings.Contains(message, "File classified"):
		return "CLASSIFY"
	case strings.Contains(message, "File skipped"):
		return "SKIP"
	case strings.Contains(message, "Read failed"):
		return "READ"
	case strings.Contains(message, "Scan summary"):
		return "SUMMARY"
	case strings.Contains(message, "Watch"):
		return "WATCH"
	case strings.Contains(message, "Worker"):
		return "WORKER"
	default:
		return ""
	}
}

// formatScanValue formats scan-specific field values
func (f *ScanFormatter) formatScanValue(key string, value interface{}) string {
	switch key {
	case "entropy", "average_entropy":
		if e, ok := value.(float64); ok {
			return fmt.Sprintf("%.2f", e)
		}
	case "run_id":
		if s, ok := value.(string); ok && len(s) > 8 {
			return s[:8]
		}
	case "uptime":
		if d, ok := value.(time.Duration); ok {
			return d.Round(time.Millisecond).String()
		}
	}
	return f.formatValue(key, value)
}
