/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Log file management for enro: retention, gzip compression, directory
statistics and a simple analyzer that counts scan events in past logs.
*/

package logging

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogManager applies the retention policy to a log directory
type LogManager struct {
	logDir   string
	maxFiles int
	compress bool
}

// NewLogManager creates a new log manager
func NewLogManager(logDir string, maxFiles int, compress bool) *LogManager {
	return &LogManager{
		logDir:   logDir,
		maxFiles: maxFiles,
		compress: compress,
	}
}

func (lm *LogManager) files(pattern string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(lm.logDir, filePrefix+pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to glob log files: %w", err)
	}
	return files, nil
}

// CompressLogs gzips every plain log file except keep
func (lm *LogManager) CompressLogs(keep string) error {
	files, err := lm.files("*.log")
	if err != nil {
		return err
	}
	for _, file := range files {
		if file == keep {
			continue
		}
		if err := compressFile(file); err != nil {
			return fmt.Errorf("failed to compress %s: %w", file, err)
		}
	}
	return nil
}

// compressFile compresses a log file using gzip and removes the original
func compressFile(path string) error {
	source, err := os.Open(path)
	if err != nil {
		return err
	}
	defer source.Close()

	compressed, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer compressed.Close()

	gzipWriter := gzip.NewWriter(compressed)
	if _, err := io.Copy(gzipWriter, source); err != nil {
		gzipWriter.Close()
		return err
	}
	if err := gzipWriter.Close(); err != nil {
		return err
	}

	return os.Remove(path)
}

// CleanupOldLogs removes the oldest log files beyond maxFiles
func (lm *LogManager) CleanupOldLogs() error {
	files, err := lm.files("*.log*")
	if err != nil {
		return err
	}
	if lm.maxFiles <= 0 || len(files) <= lm.maxFiles {
		return nil
	}

	// names embed the creation timestamp, so lexical order is oldest first
	sort.Strings(files)

	for _, file := range files[:len(files)-lm.maxFiles] {
		if err := os.Remove(file); err != nil {
			return fmt.Errorf("failed to remove file %s: %w", file, err)
		}
	}
	return nil
}

// LogStats holds statistics about log files
type LogStats struct {
	TotalFiles        int       `json:"total_files"`
	TotalSize         int64     `json:"total_size"`
	CompressedFiles   int       `json:"compressed_files"`
	UncompressedFiles int       `json:"uncompressed_files"`
	OldestFile        time.Time `json:"oldest_file"`
	NewestFile        time.Time `json:"newest_file"`
}

// GetLogStats returns statistics about log files
func (lm *LogManager) GetLogStats() (*LogStats, error) {
	files, err := lm.files("*.log*")
	if err != nil {
		return nil, err
	}

	stats := &LogStats{}
	for _, file := range files {
		stat, err := os.Stat(file)
		if err != nil {
			continue
		}

		stats.TotalFiles++
		stats.TotalSize += stat.Size()
		if stats.OldestFile.IsZero() || stat.ModTime().Before(stats.OldestFile) {
			stats.OldestFile = stat.ModTime()
		}
		if stat.ModTime().After(stats.NewestFile) {
			stats.NewestFile = stat.ModTime()
		}
		if strings.HasSuffix(file, ".gz") {
			stats.CompressedFiles++
		} else {
			stats.UncompressedFiles++
		}
	}
	return stats, nil
}

// LogAnalysis holds event counts gathered from plain log files
type LogAnalysis struct {
	LogFiles        int   `json:"log_files"`
	TotalLines      int64 `json:"total_lines"`
	WarningCount    int64 `json:"warning_count"`
	ErrorCount      int64 `json:"error_count"`
	Classifications int64 `json:"classifications"`
	Skips           int64 `json:"skips"`
	ReadErrors      int64 `json:"read_errors"`
	Summaries       int64 `json:"summaries"`
}

// AnalyzeLogs counts scan events in the plain (uncompressed) logs of dir
func AnalyzeLogs(dir string) (*LogAnalysis, error) {
	files, err := filepath.Glob(filepath.Join(dir, filePrefix+"*.log"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob log files: %w", err)
	}

	analysis := &LogAnalysis{LogFiles: len(files)}
	for _, file := range files {
		if err := analyzeFile(file, analysis); err != nil {
			return nil, fmt.Errorf("failed to analyze file %s: %w", file, err)
		}
	}
	return analysis, nil
}

func analyzeFile(path string, analysis *LogAnalysis) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		analyzeLine(scanner.Text(), analysis)
	}
	return scanner.Err()
}

func analyzeLine(line string, analysis *LogAnalysis) {
	analysis.TotalLines++

	upper := strings.ToUpper(line)
	switch {
	case strings.Contains(upper, "WARN"):
		analysis.WarningCount++
	case strings.Contains(upper, "ERROR"):
		analysis.ErrorCount++
	}

	switch {
	case strings.Contains(line, "File classified"):
		analysis.Classifications++
	case strings.Contains(line, "File skipped"):
		analysis.Skips++
	case strings.Contains(line, "Read failed"):
		analysis.ReadErrors++
	case strings.Contains(line, "Scan summary"):
		analysis.Summaries++
	}
}
