/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics_writer.go
Description: Utility for writing scan summaries and test results to a metrics directory.
Handles timestamped, versioned, and type-specific subdirectory naming.
Ensures directories exist and writes JSON files for easy analysis.
*/

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultMetricsDir is used when no directory is given.
const DefaultMetricsDir = "metrics"

// WriteMetricsResult writes result as JSON under <baseDir>/<kind>/ and returns the file path.
// File names look like 2024-06-11_01-30-00_scan_v1.0.0.json.
func WriteMetricsResult(baseDir string, kind string, version string, result interface{}) (string, error) {
	if baseDir == "" {
		baseDir = DefaultMetricsDir
	}
	if kind == "" {
		return "", fmt.Errorf("metrics kind must not be empty")
	}

	metricsDir := filepath.Join(baseDir, kind)
	if err := os.MkdirAll(metricsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create metrics directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s_v%s.json", timestamp, kind, version)
	filePath := filepath.Join(metricsDir, filename)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write metrics file: %w", err)
	}

	return filePath, nil
}
