/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Scan configuration for enro. Reads settings from viper (flags, config
file and ENRO_ environment variables), applies defaults and validates everything
before a scan starts.
*/

package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/gobwas/glob"
	"github.com/kleascm/enro/pkg/aggregate"
	"github.com/kleascm/enro/pkg/classify"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. ENRO_MAX_BYTES.
const EnvPrefix = "ENRO"

// DefaultMaxBytes is the default capture length per file.
const DefaultMaxBytes int64 = 1024 * 1024

// Output formats.
const (
	FormatTable  = "table"
	FormatSimple = "simple"
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatHTML   = "html"
)

var formats = []string{FormatTable, FormatSimple, FormatJSON, FormatYAML, FormatHTML}

var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidThreshold = errors.New("invalid threshold")
)

// ScanConfig holds every setting a scan needs.
type ScanConfig struct {
	Paths       []string
	Recursive   bool
	FollowLinks bool
	MinSize     int64
	MaxBytes    int64 // 0 streams whole files
	Workers     int   // 0 selects runtime.NumCPU()

	Simple      bool
	SummaryOnly bool
	Format      string
	OutputDir   string
	NoColor     bool

	Threshold string   // entropy display filter, "min-max"
	Types     []string // category display filter
	Include   []string
	Exclude   []string

	Thresholds  classify.Thresholds
	HighEntropy float64
	Sniff       bool
	MetricsDir  string
}

// Default returns a configuration with every default applied.
func Default() *ScanConfig {
	return &ScanConfig{
		MaxBytes:    DefaultMaxBytes,
		Format:      FormatTable,
		Thresholds:  classify.DefaultThresholds(),
		HighEntropy: aggregate.DefaultHighEntropy,
		Sniff:       true,
	}
}

// SetDefaults registers defaults for keys that have no flag binding.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("max_bytes", d.MaxBytes)
	v.SetDefault("format", d.Format)
	v.SetDefault("thresholds.encrypted", d.Thresholds.Encrypted)
	v.SetDefault("thresholds.random", d.Thresholds.Random)
	v.SetDefault("thresholds.text_ratio", d.Thresholds.TextRatio)
	v.SetDefault("high_entropy", d.HighEntropy)
	v.SetDefault("sniff", d.Sniff)
}

// FromViper builds a ScanConfig from v. Call Validate before using the result.
func FromViper(v *viper.Viper) *ScanConfig {
	SetDefaults(v)

	return &ScanConfig{
		Paths:       v.GetStringSlice("paths"),
		Recursive:   v.GetBool("recursive"),
		FollowLinks: v.GetBool("follow_links"),
		MinSize:     v.GetInt64("min_size"),
		MaxBytes:    v.GetInt64("max_bytes"),
		Workers:     v.GetInt("workers"),
		Simple:      v.GetBool("simple"),
		SummaryOnly: v.GetBool("summary_only"),
		Format:      strings.ToLower(v.GetString("format")),
		OutputDir:   v.GetString("output_dir"),
		NoColor:     v.GetBool("no_color"),
		Threshold:   v.GetString("threshold"),
		Types:       v.GetStringSlice("types"),
		Include:     v.GetStringSlice("include"),
		Exclude:     v.GetStringSlice("exclude"),
		Thresholds: classify.Thresholds{
			Encrypted: v.GetFloat64("thresholds.encrypted"),
			Random:    v.GetFloat64("thresholds.random"),
			TextRatio: v.GetFloat64("thresholds.text_ratio"),
		},
		HighEntropy: v.GetFloat64("high_entropy"),
		Sniff:       v.GetBool("sniff"),
		MetricsDir:  v.GetString("metrics_dir"),
	}
}

// Validate checks the configuration and normalizes derived fields.
// Simple mode forces the simple format.
func (c *ScanConfig) Validate() error {
	if len(c.Paths) == 0 {
		return fmt.Errorf("%w: at least one path is required", ErrInvalidConfig)
	}
	if c.MinSize < 0 {
		return fmt.Errorf("%w: min size must not be negative", ErrInvalidConfig)
	}
	if c.MaxBytes < 0 {
		return fmt.Errorf("%w: max bytes must not be negative", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}

	if c.Simple {
		c.Format = FormatSimple
	}
	if c.Format == "" {
		c.Format = FormatTable
	}
	if !validFormat(c.Format) {
		return fmt.Errorf("%w: unknown format %q (expected one of %s)", ErrInvalidConfig, c.Format, strings.Join(formats, ", "))
	}

	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, err)
	}
	if c.HighEntropy <= 0 || c.HighEntropy > 8 {
		return fmt.Errorf("%w: high entropy threshold must lie in (0, 8]", ErrInvalidThreshold)
	}

	if c.Threshold != "" {
		if _, err := ParseRange(c.Threshold); err != nil {
			return err
		}
	}
	if _, err := ParseKinds(c.Types); err != nil {
		return err
	}

	for _, pattern := range append(append([]string{}, c.Include...), c.Exclude...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("%w: bad glob %q: %v", ErrInvalidConfig, pattern, err)
		}
	}
	return nil
}

// EntropyRange returns the parsed display filter, or nil when none is set.
func (c *ScanConfig) EntropyRange() (*Range, error) {
	if c.Threshold == "" {
		return nil, nil
	}
	r, err := ParseRange(c.Threshold)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Kinds returns the parsed category filter.
func (c *ScanConfig) Kinds() ([]classify.Kind, error) {
	return ParseKinds(c.Types)
}

func validFormat(f string) bool {
	for _, known := range formats {
		if f == known {
			return true
		}
	}
	return false
}
