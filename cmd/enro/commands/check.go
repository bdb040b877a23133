/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: check.go
Description: Built-in self-checks for enro: configuration validation, signature table
sanity, classifier smoke test, output directory writability and log directory health.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kleascm/enro/pkg/classify"
	"github.com/kleascm/enro/pkg/logging"
	"github.com/kleascm/enro/pkg/scanner"
	"github.com/kleascm/enro/pkg/signature"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gocloud.dev/blob"
)

type selfCheck struct {
	name     string
	function func() error
}

// PerformSelfCheck performs comprehensive system validation
func PerformSelfCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("🔍 enro - System Self-Check")
	fmt.Println("===========================")
	fmt.Println()

	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	checks := []selfCheck{
		{"Configuration Validation", checkConfiguration},
		{"Signature Table", func() error { return checkSignatureTable(signature.All()) }},
		{"Classifier", checkClassifier},
		{"Output Directory", func() error { return checkOutputDir(viper.GetString("output_dir")) }},
		{"Log Directory", func() error { return checkLogDir(viper.GetString("log_dir")) }},
	}

	passed := runChecks(checks)
	total := len(checks)

	fmt.Println()
	fmt.Printf("📊 Results: %d/%d checks passed\n", passed, total)

	if passed == total {
		fmt.Println("✨ All checks passed! enro is ready to scan.")
		return nil
	}
	fmt.Println("⚠️  Some checks failed. Please address the issues before scanning.")
	return fmt.Errorf("%d/%d checks failed", total-passed, total)
}

func runChecks(checks []selfCheck) int {
	passed := 0
	for _, check := range checks {
		fmt.Printf("🔍 %s... ", check.name)
		if err := check.function(); err != nil {
			fmt.Printf("❌ FAILED: %v\n", err)
		} else {
			fmt.Println("✅ PASSED")
			passed++
		}
	}
	return passed
}

// checkConfiguration validates the effective configuration against the current directory.
func checkConfiguration() error {
	paths := viper.GetStringSlice("paths")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	cfg, err := scanConfig(paths)
	if err != nil {
		return err
	}
	if cfg.MaxBytes > 0 && cfg.MaxBytes < int64(signature.MaxExtent()) {
		return fmt.Errorf("max_bytes %d is below the deepest signature (%d bytes)", cfg.MaxBytes, signature.MaxExtent())
	}
	return nil
}

// checkSignatureTable verifies that every signature can match and fits in the head buffer.
func checkSignatureTable(sigs []signature.Signature) error {
	if len(sigs) == 0 {
		return fmt.Errorf("signature table is empty")
	}
	for _, sig := range sigs {
		switch {
		case sig.Label == "":
			return fmt.Errorf("signature at offset %d has no label", sig.Offset)
		case len(sig.Magic) == 0:
			return fmt.Errorf("signature %s has no magic bytes", sig.Label)
		case sig.Offset < 0:
			return fmt.Errorf("signature %s has a negative offset", sig.Label)
		case sig.Mask != nil && len(sig.Mask) != len(sig.Magic):
			return fmt.Errorf("signature %s mask length %d does not match magic length %d", sig.Label, len(sig.Mask), len(sig.Magic))
		case sig.Significant() == 0:
			return fmt.Errorf("signature %s is all wildcards", sig.Label)
		case sig.Offset+sig.Len() > scanner.HeadSize:
			return fmt.Errorf("signature %s extends past the %d byte head", sig.Label, scanner.HeadSize)
		}

		// the pattern must match a buffer built from itself
		buf := make([]byte, sig.Offset+sig.Len())
		copy(buf[sig.Offset:], sig.Magic)
		if !sig.Matches(buf) {
			return fmt.Errorf("signature %s does not match its own pattern", sig.Label)
		}
	}
	return nil
}

// checkClassifier runs the classifier over known samples.
func checkClassifier() error {
	c := classify.New()
	samples := []struct {
		name string
		data []byte
		want classify.Kind
	}{
		{"zip header", append([]byte("PK\x03\x04"), make([]byte, 32)...), classify.KindArchive},
		{"pdf header", []byte("%PDF-1.7\n"), classify.KindDocument},
		{"plain text", []byte(strings.Repeat("enro self check\n", 8)), classify.KindPlainText},
		{"empty file", nil, classify.KindPlainText},
	}
	for _, s := range samples {
		if got := c.Classify(s.data); got.Kind != s.want {
			return fmt.Errorf("%s classified as %s, expected %s", s.name, got, s.want.Title())
		}
	}
	return nil
}

// checkOutputDir verifies that reports can be written to dir.
func checkOutputDir(dir string) error {
	if dir == "" {
		return nil
	}
	if scanner.IsBucketURL(dir) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		bkt, err := blob.OpenBucket(ctx, dir)
		if err != nil {
			return fmt.Errorf("cannot open bucket: %w", err)
		}
		defer bkt.Close()
		ok, err := bkt.IsAccessible(ctx)
		if err != nil {
			return fmt.Errorf("cannot reach bucket: %w", err)
		}
		if !ok {
			return fmt.Errorf("bucket %s is not accessible", dir)
		}
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	testFile := filepath.Join(dir, ".enro_test_write")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return fmt.Errorf("cannot write to output directory: %w", err)
	}
	return os.Remove(testFile)
}

// checkLogDir reports log statistics and fails when previous runs logged errors.
func checkLogDir(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	stats, err := logging.NewLogManager(dir, viper.GetInt("log_max_files"), false).GetLogStats()
	if err != nil {
		return fmt.Errorf("cannot read log directory: %w", err)
	}
	analysis, err := logging.AnalyzeLogs(dir)
	if err != nil {
		return fmt.Errorf("cannot analyze logs: %w", err)
	}

	fmt.Printf("(%d files, %d classifications, %d read errors) ", stats.TotalFiles, analysis.Classifications, analysis.ReadErrors)
	if analysis.ErrorCount > 0 {
		return fmt.Errorf("%d error entries in %s", analysis.ErrorCount, dir)
	}
	return nil
}
