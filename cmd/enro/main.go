/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Main command-line interface for enro. Wires the scan, watch, signatures
and check commands, the persistent logging and configuration flags, and their viper
bindings.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/enro/cmd/enro/commands"
	"github.com/kleascm/enro/pkg/aggregate"
	"github.com/kleascm/enro/pkg/config"
	"github.com/kleascm/enro/pkg/watch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "enro",
		Short: "enro - file content classification by signature and entropy",
		Long: `enro classifies files by their content rather than their names. Each file is
matched against a table of magic-number signatures, sniffed for common media and
document formats, and measured for Shannon entropy to tell encrypted, random, text and
binary data apart. Directories, single files and object storage buckets can be scanned.`,
		Version:       commands.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().String("config", "", "Configuration file path (yaml, toml or json)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().String("log-dir", "", "Also write logs to this directory")
	rootCmd.PersistentFlags().Int("log-max-files", 10, "Maximum number of log files to keep")
	rootCmd.PersistentFlags().Bool("log-compress", false, "Compress rotated log files")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))
	viper.BindPFlag("log_compress", rootCmd.PersistentFlags().Lookup("log-compress"))
	viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.AddCommand(newScanCommand())
	rootCmd.AddCommand(newWatchCommand())

	// Add signatures command
	signaturesCmd := &cobra.Command{
		Use:   "signatures",
		Short: "List the built-in signature table",
		Long: `List every magic-number signature in priority order with its category, offset
and byte pattern. Wildcard bytes are shown as ??.`,
		Args: cobra.NoArgs,
		RunE: commands.ListSignatures,
	}
	signaturesCmd.Flags().Bool("json", false, "Print the table as JSON")
	rootCmd.AddCommand(signaturesCmd)

	// Add check command for built-in self-checks
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Perform built-in self-checks",
		Long: `Validate the effective configuration, the signature table and the classifier,
and confirm that the output and log directories are usable. Useful in CI before a scan.`,
		Args:    cobra.NoArgs,
		PreRunE: commands.BindFlags(map[string]string{"output-dir": "output_dir", "max-bytes": "max_bytes"}),
		RunE:    commands.PerformSelfCheck,
	}
	checkCmd.Flags().StringP("output-dir", "o", "", "Output directory or bucket URL to check")
	checkCmd.Flags().Int64P("max-bytes", "b", config.DefaultMaxBytes, "Bytes read per file (0 = whole file)")
	rootCmd.AddCommand(checkCmd)

	return rootCmd
}

func newScanCommand() *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan PATH...",
		Short: "Classify files in directories, files or buckets",
		Long: `Scan each PATH and classify every file by content. PATH may be a file, a
directory or a bucket URL (file://, mem://, s3://, gs://). Results are printed as a
table by default; --simple prints CSV for scripting.`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: commands.BindFlags(commands.ScanFlagKeys),
		RunE:    commands.RunScan,
	}

	scanCmd.Flags().BoolP("recursive", "r", false, "Scan directories recursively")
	scanCmd.Flags().Bool("follow-links", false, "Follow symbolic links while walking")
	scanCmd.Flags().Int64P("min-size", "m", 0, "Skip files smaller than this many bytes")
	scanCmd.Flags().Int64P("max-bytes", "b", config.DefaultMaxBytes, "Bytes read per file (0 = whole file)")
	scanCmd.Flags().IntP("workers", "j", 0, "Number of parallel workers (0 = auto-detect)")
	scanCmd.Flags().BoolP("simple", "s", false, "Plain CSV output without colors")
	scanCmd.Flags().Bool("summary-only", false, "Only print the summary")
	scanCmd.Flags().StringP("threshold", "t", "", "Only show files with entropy in MIN-MAX, e.g. 7.5-8.0")
	scanCmd.Flags().String("format", config.FormatTable, "Output format (table, simple, json, yaml, html)")
	scanCmd.Flags().StringP("output-dir", "o", "", "Save the report to a directory or bucket URL instead of stdout")
	scanCmd.Flags().StringSlice("type", nil, "Only show these categories (repeatable or comma separated)")
	scanCmd.Flags().StringSlice("include", nil, "Only scan paths matching these globs")
	scanCmd.Flags().StringSlice("exclude", nil, "Skip paths matching these globs")
	scanCmd.Flags().Float64("high-entropy", aggregate.DefaultHighEntropy, "Entropy above which a file counts as high entropy")
	scanCmd.Flags().Bool("no-sniff", false, "Disable content sniffing for media and document formats")
	scanCmd.Flags().String("metrics-dir", "", "Write a JSON metrics snapshot of the scan to this directory")

	return scanCmd
}

func newWatchCommand() *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch DIR...",
		Short: "Classify files as they are created or modified",
		Long: `Watch each DIR and classify files once they stop changing. Every classification
is printed as it happens and the running summary is printed on Ctrl+C.`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: commands.BindFlags(commands.WatchFlagKeys),
		RunE:    commands.RunWatch,
	}

	watchCmd.Flags().BoolP("recursive", "r", false, "Watch subdirectories too")
	watchCmd.Flags().Int64P("min-size", "m", 0, "Skip files smaller than this many bytes")
	watchCmd.Flags().Int64P("max-bytes", "b", config.DefaultMaxBytes, "Bytes read per file (0 = whole file)")
	watchCmd.Flags().StringSlice("include", nil, "Only classify paths matching these globs")
	watchCmd.Flags().StringSlice("exclude", nil, "Skip paths matching these globs")
	watchCmd.Flags().Bool("no-sniff", false, "Disable content sniffing for media and document formats")
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before a changed file is classified")

	return watchCmd
}
