// Package cli is BIQL's command-line front end: a single flattened cobra
// command implementing the options table of §6, plus an interactive shell
// when no query is given. Grounded on the teacher's internal/cli/root.go
// and query.go, flattened from cio's GCS/BigQuery sub-verb tree to BIQL's
// one verb.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/astewartau/biql/engine"
	"github.com/astewartau/biql/internal/config"
	"github.com/astewartau/biql/query"
)

// Exit codes per §6/§7.
const (
	ExitOK            = 0
	ExitSyntaxError   = 1
	ExitDatasetError  = 2
	ExitOutputError   = 3
	ExitArgumentError = 4
)

var (
	flagDataset      string
	flagFormat       string
	flagOutput       string
	flagValidate     bool
	flagValidateOnly bool
	flagShowStats    bool
	flagShowEntities bool
	flagDebug        bool
	flagProfile      bool

	versionInfo = VersionInfo{Version: "dev", Commit: "none", Date: "unknown", BuiltBy: "unknown"}
)

// VersionInfo holds version information set by ldflags at build time.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
	BuiltBy string
}

// SetVersionInfo sets the version information cobra's --version flag reports.
func SetVersionInfo(version, commit, date, builtBy string) {
	versionInfo = VersionInfo{Version: version, Commit: commit, Date: date, BuiltBy: builtBy}
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
}

var rootCmd = &cobra.Command{
	Use:           "biql [QUERY]",
	Short:         "Query BIDS datasets with a SQL-like query language",
	Version:       versionInfo.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `biql runs BIQL queries against a BIDS neuroimaging dataset: filter files
by entities and sidecar metadata, group and aggregate, and render the
result as json, table, csv, tsv, or a bare list of paths.

Examples:
  # Run a query against the dataset in the current directory
  biql "task=rest AND datatype=func"

  # Select specific entities and metadata, write csv to a file
  biql -f csv -o out.csv "SELECT sub, task, metadata.RepetitionTime WHERE datatype=func"

  # Validate a query without running it
  biql --validate-only "SELECT * WHERE sub=01"

  # Launch the interactive shell
  biql -d /path/to/dataset`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRoot,
}

func init() {
	rootCmd.Flags().StringVarP(&flagDataset, "dataset", "d", "", "dataset root (default: current directory, or BIQL_DATASET_PATH)")
	rootCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "output format: json (default), table, csv, tsv, paths")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write output to file instead of stdout")
	rootCmd.Flags().BoolVarP(&flagValidate, "validate", "v", false, "parse only; print \"Query syntax is valid\" on success")
	rootCmd.Flags().BoolVar(&flagValidateOnly, "validate-only", false, "parse only; exit 0/1 based on validity, no output")
	rootCmd.Flags().BoolVar(&flagShowStats, "show-stats", false, "append dataset stats to output")
	rootCmd.Flags().BoolVar(&flagShowEntities, "show-entities", false, "list available entities and their distinct values")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "emit parse/evaluation trace on stderr")
	rootCmd.Flags().BoolVar(&flagProfile, "profile", false, "emit elapsed time on stderr (memory use is not reported)")
}

// Execute runs the root command and returns the process exit code to use.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if ec, ok := err.(exitError); ok {
			if ec.message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", ec.message)
			}
			return ec.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitArgumentError
	}
	return ExitOK
}

// exitError carries a specific process exit code through cobra's error
// return, since cobra itself only knows success/failure.
type exitError struct {
	code    int
	message string
}

func (e exitError) Error() string { return e.message }

func newExitError(code int, format string, args ...any) error {
	return exitError{code: code, message: fmt.Sprintf(format, args...)}
}

func runRoot(cmd *cobra.Command, args []string) error {
	started := time.Now()

	cfg, err := config.Load("")
	if err != nil {
		return newExitError(ExitArgumentError, "loading config: %v", err)
	}

	dataset := resolveDataset(flagDataset, cfg)
	outputFormat := resolveFormat(flagFormat, cfg)

	debugf := func(format string, a ...any) {
		if flagDebug {
			fmt.Fprintf(os.Stderr, color.YellowString("[debug] ")+format+"\n", a...)
		}
	}

	if len(args) == 0 && !flagValidate && !flagValidateOnly {
		return runShell(context.Background(), dataset, outputFormat, debugf)
	}

	if len(args) == 0 {
		return newExitError(ExitArgumentError, "a query argument is required with --validate/--validate-only")
	}
	queryText := args[0]

	if flagValidateOnly {
		if _, err := query.Parse(queryText); err != nil {
			return exitError{code: ExitSyntaxError}
		}
		return nil
	}

	if flagValidate {
		if _, err := query.Parse(queryText); err != nil {
			fmt.Fprintf(os.Stderr, "Syntax error: %v\n", err)
			return exitError{code: ExitSyntaxError}
		}
		fmt.Println("Query syntax is valid")
		return nil
	}

	debugf("building index for %s", dataset)
	eng, err := engine.Build(context.Background(), dataset)
	if err != nil {
		return newExitError(ExitDatasetError, "%v", err)
	}

	out, err := openOutput(flagOutput)
	if err != nil {
		return newExitError(ExitOutputError, "%v", err)
	}
	defer out.Close()

	if flagShowEntities {
		printEntities(out, eng)
	}

	result, err := eng.RunQuery(queryText, outputFormat)
	if err != nil {
		if isSyntaxErr(err) {
			return exitError{code: ExitSyntaxError, message: err.Error()}
		}
		return newExitError(ExitOutputError, "%v", err)
	}
	if _, err := fmt.Fprint(out, result); err != nil {
		return newExitError(ExitOutputError, "%v", err)
	}

	if flagShowStats {
		printStats(out, eng)
	}

	for _, w := range eng.Warnings() {
		debugf("%s: %s: %s", w.Kind, w.Path, w.Message)
	}

	if flagProfile {
		fmt.Fprintf(os.Stderr, "time: %s\n", time.Since(started))
	}

	return nil
}

func resolveDataset(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	if cfg.DatasetPath != "" {
		return cfg.DatasetPath
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func resolveFormat(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	if cfg.OutputFormat != "" {
		return cfg.OutputFormat
	}
	return "json"
}

func openOutput(path string) (outputCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// outputCloser is an io.Writer that may need closing (a real file) or not
// (stdout, via nopCloser).
type outputCloser interface {
	io.Writer
	Close() error
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
