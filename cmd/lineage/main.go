package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/jward/lineage/internal/config"
	"github.com/jward/lineage/internal/logger"
)

var (
	flagConfig   string
	flagDB       string
	flagFormat   string
	flagLogLevel string
)

// cfg is populated by the root PersistentPreRunE before any command runs.
var cfg *config.Config

// stdout is where command results go. Tests replace it.
var stdout io.Writer = os.Stdout

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "lineage",
	Short:         "Linearize multi-parent hierarchies and resolve inherited properties",
	Long:          "Lineage builds categorizations from dotted names, Java sources or YAML manifests, linearizes them bottom-up or top-down, and resolves properties along the result.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	// No Run: prints help by default.
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default: lineage.yaml in the working directory or a parent)")
	pf.StringVar(&flagDB, "db", "", "snapshot database path (default: .lineage/lineage.db relative to repo root)")
	pf.StringVar(&flagFormat, "format", "json", "output format: json|text")
	pf.StringVar(&flagLogLevel, "log-level", "warn", "log level: debug|info|warn|error")

	rootCmd.AddCommand(namesCmd)
	rootCmd.AddCommand(javaCmd)
	rootCmd.AddCommand(manifestCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(statsCmd)
}

// loadConfig merges defaults, the config file, LINEAGE_* variables and the
// flags the user actually set, then initializes logging.
func loadConfig(cmd *cobra.Command) error {
	v, err := config.New(flagConfig)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	for key, name := range map[string]string{"db": "db", "format": "format", "log.level": "log-level"} {
		if f := flags.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return errors.Wrapf(err, "bind flag --%s", name)
			}
		}
	}
	c, err := config.Load(v)
	if err != nil {
		return err
	}
	if err := validateFormat(c.Format); err != nil {
		return err
	}
	if err := logger.Initialize(c.Log.JSON, c.Log.Level); err != nil {
		return err
	}
	cfg = c
	logger.Logger.Debugw("config loaded",
		logger.FieldCommand, cmd.CommandPath(),
		"format", c.Format,
		"db", c.DB,
	)
	return nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding .git.
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the configured database path, made absolute
// against the repo root containing the working directory.
func resolveDBPath() (string, error) {
	if filepath.IsAbs(cfg.DB) {
		return cfg.DB, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "getting cwd")
	}
	return filepath.Join(findRepoRoot(cwd), cfg.DB), nil
}
