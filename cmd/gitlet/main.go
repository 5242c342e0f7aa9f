// Package main provides the gitlet CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/systemshift/gitlet/internal/errs"
	"github.com/systemshift/gitlet/internal/repo"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	workDir string
	verbose bool
	logger  = zap.NewNop()
)

func main() {
	_ = godotenv.Load()
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		if msg, ok := errs.Message(err); ok {
			fmt.Println(msg)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gitlet",
	Short: "A small local version-control system",
	Long: `gitlet keeps content-addressed snapshots of a working directory.

Files are staged with add and rm, recorded with commit, and moved between
with checkout, reset and merge. All state lives in .gitlet/.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&workDir, "dir", "", "Working directory (default $GITLET_DIR or .)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log operations to stderr")
	rootCmd.Version = Version
}

func setup(cmd *cobra.Command, args []string) error {
	if workDir == "" {
		workDir = os.Getenv("GITLET_DIR")
	}
	if workDir == "" {
		workDir = "."
	}
	l, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	logger = l
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func openRepo() (*repo.Repository, error) {
	return repo.Open(workDir, repo.WithLogger(logger))
}
