package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"ohoucrawl/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ohoucrawl",
	Short: "Crawl tips, projects and feed cards from ohou.se",
	Long: `ohoucrawl searches the ohou.se content listings for one or more queries and
collects the text and keyword tags of every matching item.

Three content types can be crawled:
  - advices   short tips; each detail page is fetched and parsed
  - projects  long-form projects; each detail page is fetched and parsed
  - feeds     short feed cards; text and tags come straight from the listing

Results are written as JSON, JSON lines, YAML or a table, to stdout or a file.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.SetQuietMode(true)
		}
		if cmd.Name() == "crawl" {
			ui.PrintBanner()
		}
	},
}

// Execute runs the root command and returns the process exit code
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.PrintError("Error", err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: ./ohoucrawl.yaml, then ~/.config/ohoucrawl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors and results")

	rootCmd.SetVersionTemplate(`ohoucrawl {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
