package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ohoucrawl/pkg/config"
	"ohoucrawl/pkg/crawler"
	"ohoucrawl/pkg/logger"
	"ohoucrawl/pkg/ohou"
	"ohoucrawl/pkg/storage"
	"ohoucrawl/pkg/ui"
)

var (
	// Crawl command flags
	category        string
	limit           int
	outputPath      string
	outputFormat    string
	overwrite       bool
	continueOnError bool
	insecure        bool
	baseURL         string
	timeout         time.Duration
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl <query>...",
	Short: "Crawl ohou.se for one or more search queries",
	Long: `Crawl the ohou.se listing of one content type for each query in turn.

For advices and projects every listed item's detail page is fetched and its
text and keyword tags extracted. Feed cards already carry both in the listing,
so no detail page is requested for them.

By default the first failing query stops the run and the records of the
queries before it are still written. With --continue-on-error a failing query
is skipped and the remaining ones are crawled.`,
	Example: `  # Crawl every tip matching "kitchen" and print JSON
  ohoucrawl crawl kitchen

  # First 250 projects for two queries, saved as YAML
  ohoucrawl crawl --type projects --limit 250 -o results.yaml kitchen bathroom

  # Feed cards as a table
  ohoucrawl crawl --type feeds --format table plant`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().StringVarP(&category, "type", "t", "advices", "content type: advices, projects or feeds")
	crawlCmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum items per query (default: everything listed; 0 requests none)")
	crawlCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write results to this file instead of stdout")
	crawlCmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format: json, jsonl, yaml or table")
	crawlCmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing output file")
	crawlCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "keep crawling the remaining queries after one fails")
	crawlCmd.Flags().BoolVar(&insecure, "insecure", true, "skip TLS certificate verification")
	crawlCmd.Flags().StringVar(&baseURL, "base-url", "", "upstream host (default https://ohou.se)")
	crawlCmd.Flags().DurationVar(&timeout, "timeout", 0, "per-request timeout (default 30s)")
}

// commandLineFlags collects the flags the user actually set, keyed the way
// config.MergeCommandLineFlags expects
func commandLineFlags(cmd *cobra.Command) map[string]interface{} {
	fs := cmd.Flags()
	flags := make(map[string]interface{})

	if fs.Changed("type") {
		flags["type"] = category
	}
	if fs.Changed("limit") {
		flags["limit"] = limit
	}
	if fs.Changed("output") {
		flags["output"] = outputPath
	}
	if fs.Changed("format") {
		flags["format"] = outputFormat
	}
	if fs.Changed("overwrite") {
		flags["overwrite"] = overwrite
	}
	if fs.Changed("continue-on-error") {
		flags["continue-on-error"] = continueOnError
	}
	if fs.Changed("insecure") {
		flags["insecure"] = insecure
	}
	if fs.Changed("base-url") {
		flags["base-url"] = baseURL
	}
	if fs.Changed("timeout") {
		flags["timeout"] = timeout
	}
	if fs.Changed("log-level") {
		flags["log-level"] = logLevel
	} else if quiet {
		flags["log-level"] = "error"
	}

	return flags
}

func runCrawl(cmd *cobra.Command, args []string) error {
	queries := make([]string, 0, len(args))
	for _, a := range args {
		if q := strings.TrimSpace(a); q != "" {
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		return fmt.Errorf("no non-empty query given")
	}

	cfg, err := config.Load(configFile, commandLineFlags(cmd))
	if err != nil {
		return err
	}

	if cfg.Output.Path != "" && !cmd.Flags().Changed("format") {
		cfg.Output.Format = string(storage.FormatForPath(cfg.Output.Path, storage.Format(cfg.Output.Format)))
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Debug("ohoucrawl starting")

	kind, err := ohou.ParseCategory(cfg.Crawl.Category)
	if err != nil {
		return err
	}

	manager, err := storage.NewManager(&cfg.Output, log)
	if err != nil {
		return err
	}
	if cfg.Output.Path != "" && !cfg.Output.Overwrite && manager.Exists(cfg.Output.Path) {
		return fmt.Errorf("output file %s already exists (use --overwrite to replace it)", cfg.Output.Path)
	}

	opts := crawler.Options{
		Category:        kind,
		ContinueOnError: cfg.Crawl.ContinueOnError,
	}
	if cfg.Crawl.Limit != nil {
		n := *cfg.Crawl.Limit
		opts.Limit = &n
	}

	ui.PrintInfo("Type", kind.String())
	ui.PrintInfo("Queries", strings.Join(queries, ", "))
	if opts.Limit != nil {
		ui.PrintInfo("Limit per query", fmt.Sprintf("%d", *opts.Limit))
	}
	if cfg.HTTP.InsecureSkipVerify {
		ui.PrintWarning("TLS certificate verification is disabled")
	}

	client := ohou.NewClient(&cfg.HTTP, log)
	c := crawler.New(client, client.BaseURL(), log)

	records, runErr := c.Run(cmd.Context(), queries, opts)
	if runErr != nil && len(records) == 0 {
		return runErr
	}

	if cfg.Output.Path == "" {
		err = manager.Write(cmd.OutOrStdout(), records)
	} else {
		err = manager.Save(cfg.Output.Path, records)
	}
	if err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	if runErr != nil {
		ui.PrintWarning(fmt.Sprintf("Wrote %d records before the failure", len(records)))
		return runErr
	}

	if cfg.Output.Path != "" {
		ui.PrintSuccess(fmt.Sprintf("Saved %d records to %s", len(records), cfg.Output.Path))
	} else {
		ui.PrintSuccess(fmt.Sprintf("Crawled %d records", len(records)))
	}
	return nil
}
