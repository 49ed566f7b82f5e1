package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ohoucrawl/pkg/config"
	"ohoucrawl/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage ohoucrawl configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (OHOUCRAWL_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'ohoucrawl.yaml'
unless a different path is specified with the --config flag.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging the configuration file,
.env files, environment variables and defaults.`,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Content type, output format and log level names
  - Value ranges
  - Log file directory accessibility`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# ohoucrawl configuration file
#
# Every option can also be set with an environment variable prefixed with
# OHOUCRAWL_, for example OHOUCRAWL_CATEGORY=projects or OHOUCRAWL_LIMIT=200.

# Upstream HTTP settings
http:
  # Host serving the listing and detail pages
  base_url: "https://ohou.se"

  # Per-request timeout
  timeout: 30s

  # Browser identity sent with every request
  # Leave empty to use the built-in Chrome user agent
  user_agent: ""

  # Skip TLS certificate verification
  insecure_skip_verify: true

# Crawl defaults
crawl:
  # Content type: advices, projects or feeds
  category: "advices"

  # Maximum items per query; leave unset to crawl everything listed
  # limit: 200

  # Keep crawling the remaining queries after one fails
  continue_on_error: false

# Result output
output:
  # Result file; leave empty to print to stdout
  path: ""

  # Format: json, jsonl, yaml, table
  format: "json"

  # Replace an existing result file
  overwrite: false

# Logging configuration
logging:
  # Log level: debug, info, warn, error, disabled
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stderr only
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "ohoucrawl.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file %s already exists; remove it first to regenerate", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	ui.PrintInfo("Next", "run 'ohoucrawl config validate' to check it")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprint(cmd.OutOrStdout(), string(data))

	source := configFile
	if source == "" {
		source = config.FindConfigFile()
	}
	if source == "" {
		source = "(none found)"
	}
	ui.PrintInfo("Configuration file", source)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = config.FindConfigFile()
	}
	if path == "" {
		return fmt.Errorf("no configuration file found; specify one with --config")
	}

	ui.PrintInfo("Validating configuration", path)

	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration has errors:\n%w", err)
	}

	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			return fmt.Errorf("cannot create log directory: %w", err)
		}
	}

	if cfg.HTTP.InsecureSkipVerify {
		ui.PrintWarning("TLS certificate verification is disabled")
	}

	ui.PrintSuccess("Configuration is valid")
	ui.PrintInfo("Content type", cfg.Crawl.Category)
	limitText := "everything listed"
	if cfg.Crawl.Limit != nil {
		limitText = fmt.Sprintf("%d per query", *cfg.Crawl.Limit)
	}
	ui.PrintInfo("Limit", limitText)
	ui.PrintInfo("Output format", cfg.Output.Format)
	ui.PrintInfo("Log level", cfg.Logging.Level)
	return nil
}
