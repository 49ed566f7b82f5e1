package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the crawler reads.
const EnvPrefix = "OHOUCRAWL_"

// Config holds all configuration options for the crawler
type Config struct {
	// Upstream HTTP settings
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// What to crawl
	Crawl CrawlConfig `yaml:"crawl" json:"crawl"`

	// Where results go
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// HTTPConfig holds transport settings for listing and detail requests
type HTTPConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	// InsecureSkipVerify disables TLS certificate validation.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" json:"insecure_skip_verify"`
}

// CrawlConfig holds the default crawl target
type CrawlConfig struct {
	Category string `yaml:"category" json:"category"`
	// Limit caps the records per query. nil fetches everything available;
	// 0 is an explicit cap of zero.
	Limit           *int `yaml:"limit,omitempty" json:"limit,omitempty"`
	ContinueOnError bool `yaml:"continue_on_error" json:"continue_on_error"`
}

// OutputConfig holds result serialization settings
type OutputConfig struct {
	// Path of the result file; empty writes to stdout.
	Path      string `yaml:"path" json:"path"`
	Format    string `yaml:"format" json:"format"`
	Overwrite bool   `yaml:"overwrite" json:"overwrite"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

var (
	validCategories = map[string]bool{"advices": true, "projects": true, "feeds": true}
	validFormats    = map[string]bool{"json": true, "jsonl": true, "ndjson": true, "yaml": true, "yml": true, "table": true}
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "disabled": true}
)

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			BaseURL:            "https://ohou.se",
			Timeout:            30 * time.Second,
			UserAgent:          "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36",
			InsecureSkipVerify: true,
		},
		Crawl: CrawlConfig{
			Category: "advices",
		},
		Output: OutputConfig{
			Format: "json",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv(EnvPrefix + "BASE_URL"); v != "" {
		c.HTTP.BaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err))
		} else {
			c.HTTP.Timeout = d
		}
	}
	if v := os.Getenv(EnvPrefix + "USER_AGENT"); v != "" {
		c.HTTP.UserAgent = v
	}
	if v := os.Getenv(EnvPrefix + "INSECURE_SKIP_VERIFY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sINSECURE_SKIP_VERIFY: %w", EnvPrefix, err))
		} else {
			c.HTTP.InsecureSkipVerify = b
		}
	}

	if v := os.Getenv(EnvPrefix + "CATEGORY"); v != "" {
		c.Crawl.Category = strings.ToLower(v)
	}
	if v := os.Getenv(EnvPrefix + "LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sLIMIT: %w", EnvPrefix, err))
		} else {
			c.Crawl.Limit = &n
		}
	}
	if v := os.Getenv(EnvPrefix + "CONTINUE_ON_ERROR"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sCONTINUE_ON_ERROR: %w", EnvPrefix, err))
		} else {
			c.Crawl.ContinueOnError = b
		}
	}

	if v := os.Getenv(EnvPrefix + "OUTPUT"); v != "" {
		c.Output.Path = v
	}
	if v := os.Getenv(EnvPrefix + "FORMAT"); v != "" {
		c.Output.Format = strings.ToLower(v)
	}
	if v := os.Getenv(EnvPrefix + "OVERWRITE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sOVERWRITE: %w", EnvPrefix, err))
		} else {
			c.Output.Overwrite = b
		}
	}

	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile searches for a config file in the standard locations and
// returns the first one that exists.
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"ohoucrawl.yaml",
		".ohoucrawl.yaml",
		".ohoucrawl.yml",
		filepath.Join(home, ".config", "ohoucrawl", "config.yaml"),
		filepath.Join(home, ".ohoucrawl.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	}
	if c.HTTP.Timeout < 0 {
		errs = append(errs, errors.New("timeout cannot be negative"))
	}

	if !validCategories[strings.ToLower(c.Crawl.Category)] {
		errs = append(errs, fmt.Errorf("invalid category %q (want advices, projects or feeds)", c.Crawl.Category))
	}
	if c.Crawl.Limit != nil && *c.Crawl.Limit < 0 {
		errs = append(errs, errors.New("limit cannot be negative"))
	}

	if !validFormats[strings.ToLower(c.Output.Format)] {
		errs = append(errs, fmt.Errorf("invalid output format %q", c.Output.Format))
	}

	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in flags are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["base-url"].(string); ok && v != "" {
		c.HTTP.BaseURL = v
	}
	if v, ok := flags["timeout"].(time.Duration); ok && v > 0 {
		c.HTTP.Timeout = v
	}
	if v, ok := flags["insecure"].(bool); ok {
		c.HTTP.InsecureSkipVerify = v
	}
	if v, ok := flags["type"].(string); ok && v != "" {
		c.Crawl.Category = strings.ToLower(v)
	}
	if v, ok := flags["limit"].(int); ok {
		c.Crawl.Limit = &v
	}
	if v, ok := flags["continue-on-error"].(bool); ok {
		c.Crawl.ContinueOnError = v
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.Path = v
	}
	if v, ok := flags["format"].(string); ok && v != "" {
		c.Output.Format = strings.ToLower(v)
	}
	if v, ok := flags["overwrite"].(bool); ok {
		c.Output.Overwrite = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".ohoucrawl.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
