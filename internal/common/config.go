package common

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Logging     LoggingConfig   `toml:"logging"`
	HTTP        HTTPConfig      `toml:"http"`
	Jira        JiraConfig      `toml:"jira"`
	Pocket      PocketConfig    `toml:"pocket"`
	Sparql      SparqlConfig    `toml:"sparql"`
	Storage     StorageConfig   `toml:"storage"`
	Variables   VariablesConfig `toml:"variables"`
	Dashboard   DashboardConfig `toml:"dashboard"`
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=trace debug info warn error"`
	Output     []string `toml:"output" validate:"dive,oneof=stdout console file"`
	TimeFormat string   `toml:"time_format"`
	Dir        string   `toml:"dir"` // log file directory; empty = <executable dir>/logs
}

type HTTPConfig struct {
	Timeout   string `toml:"timeout" validate:"duration"` // e.g. "30s"; "0" disables
	UserAgent string `toml:"user_agent"`
}

// JiraConfig configures the issue tracker client
type JiraConfig struct {
	BaseURL          string   `toml:"base_url" validate:"required,url"`
	CredentialPrefix string   `toml:"credential_prefix" validate:"required"`
	OverdueFilterID  string   `toml:"overdue_filter_id" validate:"required"`
	DueSoonFilterID  string   `toml:"due_soon_filter_id" validate:"required"`
	MaxResults       uint     `toml:"max_results" validate:"min=1"`
	Fields           []string `toml:"fields"`
	RateLimit        int      `toml:"rate_limit" validate:"min=0"` // requests/second, 0 = unlimited
}

// PocketConfig configures the bookmark client. ConsumerKey and AccessToken
// may be {KEY} references resolved from the variables store.
type PocketConfig struct {
	BaseURL     string `toml:"base_url" validate:"required,url"`
	ConsumerKey string `toml:"consumer_key"`
	AccessToken string `toml:"access_token"`
	Count       uint   `toml:"count" validate:"min=1"`
	DetailType  string `toml:"detail_type" validate:"oneof=simple complete"`
	RateLimit   int    `toml:"rate_limit" validate:"min=0"`
}

// SparqlConfig configures the graph query client
type SparqlConfig struct {
	Endpoint         string `toml:"endpoint" validate:"required,url"`
	Reasoning        bool   `toml:"reasoning"`
	CredentialPrefix string `toml:"credential_prefix" validate:"required"`
	RateLimit        int    `toml:"rate_limit" validate:"min=0"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Enabled        bool   `toml:"enabled"`
	Path           string `toml:"path" validate:"required_if=Enabled true"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

// VariablesConfig locates variables.toml and the .env file
type VariablesConfig struct {
	Dir     string `toml:"dir"`
	EnvFile string `toml:"env_file"`
}

type DashboardConfig struct {
	RefreshSchedule string   `toml:"refresh_schedule" validate:"required,schedule"`
	Panels          []string `toml:"panels" validate:"dive,oneof=overdue due-soon bookmarks sparql"`
	SparqlQuery     string   `toml:"sparql_query"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		HTTP: HTTPConfig{
			Timeout:   "30s",
			UserAgent: "jora/" + GetVersion(),
		},
		Jira: JiraConfig{
			BaseURL:          "https://localhost/jira/rest/api/2",
			CredentialPrefix: "JIRA",
			OverdueFilterID:  "10300",
			DueSoonFilterID:  "10107",
			MaxResults:       100,
			Fields:           []string{"status", "summary", "*all"},
		},
		Pocket: PocketConfig{
			BaseURL:    "https://getpocket.com/v3",
			Count:      10,
			DetailType: "complete",
		},
		Sparql: SparqlConfig{
			Endpoint:         "https://localhost/stardog/jora/query",
			CredentialPrefix: "STARDOG",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Enabled: true,
				Path:    "./data",
			},
		},
		Variables: VariablesConfig{
			Dir:     "./",
			EnvFile: ".env",
		},
		Dashboard: DashboardConfig{
			RefreshSchedule: "@every 5m",
			Panels:          []string{"overdue", "due-soon", "bookmarks"},
			SparqlQuery:     "SELECT ?s ?p ?o WHERE { ?s ?p ?o } LIMIT 10",
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> .env -> env.
// Later files override earlier files. CLI flags are applied afterwards by ApplyFlagOverrides.
// The .env file only sets variables that are not already in the environment.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	if err := loadDotEnv(config.Variables.EnvFile); err != nil {
		return nil, err
	}

	applyEnvOverrides(config)

	return config, nil
}

func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies JORA_* environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("JORA_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Logging
	if level := os.Getenv("JORA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("JORA_LOG_OUTPUT"); output != "" {
		config.Logging.Output = splitList(output)
	}

	// HTTP
	if timeout := os.Getenv("JORA_HTTP_TIMEOUT"); timeout != "" {
		config.HTTP.Timeout = timeout
	}

	// Issue tracker
	if baseURL := os.Getenv("JORA_JIRA_BASE_URL"); baseURL != "" {
		config.Jira.BaseURL = baseURL
	}
	if maxResults := os.Getenv("JORA_JIRA_MAX_RESULTS"); maxResults != "" {
		if n, err := strconv.ParseUint(maxResults, 10, 32); err == nil {
			config.Jira.MaxResults = uint(n)
		}
	}

	// Bookmarks
	if baseURL := os.Getenv("JORA_POCKET_BASE_URL"); baseURL != "" {
		config.Pocket.BaseURL = baseURL
	}
	if key := os.Getenv("JORA_POCKET_CONSUMER_KEY"); key != "" {
		config.Pocket.ConsumerKey = key
	}
	if token := os.Getenv("JORA_POCKET_ACCESS_TOKEN"); token != "" {
		config.Pocket.AccessToken = token
	}

	// Graph queries
	if endpoint := os.Getenv("JORA_SPARQL_ENDPOINT"); endpoint != "" {
		config.Sparql.Endpoint = endpoint
	}
	if reasoning := os.Getenv("JORA_SPARQL_REASONING"); reasoning != "" {
		if b, err := strconv.ParseBool(reasoning); err == nil {
			config.Sparql.Reasoning = b
		}
	}

	// Storage
	if path := os.Getenv("JORA_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}
	if dir := os.Getenv("JORA_VARIABLES_DIR"); dir != "" {
		config.Variables.Dir = dir
	}

	// Dashboard
	if schedule := os.Getenv("JORA_REFRESH_SCHEDULE"); schedule != "" {
		config.Dashboard.RefreshSchedule = schedule
	}
}

// FlagOverrides holds command-line values; zero values leave config untouched
type FlagOverrides struct {
	LogLevel  string
	Timeout   string
	Reasoning *bool
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, flags FlagOverrides) {
	if flags.LogLevel != "" {
		config.Logging.Level = flags.LogLevel
	}
	if flags.Timeout != "" {
		config.HTTP.Timeout = flags.Timeout
	}
	if flags.Reasoning != nil {
		config.Sparql.Reasoning = *flags.Reasoning
	}
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		_, err := parseTimeout(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("schedule", func(fl validator.FieldLevel) bool {
		return ValidateSchedule(fl.Field().String()) == nil
	})
	return v
}

// Validate checks the configuration. The first failing setting is reported
// by its TOML path, e.g. "jira.base_url".
func (c *Config) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		ns := fe.Namespace()
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		return fmt.Errorf("invalid configuration: %s failed %q (value %q)", ns, fe.Tag(), fmt.Sprint(fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %w", err)
}

// TimeoutDuration returns the parsed HTTP timeout. Zero means no timeout.
func (c *HTTPConfig) TimeoutDuration() time.Duration {
	d, err := parseTimeout(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative timeout %s", s)
	}
	return d, nil
}

// ValidateSchedule accepts a standard 5-field cron expression or a
// descriptor such as "@every 5m" or "@hourly"
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
