package common

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jora/internal/interfaces"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewDefaultConfig_IsValid(t *testing.T) {
	config := NewDefaultConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, "JIRA", config.Jira.CredentialPrefix)
	assert.Equal(t, "10300", config.Jira.OverdueFilterID)
	assert.Equal(t, "10107", config.Jira.DueSoonFilterID)
	assert.Equal(t, uint(100), config.Jira.MaxResults)
	assert.Equal(t, "STARDOG", config.Sparql.CredentialPrefix)
	assert.Equal(t, 30*time.Second, config.HTTP.TimeoutDuration())
}

func TestLoadFromFiles_LaterFilesOverride(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.toml", `
[jira]
base_url = "https://jira.example.com/rest/api/2"
max_results = 50

[sparql]
endpoint = "https://graph.example.com/db/query"
`)
	override := writeFile(t, dir, "override.toml", `
[jira]
max_results = 20

[sparql]
reasoning = true
`)

	config, err := LoadFromFiles(base, "", override)
	require.NoError(t, err)

	assert.Equal(t, "https://jira.example.com/rest/api/2", config.Jira.BaseURL)
	assert.Equal(t, uint(20), config.Jira.MaxResults)
	assert.Equal(t, "https://graph.example.com/db/query", config.Sparql.Endpoint)
	assert.True(t, config.Sparql.Reasoning)
	assert.Equal(t, "https://getpocket.com/v3", config.Pocket.BaseURL)
}

func TestLoadFromFiles_Errors(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := writeFile(t, t.TempDir(), "bad.toml", "[jira\nbase_url = ")
	_, err = LoadFromFiles(bad)
	assert.Error(t, err)
}

func TestLoadFromFiles_EnvOverrides(t *testing.T) {
	t.Setenv("JORA_JIRA_BASE_URL", "https://env.example.com/rest/api/2")
	t.Setenv("JORA_JIRA_MAX_RESULTS", "7")
	t.Setenv("JORA_SPARQL_REASONING", "true")
	t.Setenv("JORA_LOG_OUTPUT", "stdout, file")
	t.Setenv("JORA_HTTP_TIMEOUT", "5s")
	t.Setenv("JORA_REFRESH_SCHEDULE", "@every 1m")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com/rest/api/2", config.Jira.BaseURL)
	assert.Equal(t, uint(7), config.Jira.MaxResults)
	assert.True(t, config.Sparql.Reasoning)
	assert.Equal(t, []string{"stdout", "file"}, config.Logging.Output)
	assert.Equal(t, 5*time.Second, config.HTTP.TimeoutDuration())
	assert.Equal(t, "@every 1m", config.Dashboard.RefreshSchedule)
}

func TestLoadFromFiles_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, "test.env", "JORA_TEST_DOTENV_USER=from-file\nJORA_TEST_DOTENV_SET=from-file\n")
	cfg := writeFile(t, dir, "jora.toml", "[variables]\nenv_file = \""+filepath.ToSlash(envFile)+"\"\n")

	t.Setenv("JORA_TEST_DOTENV_SET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("JORA_TEST_DOTENV_USER") })

	_, err := LoadFromFiles(cfg)
	require.NoError(t, err)

	assert.Equal(t, "from-file", os.Getenv("JORA_TEST_DOTENV_USER"))
	assert.Equal(t, "from-env", os.Getenv("JORA_TEST_DOTENV_SET"))
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()
	reasoning := true

	ApplyFlagOverrides(config, FlagOverrides{LogLevel: "debug", Timeout: "0", Reasoning: &reasoning})

	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, time.Duration(0), config.HTTP.TimeoutDuration())
	assert.True(t, config.Sparql.Reasoning)

	ApplyFlagOverrides(config, FlagOverrides{})
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "bad jira url", mutate: func(c *Config) { c.Jira.BaseURL = "not a url" }, wantErr: "jira.base_url"},
		{name: "zero max results", mutate: func(c *Config) { c.Jira.MaxResults = 0 }, wantErr: "jira.max_results"},
		{name: "unknown detail type", mutate: func(c *Config) { c.Pocket.DetailType = "full" }, wantErr: "pocket.detail_type"},
		{name: "bad timeout", mutate: func(c *Config) { c.HTTP.Timeout = "soon" }, wantErr: "http.timeout"},
		{name: "negative timeout", mutate: func(c *Config) { c.HTTP.Timeout = "-1s" }, wantErr: "http.timeout"},
		{name: "bad schedule", mutate: func(c *Config) { c.Dashboard.RefreshSchedule = "sometimes" }, wantErr: "dashboard.refresh_schedule"},
		{name: "unknown panel", mutate: func(c *Config) { c.Dashboard.Panels = []string{"weather"} }, wantErr: "dashboard.panels"},
		{name: "unknown log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "logging.level"},
		{name: "badger path", mutate: func(c *Config) { c.Storage.Badger.Path = "" }, wantErr: "storage.badger.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	config := NewDefaultConfig()
	config.Storage.Badger = BadgerConfig{Enabled: false}
	assert.NoError(t, config.Validate(), "path only required when badger is enabled")
}

func TestValidateSchedule(t *testing.T) {
	for _, schedule := range []string{"@every 5m", "@hourly", "*/5 * * * *", "0 9 * * 1-5"} {
		assert.NoError(t, ValidateSchedule(schedule), schedule)
	}
	for _, schedule := range []string{"", "every 5m", "* * *", "61 * * * *"} {
		assert.Error(t, ValidateSchedule(schedule), schedule)
	}
}

func TestReplaceKeyReferences(t *testing.T) {
	vars := map[string]string{"pocket_access_token": "at-123", "host": "example.com"}

	got, unresolved := ReplaceKeyReferences("{POCKET_ACCESS_TOKEN}", vars)
	assert.Equal(t, "at-123", got)
	assert.Empty(t, unresolved)

	got, unresolved = ReplaceKeyReferences("https://{host}/{missing}/query", vars)
	assert.Equal(t, "https://example.com/{missing}/query", got)
	assert.Equal(t, []string{"missing"}, unresolved)

	got, unresolved = ReplaceKeyReferences("SELECT * { ?s ?p ?o }", vars)
	assert.Equal(t, "SELECT * { ?s ?p ?o }", got)
	assert.Empty(t, unresolved)
}

type listKV struct {
	pairs []interfaces.KeyValuePair
}

func (l listKV) Get(context.Context, string) (string, error) { return "", interfaces.ErrKeyNotFound }
func (l listKV) Set(context.Context, string, string, string) error {
	return nil
}
func (l listKV) Upsert(context.Context, string, string, string) (bool, error) {
	return false, nil
}
func (l listKV) Delete(context.Context, string) error { return nil }
func (l listKV) List(context.Context) ([]interfaces.KeyValuePair, error) {
	return l.pairs, nil
}

func TestResolveConfigReferences(t *testing.T) {
	config := NewDefaultConfig()
	config.Pocket.ConsumerKey = "{POCKET_CONSUMER_KEY}"
	config.Pocket.AccessToken = "{POCKET_ACCESS_TOKEN}"
	config.Jira.Fields = []string{"{EXTRA_FIELD}", "summary"}

	kv := listKV{pairs: []interfaces.KeyValuePair{
		{Key: "pocket_consumer_key", Value: "ck-1"},
		{Key: "pocket_access_token", Value: "at-1"},
		{Key: "extra_field", Value: "duedate"},
	}}

	require.NoError(t, ResolveConfigReferences(context.Background(), config, kv, arbor.NewLogger()))

	assert.Equal(t, "ck-1", config.Pocket.ConsumerKey)
	assert.Equal(t, "at-1", config.Pocket.AccessToken)
	assert.Equal(t, []string{"duedate", "summary"}, config.Jira.Fields)

	assert.NoError(t, ResolveConfigReferences(context.Background(), config, nil, nil))
	assert.Error(t, ReplaceInStruct(*config, nil, nil))
}
