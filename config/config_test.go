package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":9090"
storage:
  driver: postgres
  database:
    host: db
    port: 5433
    user: ledger
    password: secret
    name: ledger
redis:
  addr: "redis:6379"
  flights_cache_ttl_seconds: 30
kafka:
  brokers: ["kafka:9092"]
pricing:
  policy: dynamic
  capacity_factor: 0.5
  date_factor: 2
engine:
  persist_retries: 3
tracing:
  exporter: stdout
`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.True(t, cfg.Storage.Shared())
	assert.Equal(t, "host=db port=5433 user=ledger password=secret dbname=ledger sslmode=disable", cfg.Storage.Database.DSN())
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL())
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "ledger.notifications", cfg.Kafka.NotificationsTopic)
	assert.Equal(t, PolicyDynamic, cfg.Pricing.Policy)
	assert.Equal(t, 50.0, cfg.Pricing.CancellationFee)
	assert.Equal(t, 30.0, cfg.Pricing.RebookingFee)
	assert.Equal(t, uint64(3), cfg.Engine.PersistRetries)
	assert.False(t, cfg.SMTP.Enabled())
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, uint64(2), cfg.Kafka.PublishRetries)
	assert.True(t, cfg.Tracing.Enabled())
	assert.Equal(t, "flightledger", cfg.Tracing.ServiceName)
}

func TestValidate_MultiplierClassesIgnoreCase(t *testing.T) {
	cfg := Default()
	cfg.Pricing.Multipliers = map[string]float64{"economy": 1, "Business": 1.5, "FIRST": 2}

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestLoadConfig_BadYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "http: [\n"))
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Storage.Shared())
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.Tracing.Enabled())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Storage.Driver = "sqlite" },
			wantErr: "storage.driver",
		},
		{
			name:    "bolt without path",
			mutate:  func(c *Config) { c.Storage.BoltPath = "" },
			wantErr: "bolt_path",
		},
		{
			name:    "postgres without database",
			mutate:  func(c *Config) { c.Storage.Driver = DriverPostgres },
			wantErr: "storage.database.name",
		},
		{
			name:    "unknown policy",
			mutate:  func(c *Config) { c.Pricing.Policy = "auction" },
			wantErr: "pricing.policy",
		},
		{
			name:    "negative fee",
			mutate:  func(c *Config) { c.Pricing.CancellationFee = -1 },
			wantErr: "fees",
		},
		{
			name:    "negative multiplier",
			mutate:  func(c *Config) { c.Pricing.Multipliers = map[string]float64{"FIRST": -2} },
			wantErr: "pricing.multipliers.FIRST",
		},
		{
			name:    "misspelled multiplier class",
			mutate:  func(c *Config) { c.Pricing.Multipliers = map[string]float64{"economyy": 1.2} },
			wantErr: "pricing.multipliers.economyy is not a seat class",
		},
		{
			name:    "unknown tracing exporter",
			mutate:  func(c *Config) { c.Tracing.Exporter = "jaeger" },
			wantErr: "tracing.exporter",
		},
		{
			name: "kafka without topic",
			mutate: func(c *Config) {
				c.Kafka.Brokers = []string{"kafka:9092"}
				c.Kafka.NotificationsTopic = ""
			},
			wantErr: "notifications_topic",
		},
		{
			name: "smtp without sender",
			mutate: func(c *Config) {
				c.SMTP.Host = "smtp.example.com"
				c.SMTP.From = ""
			},
			wantErr: "smtp.from",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}
