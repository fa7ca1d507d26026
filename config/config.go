package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Domenick1991/flightledger/internal/domain"
)

type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Pricing PricingConfig `yaml:"pricing"`
	Engine  EngineConfig  `yaml:"engine"`
	Worker  WorkerConfig  `yaml:"worker"`
	SMTP    SMTPConfig    `yaml:"smtp"`
	Log     LogConfig     `yaml:"log"`
	Tracing TracingConfig `yaml:"tracing"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

const (
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type StorageConfig struct {
	Driver   string         `yaml:"driver"`
	BoltPath string         `yaml:"bolt_path"`
	Database DatabaseConfig `yaml:"database"`
}

// Shared reports whether several processes can open the store at once. A bolt
// file is locked by the process that opened it.
func (s StorageConfig) Shared() bool { return s.Driver == DriverPostgres }

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig is optional: an empty Addr disables the flight list cache.
type RedisConfig struct {
	Addr            string `yaml:"addr"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	FlightsCacheTTL int    `yaml:"flights_cache_ttl_seconds"`
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

func (r RedisConfig) TTL() time.Duration {
	return time.Duration(r.FlightsCacheTTL) * time.Second
}

// KafkaConfig is optional: no brokers disables ledger notifications.
type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
	PublishRetries     uint64   `yaml:"publish_retries"`
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

const (
	PolicySeatMultiplier = "seat_multiplier"
	PolicyDynamic        = "dynamic"
)

type PricingConfig struct {
	Policy          string             `yaml:"policy"`
	Multipliers     map[string]float64 `yaml:"multipliers"`
	CapacityFactor  float64            `yaml:"capacity_factor"`
	DateFactor      float64            `yaml:"date_factor"`
	CancellationFee float64            `yaml:"cancellation_fee"`
	RebookingFee    float64            `yaml:"rebooking_fee"`
}

type EngineConfig struct {
	PersistRetries uint64 `yaml:"persist_retries"`
}

type WorkerConfig struct {
	// ReportCron is a crontab expression for the admin report job.
	ReportCron string `yaml:"report_cron"`
}

// SMTPConfig is optional: an empty Host makes the worker log notifications
// instead of mailing them.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

func (s SMTPConfig) Enabled() bool { return s.Host != "" }

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	TracingNone   = "none"
	TracingStdout = "stdout"
)

// TracingConfig selects where command spans are exported.
type TracingConfig struct {
	Exporter    string `yaml:"exporter"`
	ServiceName string `yaml:"service_name"`
}

func (t TracingConfig) Enabled() bool { return t.Exporter != "" && t.Exporter != TracingNone }

// Default returns a configuration that runs on a local bolt file with no
// cache and no notifications.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{Address: ":8080"},
		Storage: StorageConfig{
			Driver:   DriverBolt,
			BoltPath: "ledger.db",
			Database: DatabaseConfig{Host: "localhost", Port: 5432, SSLMode: "disable"},
		},
		Redis: RedisConfig{FlightsCacheTTL: 60},
		Kafka: KafkaConfig{NotificationsTopic: "ledger.notifications", GroupID: "ledger-worker", PublishRetries: 2},
		Pricing: PricingConfig{
			Policy:          PolicySeatMultiplier,
			CancellationFee: 50,
			RebookingFee:    30,
		},
		Worker:  WorkerConfig{ReportCron: "0 * * * *"},
		SMTP:    SMTPConfig{Port: 587, From: "bookings@flightledger.local"},
		Log:     LogConfig{Level: "info", Format: "text"},
		Tracing: TracingConfig{Exporter: TracingNone, ServiceName: "flightledger"},
	}
}

// LoadConfig reads a YAML file over the defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case DriverBolt:
		if c.Storage.BoltPath == "" {
			errs = append(errs, errors.New("storage.bolt_path is required for the bolt driver"))
		}
	case DriverPostgres:
		if c.Storage.Database.Name == "" {
			errs = append(errs, errors.New("storage.database.name is required for the postgres driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of bolt, postgres, memory", c.Storage.Driver))
	}

	switch c.Pricing.Policy {
	case PolicySeatMultiplier, PolicyDynamic:
	default:
		errs = append(errs, fmt.Errorf("pricing.policy %q is not one of seat_multiplier, dynamic", c.Pricing.Policy))
	}
	for class, m := range c.Pricing.Multipliers {
		if _, err := domain.ParseSeatClass(class); err != nil {
			errs = append(errs, fmt.Errorf("pricing.multipliers.%s is not a seat class", class))
		}
		if m < 0 {
			errs = append(errs, fmt.Errorf("pricing.multipliers.%s must not be negative", class))
		}
	}
	if c.Pricing.CancellationFee < 0 || c.Pricing.RebookingFee < 0 {
		errs = append(errs, errors.New("pricing fees must not be negative"))
	}
	if c.Redis.FlightsCacheTTL < 0 {
		errs = append(errs, errors.New("redis.flights_cache_ttl_seconds must not be negative"))
	}
	if c.Kafka.Enabled() && c.Kafka.NotificationsTopic == "" {
		errs = append(errs, errors.New("kafka.notifications_topic is required when brokers are set"))
	}
	if c.SMTP.Enabled() && c.SMTP.From == "" {
		errs = append(errs, errors.New("smtp.from is required when smtp.host is set"))
	}
	switch c.Tracing.Exporter {
	case "", TracingNone, TracingStdout:
	default:
		errs = append(errs, fmt.Errorf("tracing.exporter %q is not one of none, stdout", c.Tracing.Exporter))
	}
	return errors.Join(errs...)
}
