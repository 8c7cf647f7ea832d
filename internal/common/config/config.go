// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Decision DecisionConfig `mapstructure:"decision"`
	Form     FormConfig     `mapstructure:"form"`
	Database DatabaseConfig `mapstructure:"database"`
	Journal  JournalConfig  `mapstructure:"journal"`
	Guard    GuardConfig    `mapstructure:"guard"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// DecisionConfig points at the external loan decision service.
type DecisionConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Path    string `mapstructure:"path"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// Endpoint returns the full submission URL.
func (d DecisionConfig) Endpoint() string {
	return d.BaseURL + d.Path
}

// FormConfig holds the intake form settings.
type FormConfig struct {
	AmountDue              float64 `mapstructure:"amount_due"`
	SkipSubmitRevalidation bool    `mapstructure:"skip_submit_revalidation"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JournalConfig toggles the submission outcome journal.
type JournalConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// GuardConfig toggles the redis duplicate-submission guard.
type GuardConfig struct {
	Enabled bool `mapstructure:"enabled"`
	TTL     int  `mapstructure:"ttl"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig enables the /metrics and /health listener when Address is set.
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}
