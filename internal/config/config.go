// Package config defines the case-tracker configuration file and its defaults.
package config

import (
	"fmt"
	"slices"
	"time"

	infraconfig "github.com/jonesrussell/north-cloud/case-tracker/infrastructure/config"
	infraredis "github.com/jonesrussell/north-cloud/case-tracker/infrastructure/redis"
)

// DefaultPath is the config file looked up when CONFIG_PATH is unset.
const DefaultPath = "config.yml"

// Default service configuration values.
const (
	defaultServiceName    = "case-tracker"
	defaultServiceVersion = "1.0.0"
	defaultServicePort    = 8090
	defaultLogLevel       = "info"
)

// Default database configuration values.
const (
	defaultDBHost          = "localhost"
	defaultDBPort          = 5432
	defaultDBUser          = "postgres"
	defaultDBName          = "case_tracker"
	defaultDBSSLMode       = "disable"
	defaultDBMaxConns      = 25
	defaultDBMaxIdleConns  = 5
	defaultDBConnLifetimeH = 1
)

// Default snapshot configuration values.
const (
	defaultSnapshotTTL     = 5 * time.Minute
	defaultCasesTable      = "cases"
	defaultStatuteAct      = "bns"
	defaultReferenceTable  = "db"
	defaultSubUnitTable    = "sub_units"
	defaultJurisdictionCol = "district"
	defaultStageCol        = "stage"
)

// Default rate limit values for case entry.
const (
	defaultRateLimitRPS   = 5.0
	defaultRateLimitBurst = 10
)

// Config is the whole configuration file.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Markers   MarkersConfig   `yaml:"markers"`
	Tables    TablesConfig    `yaml:"tables"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServiceConfig holds service identity and runtime settings.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"CASE_TRACKER_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"         yaml:"debug"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host                  string        `env:"POSTGRES_CASES_HOST"     yaml:"host"`
	Port                  int           `env:"POSTGRES_CASES_PORT"     yaml:"port"`
	User                  string        `env:"POSTGRES_CASES_USER"     yaml:"user"`
	Password              string        `env:"POSTGRES_CASES_PASSWORD" yaml:"password"`
	Database              string        `env:"POSTGRES_CASES_DB"       yaml:"database"`
	SSLMode               string        `env:"POSTGRES_CASES_SSLMODE"  yaml:"sslmode"`
	MaxConnections        int           `yaml:"max_connections"`
	MaxIdleConns          int           `yaml:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// DSN renders the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

// RedisConfig enables the shared snapshot cache. Leaving it disabled keeps
// snapshots in process memory only.
type RedisConfig struct {
	Enabled bool              `env:"REDIS_ENABLED" yaml:"enabled"`
	Conn    infraredis.Config `yaml:",inline"`
}

// AuthConfig holds authentication settings. An empty secret disables JWT.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
}

// SnapshotConfig names the data sources behind a snapshot and how long one
// lives. RefreshSchedule is a cron spec for background reloads; empty disables
// it. StatuteAct is both the act name and its table name. SubUnitTable holds
// (district, thana) pairs.
type SnapshotConfig struct {
	TTL                time.Duration `env:"SNAPSHOT_TTL"              yaml:"ttl"`
	RefreshSchedule    string        `env:"SNAPSHOT_REFRESH_SCHEDULE" yaml:"refresh_schedule"`
	StatuteAct         string        `env:"SNAPSHOT_STATUTE_ACT"      yaml:"statute_act"`
	CasesTable         string        `yaml:"cases_table"`
	ReferenceTable     string        `yaml:"reference_table"`
	SubUnitTable       string        `yaml:"sub_unit_table"`
	JurisdictionColumn string        `yaml:"jurisdiction_column"`
	StageColumn        string        `yaml:"stage_column"`
}

// MarkersConfig overrides the priority keyword lists. Nil lists keep the built-in
// keywords; an explicit empty list disables that priority.
type MarkersConfig struct {
	Red    []string `env:"MARKERS_RED"    yaml:"red"`
	Yellow []string `env:"MARKERS_YELLOW" yaml:"yellow"`
}

// TablesConfig lists the tables the table browser may read.
type TablesConfig struct {
	Allowed []string `env:"TABLES_ALLOWED" yaml:"allowed"`
}

// RateLimitConfig throttles case entry per client IP.
type RateLimitConfig struct {
	RequestsPerSecond float64 `env:"RATE_LIMIT_RPS"   yaml:"requests_per_second"`
	Burst             int     `env:"RATE_LIMIT_BURST" yaml:"burst"`
}

// CORSConfig holds cross-origin settings for the API.
type CORSConfig struct {
	Enabled        bool     `env:"CORS_ENABLED"         yaml:"enabled"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" yaml:"allowed_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level       string `env:"LOG_LEVEL"       yaml:"level"`
	Development bool   `env:"LOG_DEVELOPMENT" yaml:"development"`
}

// Load reads path (a missing file is allowed), applies defaults and env
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg, loadErr := infraconfig.LoadWithDefaults(path, true, setDefaults)
	if loadErr != nil {
		return nil, fmt.Errorf("load config: %w", loadErr)
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := infraconfig.ValidateRequired("database.host", c.Database.Host); err != nil {
		return err
	}
	if err := infraconfig.ValidateRequired("database.database", c.Database.Database); err != nil {
		return err
	}
	if c.Redis.Enabled {
		if err := infraconfig.ValidateRequired("redis.address", c.Redis.Conn.Address); err != nil {
			return err
		}
	}
	if err := infraconfig.ValidatePositive("snapshot.ttl", c.Snapshot.TTL); err != nil {
		return err
	}
	if err := infraconfig.ValidatePositive("rate_limit.requests_per_second", c.RateLimit.RequestsPerSecond); err != nil {
		return err
	}
	if err := infraconfig.ValidatePositive("rate_limit.burst", c.RateLimit.Burst); err != nil {
		return err
	}
	if err := infraconfig.ValidateLogLevel("logging.level", c.Logging.Level); err != nil {
		return err
	}
	if !slices.Contains(c.Tables.Allowed, c.Snapshot.CasesTable) {
		return &infraconfig.ValidationError{Field: "tables.allowed", Message: "must include snapshot.cases_table"}
	}
	return nil
}

// setDefaults applies default values to all configuration sections.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setSnapshotDefaults(&cfg.Snapshot)
	setTablesDefaults(&cfg.Tables, &cfg.Snapshot)
	setRateLimitDefaults(&cfg.RateLimit)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnectionMaxLifetime == 0 {
		d.ConnectionMaxLifetime = defaultDBConnLifetimeH * time.Hour
	}
}

func setSnapshotDefaults(s *SnapshotConfig) {
	if s.TTL == 0 {
		s.TTL = defaultSnapshotTTL
	}
	if s.CasesTable == "" {
		s.CasesTable = defaultCasesTable
	}
	if s.StatuteAct == "" {
		s.StatuteAct = defaultStatuteAct
	}
	if s.ReferenceTable == "" {
		s.ReferenceTable = defaultReferenceTable
	}
	if s.SubUnitTable == "" {
		s.SubUnitTable = defaultSubUnitTable
	}
	if s.JurisdictionColumn == "" {
		s.JurisdictionColumn = defaultJurisdictionCol
	}
	if s.StageColumn == "" {
		s.StageColumn = defaultStageCol
	}
}

// The browser always sees the tables the snapshot reads.
func setTablesDefaults(t *TablesConfig, s *SnapshotConfig) {
	for _, name := range []string{s.CasesTable, s.StatuteAct, s.ReferenceTable, s.SubUnitTable} {
		if !slices.Contains(t.Allowed, name) {
			t.Allowed = append(t.Allowed, name)
		}
	}
}

func setRateLimitDefaults(r *RateLimitConfig) {
	if r.RequestsPerSecond == 0 {
		r.RequestsPerSecond = defaultRateLimitRPS
	}
	if r.Burst == 0 {
		r.Burst = defaultRateLimitBurst
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
}
