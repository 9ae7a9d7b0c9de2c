package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App            AppConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Provider       ProviderConfig
	Auth           AuthConfig
	Log            LogConfig
	HTTP           HTTPConfig
	Reconciliation ReconciliationConfig
	Storage        StorageConfig
	Swagger        SwaggerConfig
	Telemetry      TelemetryConfig
	Profiling      ProfilingConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ProviderConfig holds identity provider connection settings.
// ServiceToken is the optional privileged credential; without it,
// directory-wide operations degrade to the caller-visible identity set.
type ProviderConfig struct {
	BaseURL      string
	Timeout      time.Duration
	ServiceToken string
}

// AuthConfig holds settings for verifying provider-issued JWTs.
// The server never issues tokens itself.
type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Leeway   time.Duration // clock skew tolerance for exp/nbf checks
}

// ReconciliationConfig holds identity reconciliation engine settings
type ReconciliationConfig struct {
	MaxConcurrentPushes int // in-flight role writes to the provider during resolution
	SnapshotPageSize    int // rows per page when snapshotting local accounts
}

// StorageConfig holds object storage settings for product images.
// Driver selects the backend: "s3" for any S3-compatible store, "stub"
// for the in-memory development backend.
type StorageConfig struct {
	Driver            string
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout            time.Duration
	WriteTimeout           time.Duration
	IdleTimeout            time.Duration
	MaxHeaderBytes         int
	MaxBodySize            int64
	RateLimitEnabled       bool
	RateLimitRequests      int
	RateLimitWindow        time.Duration
	ReconRateLimitEnabled  bool          // Enable stricter rate limiting for reconciliation triggers
	ReconRateLimitRequests int           // Max reconciliation runs per window (default: 5)
	ReconRateLimitWindow   time.Duration // Reconciliation rate limit window (default: 1 minute)
	CORSAllowOrigins       []string
	CORSAllowMethods       []string
	CORSAllowHeaders       []string
	TrustedProxies         []string
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled     bool     // Whether to enable Swagger endpoint
	RequireAuth bool     // Require authentication to access Swagger
	AllowedIPs  []string // IP whitelist (empty = allow all)
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool          // Log full SQL statements (dev only, disable in prod for security)
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings (default: 200ms)
}

// ProfilingConfig holds Pyroscope continuous profiling configuration
type ProfilingConfig struct {
	Enabled           bool
	ServerAddress     string // e.g. "http://pyroscope:4040"
	ApplicationName   string
	BasicAuthUser     string // Optional: for Grafana Cloud
	BasicAuthPassword string
	MutexFraction     int // runtime.SetMutexProfileFraction (0 = library default)
	BlockRate         int // runtime.SetBlockProfileRate (0 = library default)
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with CART_ prefix (e.g., CART_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("CART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Provider: ProviderConfig{
			BaseURL:      v.GetString("provider.base_url"),
			Timeout:      v.GetDuration("provider.timeout"),
			ServiceToken: v.GetString("provider.service_token"),
		},
		Auth: AuthConfig{
			Secret:   v.GetString("auth.secret"),
			Issuer:   v.GetString("auth.issuer"),
			Audience: v.GetString("auth.audience"),
			Leeway:   v.GetDuration("auth.leeway"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:            v.GetDuration("http.read_timeout"),
			WriteTimeout:           v.GetDuration("http.write_timeout"),
			IdleTimeout:            v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:         v.GetInt("http.max_header_bytes"),
			MaxBodySize:            v.GetInt64("http.max_body_size"),
			RateLimitEnabled:       v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests:      v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:        v.GetDuration("http.rate_limit_window"),
			ReconRateLimitEnabled:  v.GetBool("http.recon_rate_limit_enabled"),
			ReconRateLimitRequests: v.GetInt("http.recon_rate_limit_requests"),
			ReconRateLimitWindow:   v.GetDuration("http.recon_rate_limit_window"),
			CORSAllowOrigins:       v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:       v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:       v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:         v.GetStringSlice("http.trusted_proxies"),
		},
		Reconciliation: ReconciliationConfig{
			MaxConcurrentPushes: v.GetInt("reconciliation.max_concurrent_pushes"),
			SnapshotPageSize:    v.GetInt("reconciliation.snapshot_page_size"),
		},
		Storage: StorageConfig{
			Driver:            v.GetString("storage.driver"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		Swagger: SwaggerConfig{
			Enabled:     v.GetBool("swagger.enabled"),
			RequireAuth: v.GetBool("swagger.require_auth"),
			AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
		Profiling: ProfilingConfig{
			Enabled:           v.GetBool("profiling.enabled"),
			ServerAddress:     v.GetString("profiling.server_address"),
			ApplicationName:   v.GetString("profiling.application_name"),
			BasicAuthUser:     v.GetString("profiling.basic_auth_user"),
			BasicAuthPassword: v.GetString("profiling.basic_auth_password"),
			MutexFraction:     v.GetInt("profiling.mutex_fraction"),
			BlockRate:         v.GetInt("profiling.block_rate"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "brightcart-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "brightcart"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = 10 * time.Second
	}
	if cfg.Auth.Leeway == 0 {
		cfg.Auth.Leeway = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// Reconciliation runs fetch full snapshots; keep the trigger endpoints
	// on a much tighter budget than general traffic.
	if cfg.HTTP.ReconRateLimitRequests == 0 {
		cfg.HTTP.ReconRateLimitRequests = 5
	}
	if cfg.HTTP.ReconRateLimitWindow == 0 {
		cfg.HTTP.ReconRateLimitWindow = time.Minute
	}
	// NOTE: CORS origins are intentionally not given a default fallback to "*".
	// An empty list means no cross-origin requests are allowed until explicitly configured.
	// This is a secure default - applications MUST configure allowed origins explicitly.
	// In development, use config.toml to set specific origins like ["http://localhost:3000"]
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "Idempotency-Key"}
	}
	if cfg.Reconciliation.MaxConcurrentPushes == 0 {
		cfg.Reconciliation.MaxConcurrentPushes = 4
	}
	if cfg.Reconciliation.SnapshotPageSize == 0 {
		cfg.Reconciliation.SnapshotPageSize = 200
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "stub"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	// Telemetry defaults
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0 // 100% in development
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "brightcart-backend"
	}
	// Note: Insecure defaults to false for safety (TLS enabled by default)
	// DBTraceEnabled defaults to false (needs explicit enable)
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	// Note: DBLogFullSQL defaults to false for security (disable in production)
	if cfg.Profiling.ApplicationName == "" {
		cfg.Profiling.ApplicationName = cfg.App.Name
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	// Validate connection pool settings
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Reconciliation.MaxConcurrentPushes < 1 {
		return fmt.Errorf("reconciliation.max_concurrent_pushes must be at least 1")
	}
	if c.Reconciliation.SnapshotPageSize < 1 {
		return fmt.Errorf("reconciliation.snapshot_page_size must be at least 1")
	}

	if c.Storage.Driver != "stub" && c.Storage.Driver != "s3" {
		return fmt.Errorf("storage.driver must be 'stub' or 's3', got %q", c.Storage.Driver)
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Auth.Secret == "" {
			return fmt.Errorf("auth.secret is required in production")
		}
		if len(c.Auth.Secret) < 32 {
			return fmt.Errorf("auth.secret must be at least 32 characters in production")
		}
		if c.Auth.Issuer == "" {
			return fmt.Errorf("auth.issuer is required in production")
		}
		if c.Provider.BaseURL == "" {
			return fmt.Errorf("provider.base_url is required in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Storage.Driver == "stub" {
			return fmt.Errorf("storage.driver cannot be 'stub' in production")
		}
		// CORS must not use wildcard with credentials
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		// Swagger must be disabled OR protected in production
		if c.Swagger.Enabled {
			if !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0 {
				return fmt.Errorf("swagger endpoint must be disabled, require authentication, or have IP restriction in production")
			}
		}
		// Database tracing: full SQL logging is a security risk in production
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	// Validate provider base URL when set (all environments)
	if c.Provider.BaseURL != "" {
		u, err := url.Parse(c.Provider.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("provider.base_url must be an absolute URL, got %q", c.Provider.BaseURL)
		}
	}

	// Validate telemetry configuration (all environments)
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
