package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Worker      WorkerConfig
	Woocommerce WoocommerceConfig
	Health      HealthConfig
	Telemetry   TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// WorkerConfig holds the connection to the external sync worker
type WorkerConfig struct {
	// Endpoint is the worker's action dispatch URL
	Endpoint string
	// Key is the shared secret sent on every dispatch
	Key string
	// Timeout bounds one dispatch round trip
	Timeout time.Duration
}

// WoocommerceConfig holds store client defaults; per-store settings can
// override attempts and timeout but not raise them past these values
type WoocommerceConfig struct {
	Timeout     time.Duration
	MaxAttempts int
}

// HealthConfig holds the thresholds for client-side health findings
type HealthConfig struct {
	WorkerErrorCritical   int           // dead/error jobs before WORKER_LAG is critical
	WorkerQueuedWarning   int           // queued jobs before WORKER_LAG warns
	WebhookStaleWarning   time.Duration // webhook silence before warning
	WebhookStaleCritical  time.Duration // webhook silence before critical
	ErrorRateWarnJobs     int           // failed jobs in window before warning
	ErrorRateWarnRatio    float64       // failed/total ratio before warning
	ErrorRateCriticalJobs int
	ErrorRateCritRatio    float64
	OrderImportWarning    time.Duration // order-import silence before warning
	OrderImportCritical   time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string
	Insecure          bool // Use insecure (non-TLS) connection (development only)
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SYNC_ prefix (e.g., SYNC_WORKER_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Worker: WorkerConfig{
			Endpoint: v.GetString("worker.endpoint"),
			Key:      v.GetString("worker.key"),
			Timeout:  v.GetDuration("worker.timeout"),
		},
		Woocommerce: WoocommerceConfig{
			Timeout:     v.GetDuration("woocommerce.timeout"),
			MaxAttempts: v.GetInt("woocommerce.max_attempts"),
		},
		Health: HealthConfig{
			WorkerErrorCritical:   v.GetInt("health.worker_error_critical"),
			WorkerQueuedWarning:   v.GetInt("health.worker_queued_warning"),
			WebhookStaleWarning:   v.GetDuration("health.webhook_stale_warning"),
			WebhookStaleCritical:  v.GetDuration("health.webhook_stale_critical"),
			ErrorRateWarnJobs:     v.GetInt("health.error_rate_warn_jobs"),
			ErrorRateWarnRatio:    v.GetFloat64("health.error_rate_warn_ratio"),
			ErrorRateCriticalJobs: v.GetInt("health.error_rate_critical_jobs"),
			ErrorRateCritRatio:    v.GetFloat64("health.error_rate_critical_ratio"),
			OrderImportWarning:    v.GetDuration("health.order_import_warning"),
			OrderImportCritical:   v.GetDuration("health.order_import_critical"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "commerce-sync"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
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
	// NOTE: CORS origins are intentionally not given a default fallback to "*".
	// An empty list means no cross-origin requests are allowed until explicitly
	// configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Tenant-ID"}
	}
	if cfg.Worker.Timeout == 0 {
		cfg.Worker.Timeout = 30 * time.Second
	}
	if cfg.Woocommerce.Timeout == 0 {
		cfg.Woocommerce.Timeout = 15 * time.Second
	}
	if cfg.Woocommerce.MaxAttempts == 0 {
		cfg.Woocommerce.MaxAttempts = 3
	}
	if cfg.Health.WorkerErrorCritical == 0 {
		cfg.Health.WorkerErrorCritical = 5
	}
	if cfg.Health.WorkerQueuedWarning == 0 {
		cfg.Health.WorkerQueuedWarning = 10
	}
	if cfg.Health.WebhookStaleWarning == 0 {
		cfg.Health.WebhookStaleWarning = 60 * time.Minute
	}
	if cfg.Health.WebhookStaleCritical == 0 {
		cfg.Health.WebhookStaleCritical = 180 * time.Minute
	}
	if cfg.Health.ErrorRateWarnJobs == 0 {
		cfg.Health.ErrorRateWarnJobs = 2
	}
	if cfg.Health.ErrorRateWarnRatio == 0 {
		cfg.Health.ErrorRateWarnRatio = 0.2
	}
	if cfg.Health.ErrorRateCriticalJobs == 0 {
		cfg.Health.ErrorRateCriticalJobs = 3
	}
	if cfg.Health.ErrorRateCritRatio == 0 {
		cfg.Health.ErrorRateCritRatio = 0.5
	}
	if cfg.Health.OrderImportWarning == 0 {
		cfg.Health.OrderImportWarning = 120 * time.Minute
	}
	if cfg.Health.OrderImportCritical == 0 {
		cfg.Health.OrderImportCritical = 360 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0 // 100% in development
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "commerce-sync"
	}
	// Note: Insecure defaults to false for safety (TLS enabled by default)
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.App.Env == "production" {
		if c.Worker.Endpoint == "" {
			return fmt.Errorf("worker.endpoint is required in production")
		}
		if c.Worker.Key == "" {
			return fmt.Errorf("worker.key is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.Health.ErrorRateWarnRatio < 0 || c.Health.ErrorRateWarnRatio > 1 ||
		c.Health.ErrorRateCritRatio < 0 || c.Health.ErrorRateCritRatio > 1 {
		return fmt.Errorf("health error-rate ratios must be between 0.0 and 1.0")
	}

	return nil
}
