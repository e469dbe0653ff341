package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration, resolved once at startup and
// passed down by injection.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	Google   GoogleConfig   `mapstructure:"google"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Log      LogConfig      `mapstructure:"log"`
	Limit    LimitConfig    `mapstructure:"limit"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	Env     string     `mapstructure:"env"` // "development" | "production"
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// IsProduction reports whether the server runs in production mode.
func (c *ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

// CORSConfig lists the origins allowed to call the API with credentials.
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig holds the PostgreSQL connection settings.
// URL is a full postgres:// connection string (DATABASE_URL).
type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // minutes
}

// RedisConfig holds the optional Redis settings. Empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionConfig holds cookie-session settings. Secret signs session tokens.
type SessionConfig struct {
	Secret     string        `mapstructure:"secret"`
	CookieName string        `mapstructure:"cookie_name"`
	TTL        time.Duration `mapstructure:"ttl"`
	Secure     bool          `mapstructure:"secure"`
	SameSite   string        `mapstructure:"same_site"`
	Domain     string        `mapstructure:"domain"`
}

// GoogleConfig holds the Sheets service-account credentials.
type GoogleConfig struct {
	ServiceAccountEmail string        `mapstructure:"service_account_email"`
	PrivateKey          string        `mapstructure:"private_key"`
	SpreadsheetID       string        `mapstructure:"spreadsheet_id"` // default spreadsheet
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`      // read-through cache in Redis
}

// SMTPConfig holds outbound mail settings. Empty Host selects the console mailer.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" | "console"
}

// LimitConfig holds rate-limit settings (enforced only when Redis is up).
type LimitConfig struct {
	LoginPerMinute int `mapstructure:"login_per_minute"`
	WritePerMinute int `mapstructure:"write_per_minute"`
}

// Load reads configuration from an optional YAML file and the environment.
// Precedence: environment > config file > defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── defaults ──
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.env", "development")
	v.SetDefault("server.base_url", "http://localhost:3000")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 60) // minutes

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.cookie_name", "csm_session")
	v.SetDefault("session.ttl", "168h")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.same_site", "Lax")

	v.SetDefault("google.cache_ttl", "60s")

	v.SetDefault("smtp.port", 587)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("limit.login_per_minute", 10)
	v.SetDefault("limit.write_per_minute", 60)

	// ── config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("CSM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Canonical deployment variables keep their historical names.
	v.BindEnv("server.port", "CSM_SERVER_PORT", "PORT")
	v.BindEnv("server.env", "CSM_SERVER_ENV", "ENV", "NODE_ENV")
	v.BindEnv("server.base_url", "CSM_SERVER_BASE_URL", "APP_BASE_URL")
	v.BindEnv("db.url", "CSM_DB_URL", "DATABASE_URL")
	v.BindEnv("redis.addr", "CSM_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("redis.password", "CSM_REDIS_PASSWORD", "REDIS_PASSWORD")
	v.BindEnv("session.secret", "CSM_SESSION_SECRET", "SESSION_SECRET")
	v.BindEnv("google.service_account_email", "CSM_GOOGLE_SERVICE_ACCOUNT_EMAIL", "GOOGLE_SERVICE_ACCOUNT_EMAIL")
	v.BindEnv("google.private_key", "CSM_GOOGLE_PRIVATE_KEY", "GOOGLE_PRIVATE_KEY")
	v.BindEnv("google.spreadsheet_id", "CSM_GOOGLE_SPREADSHEET_ID", "GOOGLE_SHEETS_SPREADSHEET_ID")
	v.BindEnv("smtp.host", "CSM_SMTP_HOST", "SMTP_HOST")
	v.BindEnv("smtp.port", "CSM_SMTP_PORT", "SMTP_PORT")
	v.BindEnv("smtp.username", "CSM_SMTP_USERNAME", "SMTP_USER")
	v.BindEnv("smtp.password", "CSM_SMTP_PASSWORD", "SMTP_PASSWORD")
	v.BindEnv("smtp.from", "CSM_SMTP_FROM", "SMTP_FROM")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No config file: defaults plus environment only.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Hosting panels store the PEM with escaped newlines.
	cfg.Google.PrivateKey = strings.ReplaceAll(cfg.Google.PrivateKey, `\n`, "\n")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return fmt.Errorf("config validation: session.secret (SESSION_SECRET) must not be empty")
	}
	if len(c.Session.Secret) < 16 {
		return fmt.Errorf("config validation: session.secret must be at least 16 characters")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("config validation: db.url (DATABASE_URL) must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config validation: server.port must be between 1 and 65535")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config validation: session.ttl must be positive")
	}
	return nil
}
