package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfg       *Config
	dir       string
	watchFile string
	listeners []func(*Config)
	mu        sync.RWMutex
)

// Config represents the application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Session  SessionConfig  `mapstructure:"session"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Calendar CalendarConfig `mapstructure:"calendar"`
}

type AppConfig struct {
	Name            string `mapstructure:"name"`
	Env             string `mapstructure:"env"`
	Debug           bool   `mapstructure:"debug"`
	DefaultLanguage string `mapstructure:"default_language"`
	DefaultView     string `mapstructure:"default_view"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// BackendConfig points at the helpdesk REST API.
type BackendConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"` // defaults to helpdesk-web/<version>
	Debug     bool          `mapstructure:"debug"`
}

type SessionConfig struct {
	CookieName  string        `mapstructure:"cookie_name"`
	Secure      bool          `mapstructure:"secure"`
	TTL         time.Duration `mapstructure:"ttl"`
	RestoreWait time.Duration `mapstructure:"restore_wait"`
	Store       string        `mapstructure:"store"` // memory | redis
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type AuthConfig struct {
	LoginMaxAttempts int           `mapstructure:"login_max_attempts"`
	LoginWindow      time.Duration `mapstructure:"login_window"`
	LoginBackoff     time.Duration `mapstructure:"login_backoff"`
	LoginMaxBackoff  time.Duration `mapstructure:"login_max_backoff"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// CalendarConfig describes the business hours used for SLA previews.
type CalendarConfig struct {
	WorkdayStart string   `mapstructure:"workday_start"` // HH:MM
	WorkdayEnd   string   `mapstructure:"workday_end"`
	Holidays     []string `mapstructure:"holidays"` // YYYY-MM-DD
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "helpdesk-web")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.default_language", "en")
	v.SetDefault("app.default_view", "/dashboard")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("backend.base_url", "http://localhost:8081/api/v1")
	v.SetDefault("backend.timeout", 15*time.Second)

	v.SetDefault("session.cookie_name", "helpdesk_session")
	v.SetDefault("session.ttl", 12*time.Hour)
	v.SetDefault("session.restore_wait", 2*time.Second)
	v.SetDefault("session.store", "memory")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.prefix", "helpdesk:session:")

	v.SetDefault("auth.login_max_attempts", 5)
	v.SetDefault("auth.login_window", 5*time.Minute)
	v.SetDefault("auth.login_backoff", 2*time.Second)
	v.SetDefault("auth.login_max_backoff", time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("calendar.workday_start", "09:00")
	v.SetDefault("calendar.workday_end", "17:00")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix("HELPDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads default.yaml and then config.yaml from configPath. Both files are
// optional; HELPDESK_* environment variables override either.
func Load(configPath string) error {
	next, used, err := read(configPath)
	if err != nil {
		return err
	}

	mu.Lock()
	cfg = next
	dir = configPath
	watchFile = used
	mu.Unlock()
	return nil
}

// read returns the merged configuration and the last file it came from.
func read(configPath string) (*Config, string, error) {
	v := newViper()
	v.AddConfigPath(configPath)

	var used string
	v.SetConfigName("default")
	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, "", fmt.Errorf("failed to read default config: %w", err)
	} else if err == nil {
		used = v.ConfigFileUsed()
	}

	v.SetConfigName("config")
	if err := v.MergeInConfig(); err != nil && !isNotFound(err) {
		return nil, "", fmt.Errorf("failed to merge config: %w", err)
	} else if err == nil {
		used = v.ConfigFileUsed()
	}

	next := &Config{}
	if err := v.Unmarshal(next); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return next, used, nil
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf)
}

// OnReload registers fn to run with every configuration Watch accepts.
func OnReload(fn func(*Config)) {
	mu.Lock()
	listeners = append(listeners, fn)
	mu.Unlock()
}

// Watch reloads the configuration whenever the loaded file changes. Both
// files are read again so an edit to config.yaml keeps default.yaml values.
// An invalid result leaves the current configuration in place.
func Watch(log *zap.Logger) {
	mu.RLock()
	file := watchFile
	mu.RUnlock()
	if file == "" {
		return
	}

	w := viper.New()
	w.SetConfigFile(file)
	w.OnConfigChange(func(e fsnotify.Event) {
		log.Info("config file changed", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		if err := reload(); err != nil {
			log.Error("config reload rejected, keeping previous", zap.Error(err))
			return
		}
		log.Info("configuration reloaded")
	})
	w.WatchConfig()
}

func reload() error {
	mu.RLock()
	from := dir
	mu.RUnlock()

	next, _, err := read(from)
	if err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}

	mu.Lock()
	cfg = next
	notify := append([]func(*Config){}, listeners...)
	mu.Unlock()

	for _, fn := range notify {
		fn(next)
	}
	return nil
}

// Get returns the current configuration (thread-safe)
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Default returns the built-in defaults without reading any file.
func Default() *Config {
	v := newViper()
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		panic(fmt.Sprintf("default config does not decode: %v", err))
	}
	return c
}

// LoadFromFile loads configuration from a specific file (useful for testing)
func LoadFromFile(configFile string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configFile)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return c, nil
}

// GetRedisAddr returns the Redis server address
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetServerAddr returns the server listen address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction returns true if running in production mode
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
