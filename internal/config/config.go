package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv   string         `yaml:"app_env"`
	Relay    RelayConfig    `yaml:"relay"`
	Host     HostConfig     `yaml:"host"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Cache    CacheConfig    `yaml:"cache"`
	Poll     PollConfig     `yaml:"poll"`
}

type RelayConfig struct {
	ListenAddr     string   `yaml:"listen_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// Mutation routes share one limiter; burst absorbs double clicks.
	MutationRate  float64 `yaml:"mutation_rate"`
	MutationBurst int     `yaml:"mutation_burst"`
}

// HostConfig addresses the host local API. The relay runs as its own
// process and owns localhost:7172, so the host defaults to a different port.
type HostConfig struct {
	BaseURL string `yaml:"base_url"`
}

// UpstreamConfig overrides the identity snapshot when set. Timeout 0 means
// the relay never imposes its own deadline on upstream calls.
type UpstreamConfig struct {
	ScriptURL string        `yaml:"script_url"`
	Session   string        `yaml:"session"`
	Timeout   time.Duration `yaml:"timeout"`
}

type CacheConfig struct {
	Driver        string        `yaml:"driver"`
	ReferenceTTL  time.Duration `yaml:"reference_ttl"`
	RedisHost     string        `yaml:"redis_host"`
	RedisPort     string        `yaml:"redis_port"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

func (c CacheConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

type PollConfig struct {
	LiveFlights time.Duration `yaml:"live_flights"`
	Chat        time.Duration `yaml:"chat"`
	Bookings    time.Duration `yaml:"bookings"`
}

// Default returns the configuration used when neither a file nor env vars say otherwise.
func Default() *Config {
	return &Config{
		AppEnv: "development",
		Relay: RelayConfig{
			ListenAddr:     "localhost:7172",
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
			MutationRate:   2,
			MutationBurst:  5,
		},
		Host: HostConfig{
			BaseURL: "http://localhost:7170/",
		},
		Cache: CacheConfig{
			Driver:       "memory",
			ReferenceTTL: 6 * time.Hour,
			RedisHost:    "localhost",
			RedisPort:    "6379",
		},
		Poll: PollConfig{
			LiveFlights: 30 * time.Second,
			Chat:        5 * time.Second,
			Bookings:    60 * time.Second,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// non-empty), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := applyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = d
		return nil
	}

	setString("APP_ENV", &cfg.AppEnv)
	setString("RELAY_ADDR", &cfg.Relay.ListenAddr)
	setString("HOST_API_URL", &cfg.Host.BaseURL)
	setString("SCRIPT_URL", &cfg.Upstream.ScriptURL)
	setString("VA_SESSION", &cfg.Upstream.Session)
	setString("CACHE_DRIVER", &cfg.Cache.Driver)
	setString("REDIS_HOST", &cfg.Cache.RedisHost)
	setString("REDIS_PORT", &cfg.Cache.RedisPort)
	setString("REDIS_PASSWORD", &cfg.Cache.RedisPassword)

	if v := getenv("RELAY_ALLOWED_ORIGINS"); v != "" {
		cfg.Relay.AllowedOrigins = strings.Split(v, ",")
	}
	if v := getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		cfg.Cache.RedisDB = n
	}

	for key, dst := range map[string]*time.Duration{
		"UPSTREAM_TIMEOUT":  &cfg.Upstream.Timeout,
		"REFERENCE_TTL":     &cfg.Cache.ReferenceTTL,
		"POLL_LIVE_FLIGHTS": &cfg.Poll.LiveFlights,
		"POLL_CHAT":         &cfg.Poll.Chat,
		"POLL_BOOKINGS":     &cfg.Poll.Bookings,
	} {
		if err := setDuration(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects settings the relay cannot run with.
func (c *Config) Validate() error {
	if c.Relay.ListenAddr == "" {
		return fmt.Errorf("relay listen address is empty")
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	for name, d := range map[string]time.Duration{
		"live_flights": c.Poll.LiveFlights,
		"chat":         c.Poll.Chat,
		"bookings":     c.Poll.Bookings,
	} {
		if d <= 0 {
			return fmt.Errorf("poll interval %s must be positive", name)
		}
	}
	if c.Upstream.Timeout < 0 {
		return fmt.Errorf("upstream timeout must not be negative")
	}
	if c.Upstream.ScriptURL != "" && !strings.HasSuffix(c.Upstream.ScriptURL, "/") {
		c.Upstream.ScriptURL += "/"
	}
	if u, err := url.Parse(c.Host.BaseURL); err == nil && u.Host == c.Relay.ListenAddr {
		return fmt.Errorf("host API %s points at the relay itself", c.Host.BaseURL)
	}
	if c.Host.BaseURL != "" && !strings.HasSuffix(c.Host.BaseURL, "/") {
		c.Host.BaseURL += "/"
	}
	return nil
}
