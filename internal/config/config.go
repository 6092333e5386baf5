package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env            string
	HttpPort       string
	VendorBaseURL  string        // e.g. https://co1.qualtrics.com
	VendorToken    string        // sent as X-API-TOKEN; never exposed to clients
	VendorTimeout  time.Duration // per outbound call, no retries
	AllowedOrigins []string
	JobStore       string // db|redis
	JobRetention   time.Duration
	DBDriver       string // sqlite|postgres
	DBPath         string // used when DBDriver=sqlite
	DBDsn          string // used when DBDriver=postgres (e.g., DATABASE_URL)
	RedisURL       string // used when JobStore=redis
}

// fileConfig mirrors the optional YAML file pointed to by CONFIG_FILE.
type fileConfig struct {
	Env       string `yaml:"env"`
	HttpPort  string `yaml:"httpPort"`
	Qualtrics struct {
		BaseURL string `yaml:"baseUrl"`
		Token   string `yaml:"token"`
		Timeout string `yaml:"timeout"`
	} `yaml:"qualtrics"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
	Jobs           struct {
		Store     string `yaml:"store"`
		Retention string `yaml:"retention"`
	} `yaml:"jobs"`
	DB struct {
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
		DSN    string `yaml:"dsn"`
	} `yaml:"db"`
	RedisURL string `yaml:"redisUrl"`
}

// Load builds the config from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables. Vendor credentials are
// not validated here; proxy routes fail on first use when they are missing.
func Load() (*Config, error) {
	fc := fileConfig{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
		}
	}

	vendorTimeout, err := parseDuration("VENDOR_TIMEOUT", fc.Qualtrics.Timeout, 30*time.Second)
	if err != nil {
		return nil, err
	}
	retention, err := parseDuration("JOB_RETENTION", fc.Jobs.Retention, 72*time.Hour)
	if err != nil {
		return nil, err
	}
	origins := fc.AllowedOrigins
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		origins = splitList(v)
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	cfg := &Config{
		Env:            getEnv("APP_ENV", or(fc.Env, "dev")),
		HttpPort:       getEnv("HTTP_PORT", getEnv("PORT", or(fc.HttpPort, "5000"))),
		VendorBaseURL:  strings.TrimRight(getEnv("QUALTRICS_BASE_URL", or(fc.Qualtrics.BaseURL, "https://co1.qualtrics.com")), "/"),
		VendorToken:    getEnv("QUALTRICS_API_TOKEN", fc.Qualtrics.Token),
		VendorTimeout:  vendorTimeout,
		AllowedOrigins: origins,
		JobStore:       strings.ToLower(getEnv("JOB_STORE", or(fc.Jobs.Store, "db"))),
		JobRetention:   retention,
		DBDriver:       getEnv("DB_DRIVER", or(fc.DB.Driver, "sqlite")),
		DBPath:         getEnv("DB_PATH", or(fc.DB.Path, "data/surveyboard.db")),
		DBDsn:          getEnv("DATABASE_URL", getEnv("DB_DSN", fc.DB.DSN)),
		RedisURL:       getEnv("REDIS_URL", or(fc.RedisURL, "redis://localhost:6379/0")),
	}
	if cfg.JobStore != "db" && cfg.JobStore != "redis" {
		return nil, fmt.Errorf("JOB_STORE must be db or redis, got %q", cfg.JobStore)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" { return v }
	return def
}

func or(v, def string) string {
	if strings.TrimSpace(v) != "" { return v }
	return def
}

func parseDuration(key, fileVal string, def time.Duration) (time.Duration, error) {
	raw := getEnv(key, fileVal)
	if raw == "" { return def, nil }
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" { out = append(out, p) }
	}
	return out
}
