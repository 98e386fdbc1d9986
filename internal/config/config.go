package config

import (
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	StoreOxiDB  = "oxidb"
	StoreMemory = "memory"
)

type Config struct {
	HTTPAddr       string
	OxiDBHost      string
	OxiDBPort      int
	PoolSize       int
	Store          string
	JWTSecret      string
	AdminEmail     string
	AdminPass      string
	GelfAddr       string
	LogLevel       string
	RequestTimeout time.Duration
	DraftTTL       time.Duration
}

// OxiDBAddr is the host:port of the OxiDB server.
func (c *Config) OxiDBAddr() string {
	return net.JoinHostPort(c.OxiDBHost, strconv.Itoa(c.OxiDBPort))
}

// Load reads the configuration from the environment. Variables in an optional
// .env file (or the file named by KPI_ENV_FILE) fill in whatever the process
// environment leaves unset.
func Load() (*Config, error) {
	envFile := os.Getenv("KPI_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.Wrapf(err, "config: load %s", envFile)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "config: stat %s", envFile)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("kpi_addr", ":8080")
	v.SetDefault("oxidb_host", "127.0.0.1")
	v.SetDefault("oxidb_port", 4444)
	v.SetDefault("kpi_pool_size", 3)
	v.SetDefault("kpi_store", StoreOxiDB)
	v.SetDefault("kpi_jwt_secret", "oxikpi-dev-secret-change-me")
	v.SetDefault("kpi_admin_email", "admin@oxikpi.local")
	v.SetDefault("kpi_admin_pass", "admin123")
	v.SetDefault("kpi_gelf_addr", "")
	v.SetDefault("kpi_log_level", "info")
	v.SetDefault("kpi_request_timeout", 10*time.Second)
	v.SetDefault("kpi_draft_ttl", 12*time.Hour)
	v.AutomaticEnv()

	cfg := &Config{
		HTTPAddr:       v.GetString("kpi_addr"),
		OxiDBHost:      v.GetString("oxidb_host"),
		OxiDBPort:      v.GetInt("oxidb_port"),
		PoolSize:       v.GetInt("kpi_pool_size"),
		Store:          v.GetString("kpi_store"),
		JWTSecret:      v.GetString("kpi_jwt_secret"),
		AdminEmail:     v.GetString("kpi_admin_email"),
		AdminPass:      v.GetString("kpi_admin_pass"),
		GelfAddr:       v.GetString("kpi_gelf_addr"),
		LogLevel:       v.GetString("kpi_log_level"),
		RequestTimeout: v.GetDuration("kpi_request_timeout"),
		DraftTTL:       v.GetDuration("kpi_draft_ttl"),
	}
	if cfg.Store != StoreOxiDB && cfg.Store != StoreMemory {
		return nil, errors.Errorf("config: KPI_STORE must be %q or %q, got %q", StoreOxiDB, StoreMemory, cfg.Store)
	}
	if cfg.PoolSize < 1 {
		return nil, errors.Errorf("config: KPI_POOL_SIZE must be positive, got %d", cfg.PoolSize)
	}
	return cfg, nil
}
