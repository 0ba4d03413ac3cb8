package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Predictor backends.
const (
	BackendLocal = "local"
	BackendHTTP  = "http"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8501" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors" default:"false"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Predictor struct {
		Backend    string        `yaml:"backend" default:"local" validate:"oneof=local http"`
		ScalerPath string        `yaml:"scaler_path" validate:"required"`
		ModelPath  string        `yaml:"model_path" validate:"required_if=Backend local"`
		URL        string        `yaml:"url" validate:"required_if=Backend http"`
		Timeout    time.Duration `yaml:"timeout" default:"3s"`
		Retries    int           `yaml:"retries" default:"3" validate:"gte=0,lte=10"`
	} `yaml:"predictor"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled" default:"true"`
		RPS     float64 `yaml:"rps" default:"5" validate:"gt=0"`
		Burst   int     `yaml:"burst" default:"10" validate:"gte=1"`
	} `yaml:"rate_limit"`
	Cache struct {
		Enabled bool          `yaml:"enabled" default:"true"`
		TTL     time.Duration `yaml:"ttl" default:"30s"`
		Redis   struct {
			Enabled  bool          `yaml:"enabled" default:"false"`
			Addr     string        `yaml:"addr" default:"localhost:6379"`
			Password string        `yaml:"password"`
			DB       int           `yaml:"db" default:"0"`
			Prefix   string        `yaml:"prefix" default:"liquidity"`
			Timeout  time.Duration `yaml:"timeout" default:"2s" validate:"gt=0"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

var validate = validator.New()

// Load reads a YAML configuration file over the defaults and validates it.
func Load(path string) (*Config, error) {
	c, err := load(path, false)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Override adjusts the config after file and environment values are applied.
type Override func(*Config)

// LoadWithEnv loads a .env file when present, then the YAML config, then applies
// LIQ_* environment overrides and finally overrides, before validation. A missing
// YAML file is not an error so that the environment alone can configure the process.
func LoadWithEnv(path string, overrides ...Override) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := load(path, true)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	for _, o := range overrides {
		o(c)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// load applies struct defaults first so that explicit zero values in YAML
// (e.g. enabled: false) are kept.
func load(path string, allowMissing bool) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if path == "" {
		return &c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if allowMissing && errors.Is(err, os.ErrNotExist) {
			return &c, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LIQ_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("LIQ_SCALER_PATH"); v != "" {
		c.Predictor.ScalerPath = v
	}
	if v := os.Getenv("LIQ_MODEL_PATH"); v != "" {
		c.Predictor.ModelPath = v
	}
	if v := os.Getenv("LIQ_PREDICTOR_BACKEND"); v != "" {
		c.Predictor.Backend = v
	}
	if v := os.Getenv("LIQ_PREDICTOR_URL"); v != "" {
		c.Predictor.URL = v
	}
	if v := os.Getenv("LIQ_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LIQ_HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LIQ_HTTP_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LIQ_REDIS_ADDR"); v != "" {
		c.Cache.Redis.Enabled = true
		c.Cache.Redis.Addr = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}
