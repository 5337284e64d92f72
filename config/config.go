// Package config loads the service configuration from YAML with environment overrides.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
		RateLimit      float64       `yaml:"rate_limit"`
		RateBurst      int           `yaml:"rate_burst"`
	} `yaml:"http"`
	Log       Log       `yaml:"log"`
	Artifacts Artifacts `yaml:"artifacts"`
	Model     struct {
		Algorithm string  `yaml:"algorithm"`
		Accuracy  float64 `yaml:"accuracy"`
		CacheSize int     `yaml:"cache_size"`
	} `yaml:"model"`
}

type Log struct {
	Level      string `yaml:"level"`
	JSON       bool   `yaml:"json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type Artifacts struct {
	Dir          string `yaml:"dir"`
	ModelFile    string `yaml:"model_file"`
	ScalerFile   string `yaml:"scaler_file"`
	FeaturesFile string `yaml:"features_file"`
	Watch        bool   `yaml:"watch"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.Http.Port = 5000
	c.Http.Timeout = 30 * time.Second
	c.Http.AllowedOrigins = []string{"*"}
	c.Http.MaxBodyBytes = 1 << 20
	c.Log = Log{Level: "info", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 28}
	c.Artifacts = Artifacts{
		ModelFile:    "wine_cultivar_model.json",
		ScalerFile:   "scaler.json",
		FeaturesFile: "selected_features.json",
	}
	c.Model.Algorithm = "Random Forest Classifier"
	c.Model.Accuracy = 0.9722
	c.Model.CacheSize = 256
	return c
}

// Load reads path on top of the defaults. A missing file is not an error when
// optional is true. Environment overrides are applied last.
func Load(path string, optional bool) (*Config, error) {
	config := Default()

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(config); err != nil {
			return nil, errors.Wrapf(err, "failed to decode config %s", path)
		}
	case os.IsNotExist(err) && optional:
	default:
		return nil, errors.Wrapf(err, "failed to open config %s", path)
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment. Variables
// that are already set keep their value. A missing file is ignored when optional.
func LoadDotEnv(path string, optional bool) error {
	if err := godotenv.Load(path); err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "failed to load env file %s", path)
	}
	return nil
}

func applyEnv(config *Config) error {
	if v := os.Getenv("CULTIVAR_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "invalid CULTIVAR_PORT %q", v)
		}
		config.Http.Port = port
	}
	if v := os.Getenv("CULTIVAR_MODEL_DIR"); v != "" {
		config.Artifacts.Dir = v
	}
	if v := os.Getenv("CULTIVAR_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return errors.Newf("http.port %d out of range", c.Http.Port)
	}
	if c.Http.Timeout <= 0 {
		return errors.Newf("http.timeout must be positive, got %s", c.Http.Timeout)
	}
	if c.Http.MaxBodyBytes <= 0 {
		return errors.Newf("http.max_body_bytes must be positive, got %d", c.Http.MaxBodyBytes)
	}
	if c.Http.RateLimit < 0 || c.Http.RateBurst < 0 {
		return errors.Newf("http.rate_limit and http.rate_burst must not be negative, got %v/%d",
			c.Http.RateLimit, c.Http.RateBurst)
	}
	if c.Model.CacheSize < 0 {
		return errors.Newf("model.cache_size must not be negative, got %d", c.Model.CacheSize)
	}
	if c.Artifacts.ModelFile == "" || c.Artifacts.ScalerFile == "" || c.Artifacts.FeaturesFile == "" {
		return errors.New("artifacts file names must not be empty")
	}
	return nil
}

// ArtifactDir resolves the artifact directory. An unset dir means the "model"
// directory next to the executable, falling back to ./model.
func (c *Config) ArtifactDir() string {
	if c.Artifacts.Dir != "" {
		return c.Artifacts.Dir
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Join(filepath.Dir(exe), "model")
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return "model"
}
