package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the forestd configuration shared by the trainer and the server.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Model    ModelConfig    `yaml:"model"`
	Training TrainingConfig `yaml:"training"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"` // debug, info, warn, error (default: determined by env)
	File       string `yaml:"file"`  // optional rotated JSON log file
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`
	MaxBatchRows    int   `yaml:"max_batch_rows"`
}

// ModelConfig locates the model artifact.
type ModelConfig struct {
	ArtifactPath string `yaml:"artifact_path"`
}

// TrainingConfig holds training pipeline settings.
type TrainingConfig struct {
	Dataset      string       `yaml:"dataset"` // "" = embedded reference dataset, or a .csv/.parquet path
	TestFraction float64      `yaml:"test_fraction"`
	SplitSeed    *int64       `yaml:"split_seed"`
	Forest       ForestConfig `yaml:"forest"`
}

// ForestConfig holds classifier hyperparameters.
type ForestConfig struct {
	NEstimators     int    `yaml:"n_estimators"`
	MaxDepth        int    `yaml:"max_depth"`
	MaxFeatures     int    `yaml:"max_features"` // 0 = floor(sqrt(arity))
	MinSamplesSplit int    `yaml:"min_samples_split"`
	RandomState     *int64 `yaml:"random_state"`
}

// DefaultSeed seeds both the split and the forest when unset.
const DefaultSeed int64 = 42

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 1 << 20
	}
	if c.HTTP.MaxBatchRows <= 0 {
		c.HTTP.MaxBatchRows = 1000
	}
	if c.Model.ArtifactPath == "" {
		c.Model.ArtifactPath = "model.forest"
	}
	if c.Training.TestFraction == 0 {
		c.Training.TestFraction = 0.3
	}
	if c.Training.SplitSeed == nil {
		seed := DefaultSeed
		c.Training.SplitSeed = &seed
	}
	if c.Training.Forest.NEstimators == 0 {
		c.Training.Forest.NEstimators = 10
	}
	if c.Training.Forest.MaxDepth == 0 {
		c.Training.Forest.MaxDepth = 3
	}
	if c.Training.Forest.RandomState == nil {
		seed := DefaultSeed
		c.Training.Forest.RandomState = &seed
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = 100
	}
	if c.Logging.MaxBackups <= 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAgeDays <= 0 {
		c.Logging.MaxAgeDays = 28
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Model.ArtifactPath == "" {
		return fmt.Errorf("model.artifact_path is required")
	}
	if !(c.Training.TestFraction > 0 && c.Training.TestFraction < 1) {
		return fmt.Errorf("training.test_fraction must be in (0, 1), got %v", c.Training.TestFraction)
	}
	f := c.Training.Forest
	if f.NEstimators < 0 || f.MaxDepth < 0 || f.MaxFeatures < 0 || f.MinSamplesSplit < 0 {
		return fmt.Errorf("training.forest parameters must not be negative")
	}
	switch ext := strings.ToLower(filepath.Ext(c.Training.Dataset)); {
	case c.Training.Dataset == "", ext == ".csv", ext == ".parquet":
		// ok
	default:
		return fmt.Errorf("training.dataset must be a .csv or .parquet file, got %q", c.Training.Dataset)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
