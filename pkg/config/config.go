package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port" default:"5000"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors" default:"true"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Prediction struct {
		TargetYear               int      `yaml:"target_year"`
		SinglePointTrend         string   `yaml:"single_point_trend" default:"increasing"`
		SinglePointReferenceYear int      `yaml:"single_point_reference_year" default:"2021"`
		IndexAxisPolicy          string   `yaml:"index_axis_policy" default:"next_index"`
		OLevelMatricTotal        float64  `yaml:"o_level_matric_total" default:"900"`
		AssumeZeroTests          []string `yaml:"assume_zero_tests"`
		UniversitiesFile         string   `yaml:"universities_file" default:"config/universities.yaml"`
	} `yaml:"prediction"`
	History struct {
		DataDir    string `yaml:"data_dir" default:"data"`
		ClickHouse struct {
			Enabled     bool          `yaml:"enabled"`
			Host        string        `yaml:"host" default:"localhost"`
			Port        int           `yaml:"port" default:"9000"`
			Database    string        `yaml:"database" default:"unipredict"`
			User        string        `yaml:"user" default:"default"`
			Password    string        `yaml:"password"`
			Table       string        `yaml:"table" default:"merit_history"`
			UseHTTP     bool          `yaml:"use_http"`
			DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
		} `yaml:"clickhouse"`
	} `yaml:"history"`
	Scrape struct {
		Timeout       time.Duration `yaml:"timeout" default:"10s"`
		UserAgent     string        `yaml:"user_agent" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"`
		RatePerSecond float64       `yaml:"rate_per_second" default:"1"`
		Burst         int           `yaml:"burst" default:"3"`
		SourcesFile   string        `yaml:"sources_file" default:"config/sources.yaml"`
		Cache         struct {
			Backend       string        `yaml:"backend" default:"file"`
			FilePath      string        `yaml:"file_path" default:"data/scrape_cache.json"`
			TTL           time.Duration `yaml:"ttl" default:"720h"`
			MemoryMaxSize int           `yaml:"memory_max_size" default:"500"`
			Redis         struct {
				Addr     string `yaml:"addr" default:"localhost:6379"`
				Password string `yaml:"password"`
				DB       int    `yaml:"db"`
				Prefix   string `yaml:"prefix" default:"unipredict"`
			} `yaml:"redis"`
		} `yaml:"cache"`
	} `yaml:"scrape"`
	Kafka struct {
		Enabled       bool     `yaml:"enabled"`
		Brokers       []string `yaml:"brokers"`
		SnapshotTopic string   `yaml:"snapshot_topic" default:"unipredict.content.snapshots"`
		LogTopic      string   `yaml:"log_topic" default:"unipredict.logs"`
		RequiredAcks  int      `yaml:"required_acks" default:"-1"`
		Compression   string   `yaml:"compression" default:"gzip"`
	} `yaml:"kafka"`

	// Loaded from the catalog files referenced above.
	Universities []UniversityConfig `yaml:"-"`
	Sources      []SourceConfig     `yaml:"-"`
}

// Parse decodes a YAML document over the defaults. It does not load catalogs.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// Load reads a YAML configuration file and the catalogs it references.
// Catalog paths are resolved relative to the config file's parent directory
// when they are not absolute.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c, err := Parse(b)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(filepath.Dir(path))
	if c.Prediction.UniversitiesFile != "" {
		unis, err := LoadUniversities(resolve(base, c.Prediction.UniversitiesFile))
		if err != nil {
			return nil, err
		}
		c.Universities = unis
	}
	if c.Scrape.SourcesFile != "" {
		srcs, err := LoadSources(resolve(base, c.Scrape.SourcesFile))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		c.Sources = srcs
	}
	if c.History.DataDir != "" && !filepath.IsAbs(c.History.DataDir) {
		c.History.DataDir = resolve(base, c.History.DataDir)
	}
	if c.Scrape.Cache.FilePath != "" {
		c.Scrape.Cache.FilePath = resolve(base, c.Scrape.Cache.FilePath)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = p
	}
	if v := getenv("TARGET_YEAR"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TARGET_YEAR: %w", err)
		}
		c.Prediction.TargetYear = y
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Scrape.Cache.Redis.Addr = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.History.ClickHouse.Host = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Prediction.TargetYear <= 1900 {
		return fmt.Errorf("prediction.target_year must be a year after 1900, got %d", c.Prediction.TargetYear)
	}
	switch c.Prediction.SinglePointTrend {
	case "increasing", "decreasing", "stable":
	default:
		return fmt.Errorf("prediction.single_point_trend must be one of increasing, decreasing, stable, got '%s'", c.Prediction.SinglePointTrend)
	}
	switch c.Prediction.IndexAxisPolicy {
	case "next_index", "target_offset":
	default:
		return fmt.Errorf("prediction.index_axis_policy must be 'next_index' or 'target_offset', got '%s'", c.Prediction.IndexAxisPolicy)
	}
	if c.Prediction.OLevelMatricTotal <= 0 {
		return fmt.Errorf("prediction.o_level_matric_total must be positive")
	}
	for _, name := range c.Prediction.AssumeZeroTests {
		if !IsKnownTest(name) {
			return fmt.Errorf("prediction.assume_zero_tests: unknown test '%s'", name)
		}
	}
	switch c.Scrape.Cache.Backend {
	case "file", "memory", "redis", "layered":
	default:
		return fmt.Errorf("scrape.cache.backend must be one of file, memory, redis, layered, got '%s'", c.Scrape.Cache.Backend)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if err := ValidateUniversities(c.Universities); err != nil {
		return err
	}
	if err := ValidateSources(c.Sources); err != nil {
		return err
	}
	return nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
