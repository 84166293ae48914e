package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"StockPilot/pkg/logger"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string        `yaml:"environment" default:"development" validate:"required"`
	Log         logger.Config `yaml:"log"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"90s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
		CORS            bool          `yaml:"cors" default:"true"`
		SlowRequest     time.Duration `yaml:"slow_request" default:"5s"`
		RateLimit       float64       `yaml:"rate_limit" default:"2"` // per client IP, 0 disables
		RateBurst       int           `yaml:"rate_burst" default:"5"`
		StreamPing      time.Duration `yaml:"stream_ping" default:"30s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	HTTPClient struct {
		Retries   int           `yaml:"retries" default:"3" validate:"gte=1"`
		Backoff   time.Duration `yaml:"backoff" default:"800ms"`
		Timeout   time.Duration `yaml:"timeout" default:"20s"`
		RateLimit float64       `yaml:"rate_limit" default:"5"` // requests per second, 0 disables
		Burst     int           `yaml:"burst" default:"5"`
	} `yaml:"http_client"`
	Cache struct {
		Type        string        `yaml:"type" default:"file" validate:"oneof=file layered redis"`
		Dir         string        `yaml:"dir"`
		TTL         time.Duration `yaml:"ttl" default:"1h"`
		MemoryItems int           `yaml:"memory_items" default:"1000"`
		MemoryTTL   time.Duration `yaml:"memory_ttl" default:"5m"`
	} `yaml:"cache"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size" default:"10"`
		Prefix   string `yaml:"prefix" default:"stockpilot"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Topics       struct {
			Requests string `yaml:"requests" default:"analysis.requests"`
			Results  string `yaml:"results" default:"analysis.results"`
			Audit    string `yaml:"audit" default:"analysis.audit"`
			Logs     string `yaml:"logs" default:"stockpilot.logs"`
		} `yaml:"topics"`
		Producer struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"stockpilot"`
			Workers    int           `yaml:"workers" default:"2"`
			BufferSize int           `yaml:"buffer_size" default:"16"`
			RetryMax   int           `yaml:"retry_max" default:"2"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"200ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"analysis.requests.dlq"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host" default:"localhost"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"stockpilot"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		MaxStaleness time.Duration `yaml:"max_staleness" default:"24h"`
	} `yaml:"clickhouse"`
	Pipeline struct {
		AnalystTimeout    time.Duration `yaml:"analyst_timeout" default:"30s"`
		ResearcherTimeout time.Duration `yaml:"researcher_timeout" default:"20s"`
		HistoryPeriod     string        `yaml:"history_period" default:"1y"`
		NewsLimit         int           `yaml:"news_limit" default:"10" validate:"gte=1,lte=100"`
	} `yaml:"pipeline"`
	Research struct {
		BullishThreshold   float64 `yaml:"bullish_threshold" default:"20"`
		BearDamping        float64 `yaml:"bear_damping" default:"0.9" validate:"gt=0,lte=1"`
		VarianceLimit      float64 `yaml:"variance_limit" default:"400"`
		VariancePenalty    float64 `yaml:"variance_penalty" default:"10" validate:"gte=0"`
		OptimismBias       float64 `yaml:"optimism_bias" default:"2"`
		SentimentBoostRate float64 `yaml:"sentiment_boost_rate" default:"0.2" validate:"gte=0"`
		MaxSentimentBoost  float64 `yaml:"max_sentiment_boost" default:"8" validate:"gte=0"`
		ConfidenceSlope    float64 `yaml:"confidence_slope" default:"0.8" validate:"gte=0"`
		ConfidenceBase     float64 `yaml:"confidence_base" default:"30" validate:"gte=0,lte=100"`
	} `yaml:"research"`
	Trader struct {
		MaxPosition         float64 `yaml:"max_position" default:"20" validate:"gt=0,lte=100"`
		MinPosition         float64 `yaml:"min_position" default:"1"`
		ConfidenceThreshold float64 `yaml:"confidence_threshold" default:"40" validate:"gte=0,lte=100"`
	} `yaml:"trader"`
	Queue struct {
		Enabled    bool          `yaml:"enabled"`
		Name       string        `yaml:"name" default:"pipeline"`
		Workers    int           `yaml:"workers" default:"2"`
		MaxRetries int           `yaml:"max_retries" default:"3"`
		JobTimeout time.Duration `yaml:"job_timeout" default:"3m"`
	} `yaml:"queue"`
}

var validate = validator.New()

// Default returns a configuration populated only from the default tags.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML on top of the defaults and validates the result.
// Defaults go first so an explicit false or zero in the file wins.
func Parse(b []byte) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML, or from defaults when path is empty,
// then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	var (
		c   *Config
		err error
	)
	if path == "" {
		c, err = Default()
	} else {
		c, err = Load(path)
	}
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("STOCKPILOT_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate runs the struct tag rules and the cross-field checks.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers cannot be empty when kafka is enabled")
	}
	if (c.Cache.Type == "redis" || c.Queue.Enabled) && !c.Redis.Enabled {
		return fmt.Errorf("redis must be enabled for cache.type=%s / queue.enabled=%t", c.Cache.Type, c.Queue.Enabled)
	}
	if c.Trader.MinPosition > c.Trader.MaxPosition {
		return errors.New("trader.min_position must not exceed trader.max_position")
	}
	if c.Pipeline.AnalystTimeout <= 0 || c.Pipeline.ResearcherTimeout <= 0 {
		return errors.New("pipeline timeouts must be positive")
	}
	return nil
}
