package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "file", c.Cache.Type)
	assert.Equal(t, time.Hour, c.Cache.TTL)
	assert.Equal(t, 3, c.HTTPClient.Retries)
	assert.Equal(t, 800*time.Millisecond, c.HTTPClient.Backoff)
	assert.Equal(t, 30*time.Second, c.Pipeline.AnalystTimeout)
	assert.Equal(t, 20*time.Second, c.Pipeline.ResearcherTimeout)
	assert.Equal(t, "1y", c.Pipeline.HistoryPeriod)
	assert.Equal(t, 40.0, c.Trader.ConfidenceThreshold)
	assert.Equal(t, "analysis.requests", c.Kafka.Topics.Requests)
	assert.True(t, c.Metrics.Enabled)
}

func TestParseKeepsExplicitValues(t *testing.T) {
	c, err := Parse([]byte(`
environment: test
metrics:
  enabled: false
server:
  port: 9090
pipeline:
  news_limit: 5
`))
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment)
	assert.False(t, c.Metrics.Enabled)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 5, c.Pipeline.NewsLimit)
	assert.Equal(t, "1y", c.Pipeline.HistoryPeriod)
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"cache type":       "cache:\n  type: disk\n",
		"kafka no brokers": "kafka:\n  enabled: true\n",
		"redis cache":      "cache:\n  type: redis\n",
		"queue no redis":   "queue:\n  enabled: true\n",
		"log level":        "log:\n  level: loud\n",
		"position range":   "trader:\n  min_position: 30\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: development\n"), 0o644))

	t.Setenv("STOCKPILOT_ENV", "production")
	t.Setenv("CACHE_DIR", "/tmp/sp")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("HTTP_PORT", "9999")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, "/tmp/sp", c.Cache.Dir)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, "redis:6379", c.Redis.Addr)
	assert.True(t, c.Redis.Enabled)
	assert.Equal(t, 9999, c.Server.Port)
}

func TestLoadWithEnvBadPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")
	_, err := LoadWithEnv("")
	assert.Error(t, err)
}

func TestLoadShippedConfig(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "./data/cache", c.Cache.Dir)
}

func TestResearchKnobs(t *testing.T) {
	c, err := Parse([]byte(`
research:
  bear_damping: 0.8
  variance_penalty: 5
  confidence_slope: 0.5
`))
	require.NoError(t, err)
	assert.Equal(t, 0.8, c.Research.BearDamping)
	assert.Equal(t, 5.0, c.Research.VariancePenalty)
	assert.Equal(t, 0.5, c.Research.ConfidenceSlope)
	assert.Equal(t, 30.0, c.Research.ConfidenceBase)
	assert.Equal(t, 0.2, c.Research.SentimentBoostRate)
	assert.Equal(t, 8.0, c.Research.MaxSentimentBoost)
}
