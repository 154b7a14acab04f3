package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testLatticeURL = "lattice.example.com"
	testEnvToken   = "env-token"
)

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("LATTICE_URL", testLatticeURL)
	t.Setenv("ENVIRONMENT_TOKEN", testEnvToken)
}

func TestLoad_Defaults(t *testing.T) {
	setCredentials(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, testLatticeURL, cfg.LatticeURL)
	assert.Equal(t, testEnvToken, cfg.EnvironmentToken)
	assert.Empty(t, cfg.SandboxesToken)
	assert.Equal(t, 30*time.Minute, cfg.UpdateInterval)
	assert.Equal(t, 2*time.Hour, cfg.EntityTTL)
	assert.Equal(t, 5*time.Minute, cfg.RecoveryWait)
	assert.Equal(t, 10*time.Second, cfg.PublishTimeout)
	assert.Equal(t, 4, cfg.PublishConcurrency)
	assert.Equal(t, "https://aviationweather.gov/api/data", cfg.MetarAPIURL)
	assert.Equal(t, 30*time.Second, cfg.MetarTimeout)
	assert.Empty(t, cfg.StationsFile)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "weather-entities", cfg.KafkaTopic)
	assert.False(t, cfg.MQTTEnabled)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "weather", cfg.MQTTTopicPrefix)
}

func TestLoad_CustomEnv(t *testing.T) {
	setCredentials(t)
	t.Setenv("SANDBOXES_TOKEN", "sandbox-token")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("UPDATE_INTERVAL_MINUTES", "15")
	t.Setenv("ENTITY_TTL", "90m")
	t.Setenv("RECOVERY_WAIT", "1m")
	t.Setenv("PUBLISH_TIMEOUT", "3s")
	t.Setenv("PUBLISH_CONCURRENCY", "8")
	t.Setenv("METAR_API_URL", "http://localhost:9999/api/data")
	t.Setenv("METAR_TIMEOUT", "5s")
	t.Setenv("STATIONS_FILE", "/etc/metar/stations.yaml")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "entities")
	t.Setenv("MQTT_ENABLED", "true")
	t.Setenv("MQTT_BROKER", "tcp://mqtt:1883")
	t.Setenv("MQTT_CLIENT_ID", "sync-1")
	t.Setenv("MQTT_TOPIC_PREFIX", "airports")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sandbox-token", cfg.SandboxesToken)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 15*time.Minute, cfg.UpdateInterval)
	assert.Equal(t, 90*time.Minute, cfg.EntityTTL)
	assert.Equal(t, time.Minute, cfg.RecoveryWait)
	assert.Equal(t, 3*time.Second, cfg.PublishTimeout)
	assert.Equal(t, 8, cfg.PublishConcurrency)
	assert.Equal(t, "http://localhost:9999/api/data", cfg.MetarAPIURL)
	assert.Equal(t, 5*time.Second, cfg.MetarTimeout)
	assert.Equal(t, "/etc/metar/stations.yaml", cfg.StationsFile)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "entities", cfg.KafkaTopic)
	assert.True(t, cfg.MQTTEnabled)
	assert.Equal(t, "tcp://mqtt:1883", cfg.MQTTBroker)
	assert.Equal(t, "sync-1", cfg.MQTTClientID)
	assert.Equal(t, "airports", cfg.MQTTTopicPrefix)
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Run("no url", func(t *testing.T) {
		t.Setenv("LATTICE_URL", "")
		t.Setenv("ENVIRONMENT_TOKEN", testEnvToken)
		_, err := Load()
		require.ErrorIs(t, err, ErrMissingCredentials)
	})

	t.Run("no token", func(t *testing.T) {
		t.Setenv("LATTICE_URL", testLatticeURL)
		t.Setenv("ENVIRONMENT_TOKEN", "")
		_, err := Load()
		require.ErrorIs(t, err, ErrMissingCredentials)
	})
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"UPDATE_INTERVAL_MINUTES", "0"},
		{"UPDATE_INTERVAL_MINUTES", "half-hour"},
		{"ENTITY_TTL", "-1h"},
		{"RECOVERY_WAIT", "soon"},
		{"PUBLISH_TIMEOUT", "0s"},
		{"PUBLISH_CONCURRENCY", "-2"},
		{"METAR_TIMEOUT", "bad"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			setCredentials(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
