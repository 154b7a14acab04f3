package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// ErrMissingCredentials is returned when the entity directory endpoint or its
// primary bearer token is not configured.
var ErrMissingCredentials = errors.New("LATTICE_URL and ENVIRONMENT_TOKEN must be set")

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Entity directory (Lattice) connection.
	LatticeURL       string
	EnvironmentToken string
	SandboxesToken   string

	// Reconciliation loop.
	UpdateInterval     time.Duration
	EntityTTL          time.Duration
	RecoveryWait       time.Duration
	PublishTimeout     time.Duration
	PublishConcurrency int

	// Observation source.
	MetarAPIURL  string
	MetarTimeout time.Duration
	StationsFile string

	// Optional Kafka mirror.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Optional MQTT mirror.
	MQTTEnabled     bool
	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	intervalMinutes, err := parsePositiveInt("UPDATE_INTERVAL_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	ttl, err := parsePositiveDuration("ENTITY_TTL", "2h")
	if err != nil {
		return nil, err
	}
	recoveryWait, err := parsePositiveDuration("RECOVERY_WAIT", "5m")
	if err != nil {
		return nil, err
	}
	publishTimeout, err := parsePositiveDuration("PUBLISH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	concurrency, err := parsePositiveInt("PUBLISH_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}
	metarTimeout, err := parsePositiveDuration("METAR_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		LatticeURL:       os.Getenv("LATTICE_URL"),
		EnvironmentToken: os.Getenv("ENVIRONMENT_TOKEN"),
		SandboxesToken:   os.Getenv("SANDBOXES_TOKEN"),

		UpdateInterval:     time.Duration(intervalMinutes) * time.Minute,
		EntityTTL:          ttl,
		RecoveryWait:       recoveryWait,
		PublishTimeout:     publishTimeout,
		PublishConcurrency: concurrency,

		MetarAPIURL:  sharedcfg.EnvOrDefault("METAR_API_URL", "https://aviationweather.gov/api/data"),
		MetarTimeout: metarTimeout,
		StationsFile: os.Getenv("STATIONS_FILE"),

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "weather-entities"),

		MQTTEnabled:     os.Getenv("MQTT_ENABLED") == "true",
		MQTTBroker:      sharedcfg.EnvOrDefault("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID:    sharedcfg.EnvOrDefault("MQTT_CLIENT_ID", "metar-entity-sync"),
		MQTTTopicPrefix: sharedcfg.EnvOrDefault("MQTT_TOPIC_PREFIX", "weather"),
	}

	if cfg.LatticeURL == "" || cfg.EnvironmentToken == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}
	if cfg.MQTTEnabled && cfg.MQTTBroker == "" {
		return nil, errors.New("MQTT_BROKER is required when MQTT_ENABLED is true")
	}

	return cfg, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, s)
	}
	return n, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, s)
	}
	return d, nil
}
