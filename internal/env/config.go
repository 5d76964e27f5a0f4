package env

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config is the runtime configuration of the companymap binaries, read from
// the environment.
type Config struct {
	LogLevel  string
	LogPretty bool
	HTTPAddr  string

	// Collation is an optional BCP 47 tag used to order collocated names.
	// Empty means ordinal ordering.
	Collation string

	MinIO     MinIOConfig
	Dataset   DatasetConfig
	Kafka     KafkaConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Geocoder  GeocoderConfig
	Wikipedia WikipediaConfig
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

type DatasetConfig struct {
	Bucket       string
	Key          string
	LayoutBucket string
}

// KafkaConfig is optional; an empty Broker disables the watcher and the
// layout events.
type KafkaConfig struct {
	Broker      string
	Topic       string
	GroupID     string
	LayoutTopic string
}

func (k KafkaConfig) Enabled() bool { return k.Broker != "" }

type PostgresConfig struct {
	DSN string
}

func (p PostgresConfig) Enabled() bool { return p.DSN != "" }

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type GeocoderConfig struct {
	Enabled     bool
	BaseURL     string
	UserAgent   string
	MinInterval time.Duration
}

type WikipediaConfig struct {
	Enabled bool
	BaseURL string
}

// defaults apply when a variable is unset or empty.
var defaults = map[string]any{
	"LOG_LEVEL":             "info",
	"LOG_PRETTY":            false,
	"HTTP_ADDR":             ":8080",
	"MINIO_USE_SSL":         false,
	"DATASET_KEY":           "datasets/companies.json",
	"KAFKA_TOPIC":           "companymap.dataset-events",
	"KAFKA_GROUP_ID":        "companymap",
	"REDIS_DB":              0,
	"GEOCODE_CACHE_TTL":     30 * 24 * time.Hour,
	"GEOCODER_ENABLED":      false,
	"GEOCODER_BASE_URL":     "https://nominatim.openstreetmap.org",
	"GEOCODER_USER_AGENT":   "companymap/1.0",
	"GEOCODER_MIN_INTERVAL": time.Second,
	"WIKIPEDIA_ENABLED":     false,
	"WIKIPEDIA_BASE_URL":    "https://en.wikipedia.org",
}

// reader reads typed settings from the environment and collects every
// problem instead of stopping at the first.
type reader struct {
	v    *viper.Viper
	errs []error
}

func newReader() *reader {
	v := viper.New()
	v.AutomaticEnv()
	for key, def := range defaults {
		v.SetDefault(key, def)
	}
	return &reader{v: v}
}

func (r *reader) string(key string) string {
	return r.v.GetString(key)
}

func (r *reader) required(key string) string {
	s := r.v.GetString(key)
	if s == "" {
		r.errs = append(r.errs, fmt.Errorf("environment variable %s not set", key))
	}
	return s
}

func (r *reader) bool(key string) bool {
	b, err := cast.ToBoolE(r.v.Get(key))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return b
}

func (r *reader) int(key string) int {
	n, err := cast.ToIntE(r.v.Get(key))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return n
}

func (r *reader) duration(key string) time.Duration {
	d, err := cast.ToDurationE(r.v.Get(key))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return d
}

func (r *reader) err() error {
	return errors.Join(r.errs...)
}

func (r *reader) minIO() MinIOConfig {
	return MinIOConfig{
		Endpoint:  r.required("MINIO_ENDPOINT"),
		AccessKey: r.required("MINIO_ACCESS_KEY"),
		SecretKey: r.required("MINIO_SECRET_KEY"),
		UseSSL:    r.bool("MINIO_USE_SSL"),
	}
}

// Load reads Config from the environment. MinIO credentials and the dataset
// bucket are required; every other setting has a default or is optional.
func Load() (Config, error) {
	r := newReader()
	cfg := Config{
		LogLevel:  r.string("LOG_LEVEL"),
		LogPretty: r.bool("LOG_PRETTY"),
		HTTPAddr:  r.string("HTTP_ADDR"),
		Collation: r.string("LAYOUT_COLLATION"),
		MinIO:     r.minIO(),
		Dataset: DatasetConfig{
			Bucket:       r.required("DATASET_BUCKET"),
			Key:          r.string("DATASET_KEY"),
			LayoutBucket: r.string("LAYOUT_BUCKET"),
		},
		Kafka: KafkaConfig{
			Broker:      r.string("KAFKA_BROKER"),
			Topic:       r.string("KAFKA_TOPIC"),
			GroupID:     r.string("KAFKA_GROUP_ID"),
			LayoutTopic: r.string("KAFKA_LAYOUT_TOPIC"),
		},
		Postgres: PostgresConfig{
			DSN: r.string("DATABASE_URL"),
		},
		Redis: RedisConfig{
			Addr:     r.string("REDIS_ADDR"),
			Password: r.string("REDIS_PASSWORD"),
			DB:       r.int("REDIS_DB"),
			TTL:      r.duration("GEOCODE_CACHE_TTL"),
		},
		Geocoder: GeocoderConfig{
			Enabled:     r.bool("GEOCODER_ENABLED"),
			BaseURL:     r.string("GEOCODER_BASE_URL"),
			UserAgent:   r.string("GEOCODER_USER_AGENT"),
			MinInterval: r.duration("GEOCODER_MIN_INTERVAL"),
		},
		Wikipedia: WikipediaConfig{
			Enabled: r.bool("WIKIPEDIA_ENABLED"),
			BaseURL: r.string("WIKIPEDIA_BASE_URL"),
		},
	}
	if cfg.Dataset.LayoutBucket == "" {
		cfg.Dataset.LayoutBucket = cfg.Dataset.Bucket
	}

	if err := r.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadMinIO reads only the MinIO connection settings.
func LoadMinIO() (MinIOConfig, error) {
	r := newReader()
	cfg := r.minIO()
	if err := r.err(); err != nil {
		return MinIOConfig{}, err
	}
	return cfg, nil
}
