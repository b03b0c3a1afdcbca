package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath         = "."
	defaultPollInterval = 300 * time.Second
	defaultFetchTimeout = 30 * time.Second
	defaultRadiusMeters = 75000
	defaultStoreLimit   = 50
	defaultMaxDeals     = 10
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// Source configuration for the upstream deals API.
	Source *SourceConfig `json:"source" yaml:"source" validate:"required"`

	// Poll configuration for the background ingestion scheduler.
	Poll *PollConfig `json:"poll" yaml:"poll" validate:"required"`

	// Dispatch configuration for subscriber notifications.
	Dispatch *DispatchConfig `json:"dispatch" yaml:"dispatch"`

	// Mailer configuration for the outbound email transport.
	Mailer *MailerConfig `json:"mailer" yaml:"mailer"`

	// PubSub configuration for cycle event publishing.
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// SourceConfig defines access to the upstream deals API.
type SourceConfig struct {
	BaseURL string `json:"baseUrl" yaml:"baseUrl" validate:"required,url"`
	APIKey  string `json:"apiKey" yaml:"apiKey"`

	// RadiusMeters is the store search radius around each locality center.
	RadiusMeters int `json:"radiusMeters" yaml:"radiusMeters"`

	// StoreLimit caps how many stores one locality fetch may return.
	StoreLimit int `json:"storeLimit" yaml:"storeLimit"`

	// FetchTimeout bounds each upstream HTTP call.
	FetchTimeout time.Duration `json:"fetchTimeout" yaml:"fetchTimeout"`

	// RequestsPerSecond throttles upstream calls; zero disables throttling.
	RequestsPerSecond float64 `json:"requestsPerSecond" yaml:"requestsPerSecond"`

	// CacheSizeMB sizes the response cache; zero disables caching.
	CacheSizeMB int `json:"cacheSizeMb" yaml:"cacheSizeMb"`

	// CacheTTL bounds how long a cached response stays valid. Defaults to the
	// polling interval so a retried or manually triggered cycle reuses the
	// previous fetch instead of hammering the source.
	CacheTTL time.Duration `json:"cacheTtl" yaml:"cacheTtl"`
}

// LocalityConfig is one tracked geographic search area.
type LocalityConfig struct {
	Key       string  `json:"key" yaml:"key" validate:"required"`
	Name      string  `json:"name" yaml:"name" validate:"required"`
	Latitude  float64 `json:"latitude" yaml:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" yaml:"longitude" validate:"min=-180,max=180"`
}

// PollConfig defines the background ingestion schedule.
type PollConfig struct {
	Interval time.Duration `json:"interval" yaml:"interval"`

	// FetchWorkers bounds how many locality fetches run concurrently.
	FetchWorkers int `json:"fetchWorkers" yaml:"fetchWorkers"`

	Localities []LocalityConfig `json:"localities" yaml:"localities" validate:"required,min=1,dive"`
}

// DispatchConfig tunes subscriber notification batching.
type DispatchConfig struct {
	// MaxDealsPerAlert caps the deal list inside one alert payload.
	MaxDealsPerAlert int `json:"maxDealsPerAlert" yaml:"maxDealsPerAlert"`
}

// MailerConfig selects and configures the outbound email provider.
// Provider is one of "smtp", "resend" or "mock"; an empty provider or
// missing credentials fall back to the mock transport.
type MailerConfig struct {
	Provider string `json:"provider" yaml:"provider"`
	From     string `json:"from" yaml:"from"`

	Resend struct {
		APIKey string `json:"apiKey" yaml:"apiKey"`
	} `json:"resend" yaml:"resend"`

	SMTP struct {
		Host     string `json:"host" yaml:"host"`
		Port     int    `json:"port" yaml:"port"`
		Username string `json:"username" yaml:"username"`
		Password string `json:"password" yaml:"password"`
	} `json:"smtp" yaml:"smtp"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	// Build replicas from environment variables (POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, etc.)
	if cfg.Postgres != nil {
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Poll == nil {
		cfg.Poll = &PollConfig{}
	}
	if cfg.Poll.Interval <= 0 {
		cfg.Poll.Interval = defaultPollInterval
	}
	if cfg.Poll.FetchWorkers <= 0 {
		cfg.Poll.FetchWorkers = len(cfg.Poll.Localities)
	}

	if cfg.Source == nil {
		cfg.Source = &SourceConfig{}
	}
	if cfg.Source.RadiusMeters <= 0 {
		cfg.Source.RadiusMeters = defaultRadiusMeters
	}
	if cfg.Source.StoreLimit <= 0 {
		cfg.Source.StoreLimit = defaultStoreLimit
	}
	if cfg.Source.FetchTimeout <= 0 {
		cfg.Source.FetchTimeout = defaultFetchTimeout
	}
	if cfg.Source.CacheTTL <= 0 {
		cfg.Source.CacheTTL = cfg.Poll.Interval
	}

	if cfg.Dispatch == nil {
		cfg.Dispatch = &DispatchConfig{}
	}
	if cfg.Dispatch.MaxDealsPerAlert <= 0 {
		cfg.Dispatch.MaxDealsPerAlert = defaultMaxDeals
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds the replicas slice from environment variables.
// Environment variable format: POSTGRES_REPLICAS_{index}_{field}
// Example: POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, POSTGRES_REPLICAS_0_USERNAME, POSTGRES_REPLICAS_0_PASSWORD
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			// No more replicas or incomplete configuration.
			break
		}

		replica := postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		}

		replicas = append(replicas, replica)
	}

	return replicas
}
