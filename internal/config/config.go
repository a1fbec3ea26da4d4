package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/windoze95/saltybytes-finder/internal/models"
)

// Embedding providers.
const (
	EmbeddingProviderSageMaker = "sagemaker"
	EmbeddingProviderOpenAI    = "openai"
)

// Vector index backends.
const (
	IndexBackendPinecone = "pinecone"
	IndexBackendPgvector = "pgvector"
	IndexBackendMemory   = "memory"
)

// Bounds for the number of neighbours requested from the index.
const (
	DefaultTopK = 5
	MaxTopK     = 100
)

// Config holds the application configuration.
type Config struct {
	EnvVars EnvVars `json:"env"`
}

// EnvVars holds environment variables required by the application.
// Fields tagged `optional:"true"` are skipped by CheckConfigEnvFields;
// backend-specific requirements are enforced by Validate.
type EnvVars struct {
	Port              string `env:"PORT" envDefault:"8080"`
	EmbeddingProvider string `env:"EMBEDDING_PROVIDER" envDefault:"sagemaker"`
	IndexBackend      string `env:"INDEX_BACKEND" envDefault:"pinecone"`

	SageMakerEndpointName string `env:"SAGEMAKER_ENDPOINT_NAME" optional:"true"`
	AWSRegion             string `env:"AWS_REGION" optional:"true"`
	AWSAccessKeyID        string `env:"AWS_ACCESS_KEY_ID" optional:"true"`
	AWSSecretAccessKey    string `env:"AWS_SECRET_ACCESS_KEY" optional:"true"`

	OpenAIAPIKey         string `env:"OPENAI_API_KEY" optional:"true"`
	OpenAIBaseURL        string `env:"OPENAI_BASE_URL" optional:"true"`
	OpenAIEmbeddingModel string `env:"OPENAI_EMBEDDING_MODEL" envDefault:"text-embedding-3-small" optional:"true"`
	EmbeddingDimension   int    `env:"EMBEDDING_DIMENSION" optional:"true"`

	PineconeAPIKey    string `env:"PINECONE_API_KEY" optional:"true"`
	PineconeIndexName string `env:"PINECONE_INDEX_NAME" optional:"true"`
	PineconeIndexHost string `env:"PINECONE_INDEX_HOST" optional:"true"`
	PineconeNamespace string `env:"PINECONE_NAMESPACE" optional:"true"`
	TopK              int    `env:"PINECONE_TOP_K" envDefault:"5"`

	DatabaseUrl     string `env:"DATABASE_URL" optional:"true"`
	MemoryIndexFile string `env:"MEMORY_INDEX_FILE" optional:"true"`

	RedisURL          string        `env:"REDIS_URL" optional:"true"`
	EmbeddingCacheTTL time.Duration `env:"EMBEDDING_CACHE_TTL" envDefault:"24h" optional:"true"`

	EmbeddingTimeout time.Duration `env:"EMBEDDING_TIMEOUT" envDefault:"10s"`
	IndexTimeout     time.Duration `env:"INDEX_TIMEOUT" envDefault:"5s"`
	RetryMaxAttempts int           `env:"RETRY_MAX_ATTEMPTS" envDefault:"2"`

	SafetyFailClosed bool `env:"SAFETY_FAIL_CLOSED" optional:"true"`
	TieBreakByID     bool `env:"SEARCH_TIEBREAK_BY_ID" optional:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"10" optional:"true"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," optional:"true"`
	APIKey         string   `env:"API_KEY" optional:"true"`
}

// LoadConfig parses environment variables into the Config struct.
func LoadConfig() (*Config, error) {
	var config Config
	if err := env.Parse(&config.EnvVars); err != nil {
		return nil, err
	}
	return &config, nil
}

// CheckConfigEnvFields validates that all required EnvVars fields are set.
func (c *Config) CheckConfigEnvFields() error {
	return checkFieldsRecursive(reflect.ValueOf(c.EnvVars))
}

// Validate checks the settings each selected backend needs. Every failure
// wraps models.ErrConfiguration.
func (c *Config) Validate() error {
	e := c.EnvVars

	switch e.EmbeddingProvider {
	case EmbeddingProviderSageMaker:
		if e.SageMakerEndpointName == "" {
			return fmt.Errorf("%w: $SAGEMAKER_ENDPOINT_NAME must be set", models.ErrConfiguration)
		}
	case EmbeddingProviderOpenAI:
		if e.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: $OPENAI_API_KEY must be set", models.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", models.ErrConfiguration, e.EmbeddingProvider)
	}

	switch e.IndexBackend {
	case IndexBackendPinecone:
		if e.PineconeAPIKey == "" || e.PineconeIndexName == "" {
			return fmt.Errorf("%w: $PINECONE_API_KEY and $PINECONE_INDEX_NAME must be set", models.ErrConfiguration)
		}
	case IndexBackendPgvector:
		if e.DatabaseUrl == "" {
			return fmt.Errorf("%w: $DATABASE_URL must be set", models.ErrConfiguration)
		}
	case IndexBackendMemory:
		if e.MemoryIndexFile == "" {
			return fmt.Errorf("%w: $MEMORY_INDEX_FILE must be set", models.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown index backend %q", models.ErrConfiguration, e.IndexBackend)
	}

	if e.TopK < 1 || e.TopK > MaxTopK {
		return fmt.Errorf("%w: $PINECONE_TOP_K must be between 1 and %d, got %d", models.ErrConfiguration, MaxTopK, e.TopK)
	}
	if e.EmbeddingDimension < 0 {
		return fmt.Errorf("%w: $EMBEDDING_DIMENSION must not be negative", models.ErrConfiguration)
	}
	if e.EmbeddingTimeout <= 0 || e.IndexTimeout <= 0 {
		return fmt.Errorf("%w: upstream timeouts must be positive", models.ErrConfiguration)
	}
	if e.RetryMaxAttempts < 1 {
		return fmt.Errorf("%w: $RETRY_MAX_ATTEMPTS must be at least 1", models.ErrConfiguration)
	}
	return nil
}

func checkFieldsRecursive(v reflect.Value) error {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := v.Type().Field(i)
		if fieldType.Tag.Get("optional") == "true" {
			continue
		}
		if isZeroValue(field) {
			return fmt.Errorf("$%s must be set", fieldType.Tag.Get("env"))
		}
		if field.Kind() == reflect.Struct {
			if err := checkFieldsRecursive(field); err != nil {
				return err
			}
		}
	}
	return nil
}

func isZeroValue(v reflect.Value) bool {
	return v.IsZero()
}
