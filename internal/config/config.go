// Package config loads and validates the process configuration. Every
// required value must be present and valid or the process refuses to start.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// ErrInvalid wraps every configuration failure.
var ErrInvalid = errors.New("configuration not valid")

type Config struct {
	APIPort       int    `env:"API_PORT,required" validate:"min=1,max=65535"`
	APIPrefix     string `env:"API_PREFIX,required" validate:"required"`
	SwaggerEnable int    `env:"SWAGGER_ENABLE,required" validate:"oneof=0 1"`

	APIGatewayBaseURL string `env:"API_GATEWAY_BASE_URL,required" validate:"required,url"`

	SwellStoreID   string `env:"SWELL_STORE_ID,required" validate:"required"`
	SwellSecretKey string `env:"SWELL_SECRET_KEY,required" validate:"required"`
	SwellAPIURL    string `env:"SWELL_API_URL,default=https://api.swell.store" validate:"required,url"`

	SanityAPIVersion string `env:"SANITY_API_VERSION,required" validate:"required"`
	SanityDataset    string `env:"SANITY_DATASET,required" validate:"required"`
	SanityProjectID  string `env:"SANITY_PROJECT_ID,required" validate:"required"`
	SanityAPIToken   string `env:"SANITY_API_TOKEN,required" validate:"required"`

	FirebaseAPIKey            string `env:"FIREBASE_API_KEY,required" validate:"required"`
	FirebaseAppID             string `env:"FIREBASE_APP_ID,required" validate:"required"`
	FirebaseAuthDomain        string `env:"FIREBASE_AUTH_DOMAIN,required" validate:"required"`
	FirebaseMeasurementID     string `env:"FIREBASE_MEASUREMENT_ID,required" validate:"required"`
	FirebaseMessagingSenderID string `env:"FIREBASE_MESSAGING_SENDER_ID,required" validate:"required"`
	FirebaseProjectID         string `env:"FIREBASE_PROJECT_ID,required" validate:"required"`
	FirebaseStorageBucket     string `env:"FIREBASE_STORAGE_BUCKET,required" validate:"required"`

	RunLocal             bool   `env:"RUN_LOCAL,default=false"`
	LogLevel             string `env:"LOG_LEVEL,default=info"`
	MirrorEventsQueueURL string `env:"MIRROR_EVENTS_QUEUE_URL" validate:"omitempty,url"`
	CloudWatchNamespace  string `env:"CLOUDWATCH_NAMESPACE"`
}

// SwaggerEnabled reports whether the documentation routes are served.
func (c Config) SwaggerEnabled() bool { return c.SwaggerEnable == 1 }

// RoutePrefix normalises API_PREFIX to "/segment" form for gin groups.
func (c Config) RoutePrefix() string {
	p := "/" + strings.Trim(c.APIPrefix, "/")
	if p == "/" {
		return ""
	}
	return p
}

// Load reads an optional .env file, decodes the environment and validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: read .env: %v", ErrInvalid, err)
	}
	return FromEnv()
}

// FromEnv decodes and validates the current process environment.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WorkerConfig is the configuration of the product sync worker. It only
// needs the commerce and content store settings.
type WorkerConfig struct {
	SwellStoreID   string `env:"SWELL_STORE_ID,required" validate:"required"`
	SwellSecretKey string `env:"SWELL_SECRET_KEY,required" validate:"required"`
	SwellAPIURL    string `env:"SWELL_API_URL,default=https://api.swell.store" validate:"required,url"`

	SanityAPIVersion string `env:"SANITY_API_VERSION,required" validate:"required"`
	SanityDataset    string `env:"SANITY_DATASET,required" validate:"required"`
	SanityProjectID  string `env:"SANITY_PROJECT_ID,required" validate:"required"`
	SanityAPIToken   string `env:"SANITY_API_TOKEN,required" validate:"required"`

	RunLocal             bool   `env:"RUN_LOCAL,default=false"`
	LocalSQSBody         string `env:"LOCAL_SQS_BODY"`
	LogLevel             string `env:"LOG_LEVEL,default=info"`
	MirrorEventsQueueURL string `env:"MIRROR_EVENTS_QUEUE_URL" validate:"omitempty,url"`
	CloudWatchNamespace  string `env:"CLOUDWATCH_NAMESPACE"`
}

// LoadWorker reads an optional .env file and decodes the worker configuration.
func LoadWorker() (*WorkerConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: read .env: %v", ErrInvalid, err)
	}
	var cfg WorkerConfig
	if err := decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(target interface{}) error {
	if err := envdecode.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := validatorv10.New().Struct(target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
