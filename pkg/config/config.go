package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Default upstream addresses for the image sources
const (
	DefaultCatAPIURL    = "https://api.thecatapi.com/v1/images/search"
	DefaultDogAPIURL    = "https://dog.ceo/api/breeds/image/random"
	DefaultFishImageURL = "https://source.unsplash.com/random/800x600/?fish,aquarium"
)

// Config holds all configuration for the application
type Config struct {
	Port        string `validate:"required,numeric"`
	Environment string `validate:"oneof=development staging production"`
	LogLevel    string `validate:"oneof=debug info warn warning error"`

	CatAPIURL    string `validate:"required,http_url"`
	DogAPIURL    string `validate:"required,http_url"`
	FishImageURL string `validate:"required,http_url"`

	// MinLoading is the shortest time a card stays in its loading state
	MinLoading       time.Duration `validate:"gt=0"`
	FetchTimeout     time.Duration `validate:"gt=0"`
	SessionTTL       time.Duration `validate:"gt=0"`
	SupersedeFetches bool

	ViewsDir    string `validate:"required"`
	PublicDir   string `validate:"required"`
	CORSOrigins []string
}

// ErrInvalidConfig is returned when a loaded configuration fails validation
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrInvalidDuration is returned when a duration variable cannot be parsed
var ErrInvalidDuration = errors.New("invalid duration")

// ErrInvalidBool is returned when a boolean variable cannot be parsed
var ErrInvalidBool = errors.New("invalid boolean")

var validate = validator.New()

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  getEnv("ENV", "development"),
		LogLevel:     strings.ToLower(getEnv("LOG_LEVEL", "info")),
		CatAPIURL:    getEnv("CAT_API_URL", DefaultCatAPIURL),
		DogAPIURL:    getEnv("DOG_API_URL", DefaultDogAPIURL),
		FishImageURL: getEnv("FISH_IMAGE_URL", DefaultFishImageURL),
		ViewsDir:     getEnv("VIEWS_DIR", "./views"),
		PublicDir:    getEnv("PUBLIC_DIR", "./public"),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.MinLoading, err = getDuration("MIN_LOADING", 800*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getDuration("FETCH_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SupersedeFetches, err = getBool("SUPERSEDE_FETCHES", false); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ServerAddress returns the server address with port
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// PrintServerStartMessage prints a message when the server starts
func (c *Config) PrintServerStartMessage() {
	fmt.Printf("Starting server at port %s\n", c.Port)
	fmt.Printf("Gallery URL: http://localhost:%s/\n", c.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidDuration, key, v)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalidBool, key, v)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
