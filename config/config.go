package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/krishkalaria12/pixelmind/common"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	Port        string
	ServerURL   string
	Environment string

	StoreDriver string
	DatabaseURL string
	MongoURL    string
	MongoDB     string

	// Clerk
	WebhookSecret  string
	ClerkSecretKey string
	ClerkJWTKey    string

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string

	// Cloudinary
	CloudinaryURL    string
	CloudinaryFolder string
}

// Load reads the process environment, optionally seeded from a .env file in
// the working directory. Missing required values are reported together.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	cfg := &Config{
		Port:        lookup("SERVER_PORT", "3000"),
		ServerURL:   strings.TrimRight(lookup("SERVER_URL", "http://localhost:3000"), "/"),
		Environment: lookup("ENVIRONMENT", "development"),

		StoreDriver: lookup("STORE_DRIVER", DriverPostgres),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		MongoURL:    os.Getenv("MONGODB_URL"),
		MongoDB:     lookup("MONGODB_DB", "pixelmind"),

		WebhookSecret:  os.Getenv("WEBHOOK_SECRET"),
		ClerkSecretKey: os.Getenv("CLERK_SECRET_KEY"),
		ClerkJWTKey:    os.Getenv("CLERK_JWT_KEY"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		CloudinaryURL:    os.Getenv("CLOUDINARY_URL"),
		CloudinaryFolder: lookup("CLOUDINARY_FOLDER", "pixelmind"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	required := map[string]string{
		"WEBHOOK_SECRET":        c.WebhookSecret,
		"CLERK_SECRET_KEY":      c.ClerkSecretKey,
		"CLERK_JWT_KEY":         c.ClerkJWTKey,
		"STRIPE_SECRET_KEY":     c.StripeSecretKey,
		"STRIPE_WEBHOOK_SECRET": c.StripeWebhookSecret,
		"CLOUDINARY_URL":        c.CloudinaryURL,
	}

	switch c.StoreDriver {
	case DriverPostgres:
		required["DATABASE_URL"] = c.DatabaseURL
	case DriverMongo:
		required["MONGODB_URL"] = c.MongoURL
	case DriverMemory:
	default:
		return fmt.Errorf("%w: unknown STORE_DRIVER %q", common.ErrConfiguration, c.StoreDriver)
	}

	var missing []string
	for _, name := range slices.Sorted(maps.Keys(required)) {
		if required[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s not set", common.ErrConfiguration, strings.Join(missing, ", "))
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func lookup(envVar, fallback string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fallback
}
