package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string
	BaseURL     string
	JWTSecret   string

	StripeSecretKey     string
	StripeWebhookSecret string

	SendgridAPIKey string
	FromEmail      string
	SupportEmail   string

	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool

	GoogleAllowedDomains []string

	// CatalogDenyList holds lowercase name fragments that mark provider
	// products as non-sellable during catalog sync.
	CatalogDenyList []string

	ReconcileInterval time.Duration
	ReconcileBatch    int
	ReconcileMinAge   time.Duration
	WorkerPoolSize    int
	ShutdownTimeout   time.Duration
}

const (
	defaultRunAddress        = ":8080"
	defaultBaseURL           = "http://localhost:8080"
	defaultFromEmail         = "no-reply@edenclinic.co.uk"
	defaultStorageBucket     = "test-results"
	defaultReconcileInterval = time.Minute
	defaultReconcileBatch    = 32
	defaultReconcileMinAge   = 30 * time.Minute
	defaultWorkerPoolSize    = 4
	defaultShutdownTimeout   = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		BaseURL:             getString(lookup, "BASE_URL", defaultBaseURL),
		JWTSecret:           getString(lookup, "JWT_SECRET", ""),
		StripeSecretKey:     getString(lookup, "STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getString(lookup, "STRIPE_WEBHOOK_SECRET", ""),
		SendgridAPIKey:      getString(lookup, "SENDGRID_API_KEY", ""),
		FromEmail:           getString(lookup, "FROM_EMAIL", defaultFromEmail),
		SupportEmail:        getString(lookup, "SUPPORT_EMAIL", ""),
		StorageEndpoint:     getString(lookup, "STORAGE_ENDPOINT", ""),
		StorageAccessKey:    getString(lookup, "STORAGE_ACCESS_KEY", ""),
		StorageSecretKey:    getString(lookup, "STORAGE_SECRET_KEY", ""),
		StorageBucket:       getString(lookup, "STORAGE_BUCKET", defaultStorageBucket),
		StorageUseSSL:       getBool(lookup, "STORAGE_USE_SSL", true),
		ReconcileInterval:   getDuration(lookup, "RECONCILE_INTERVAL", defaultReconcileInterval),
		ReconcileBatch:      getInt(lookup, "RECONCILE_BATCH", defaultReconcileBatch),
		ReconcileMinAge:     getDuration(lookup, "RECONCILE_MIN_AGE", defaultReconcileMinAge),
		WorkerPoolSize:      getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	if domains := getString(lookup, "GOOGLE_ALLOWED_DOMAINS", ""); domains != "" {
		for _, d := range strings.Split(domains, ",") {
			if d = strings.TrimSpace(d); d != "" {
				cfg.GoogleAllowedDomains = append(cfg.GoogleAllowedDomains, strings.ToLower(d))
			}
		}
	}

	if parts := getString(lookup, "CATALOG_DENYLIST", ""); parts != "" {
		for _, p := range strings.Split(parts, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.CatalogDenyList = append(cfg.CatalogDenyList, strings.ToLower(p))
			}
		}
	}

	fs := flag.NewFlagSet("edenclinic", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		reconcileIntervalStr = cfg.ReconcileInterval.String()
		shutdownTimeoutStr   = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Public base URL for checkout redirects and email links")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&reconcileIntervalStr, "reconcile-interval", reconcileIntervalStr, "Interval between payment reconciliation sweeps")
	fs.IntVar(&cfg.ReconcileBatch, "reconcile-batch", cfg.ReconcileBatch, "Maximum orders per reconciliation sweep")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent reconciliation workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ReconcileInterval, err = time.ParseDuration(reconcileIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid reconcile interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	for _, secret := range []struct {
		env    string
		target *string
	}{
		{"JWT_SECRET_FILE", &cfg.JWTSecret},
		{"STRIPE_SECRET_KEY_FILE", &cfg.StripeSecretKey},
		{"STRIPE_WEBHOOK_SECRET_FILE", &cfg.StripeWebhookSecret},
		{"SENDGRID_API_KEY_FILE", &cfg.SendgridAPIKey},
	} {
		if file, ok := lookup(secret.env); ok && file != "" {
			content, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", secret.env, err)
			}
			*secret.target = strings.TrimSpace(string(content))
		}
	}

	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = defaultReconcileInterval
	}

	if cfg.ReconcileBatch <= 0 {
		cfg.ReconcileBatch = defaultReconcileBatch
	}

	if cfg.ReconcileMinAge <= 0 {
		cfg.ReconcileMinAge = defaultReconcileMinAge
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("payment provider secret key must be provided")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret must be provided")
	}

	if cfg.SupportEmail == "" {
		cfg.SupportEmail = cfg.FromEmail
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
