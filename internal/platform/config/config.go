package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	JWTIssuer     string

	// Remote ledger service
	LedgerBaseURL        string
	LedgerRealmID        string
	LedgerClientID       string
	LedgerClientSecret   string
	LedgerTokenURL       string
	LedgerRefreshToken   string
	LedgerRequestTimeout time.Duration

	// Batching limits imposed by the remote service
	MaxEntriesPerBatch   int
	MaxRequestsPerMinute int

	// Inbound API
	APIRateLimit       string // ulule/limiter format, e.g. "60-M"
	CORSAllowedOrigins []string

	CacheTenantLimit int
}

const (
	defaultJWTSecret      = "a-very-secret-key-should-be-longer-and-random"
	defaultRequestTimeout = 30 * time.Second
)

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_ISSUER", "ledger-sync")
	viper.SetDefault("LEDGER_BASE_URL", "https://sandbox-quickbooks.api.intuit.com")
	viper.SetDefault("LEDGER_REALM_ID", "")
	viper.SetDefault("LEDGER_TOKEN_URL", "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer")
	viper.SetDefault("LEDGER_REQUEST_TIMEOUT", defaultRequestTimeout.String())
	viper.SetDefault("MAX_ENTRIES_PER_BATCH", 25)
	viper.SetDefault("MAX_REQUESTS_PER_MINUTE", 30)
	viper.SetDefault("API_RATE_LIMIT", "60-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CACHE_TENANT_LIMIT", 16)

	// Environment variables override .env values, which override the defaults above.
	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:        viper.GetString("PGSQL_URL"),
		Port:               viper.GetString("PORT"),
		IsProduction:       viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:      viper.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:          viper.GetString("JWT_SECRET"),
		JWTIssuer:          viper.GetString("JWT_ISSUER"),
		LedgerBaseURL:      strings.TrimRight(viper.GetString("LEDGER_BASE_URL"), "/"),
		LedgerRealmID:      viper.GetString("LEDGER_REALM_ID"),
		LedgerClientID:     viper.GetString("LEDGER_CLIENT_ID"),
		LedgerClientSecret: viper.GetString("LEDGER_CLIENT_SECRET"),
		LedgerTokenURL:     viper.GetString("LEDGER_TOKEN_URL"),
		LedgerRefreshToken: viper.GetString("LEDGER_REFRESH_TOKEN"),
		APIRateLimit:       viper.GetString("API_RATE_LIMIT"),
		CacheTenantLimit:   viper.GetInt("CACHE_TENANT_LIMIT"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	if cfg.LedgerRealmID == "" {
		log.Println("Warning: LEDGER_REALM_ID not set. Journal batches cannot be submitted.")
	}
	if cfg.LedgerClientID == "" || cfg.LedgerClientSecret == "" || cfg.LedgerRefreshToken == "" {
		log.Println("Warning: LEDGER_CLIENT_ID, LEDGER_CLIENT_SECRET or LEDGER_REFRESH_TOKEN not set. Remote calls will fail to authenticate.")
	}

	timeoutStr := viper.GetString("LEDGER_REQUEST_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout <= 0 {
		timeout = defaultRequestTimeout
		log.Printf("Warning: Invalid value for LEDGER_REQUEST_TIMEOUT ('%s'). Defaulting to %s.\n", timeoutStr, timeout)
	}
	cfg.LedgerRequestTimeout = timeout

	cfg.MaxEntriesPerBatch = viper.GetInt("MAX_ENTRIES_PER_BATCH")
	if cfg.MaxEntriesPerBatch <= 0 {
		cfg.MaxEntriesPerBatch = 25
		log.Printf("Warning: MAX_ENTRIES_PER_BATCH must be positive. Defaulting to %d.\n", cfg.MaxEntriesPerBatch)
	}
	cfg.MaxRequestsPerMinute = viper.GetInt("MAX_REQUESTS_PER_MINUTE")
	if cfg.MaxRequestsPerMinute <= 0 {
		cfg.MaxRequestsPerMinute = 30
		log.Printf("Warning: MAX_REQUESTS_PER_MINUTE must be positive. Defaulting to %d.\n", cfg.MaxRequestsPerMinute)
	}

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if o := strings.TrimSpace(origin); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg, nil
}
