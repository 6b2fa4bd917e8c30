package config

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var supportedAlgorithms = map[string]bool{"HS256": true, "HS384": true, "HS512": true}

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration

	DatabaseURL      string
	PostgresHost     string
	PostgresPort     string
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string
	PostgresSSLMode  string
	DBMinConns       int32
	DBMaxConns       int32

	JWTSecret     string
	JWTAlgorithm  string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration
	BcryptCost    int

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int
	TrustedProxies   []netip.Prefix

	ModelServerURL string
	ModelTimeout   time.Duration

	SessionCleanupInterval time.Duration
	SeedAdminID            string
	SeedAdminPassword      string

	LogLevel  string
	LogFormat string
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	trustedProxies, proxyErr := parseTrustedProxies(os.Getenv("TRUSTED_PROXIES"))

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8000"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),

		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		PostgresHost:     strings.TrimSpace(os.Getenv("POSTGRES_HOST")),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDB:       strings.TrimSpace(os.Getenv("POSTGRES_DB")),
		PostgresUser:     strings.TrimSpace(os.Getenv("POSTGRES_USER")),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		DBMinConns:       int32(getInt("DB_POOL_MIN", 1)),
		DBMaxConns:       int32(getInt("DB_POOL_MAX", 10)),

		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTAlgorithm:  strings.ToUpper(getEnv("JWT_ALGORITHM", "HS256")),
		JWTAccessTTL:  time.Duration(getInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute,
		JWTRefreshTTL: time.Duration(getInt("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
		BcryptCost:    getInt("BCRYPT_COST", 10),

		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		RateLimitRPM:     getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM: getInt("AUTH_RATE_LIMIT_RPM", 10),
		TrustedProxies:   trustedProxies,

		ModelServerURL: strings.TrimSpace(os.Getenv("MODEL_SERVER_URL")),
		ModelTimeout:   getDuration("MODEL_TIMEOUT", 10*time.Second),

		SessionCleanupInterval: getDuration("SESSION_CLEANUP_INTERVAL", time.Hour),
		SeedAdminID:            getEnv("SEED_ADMIN_ID", "111111"),
		SeedAdminPassword:      os.Getenv("SEED_ADMIN_PASSWORD"),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "pretty")),
	}

	if err := errors.Join(proxyErr, cfg.Validate()); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every problem found, not just the first.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if !supportedAlgorithms[c.JWTAlgorithm] {
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q is not supported", c.JWTAlgorithm))
	}
	if c.JWTAccessTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.JWTRefreshTTL <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRE_DAYS must be positive"))
	}

	if c.DatabaseURL == "" {
		if c.PostgresHost == "" {
			errs = append(errs, errors.New("POSTGRES_HOST is required when DATABASE_URL is not set"))
		}
		if c.PostgresDB == "" {
			errs = append(errs, errors.New("POSTGRES_DB is required when DATABASE_URL is not set"))
		}
		if c.PostgresUser == "" {
			errs = append(errs, errors.New("POSTGRES_USER is required when DATABASE_URL is not set"))
		}
	}
	if c.DBMinConns < 0 || c.DBMaxConns <= 0 {
		errs = append(errs, errors.New("DB_POOL_MIN must be >= 0 and DB_POOL_MAX must be positive"))
	} else if c.DBMinConns > c.DBMaxConns {
		errs = append(errs, fmt.Errorf("DB_POOL_MIN (%d) exceeds DB_POOL_MAX (%d)", c.DBMinConns, c.DBMaxConns))
	}

	if c.ServerPort == "" {
		errs = append(errs, errors.New("SERVER_PORT cannot be empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.RateLimitRPM <= 0 || c.AuthRateLimitRPM <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPM and AUTH_RATE_LIMIT_RPM must be positive"))
	}

	switch c.LogFormat {
	case "pretty", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q must be pretty or json", c.LogFormat))
	}

	return errors.Join(errs...)
}

// PostgresURL returns DATABASE_URL, or a URL assembled from the POSTGRES_*
// settings when it is unset.
func (c *Config) PostgresURL() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     net.JoinHostPort(c.PostgresHost, c.PostgresPort),
		Path:     "/" + c.PostgresDB,
		RawQuery: url.Values{"sslmode": []string{c.PostgresSSLMode}}.Encode(),
	}
	return u.String()
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

// parseTrustedProxies accepts CIDR ranges and bare addresses; a bare address
// becomes a single-host prefix.
func parseTrustedProxies(raw string) ([]netip.Prefix, error) {
	var (
		prefixes []netip.Prefix
		errs     []error
	)

	for _, entry := range splitCSV(raw) {
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				errs = append(errs, fmt.Errorf("TRUSTED_PROXIES entry %q is not a valid CIDR", entry))
				continue
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("TRUSTED_PROXIES entry %q is not a valid IP address", entry))
			continue
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return prefixes, errors.Join(errs...)
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
