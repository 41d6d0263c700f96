package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envTokenSource           = "TOKEN_SOURCE"
	envTokensFile            = "TOKENS_FILE"
	envTokensFileWatch       = "TOKENS_FILE_WATCH"
	envTokensRefreshInterval = "TOKENS_REFRESH_INTERVAL"
	envTokensCacheTTL        = "TOKENS_CACHE_TTL"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envAWSRegion             = "REGION"
	envAWSAccessKeyID        = "AWS_ACCESS_KEY_ID"
	envAWSSecretAccessKey    = "AWS_SECRET_ACCESS_KEY"
	envTokensS3Bucket        = "TOKENS_S3_BUCKET"
	envTokensS3Key           = "TOKENS_S3_KEY"
	envRateLimitRPS          = "RATE_LIMIT_RPS"
	envRateLimitBurst        = "RATE_LIMIT_BURST"
	envAuditEnabled          = "AUDIT_ENABLED"
	envProfilingEnabled      = "ENABLE_PROFILING"
)

// TokenSource names where token records are read from.
type TokenSource string

const (
	TokenSourceFile     TokenSource = "file"
	TokenSourcePostgres TokenSource = "postgres"
	TokenSourceS3       TokenSource = "s3"
)

const (
	defaultServerPort            = "8080"
	defaultServerReadTimeout     = 10 * time.Second
	defaultServerWriteTimeout    = 10 * time.Second
	defaultServerShutdown        = 10 * time.Second
	defaultTokenSource           = TokenSourceFile
	defaultTokensFile            = "tokens.json"
	defaultTokensRefreshInterval = time.Minute
	defaultTokensCacheTTL        = 5 * time.Second
	defaultDBHost                = "localhost"
	defaultDBPort                = 5432
	defaultDBName                = "tokenservice"
	defaultDBUser                = "tokenservice_app"
	defaultDBSSLMode             = "disable"
	defaultDBMaxConns            = 10
	defaultDBMinConns            = 2
	defaultTokensS3Key           = "tokens.json"
	defaultRateLimitRPS          = 100
	defaultRateLimitBurst        = 200
	errPortRequiredFmt           = "PORT must be set"
	errUnknownTokenSourceFmt     = "TOKEN_SOURCE must be one of file, postgres, s3 (got %q)"
	errRateLimitFmt              = "RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"
	errRefreshIntervalFmt        = "TOKENS_REFRESH_INTERVAL must be positive"
	errAuditNeedsPostgresFmt     = "AUDIT_ENABLED requires TOKEN_SOURCE=postgres"
	errInvalidConfigurationFmt   = "invalid configuration: %w"
	dsnScheme                    = "postgres"
	dsnSSLModeKey                = "sslmode"
)

type Config struct {
	Server    ServerConfig
	Tokens    TokensConfig
	Database  DatabaseConfig
	AWS       AWSConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
	Profiling ProfilingConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type TokensConfig struct {
	Source          TokenSource
	File            string
	WatchFile       bool
	RefreshInterval time.Duration
	// CacheTTL bounds how long postgres results are reused; zero disables.
	CacheTTL        time.Duration
	S3Bucket        string
	S3Key           string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

type AuditConfig struct {
	Enabled bool
}

// ProfilingConfig exposes pprof and runtime memory endpoints when enabled.
type ProfilingConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv(envPort, defaultServerPort),
			ReadTimeout:     getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:    getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout: getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),
		},
		Tokens: TokensConfig{
			Source:          TokenSource(strings.ToLower(getEnv(envTokenSource, string(defaultTokenSource)))),
			File:            getEnv(envTokensFile, defaultTokensFile),
			WatchFile:       getBoolEnv(envTokensFileWatch, false),
			RefreshInterval: getDurationEnv(envTokensRefreshInterval, defaultTokensRefreshInterval),
			CacheTTL:        getDurationEnv(envTokensCacheTTL, defaultTokensCacheTTL),
			S3Bucket:        os.Getenv(envTokensS3Bucket),
			S3Key:           getEnv(envTokensS3Key, defaultTokensS3Key),
		},
		Database: DatabaseConfig{
			Host:     getEnv(envDBHost, defaultDBHost),
			Port:     getIntEnv(envDBPort, defaultDBPort),
			Database: getEnv(envDBName, defaultDBName),
			User:     getEnv(envDBUser, defaultDBUser),
			Password: os.Getenv(envDBPassword),
			SSLMode:  getEnv(envDBSSLMode, defaultDBSSLMode),
			MaxConns: getIntEnv(envDBMaxConns, defaultDBMaxConns),
			MinConns: getIntEnv(envDBMinConns, defaultDBMinConns),
		},
		AWS: AWSConfig{
			Region:          os.Getenv(envAWSRegion),
			AccessKeyID:     os.Getenv(envAWSAccessKeyID),
			SecretAccessKey: os.Getenv(envAWSSecretAccessKey),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getIntEnv(envRateLimitRPS, defaultRateLimitRPS),
			Burst:             getIntEnv(envRateLimitBurst, defaultRateLimitBurst),
		},
		Audit: AuditConfig{
			Enabled: getBoolEnv(envAuditEnabled, false),
		},
		Profiling: ProfilingConfig{
			Enabled: getBoolEnv(envProfilingEnabled, false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

// Validate checks the settings; source specific variables are only
// required for the configured source.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New(errPortRequiredFmt)
	}

	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New(errRateLimitFmt)
	}

	switch c.Tokens.Source {
	case TokenSourceFile:
		if c.Tokens.File == "" {
			return errors.New(messages.requiredEnvNotSet(envTokensFile))
		}
	case TokenSourcePostgres:
		if c.Database.Password == "" {
			return errors.New(messages.requiredEnvNotSet(envDBPassword))
		}
	case TokenSourceS3:
		required := []struct{ key, value string }{
			{envAWSRegion, c.AWS.Region},
			{envAWSAccessKeyID, c.AWS.AccessKeyID},
			{envAWSSecretAccessKey, c.AWS.SecretAccessKey},
			{envTokensS3Bucket, c.Tokens.S3Bucket},
			{envTokensS3Key, c.Tokens.S3Key},
		}
		for _, r := range required {
			if r.value == "" {
				return errors.New(messages.requiredEnvNotSet(r.key))
			}
		}
		if c.Tokens.RefreshInterval <= 0 {
			return errors.New(errRefreshIntervalFmt)
		}
	default:
		return fmt.Errorf(errUnknownTokenSourceFmt, c.Tokens.Source)
	}

	if c.Audit.Enabled && c.Tokens.Source != TokenSourcePostgres {
		return errors.New(errAuditNeedsPostgresFmt)
	}

	return nil
}

// DSN returns a postgres:// connection URL. Credentials are escaped, so
// passwords may contain spaces, quotes or URL delimiters.
func (c *DatabaseConfig) DSN() string {
	dsn := url.URL{
		Scheme:   dsnScheme,
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: url.Values{dsnSSLModeKey: {c.SSLMode}}.Encode(),
	}
	return dsn.String()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
