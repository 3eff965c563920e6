package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-auth-service/internal/pkg/validate"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string `validate:"required,numeric"`
	AppEnv  string

	AccountStore string `validate:"oneof=memory sqlite dynamo"`
	TokenStore   string `validate:"oneof=memory redis dynamo"`
	SQLitePath   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTTTL            time.Duration
	JWTCookieName     string `validate:"required"`
	TwoFACodeTTL      time.Duration

	Argon2MemoryKB    int `validate:"min=8192,max=1048576"`
	Argon2Time        int `validate:"min=1,max=64"`
	Argon2Parallelism int `validate:"min=1,max=255"`
	HashWorkers       int `validate:"min=1"`

	Notifier     string `validate:"oneof=log smtp sns"`
	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SNSRegion    string
	SNSTopicARN  string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each store.
type DynamoTables struct {
	Accounts     string
	BannedTokens string
	TwoFACodes   string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:      getEnv("APP_PORT", "3000"),
		AppEnv:       getEnv("APP_ENV", "development"),
		AccountStore: getEnv("ACCOUNT_STORE", "memory"),
		TokenStore:   getEnv("TOKEN_STORE", "memory"),
		SQLitePath:   getEnv("SQLITE_PATH", "auth.db"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Accounts:     getEnv("DYNAMO_TABLE_ACCOUNTS", "accounts"),
			BannedTokens: getEnv("DYNAMO_TABLE_BANNED_TOKENS", "banned_tokens"),
			TwoFACodes:   getEnv("DYNAMO_TABLE_TWO_FA_CODES", "two_fa_codes"),
		},

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTTTL:            getEnvDuration("JWT_TTL", 10*time.Minute),
		JWTCookieName:     getEnv("JWT_COOKIE_NAME", "jwt"),
		TwoFACodeTTL:      getEnvDuration("TWO_FA_CODE_TTL", 10*time.Minute),

		Argon2MemoryKB:    getEnvInt("ARGON2_MEMORY_KB", 15000),
		Argon2Time:        getEnvInt("ARGON2_TIME", 2),
		Argon2Parallelism: getEnvInt("ARGON2_PARALLELISM", 1),
		HashWorkers:       getEnvInt("HASH_WORKERS", runtime.GOMAXPROCS(0)),

		Notifier:     getEnv("NOTIFIER", "log"),
		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SNSRegion:    getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN:  getEnv("SNS_TOPIC_ARN", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// Validate rejects unknown backend names and unusable values.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
