package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	Tokens    Tokens
	Challenge Challenge

	BcryptCost int

	MailProvider string // "smtp" | "resend"
	MailFrom     string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	ResendAPIKey string

	SNSRegion   string
	SNSTopicARN string // empty disables account events

	RedisURL        string // empty disables the per-email limiter
	EmailRateLimit  int
	EmailRateWindow time.Duration

	OCREndpointURL string
	OCRTimeout     time.Duration

	Admins         []AdminCredential
	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users                  string
	VerificationChallenges string
	UserVerifications      string
	PasswordResets         string
}

// Tokens holds the secret and lifetime of each signed token kind.
type Tokens struct {
	ChallengeSecret    string
	VerificationSecret string
	AccessSecret       string
	RefreshSecret      string
	ChallengeTTL       time.Duration
	VerificationTTL    time.Duration
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
}

// Challenge holds verification-code and reset-code timings.
type Challenge struct {
	CodeTTL       time.Duration
	ResetCodeTTL  time.Duration
	SweepInterval time.Duration
}

// AdminCredential is one whitelisted admin. PasswordHash is a bcrypt digest.
type AdminCredential struct {
	Email        string
	PasswordHash string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	verificationSecret := getEnv("VERIFICATION_TOKEN_SECRET", "")
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:                  getEnv("DYNAMO_TABLE_USERS", "users"),
			VerificationChallenges: getEnv("DYNAMO_TABLE_VERIFICATION_CHALLENGES", "verification_challenges"),
			UserVerifications:      getEnv("DYNAMO_TABLE_USER_VERIFICATIONS", "user_verifications"),
			PasswordResets:         getEnv("DYNAMO_TABLE_PASSWORD_RESETS", "password_resets"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "account-api-files"),
		Tokens: Tokens{
			ChallengeSecret:    getEnv("CHALLENGE_TOKEN_SECRET", verificationSecret),
			VerificationSecret: verificationSecret,
			AccessSecret:       getEnv("ACCESS_TOKEN_SECRET", ""),
			RefreshSecret:      getEnv("REFRESH_TOKEN_SECRET", ""),
			ChallengeTTL:       getEnvDuration("CHALLENGE_TTL", 15*time.Minute),
			VerificationTTL:    getEnvDuration("VERIFICATION_TOKEN_TTL", 30*time.Minute),
			AccessTTL:          getEnvSeconds("ACCESS_TOKEN_EXPIRY", time.Hour),
			RefreshTTL:         getEnvSeconds("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour),
		},
		Challenge: Challenge{
			CodeTTL:       getEnvDuration("CHALLENGE_TTL", 15*time.Minute),
			ResetCodeTTL:  getEnvDuration("RESET_CODE_TTL", 15*time.Minute),
			SweepInterval: getEnvDuration("CHALLENGE_SWEEP_INTERVAL", time.Minute),
		},
		BcryptCost:      getEnvInt("BCRYPT_COST", 12),
		MailProvider:    strings.ToLower(getEnv("MAIL_PROVIDER", "smtp")),
		MailFrom:        getEnv("MAIL_FROM", "noreply@example.com"),
		SMTPHost:        getEnv("SMTP_HOST", "localhost"),
		SMTPPort:        getEnv("SMTP_PORT", "1025"),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		ResendAPIKey:    getEnv("RESEND_API_KEY", ""),
		SNSRegion:       getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN:     getEnv("SNS_TOPIC_ARN", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		EmailRateLimit:  getEnvInt("EMAIL_RATE_LIMIT", 5),
		EmailRateWindow: getEnvDuration("EMAIL_RATE_WINDOW", 15*time.Minute),
		OCREndpointURL:  getEnv("OCR_ENDPOINT_URL", ""),
		OCRTimeout:      getEnvDuration("OCR_TIMEOUT", 30*time.Second),
		Admins:          loadAdmins(),
		AllowedOrigins:  strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// loadAdmins reads ADMIN_1_EMAIL/ADMIN_1_PASSWORD_HASH, ADMIN_2_..., stopping at
// the first missing index.
func loadAdmins() []AdminCredential {
	var admins []AdminCredential
	for i := 1; ; i++ {
		email := os.Getenv(fmt.Sprintf("ADMIN_%d_EMAIL", i))
		hash := os.Getenv(fmt.Sprintf("ADMIN_%d_PASSWORD_HASH", i))
		if email == "" || hash == "" {
			return admins
		}
		admins = append(admins, AdminCredential{
			Email:        strings.ToLower(strings.TrimSpace(email)),
			PasswordHash: hash,
		})
	}
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

// getEnvDuration accepts Go duration strings ("15m", "90s").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// getEnvSeconds accepts a plain number of seconds.
func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	if n := getEnvInt(key, 0); n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
