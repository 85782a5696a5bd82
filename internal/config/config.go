package config

import (
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

	// Targeting rule sources. S3 wins over the local file; with neither set
	// the compiled-in defaults apply.
	TargetRulesFile     string
	TargetRulesS3Bucket string
	TargetRulesS3Key    string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string
	PushTimeout     time.Duration
	PushTTL         time.Duration

	// Notification types escalated over SMS for recipients with a phone on file.
	SMSEscalationTypes []string
	SNSRegion          string

	JWTPublicKeyPath string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity. Users and
// approvals are owned by the surrounding dashboard backend; this service
// only reads them.
type DynamoTables struct {
	Notifications string
	Subscriptions string
	Users         string
	Approvals     string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Subscriptions: getEnv("DYNAMO_TABLE_SUBSCRIPTIONS", "push_subscriptions"),
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Approvals:     getEnv("DYNAMO_TABLE_APPROVALS", "approvals"),
		},

		TargetRulesFile:     getEnv("TARGET_RULES_FILE", ""),
		TargetRulesS3Bucket: getEnv("TARGET_RULES_S3_BUCKET", ""),
		TargetRulesS3Key:    getEnv("TARGET_RULES_S3_KEY", ""),

		VAPIDPublicKey:  getEnv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey: getEnv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubscriber: getEnv("VAPID_SUBJECT", "mailto:ops@example.com"),
		PushTimeout:     getEnvSeconds("PUSH_TIMEOUT_SECONDS", 10),
		PushTTL:         getEnvSeconds("PUSH_TTL_SECONDS", 86400),

		SMSEscalationTypes: splitList(getEnv("SMS_ESCALATION_TYPES", "")),
		SNSRegion:          getEnv("SNS_REGION", ""),

		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
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

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}

// splitList parses a comma-separated value, dropping empty entries so an
// unset variable yields nil instead of [""].
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
