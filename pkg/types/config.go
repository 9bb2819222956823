package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Cognito Auth
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`

	// Document storage
	DocumentBucketName string `envconfig:"DOCUMENT_BUCKET_NAME" default:"givelocal-documents"`
	MaxDocumentBytes   int64  `envconfig:"MAX_DOCUMENT_BYTES" default:"5242880"` // 5MB

	// Stripe (crowdfunding donations)
	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`

	// Redis (API rate limiting)
	RedisAddr           string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RateLimitPerMinute  int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	RateLimitingEnabled bool   `envconfig:"RATE_LIMITING_ENABLED" default:"true"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}
