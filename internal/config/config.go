package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfig marks a configuration problem that must stop the process at startup.
var ErrConfig = errors.New("config error")

type Config struct {
	ServiceName string
	ServerPort  int
	APIPrefix   string
	LogLevel    string

	DatabaseURL string

	JWTSecret  []byte
	TokenTTL   time.Duration
	BcryptCost int

	UploadDir   string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	LoginRatePerMin int
	LoginBurst      int
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return &Config{
		ServiceName: EnvDefault("SERVICE_NAME", "eshop"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		APIPrefix:   EnvDefault("API_PREFIX", "/api/v1"),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:  []byte(os.Getenv("JWT_SECRET")),
		TokenTTL:   EnvDurationDefault("TOKEN_TTL", 24*time.Hour),
		BcryptCost: EnvIntDefault("BCRYPT_COST", 10),

		UploadDir:   EnvDefault("UPLOAD_DIR", "public/uploads"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    EnvDefault("S3_REGION", "us-east-1"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		LoginRatePerMin: EnvIntDefault("LOGIN_RATE_PER_MIN", 10),
		LoginBurst:      EnvIntDefault("LOGIN_BURST", 5),
	}
}

// Validate reports missing required settings. The signing secret is the only
// trust anchor for issued tokens, so an empty one is never tolerated.
func (c *Config) Validate() error {
	var missing []string
	if len(c.JWTSecret) == 0 {
		missing = append(missing, "JWT_SECRET")
	}
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required env %s", ErrConfig, strings.Join(missing, ", "))
	}
	return nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
