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

const minJWTSecretLength = 32

var (
	ErrJWTSecretMissing  = errors.New("JWT_SECRET environment variable is required")
	ErrJWTSecretTooShort = fmt.Errorf("JWT_SECRET must be at least %d characters long", minJWTSecretLength)
	ErrPaymentKeys       = errors.New("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
)

type Config struct {
	HTTPAddr     string
	DatabaseURL  string
	CookieSecure bool

	JWTSecret            string
	StorefrontSessionTTL time.Duration
	AdminSessionTTL      time.Duration
	ReservationTTL       time.Duration

	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroup   string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	AdminEmail   string

	AdminPassword string
	AdminName     string

	RazorpayKeyID     string
	RazorpayKeySecret string
	Currency          string

	LowStockThreshold int
	SweepInterval     time.Duration
}

// Load reads .env when present, then the environment. Malformed numeric or
// duration values fall back to their defaults with a warning.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Println("[Config] Loaded .env")
	}

	return Config{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		CookieSecure: getEnv("COOKIE_SECURE", "false") == "true",

		JWTSecret:            os.Getenv("JWT_SECRET"),
		StorefrontSessionTTL: getDuration("STOREFRONT_SESSION_TTL", 7*24*time.Hour),
		AdminSessionTTL:      getDuration("ADMIN_SESSION_TTL", 2*time.Hour),
		ReservationTTL:       getDuration("RESERVATION_TTL", 10*time.Minute),

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "storefront.orders"),
		KafkaGroup:   getEnv("KAFKA_CONSUMER_GROUP", "notifier"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		AdminEmail:   os.Getenv("ADMIN_EMAIL"),

		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		Currency:          getEnv("CURRENCY", "INR"),

		LowStockThreshold: getInt("LOW_STOCK_THRESHOLD", 5),
		SweepInterval:     getDuration("SWEEP_INTERVAL", time.Minute),
	}
}

// Validate checks the settings the API cannot start without
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, ErrJWTSecretMissing)
	} else if len(c.JWTSecret) < minJWTSecretLength {
		errs = append(errs, ErrJWTSecretTooShort)
	}
	if c.RazorpayKeyID == "" || c.RazorpayKeySecret == "" {
		errs = append(errs, ErrPaymentKeys)
	}
	return errors.Join(errs...)
}

func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("[Config] Invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		log.Printf("[Config] Invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
