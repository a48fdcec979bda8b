package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB         int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB          int    `mapstructure:"REDIS_AUTH_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Assignment workflow. The response window has shipped as both 5 and 10
	// minutes at different times; it is configuration, not a constant.
	ResponseWindow  time.Duration `mapstructure:"BOOKING_RESPONSE_WINDOW"`
	AlertInterval   time.Duration `mapstructure:"BOOKING_ALERT_INTERVAL"`
	SearchRadiusKm  float64       `mapstructure:"SEARCH_RADIUS_KM"`
	RatingPenalty   float64       `mapstructure:"TIMEOUT_RATING_PENALTY"`
	CoinPenalty     int64         `mapstructure:"TIMEOUT_COIN_PENALTY"`
	ExcludeDeclines bool          `mapstructure:"EXCLUDE_DECLINED_PROVIDERS"`

	// Completion settlement.
	CommissionRate      float64 `mapstructure:"COMMISSION_RATE"`
	CompletionCoinAward int64   `mapstructure:"COMPLETION_COIN_AWARD"`
	StripeKey           string  `mapstructure:"STRIPE_KEY"`

	// Firebase Cloud Messaging.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "indastreet")
	viper.SetDefault("BOOKING_RESPONSE_WINDOW", "10m")
	viper.SetDefault("BOOKING_ALERT_INTERVAL", "10s")
	viper.SetDefault("SEARCH_RADIUS_KM", 15.0)
	viper.SetDefault("TIMEOUT_RATING_PENALTY", 0.1)
	viper.SetDefault("TIMEOUT_COIN_PENALTY", 10)
	viper.SetDefault("EXCLUDE_DECLINED_PROVIDERS", false)
	viper.SetDefault("COMMISSION_RATE", 0.30)
	viper.SetDefault("COMPLETION_COIN_AWARD", 25)
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "serviceAccountKey.json")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
