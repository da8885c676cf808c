package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/jonokeeton/g4yp1g-bot/internal/domain/errors"
)

type Config struct {
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	APIServerPort    int    `mapstructure:"API_SERVER_PORT"`
	MetricsPort      int    `mapstructure:"METRICS_PORT"`

	SweepInterval time.Duration `mapstructure:"SWEEP_INTERVAL"`

	RateLimitRequests int           `mapstructure:"RATE_LIMIT_REQUESTS"`
	RateLimitWindow   time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`

	RedisURL      string        `mapstructure:"REDIS_URL"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	RedisCacheTTL time.Duration `mapstructure:"REDIS_CACHE_TTL"`

	KafkaBrokers          string `mapstructure:"KAFKA_BROKERS"`
	TopicModerationEvents string `mapstructure:"TOPIC_MODERATION_EVENTS"`
	TopicDeadLetterQueue  string `mapstructure:"TOPIC_DEAD_LETTER_QUEUE"`

	DashboardWebhookURL string `mapstructure:"DASHBOARD_WEBHOOK_URL"`

	HTTPRequestTimeout     time.Duration `mapstructure:"HTTP_REQUEST_TIMEOUT"`
	ExternalRequestTimeout time.Duration `mapstructure:"EXTERNAL_REQUEST_TIMEOUT"`

	RetryCount           int           `mapstructure:"RETRY_COUNT"`
	RetryBackoff         time.Duration `mapstructure:"RETRY_BACKOFF"`
	RetryableStatusCodes []int         `mapstructure:"RETRYABLE_STATUS_CODES"`

	CBSlidingWindowSize        int           `mapstructure:"CB_SLIDING_WINDOW_SIZE"`
	CBMinimumRequiredCalls     int           `mapstructure:"CB_MINIMUM_REQUIRED_CALLS"`
	CBFailureRateThreshold     int           `mapstructure:"CB_FAILURE_RATE_THRESHOLD"`
	CBPermittedCallsInHalfOpen int           `mapstructure:"CB_PERMITTED_CALLS_IN_HALF_OPEN"`
	CBWaitDurationInOpenState  time.Duration `mapstructure:"CB_WAIT_DURATION_IN_OPEN_STATE"`
}

func LoadConfig() (*Config, error) {
	setDefaults()

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	_ = viper.ReadInConfig()

	config := getDefaultConfig()

	if err := viper.Unmarshal(config); err != nil {
		config = getDefaultConfig()
		config.TelegramBotToken = viper.GetString("TELEGRAM_BOT_TOKEN")
	}

	if config.TelegramBotToken == "" {
		return nil, &errors.ErrMissingRequiredField{FieldName: "TELEGRAM_BOT_TOKEN"}
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("API_SERVER_PORT", 3000)
	viper.SetDefault("METRICS_PORT", 9094)

	viper.SetDefault("SWEEP_INTERVAL", "1m")

	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")

	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_CACHE_TTL", "5s")

	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("TOPIC_MODERATION_EVENTS", "moderation-events")
	viper.SetDefault("TOPIC_DEAD_LETTER_QUEUE", "moderation-events-dlq")

	viper.SetDefault("DASHBOARD_WEBHOOK_URL", "")

	viper.SetDefault("HTTP_REQUEST_TIMEOUT", "5s")
	viper.SetDefault("EXTERNAL_REQUEST_TIMEOUT", "10s")

	viper.SetDefault("RETRY_COUNT", 3)
	viper.SetDefault("RETRY_BACKOFF", "1s")
	viper.SetDefault("RETRYABLE_STATUS_CODES", []int{408, 429, 500, 502, 503, 504})

	viper.SetDefault("CB_SLIDING_WINDOW_SIZE", 10)
	viper.SetDefault("CB_MINIMUM_REQUIRED_CALLS", 5)
	viper.SetDefault("CB_FAILURE_RATE_THRESHOLD", 50)
	viper.SetDefault("CB_PERMITTED_CALLS_IN_HALF_OPEN", 2)
	viper.SetDefault("CB_WAIT_DURATION_IN_OPEN_STATE", "10s")
}

func getDefaultConfig() *Config {
	return &Config{
		APIServerPort: 3000,
		MetricsPort:   9094,

		SweepInterval: 1 * time.Minute,

		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,

		RedisCacheTTL: 5 * time.Second,

		TopicModerationEvents: "moderation-events",
		TopicDeadLetterQueue:  "moderation-events-dlq",

		HTTPRequestTimeout:     5 * time.Second,
		ExternalRequestTimeout: 10 * time.Second,

		RetryCount:           3,
		RetryBackoff:         1 * time.Second,
		RetryableStatusCodes: []int{408, 429, 500, 502, 503, 504},

		CBSlidingWindowSize:        10,
		CBMinimumRequiredCalls:     5,
		CBFailureRateThreshold:     50,
		CBPermittedCallsInHalfOpen: 2,
		CBWaitDurationInOpenState:  10 * time.Second,
	}
}
