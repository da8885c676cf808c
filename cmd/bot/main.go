package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"log/slog"

	apihandlers "github.com/jonokeeton/g4yp1g-bot/internal/api/handlers"
	"github.com/jonokeeton/g4yp1g-bot/internal/audit"
	"github.com/jonokeeton/g4yp1g-bot/internal/common/metrics"
	"github.com/jonokeeton/g4yp1g-bot/internal/common/middleware"
	"github.com/jonokeeton/g4yp1g-bot/internal/config"
	"github.com/jonokeeton/g4yp1g-bot/internal/dashboard/cache"
	domainclients "github.com/jonokeeton/g4yp1g-bot/internal/domain/clients"
	infraclients "github.com/jonokeeton/g4yp1g-bot/internal/infrastructure/clients"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/mute"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/pipeline"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/settings"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/spam"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/stats"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/words"
	"github.com/jonokeeton/g4yp1g-bot/internal/scheduler"
	"github.com/jonokeeton/g4yp1g-bot/internal/telegram"
	"github.com/jonokeeton/g4yp1g-bot/pkg"
)

func setupTelegramCommands(telegramClient domainclients.TelegramClientAPI, appLogger *slog.Logger) {
	botCommands := []domainclients.BotCommand{
		{Command: "start", Description: "Start working with the bot"},
		{Command: "debug", Description: "Show moderation debug info"},
	}

	ctx := context.Background()
	if err := telegramClient.SetMyCommands(ctx, botCommands); err != nil {
		appLogger.Error("Ошибка при регистрации команд бота",
			"error", err,
		)
	} else {
		appLogger.Info("Команды бота успешно зарегистрированы")
	}
}

func startHTTPServer(server *http.Server, port int, stopCh chan<- struct{}, appLogger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLogger.Info("Получен системный сигнал",
			"signal", sig.String(),
		)
		close(stopCh)
	}()

	go func() {
		appLogger.Info("Запуск HTTP сервера management API",
			"port", port,
		)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Ошибка при запуске HTTP сервера",
				"error", err,
			)
			close(stopCh)
		}
	}()
}

func gracefulShutdown(
	server *http.Server,
	poller *telegram.Poller,
	sweeper *scheduler.Sweeper,
	kafkaPublisher *audit.KafkaPublisher,
	redisCache *cache.RedisGroupListCache,
	stopCh <-chan struct{},
	appLogger *slog.Logger,
) {
	<-stopCh
	appLogger.Info("Получен сигнал завершения")

	poller.Stop()
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Ошибка при остановке HTTP сервера",
			"error", err,
		)
	}

	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			appLogger.Error("Ошибка при закрытии Kafka продюсера",
				"error", err,
			)
		}
	}

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			appLogger.Error("Ошибка при закрытии соединения с Redis",
				"error", err,
			)
		}
	}

	appLogger.Info("Сервер успешно остановлен")
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка запуска сервиса: %v\n", err)
		os.Exit(1)
	}
}

//nolint:funlen // Длина функции обусловлена необходимостью последовательной инициализации всех компонентов.
func run() error {
	appLogger := pkg.NewLogger(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := settings.NewStore()
	counters := stats.NewCounters()
	detector := spam.NewDetector()
	wordFilter := words.NewFilter(store)
	muteManager := mute.NewManager(store)
	aggregator := stats.NewAggregator(counters, store)

	var auditPublishers []audit.Publisher

	var kafkaPublisher *audit.KafkaPublisher

	if cfg.KafkaBrokers != "" {
		brokers := strings.Split(cfg.KafkaBrokers, ",")
		kafkaPublisher = audit.NewKafkaPublisher(
			brokers,
			cfg.TopicModerationEvents,
			cfg.TopicDeadLetterQueue,
			appLogger,
		)
		auditPublishers = append(auditPublishers, kafkaPublisher)

		appLogger.Info("Kafka публикация аудита включена",
			"topic", cfg.TopicModerationEvents,
		)
	}

	if cfg.DashboardWebhookURL != "" {
		auditPublishers = append(auditPublishers,
			infraclients.NewWebhookNotifier(cfg.DashboardWebhookURL, cfg, appLogger))

		appLogger.Info("Webhook публикация аудита включена",
			"url", cfg.DashboardWebhookURL,
		)
	}

	var auditPublisher pipeline.AuditPublisher
	if len(auditPublishers) > 0 {
		auditPublisher = audit.NewMultiPublisher(appLogger, auditPublishers...)
	}

	moderationPipeline := pipeline.New(
		store,
		detector,
		wordFilter,
		muteManager,
		counters,
		auditPublisher,
		appLogger,
	)

	var redisCache *cache.RedisGroupListCache

	var groupListCache apihandlers.GroupListCache

	if cfg.RedisURL != "" {
		redisCache, err = cache.NewRedisGroupListCache(
			cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, cfg.RedisCacheTTL, appLogger)
		if err != nil {
			appLogger.Error("Ошибка при подключении к Redis",
				"error", err,
			)
		} else {
			appLogger.Info("Кэш Redis успешно инициализирован")

			groupListCache = redisCache
		}
	}

	telegramClient := infraclients.NewTelegramClient(cfg.TelegramBotToken, appLogger)
	setupTelegramCommands(telegramClient, appLogger)

	poller := telegram.NewPoller(telegramClient, moderationPipeline, appLogger)
	poller.Start()

	sweeper := scheduler.NewSweeper(muteManager, detector, cfg.SweepInterval, appLogger)
	sweeper.Start()

	metricsServer := metrics.NewMetricsServer(cfg.MetricsPort, appLogger)

	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			appLogger.Error("Ошибка при запуске сервера метрик",
				"error", err,
			)
		}
	}()

	dashboardHandler := apihandlers.NewDashboardHandler(store, aggregator, groupListCache, appLogger)

	mux := http.NewServeMux()
	dashboardHandler.Register(mux)

	rateLimiter := middleware.NewRateLimiterMiddleware(ctx, cfg.RateLimitRequests, cfg.RateLimitWindow, appLogger)
	metricsMiddleware := middleware.NewMetricsMiddleware("dashboard_api")

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.APIServerPort),
		Handler:           metricsMiddleware.Middleware(rateLimiter.Middleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopCh := make(chan struct{})

	startHTTPServer(httpServer, cfg.APIServerPort, stopCh, appLogger)
	gracefulShutdown(httpServer, poller, sweeper, kafkaPublisher, redisCache, stopCh, appLogger)

	return nil
}
