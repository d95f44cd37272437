package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"equity-sentry/internal/advisor"
	"equity-sentry/internal/bot"
	"equity-sentry/internal/cache"
	"equity-sentry/internal/config"
	"equity-sentry/internal/db"
	"equity-sentry/internal/domain"
	"equity-sentry/internal/handler"
	"equity-sentry/internal/job"
	"equity-sentry/internal/provider"
	"equity-sentry/internal/repository"
	"equity-sentry/internal/risk"
	"equity-sentry/internal/service"
	"equity-sentry/internal/strategy"
	"equity-sentry/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "equity-sentry/docs"
)

var (
	loadEnvFunc         = godotenv.Load
	loadConfigFunc      = config.Load
	initPostgresFunc    = db.InitPostgres
	initRedisFunc       = cache.InitRedis
	initTracerFunc      = tracing.InitTracer
	newFeedProviderFunc = func(tracer trace.Tracer, baseURL string) service.BarProvider {
		return provider.NewFeedProvider(tracer, baseURL)
	}
	newTelegramBotFunc     = bot.NewTelegramBot
	newSignalServiceFunc   = service.NewSignalService
	newScannerFunc         = job.NewScanner
	startScannerFunc       = func(s *job.Scanner, ctx context.Context) { go s.Start(ctx) }
	startBotFunc           = func(t *bot.TelegramBot, signals bot.SignalReader, adv bot.Advisor) { t.Start(signals, adv) }
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Equity Sentry API
// @version         1.0
// @description     Signal monitoring for HOSE equities with OpenTelemetry tracing.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repositories and run migrations
	barRepo := repository.NewBarRepository(db.Pool, tracer)
	signalRepo := repository.NewSignalRepository(db.Pool, tracer)
	tradeRepo := repository.NewTradeRepository(db.Pool, tracer)
	convRepo := repository.NewConversationRepository(db.Pool, tracer)
	if db.Pool != nil {
		if err := barRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run bar migrations: %v", err)
		}
		if err := signalRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run signal migrations: %v", err)
		}
	}

	// Build the strategy engine with portfolio-level risk limits
	params := strategy.DefaultParams()
	riskMgr, err := risk.NewManager(params.Risk, cfg.PortfolioValue)
	if err != nil {
		log.Fatalf("failed to create risk manager: %v", err)
	}
	engine, err := strategy.NewEngine(tracer, params, riskMgr)
	if err != nil {
		log.Fatalf("failed to create strategy engine: %v", err)
	}

	// Market data feed and Telegram notifier
	feed := newFeedProviderFunc(tracer, cfg.FeedBaseURL)

	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	os.Setenv("TELEGRAM_CHAT_ID", cfg.TelegramChatID)
	tgBot, err := newTelegramBotFunc()
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	var trades service.TradeRecorder
	if db.Pool != nil {
		trades = tradeRepo
	}
	signalService := newSignalServiceFunc(tracer, feed, barRepo, signalRepo, trades,
		engine, cache.Client, tgBot, cfg.Timeframe, cfg.PortfolioValue)

	// Advisor is optional; the /ask command degrades without it
	var advisorSvc bot.Advisor
	if cfg.OpenAIAPIKey != "" {
		llm := advisor.NewOpenAIClient(cfg.OpenAIAPIKey)
		advisorSvc = advisor.NewAdvisorService(tracer, llm, signalService, signalService,
			convRepo, cfg.OpenAIModel, cfg.AdvisorMaxHistory)
	}
	startBotFunc(tgBot, signalService, advisorSvc)

	// Start the watchlist scanner (background goroutines, stopped by ctx cancel)
	scanner := newScannerFunc(tracer, signalService, domain.Watchlist, cfg.ScanIntervalSecs, cfg.ScanWorkers)
	startScannerFunc(scanner, ctx)

	// Create handlers and routes
	h := newHandlerFunc(tracer, signalService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("equity-sentry"))
	r.Use(handler.APIKeyAuth(cfg.APIKey))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
