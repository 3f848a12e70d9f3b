package main

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/example/slotwise/libs/config"
	"github.com/example/slotwise/libs/db"
	"github.com/example/slotwise/libs/httpx"
	"github.com/example/slotwise/libs/kafkax"
	otelx "github.com/example/slotwise/libs/otel"
	"github.com/example/slotwise/libs/runtime"
	"github.com/example/slotwise/services/availability-service/internal/calendarcfg"
	"github.com/example/slotwise/services/availability-service/internal/engine"
	"github.com/example/slotwise/services/availability-service/internal/handlers"
	"github.com/example/slotwise/services/availability-service/internal/outbox"
	"github.com/example/slotwise/services/availability-service/internal/slots"
	"github.com/example/slotwise/services/availability-service/internal/storage"
	"github.com/example/slotwise/services/availability-service/internal/timezone"
)

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fallbackSettings() calendarcfg.Settings {
	settings := calendarcfg.Settings{
		Timezone:    config.String("DEFAULT_TIMEZONE", timezone.DetectLocalZone()),
		SlotMinutes: config.Int("DEFAULT_SLOT_MINUTES", 30),
	}
	start := config.Int("DEFAULT_START_HOUR", -1)
	end := config.Int("DEFAULT_END_HOUR", -1)
	if start >= 0 && end > start && end <= 24 {
		settings.Hours = &slots.BusinessHours{StartHour: start, EndHour: end}
	}
	return settings
}

func main() {
	service := config.String("SERVICE_NAME", "availability-service")
	port, err := config.Port("PORT", "8085")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	blockedRepo := storage.NewBlockedPeriodRepository(pool)
	bookingRepo := storage.NewBookingRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	settingsProvider, err := calendarcfg.NewOwnerSettingsProvider(logger, fallbackSettings(), config.String("CALENDAR_GRPC_ADDR", ""))
	if err != nil {
		logger.Error("calendar settings provider init failed; using fallback", "err", err)
		settingsProvider = calendarcfg.NewStaticProvider(fallbackSettings())
	}

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	eng := engine.New(blockedRepo, bookingRepo)
	if err := startGrpcServer(ctx, logger, eng, blockedRepo, bookingRepo); err != nil {
		logger.Error("grpc server init failed", "err", err)
	}

	slotsHandler := handlers.NewSlotsHandler(eng, settingsProvider, logger)
	timezoneHandler := handlers.NewTimezoneHandler()
	blockedHandler := handlers.NewBlockedPeriodHandler(blockedRepo, outboxRepo, logger)
	bookingHandler := handlers.NewBookingHandler(bookingRepo, blockedRepo, outboxRepo, logger)

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if brokers := config.String("KAFKA_BROKERS", ""); brokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}

	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	var rateLimitMW httpx.Middleware
	var rdb *redis.Client
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		redisDB := 0
		if v, err := strconv.Atoi(config.String("REDIS_DB", "0")); err == nil && v >= 0 {
			redisDB = v
		}
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       redisDB,
		})
		defer func() { _ = rdb.Close() }()

		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "slots"))
		rateLimitMW = rl.Middleware(logger, true)
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
	} else {
		rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
		rateLimitMW = rl.Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	mux.Handle("/api/v1/public/slots", httpx.Chain(http.HandlerFunc(slotsHandler.Slots), rateLimitMW))
	mux.HandleFunc("/api/v1/timezones/check", timezoneHandler.Check)
	mux.HandleFunc("/api/v1/blocked-periods", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			blockedHandler.List(w, r)
		case http.MethodPost:
			blockedHandler.Create(w, r)
		case http.MethodDelete:
			blockedHandler.Delete(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/bookings", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			bookingHandler.List(w, r)
		case http.MethodPost:
			bookingHandler.Create(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/bookings/approve", bookingHandler.Approve)
	mux.HandleFunc("/api/v1/bookings/reject", bookingHandler.Reject)
	mux.HandleFunc("/api/v1/bookings/cancel", bookingHandler.Cancel)

	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: parseList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods: parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,DELETE,OPTIONS")),
			AllowedHeaders: parseList(config.String("CORS_ALLOWED_HEADERS", "Content-Type,X-Request-Id")),
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "availability")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
