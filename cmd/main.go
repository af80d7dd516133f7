package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	createBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_booking"
	createEmergencyBlockHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_emergency_block"
	createReviewHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_review"
	deleteEmergencyBlockHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_emergency_block"
	getAvailableSlotsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_booking"
	getScheduleHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_schedule"
	listBookingsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_bookings"
	listReviewsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_reviews"
	transitionBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/transition_booking"
	updateServiceHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_service"
	updateWeeklyHoursHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_weekly_hours"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/migrations"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	outboxRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/outbox"
	reviewRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/review"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/identity"
	"github.com/m04kA/SMC-AppointmentService/internal/notification"
	bookingsService "github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
	catalogService "github.com/m04kA/SMC-AppointmentService/internal/service/catalog"
	reviewsService "github.com/m04kA/SMC-AppointmentService/internal/service/reviews"
	createBookingUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
	transitionBookingUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/transition_booking"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/tracing"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

const configPath = "config.toml"

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from %s (timezone=%s)", configPath, cfg.Booking.Location())

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Трейсинг (при выключенном только настраиваются пропагаторы)
	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Metrics.ServiceName,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRatio:  cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatal("Failed to set up tracing: %v", err)
	}

	// Инициализируем метрики (если включены). nil-коллектор безопасен во всех потребителях
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Применяем миграции
	if err := migrations.Up(db); err != nil {
		log.Fatal("Failed to apply migrations: %v", err)
	}
	log.Info("Database migrations applied")

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	catalogRepository := catalogRepo.NewRepository(wrappedDB)
	reviewRepository := reviewRepo.NewRepository(wrappedDB)
	outboxRepository := outboxRepo.NewRepository(wrappedDB)

	location := cfg.Booking.Location()

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(bookingRepository, catalogRepository, log)
	catalogSvc := catalogService.NewService(catalogRepository, txMgr, location, log)
	reviewSvc := reviewsService.NewService(
		bookingRepository,
		reviewRepository,
		catalogRepository,
		outboxRepository,
		txMgr,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		catalogRepository,
		outboxRepository,
		txMgr,
		metricsCollector,
		location,
		log,
	)
	transitionBookingUseCase := transitionBookingUC.NewUseCase(
		bookingRepository,
		catalogRepository,
		outboxRepository,
		txMgr,
		metricsCollector,
		location,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		catalogRepository,
		bookingRepository,
		location,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getSchedule := getScheduleHandler.NewHandler(catalogSvc, log)
	listReviews := listReviewsHandler.NewHandler(reviewSvc, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	listBookings := listBookingsHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	transitionBooking := transitionBookingHandler.NewHandler(transitionBookingUseCase, log)
	createReview := createReviewHandler.NewHandler(reviewSvc, log)
	updateWeeklyHours := updateWeeklyHoursHandler.NewHandler(catalogSvc, log)
	createEmergencyBlock := createEmergencyBlockHandler.NewHandler(catalogSvc, log)
	deleteEmergencyBlock := deleteEmergencyBlockHandler.NewHandler(catalogSvc, log)
	updateService := updateServiceHandler.NewHandler(catalogSvc, log)

	// Проверка заголовков идентичности через сервис аккаунтов (если настроен)
	authMiddleware := mux.MiddlewareFunc(middleware.Auth)
	if cfg.Identity.URL != "" {
		identityClient := identity.NewClient(
			cfg.Identity.URL,
			time.Duration(cfg.Identity.Timeout)*time.Second,
			cfg.Identity.FailOpen,
			log,
		)
		authMiddleware = middleware.NewAuth(identityClient, log)
		log.Info("Identity verification enabled (url=%s, timeout=%ds, fail_open=%t)",
			cfg.Identity.URL, cfg.Identity.Timeout, cfg.Identity.FailOpen)
	}

	// Ограничение частоты запросов
	var redisClient *redis.Client
	var rateLimitMiddleware mux.MiddlewareFunc
	if cfg.RateLimit.Enabled {
		var limiter middleware.Limiter
		backend := cfg.RateLimit.Backend
		switch backend {
		case config.RateLimitBackendRedis:
			redisClient = redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err := redisClient.Ping(ctx).Err(); err != nil {
				log.Warn("Redis is not reachable at %s: %v (fail_open=%t)", cfg.Redis.Addr, err, cfg.RateLimit.FailOpen)
			}
			limiter = middleware.NewRedisLimiter(redisClient, cfg.RateLimit.RequestsPerMinute, time.Minute, cfg.Metrics.ServiceName)
			backend = middleware.BackendRedis
		default:
			limiter = middleware.NewMemoryLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
			backend = middleware.BackendMemory
		}
		rateLimitMiddleware = middleware.RateLimit(limiter, backend, metricsCollector, cfg.RateLimit.FailOpen, log)
		log.Info("Rate limiting enabled (backend=%s, rpm=%d)", backend, cfg.RateLimit.RequestsPerMinute)
	}

	// Публикация событий из outbox
	var publisher *notification.Publisher
	publisherDone := make(chan struct{})
	if cfg.Kafka.Enabled() {
		publisher = notification.NewPublisher(
			outboxRepository,
			txMgr,
			notification.NewKafkaWriter(cfg.Kafka.Brokers),
			metricsCollector,
			log,
			notification.Config{
				PollInterval: time.Duration(cfg.Kafka.PollIntervalMs) * time.Millisecond,
				BatchSize:    cfg.Kafka.BatchSize,
			},
		)
		go func() {
			defer close(publisherDone)
			publisher.Run(ctx)
		}()
	} else {
		close(publisherDone)
		log.Warn("Outbox publisher disabled (no kafka brokers configured)")
	}

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты услуги на дату
	api.HandleFunc("/businesses/{businessId}/services/{serviceId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Расписание бизнеса и предстоящие блокировки
	api.HandleFunc("/businesses/{businessId}/schedule", getSchedule.Handle).Methods(http.MethodGet)

	// Отзывы о бизнесе
	api.HandleFunc("/businesses/{businessId}/reviews", listReviews.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID и X-User-Role)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(authMiddleware)
	if rateLimitMiddleware != nil {
		protected.Use(rateLimitMiddleware)
	}

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings", listBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/transitions", transitionBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/review", createReview.Handle).Methods(http.MethodPost)

	// --- Управление бизнесом (для владельца) ---
	protected.HandleFunc("/businesses/{businessId}/weekly-hours", updateWeeklyHours.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/businesses/{businessId}/emergency-blocks", createEmergencyBlock.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/businesses/{businessId}/emergency-blocks/{blockId}",
		deleteEmergencyBlock.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/businesses/{businessId}/services/{serviceId}", updateService.Handle).Methods(http.MethodPatch)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      middleware.Tracing(cfg.Metrics.ServiceName, cfg.Metrics.Path)(r),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем фоновые задачи после HTTP, чтобы последние события попали в outbox
	stop()
	<-publisherDone
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error("Failed to close kafka writer: %v", err)
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to flush traces: %v", err)
	}

	log.Info("Server stopped gracefully")
}
