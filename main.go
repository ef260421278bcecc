package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"solar-portal/internal/audit"
	"solar-portal/internal/auth"
	"solar-portal/internal/eventing"
	maintenanceapp "solar-portal/internal/maintenance/application"
	maintenancerepo "solar-portal/internal/maintenance/infrastructure/postgres"
	maintenancehttp "solar-portal/internal/maintenance/interfaces/http"
	meteringapp "solar-portal/internal/metering/application"
	meteringevents "solar-portal/internal/metering/application/events"
	metering "solar-portal/internal/metering/domain"
	meteringrepo "solar-portal/internal/metering/infrastructure/postgres"
	meteringhttp "solar-portal/internal/metering/interfaces/http"
	"solar-portal/internal/notify"
	"solar-portal/internal/observability/metrics"
	sizingapp "solar-portal/internal/sizing/application"
	sizing "solar-portal/internal/sizing/domain"
	sizinghttp "solar-portal/internal/sizing/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	sizingCfg, err := sizingapp.LoadConfig()
	if err != nil {
		logger.Fatalf("sizing config error: %v", err)
	}
	calculator, err := sizing.NewCalculator(sizingCfg.ParametersForRegion(cfg.Region))
	if err != nil {
		logger.Fatalf("calculator error: %v", err)
	}

	bus := eventing.NewInMemoryBus()
	publisher := eventing.NewPublisher(bus)

	applicationRepo := meteringrepo.NewApplicationRepository(db)
	allocator := metering.NewReferenceAllocator(applicationRepo.Exists)
	meteringService, err := meteringapp.NewService(applicationRepo, allocator, calculator, publisher, meteringapp.WithLogger(logger))
	if err != nil {
		logger.Fatalf("metering service error: %v", err)
	}
	meteringHandler, err := meteringhttp.NewHandler(meteringService, auditRepo)
	if err != nil {
		logger.Fatalf("metering handler error: %v", err)
	}

	tracker, err := meteringapp.NewStatusTracker(applicationRepo)
	if err != nil {
		logger.Fatalf("status tracker error: %v", err)
	}
	statusHandler, err := meteringhttp.NewStatusHandler(tracker)
	if err != nil {
		logger.Fatalf("status handler error: %v", err)
	}

	maintenanceRepo := maintenancerepo.NewRequestRepository(db)
	maintenanceService, err := maintenanceapp.NewService(maintenanceRepo)
	if err != nil {
		logger.Fatalf("maintenance service error: %v", err)
	}
	maintenanceHandler, err := maintenancehttp.NewHandler(maintenanceService)
	if err != nil {
		logger.Fatalf("maintenance handler error: %v", err)
	}

	if cfg.NotifyWebhookURL != "" {
		channel, err := notify.NewWebhookChannel(cfg.NotifyWebhookURL, notify.WithRequestTimeout(cfg.NotifyTimeout))
		if err != nil {
			logger.Fatalf("notify webhook error: %v", err)
		}
		tpl, err := notify.NewTemplate(cfg.NotifyTemplate)
		if err != nil {
			logger.Fatalf("notify template error: %v", err)
		}
		statusNotifier, err := notify.NewStatusNotifier(channel, tpl)
		if err != nil {
			logger.Fatalf("status notifier error: %v", err)
		}
		publisher.Subscribe(eventing.EventTypeOf[meteringevents.ApplicationStatusChanged](), statusNotifier.HandleStatusChanged)
	}
	publisher.Subscribe(eventing.EventTypeOf[meteringevents.ApplicationStatusChanged](), func(ctx context.Context, event any) error {
		evt, ok := event.(meteringevents.ApplicationStatusChanged)
		if !ok {
			return eventing.ErrInvalidEventType
		}
		logger.Printf("application %s: %s -> %s (%s)", evt.ReferenceCode, evt.FromStatus, evt.ToStatus, evt.Transition)
		return nil
	})

	policy := auth.NewDefaultPolicy(
		[]string{"/healthz", "/metrics"},
		[]string{"/api/v1/solar-calculator", "/api/v1/application-status/"},
	)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/solar-calculator", sizinghttp.NewCalculatorHandler(sizingCfg))
	mux.Handle("/api/v1/applications", meteringHandler)
	mux.Handle("/api/v1/applications/", meteringHandler)
	mux.Handle("/api/v1/application-status/", statusHandler)
	mux.Handle("/api/v1/maintenance", maintenanceHandler)
	mux.Handle("/api/v1/maintenance/", maintenanceHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL      string
	HTTPAddr         string
	Region           string
	JWTSecret        string
	NotifyWebhookURL string
	NotifyTemplate   string
	NotifyTimeout    time.Duration
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:      getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:         getenvDefault("HTTP_ADDR", ":8080"),
		Region:           getenvDefault("SIZING_REGION", ""),
		JWTSecret:        getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		NotifyWebhookURL: getenvDefault("NOTIFY_WEBHOOK_URL", ""),
		NotifyTemplate:   getenvDefault("NOTIFY_TEMPLATE", ""),
		NotifyTimeout:    getenvDuration("NOTIFY_TIMEOUT", 5*time.Second),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
