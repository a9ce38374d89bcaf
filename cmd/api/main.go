package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	appanalysis "github.com/cheema22g77/kwooka-compliance/internal/application/analysis"
	appchat "github.com/cheema22g77/kwooka-compliance/internal/application/chat"
	"github.com/cheema22g77/kwooka-compliance/internal/config"
	domanalysis "github.com/cheema22g77/kwooka-compliance/internal/domain/analysis"
	domfindings "github.com/cheema22g77/kwooka-compliance/internal/domain/findings"
	domnotif "github.com/cheema22g77/kwooka-compliance/internal/domain/notifications"
	"github.com/cheema22g77/kwooka-compliance/internal/domain/search"
	"github.com/cheema22g77/kwooka-compliance/internal/guardrail"
	openaicli "github.com/cheema22g77/kwooka-compliance/internal/infra/ai/openai"
	mysqlp "github.com/cheema22g77/kwooka-compliance/internal/infra/db/mysql"
	postgresp "github.com/cheema22g77/kwooka-compliance/internal/infra/db/postgres"
	"github.com/cheema22g77/kwooka-compliance/internal/infra/httpserver"
	minioStore "github.com/cheema22g77/kwooka-compliance/internal/infra/storage"
	"github.com/cheema22g77/kwooka-compliance/internal/middleware"
	"github.com/cheema22g77/kwooka-compliance/internal/observability/logging"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger := logging.NewJSONLogger("kwooka-compliance", cfg.Logging.Level)

	ctx := context.Background()

	// connect database, driver dipilih dari config
	var (
		db          *sql.DB
		analysisRepo domanalysis.Repository
		findingsRepo domfindings.Repository
		notifsRepo   domnotif.Repository
		searcher     search.Searcher
	)
	switch cfg.Database.Driver {
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		analysisRepo = mysqlp.NewAnalysisRepository(db)
		findingsRepo = mysqlp.NewFindingsRepository(db)
		notifsRepo = mysqlp.NewNotificationsRepository(db)
		searcher = mysqlp.NewLegislationRepository(db)
	case "postgres", "":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		analysisRepo = postgresp.NewAnalysisRepository(db)
		findingsRepo = postgresp.NewFindingsRepository(db)
		notifsRepo = postgresp.NewNotificationsRepository(db)
		searcher = postgresp.NewLegislationRepository(db)
	default:
		log.Fatalf("unknown database driver: %s", cfg.Database.Driver)
	}
	defer db.Close()

	// init minio, optional
	var archive domanalysis.Archive
	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		archive = store
	}

	aiClient := openaicli.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model)

	analysisSvc := &appanalysis.Service{
		AI:        aiClient,
		Validator: guardrail.New(),
		Repo:      analysisRepo,
		Findings:  findingsRepo,
		Notifs:    notifsRepo,
		Search:    searcher,
		Archive:   archive,
		Clock:     appanalysis.SystemClock{},
		Logger:    logger,
	}
	chatSvc := &appchat.Service{
		AI:     aiClient,
		Search: searcher,
		Logger: logger,
	}

	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}

	// init router + middleware chain
	mux := chi.NewRouter()
	mux.Use(middleware.RequestLogging(logger))
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	mux.Mount("/", httpserver.NewRouter(analysisSvc, chatSvc, notifsRepo, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // chat streams stay open
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logger.Info("server listening", "addr", addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
