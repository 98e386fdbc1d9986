package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/parisxmas/oxikpi/internal/config"
	"github.com/parisxmas/oxikpi/internal/db"
	"github.com/parisxmas/oxikpi/internal/handler"
	"github.com/parisxmas/oxikpi/internal/logging"
	"github.com/parisxmas/oxikpi/internal/repository"
	"github.com/parisxmas/oxikpi/internal/repository/memory"
	"github.com/parisxmas/oxikpi/internal/router"
	"github.com/parisxmas/oxikpi/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, flush, err := logging.New(cfg.LogLevel, cfg.GelfAddr, "oxikpi")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer flush()
	if cfg.GelfAddr != "" {
		log.Info("GELF logging enabled", zap.String("addr", cfg.GelfAddr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	var stores service.Stores
	var setup func(ctx context.Context, auth *service.AuthService)
	switch cfg.Store {
	case config.StoreMemory:
		stores = memory.New()
		log.Warn("using in-memory store, data is lost on restart")
		setup = func(ctx context.Context, auth *service.AuthService) {
			if err := auth.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPass); err != nil {
				log.Warn("failed to seed admin", zap.Error(err))
			}
		}
	default:
		pool, err := db.NewPool(ctx, cfg.OxiDBAddr(), db.Options{Size: cfg.PoolSize}, log)
		if err != nil {
			log.Fatal("failed to connect to OxiDB", zap.Error(err))
		}
		defer pool.Close()
		log.Info("connected to OxiDB", zap.String("addr", cfg.OxiDBAddr()), zap.Int("pool_size", pool.Size()))
		stores = repository.New(pool).Stores()
		setup = func(ctx context.Context, _ *service.AuthService) { backgroundInit(ctx, cfg, pool, log) }
	}

	// Services
	authSvc := service.NewAuthService(stores.Users, cfg.JWTSecret)
	formSvc := service.NewFormService(stores.Forms, stores.Assigned)
	deptSvc := service.NewDepartmentService(stores.Departments, stores.Users, stores.Assigned)
	assignSvc := service.NewAssignmentService(stores.Assigned, stores.Forms, stores.Departments)
	dataSvc := service.NewKPIDataService(stores.Assigned, stores.Forms)
	reviewSvc := service.NewReviewService(stores.Assigned)
	subSvc := service.NewSubmissionService(stores.Submissions, stores.Forms)
	docSvc := service.NewDocumentService(stores.Documents)
	draftSvc := service.NewDraftService(dataSvc, log)
	dashSvc := service.NewDashboardService(stores)

	// Router
	r := router.New(router.Options{
		JWTSecret:      cfg.JWTSecret,
		RequestTimeout: cfg.RequestTimeout,
		Log:            log,
	}, router.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Dashboard:   handler.NewDashboardHandler(dashSvc),
		Forms:       handler.NewFormHandler(formSvc),
		Submissions: handler.NewSubmissionHandler(subSvc),
		Departments: handler.NewDepartmentHandler(deptSvc),
		Assignments: handler.NewAssignmentHandler(assignSvc),
		KPI:         handler.NewKPIHandler(dataSvc, reviewSvc),
		Drafts:      handler.NewDraftHandler(draftSvc),
		Documents:   handler.NewDocumentHandler(docSvc),
	})

	// Start HTTP server immediately; indexes and the admin account are set up
	// in the background.
	go setup(ctx, authSvc)
	go draftSvc.RunJanitor(ctx, time.Minute, cfg.DraftTTL)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
	}()

	log.Info("OxiKPI server starting", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.Store))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", zap.Error(err))
	}
}

// backgroundInit creates indexes and seeds the admin on a DEDICATED
// connection so index builds don't block the HTTP handler pool.
func backgroundInit(ctx context.Context, cfg *config.Config, pool *db.Pool, log *zap.Logger) {
	log = log.Named("init")
	log.Info("starting")
	initPool, err := db.NewPool(ctx, cfg.OxiDBAddr(), db.Options{Size: 1}, log)
	if err != nil {
		log.Warn("init pool connect failed, using main pool", zap.Error(err))
		initPool = pool
	}
	defer func() {
		if initPool != pool {
			initPool.Close()
		}
	}()

	repo := repository.New(initPool)
	start := time.Now()
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Warn("index creation failed", zap.Error(err))
	} else {
		log.Info("indexes ready", zap.Duration("took", time.Since(start).Round(time.Millisecond)))
	}

	// Seed admin (needs the unique email index)
	auth := service.NewAuthService(repo.Stores().Users, cfg.JWTSecret)
	if err := auth.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPass); err != nil {
		log.Warn("failed to seed admin", zap.Error(err))
		return
	}
	log.Info("all done")
}
