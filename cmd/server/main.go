package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	sqliteInfra "github.com/fastygo/taskboard/internal/infrastructure/sqlite"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/internal/services"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/internal/web"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/pkg/password"
	"github.com/fastygo/taskboard/pkg/sessiontoken"
	"github.com/fastygo/taskboard/repository"
	boltRepo "github.com/fastygo/taskboard/repository/bolt"
	"github.com/fastygo/taskboard/repository/postgres"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
	sqliteRepo "github.com/fastygo/taskboard/repository/sqlite"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

type stores struct {
	users repository.UserRepository
	tasks repository.TaskRepository
	ping  monitor.Pinger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger = zapLogger.With(zap.String("app", cfg.AppName), zap.String("env", cfg.Environment))

	manager := lifecycle.New(context.Background(), cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen()
	appCtx := manager.Context()

	db := openDatabase(appCtx, cfg, manager, zapLogger)
	sessions := openSessions(appCtx, cfg, manager, zapLogger)

	mon := monitor.New(map[string]monitor.Pinger{
		"database": db.ping,
		"sessions": sessions,
	}, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	signer, err := sessiontoken.NewSigner(cfg.Session.Secret, cfg.Session.Issuer)
	if err != nil {
		zapLogger.Fatal("session signer failed", zap.Error(err))
	}
	hasher := password.NewHasher(cfg.Security.BcryptCost)

	authUseCase := authUC.New(db.users, sessions, hasher, signer, cfg.Session.TTL, zapLogger)
	taskUseCase := taskUC.New(db.tasks, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	pages := web.NewRenderer()
	cookie := apiHandler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, pages, cookie, ctxAdapter, zapLogger),
		Page:   apiHandler.NewPageHandler(authUseCase, pages, ctxAdapter, zapLogger),
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	sessionAuth := middleware.NewSessionAuth(authUseCase, cfg.Session.CookieName, cfg.Context.RequestTimeout, zapLogger)
	r := router.New(handlers, router.Guards{Page: sessionAuth.Page, API: sessionAuth.API})

	server := &fasthttp.Server{
		Handler:      middleware.AccessLog(zapLogger)(r.Handler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	manager.Go("http_server", func() error {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		return server.ListenAndServe(cfg.Address())
	})
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	if err := manager.Wait(); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
	if err := manager.Err(); err != nil {
		zapLogger.Fatal("server stopped with error", zap.Error(err))
	}
}

func openDatabase(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, zapLogger *zap.Logger) stores {
	driver, _ := cfg.DatabaseDriver()

	switch driver {
	case config.DriverSQLite:
		path := cfg.SQLitePath()
		if cfg.Migrations.Enabled {
			if err := sqliteInfra.RunMigrations(path, zapLogger); err != nil {
				zapLogger.Fatal("migrations failed", zap.Error(err))
			}
		}
		sqlDB, err := sqliteInfra.Open(ctx, path, zapLogger)
		if err != nil {
			zapLogger.Fatal("sqlite open failed", zap.Error(err))
		}
		manager.Register("sqlite", func(context.Context) error {
			return sqlDB.Close()
		})
		return stores{
			users: sqliteRepo.NewUserRepository(sqlDB),
			tasks: sqliteRepo.NewTaskRepository(sqlDB),
			ping:  monitor.PingFunc(sqlDB.PingContext),
		}

	default:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, cfg.AppName, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		return stores{
			users: postgres.NewUserRepository(pool),
			tasks: postgres.NewTaskRepository(pool),
			ping:  pool,
		}
	}
}

func openSessions(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, zapLogger *zap.Logger) repository.SessionRepository {
	if cfg.Session.Backend == config.SessionBackendBolt {
		store, err := boltRepo.Open(cfg.Session.BoltPath, cfg.Session.TTL)
		if err != nil {
			zapLogger.Fatal("failed to open session store", zap.Error(err))
		}
		manager.Register("session_store", func(context.Context) error {
			return store.Close()
		})

		sweeper := services.NewSessionSweeper(store, cfg.Session.SweepInterval, zapLogger)
		if _, err := sweeper.Sweep(ctx); err != nil {
			zapLogger.Warn("initial session sweep failed", zap.Error(err))
		}
		sweeper.Start()
		manager.Register("session_sweeper", func(ctx context.Context) error {
			sweeper.Stop(ctx)
			return nil
		})
		return store
	}

	redisClient, err := redisInfra.NewClient(ctx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(context.Context) error {
		return redisClient.Close()
	})
	return redisRepo.NewSessionStore(redisClient, cfg.Session.TTL)
}
