package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"token-service/internal/audit"
	"token-service/internal/config"
	"token-service/internal/http"
	"token-service/internal/http/handler"
	"token-service/internal/manager"
	"token-service/internal/repository"
	"token-service/internal/repository/cache"
	"token-service/internal/repository/file"
	"token-service/internal/repository/memory"
	"token-service/internal/repository/postgres"
	"token-service/internal/repository/s3"
	"token-service/internal/validator"
	"token-service/pkg/metrics"

	"github.com/joho/godotenv"
)

const (
	envFilePath      = ".env"
	serverAddrPrefix = ":"
	signalBufferSize = 1
	logOutputFlags   = log.LstdFlags | log.Lshortfile
)

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

// tokenBackend is the provider the manager reads plus whatever must be
// released on shutdown.
type tokenBackend struct {
	provider repository.TokenProvider
	auditDB  postgres.Querier
	closers  []func()
}

func (b *tokenBackend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func main() {
	if err := godotenv.Load(envFilePath); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(logOutputFlags)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Configuration loaded successfully (token source: %s)", cfg.Tokens.Source)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	backend, err := newTokenBackend(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize token source: %v", err)
	}
	defer backend.Close()

	var auditLogger *audit.Logger
	if cfg.Audit.Enabled && backend.auditDB != nil {
		auditLogger = audit.NewLogger(postgres.NewAuditRepository(backend.auditDB))
		log.Println("Audit events persisted to permission_checks")
	} else {
		auditLogger = audit.NewLogger(audit.NewWriterSink(os.Stdout))
	}
	// Runs before backend.Close so pending audit writes still have a pool.
	defer auditLogger.Close()

	m := metrics.New()
	permissionHandler := handler.NewPermissionHandler(
		validator.NewPermissionValidator(),
		manager.NewTokenAccessManager(backend.provider),
		auditLogger,
		m,
	)

	server := http.NewServer(&http.ServerDependencies{
		Config:            cfg,
		PermissionHandler: permissionHandler,
		Metrics:           m,
	})

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := server.Start(serverAddrPrefix + cfg.Server.Port); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, signalBufferSize)
	signal.Notify(quit, shutdownSignals...)
	<-quit

	log.Println("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		return
	}

	log.Println("Server exited gracefully")
}

func newTokenBackend(ctx context.Context, cfg *config.Config) (*tokenBackend, error) {
	switch cfg.Tokens.Source {
	case config.TokenSourcePostgres:
		db, err := postgres.New(&cfg.Database)
		if err != nil {
			return nil, err
		}
		log.Println("Database connection established")

		var provider repository.TokenProvider = postgres.NewTokenRepository(db.Pool)
		if cfg.Tokens.CacheTTL > 0 {
			provider = cache.New(provider, cfg.Tokens.CacheTTL)
			log.Printf("Caching token lookups for %s", cfg.Tokens.CacheTTL)
		}
		return &tokenBackend{
			provider: provider,
			auditDB:  db.Pool,
			closers:  []func(){db.Close},
		}, nil

	case config.TokenSourceS3:
		client, err := s3.NewClient(&cfg.AWS, cfg.Tokens.S3Bucket, cfg.Tokens.S3Key)
		if err != nil {
			return nil, err
		}
		store := memory.New(nil)
		refresher := memory.NewRefresher(client, store, cfg.Tokens.RefreshInterval)
		if err := refresher.Refresh(ctx); err != nil {
			return nil, err
		}
		log.Printf("Loaded %d tokens from s3://%s/%s", store.Len(), cfg.Tokens.S3Bucket, cfg.Tokens.S3Key)
		go refresher.Run(ctx)
		return &tokenBackend{provider: store}, nil

	default:
		store, err := file.NewProvider(cfg.Tokens.File)
		if err != nil {
			return nil, err
		}
		log.Printf("Loaded %d tokens from %s", store.Len(), cfg.Tokens.File)

		backend := &tokenBackend{provider: store}
		if cfg.Tokens.WatchFile {
			watcher, err := file.NewWatcher(cfg.Tokens.File, store)
			if err != nil {
				return nil, err
			}
			go watcher.Run(ctx)
			backend.closers = append(backend.closers, func() { watcher.Close() })
			log.Printf("Watching %s for changes", cfg.Tokens.File)
		}
		return backend, nil
	}
}
