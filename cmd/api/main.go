package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"leadsyncflow.app/internal/auth"
	"leadsyncflow.app/internal/config"
	"leadsyncflow.app/internal/httpapi"
	"leadsyncflow.app/internal/imagestore"
	"leadsyncflow.app/internal/obs"
)

var version = "1.0.0"

const sweepInterval = time.Hour

func main() {
	obs.Init()
	obs.InitBuildInfo(version)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Postgres when a DSN is configured; in-memory store otherwise so the
	// service stays runnable for local development.
	var (
		db    *sql.DB
		store auth.Store
	)
	if cfg.PGDSN != "" {
		db, err = sql.Open("pgx", cfg.PGDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		store = auth.NewPGStore(db)
	} else {
		obs.LogEvent("store_fallback", map[string]any{"store": "memory"})
		store = auth.NewInMemory()
	}

	images, err := imagestore.NewLocal(cfg.UploadDir, cfg.PublicBaseURL, cfg.MaxImageBytes)
	if err != nil {
		log.Fatalf("imagestore: %v", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, auth.WithTokenTTL(cfg.TokenTTL))
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	svc := auth.NewService(store, tokens,
		auth.WithImageStore(images),
		auth.WithAllowedDomain(cfg.AllowedEmailDomain),
		auth.WithBcryptCost(cfg.BcryptCost),
	)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	action, err := svc.EnsureSuperAdmin(bootCtx, auth.BootstrapConfig{
		Name:     cfg.SuperAdminName,
		Email:    cfg.SuperAdminEmail,
		Password: cfg.SuperAdminPassword,
	})
	bootCancel()
	if err != nil {
		log.Fatalf("bootstrap super admin: %v", err)
	}
	obs.LogEvent("bootstrap_super_admin", map[string]any{"action": action})

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, svc,
		httpapi.WithUploadDir(cfg.UploadDir))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Background sweep for expired pending accounts and stale revocations.
	// Reads filter both at query time, so the sweep only reclaims space.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				pending, revoked, err := svc.Sweep(sweepCtx)
				if err != nil {
					obs.LogEvent("sweep_failed", map[string]any{"error": err.Error()})
					continue
				}
				obs.LogEvent("sweep", map[string]any{
					"pending_purged": pending,
					"revoked_purged": revoked,
				})
			}
		}
	}()

	log.Printf("Starting leadsyncflow-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
