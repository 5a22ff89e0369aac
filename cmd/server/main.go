package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"khakhra/backend/internal/config"
	"khakhra/backend/internal/domain"
	"khakhra/backend/internal/httpapi"
	"khakhra/backend/internal/service"
	"khakhra/backend/internal/snapshot"
	"khakhra/backend/internal/store"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger(cfg)

	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var port snapshot.Store
	closers := make([]func() error, 0, 2)

	switch {
	case cfg.DatabaseURL != "":
		pg, err := snapshot.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start without it", err)
		}
		port = pg
		closers = append(closers, pg.Close)
		log.Info("snapshot store: postgres")
	case cfg.RedisAddr != "":
		rs := snapshot.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rs.Ping(ctx); err != nil {
			log.Fatalf("redis unavailable (%v) and REDIS_ADDR is set; refusing to start without it", err)
		}
		port = rs
		closers = append(closers, rs.Close)
		log.Info("snapshot store: redis")
	default:
		port = snapshot.NewFileStore(cfg.SnapshotPath)
		log.Info("snapshot store: file")
	}

	st := store.New(ctx, port, log)
	svc := service.New(st)
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, seedAccounts(cfg))
	api := httpapi.New(svc, auth, cfg.AllowedOrigin, log)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infof("dashboard backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Warnf("close error: %v", err)
		}
	}

	log.Info("server stopped")
}

// seedAccounts maps the three dashboard roles onto login accounts. A role
// with no configured password gets no account.
func seedAccounts(cfg config.Config) []domain.UserAccount {
	accounts := make([]domain.UserAccount, 0, 3)
	if cfg.AdminPassword != "" {
		accounts = append(accounts, domain.UserAccount{Username: "admin", Password: cfg.AdminPassword, Role: string(domain.RoleAdmin), Active: true})
	}
	if cfg.StaffPassword != "" {
		accounts = append(accounts, domain.UserAccount{Username: "staff", Password: cfg.StaffPassword, Role: string(domain.RoleStaff), Active: true})
	}
	if cfg.AccountantPassword != "" {
		accounts = append(accounts, domain.UserAccount{Username: "accountant", Password: cfg.AccountantPassword, Role: string(domain.RoleAccountant), Active: true})
	}
	return accounts
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.AdminPassword == "" && cfg.StaffPassword == "" && cfg.AccountantPassword == "" {
		return fmt.Errorf("at least one of ADMIN_PASSWORD, STAFF_PASSWORD, ACCOUNTANT_PASSWORD must be set")
	}
	return nil
}
