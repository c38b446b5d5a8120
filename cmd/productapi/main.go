package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"productapi/internal/config"
	"productapi/internal/http/handlers"
	applog "productapi/internal/log"
	"productapi/internal/repos"
	"productapi/internal/services"
)

func main() {
	logger := applog.Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("config.load")
	}

	// Optional file logging
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			logger.WithError(err).WithField("file", cfg.LogFile).Warn("log.file.open")
		} else {
			defer f.Close()
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	applog.Configure(out, cfg.LogLevel)

	logger.WithFields(map[string]any{
		"env":       cfg.Env,
		"port":      cfg.Port,
		"db_driver": cfg.DBDriver,
		"log_file":  cfg.LogFile,
	}).Info("config.loaded")
	if cfg.EphemeralSecret {
		logger.Warn("auth.secret.ephemeral: JWT_SECRET_KEY not set, tokens will not survive a restart")
	}

	store, err := repos.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.WithError(err).Fatal("db.open")
	}
	defer func() { _ = store.Close() }()

	// Auth wiring: SQL backends keep the accounts in the users table
	var creds services.CredentialChecker
	if store.Users != nil {
		if err := services.SeedAccounts(context.Background(), store.Users, bcrypt.DefaultCost, services.DefaultAccounts()...); err != nil {
			logger.WithError(err).Fatal("auth.seed")
		}
		creds, err = services.NewStoredCredentials(store.Users, bcrypt.DefaultCost)
	} else {
		creds, err = services.NewStaticCredentials(bcrypt.DefaultCost, services.DefaultAccounts()...)
	}
	if err != nil {
		logger.WithError(err).Fatal("auth.credentials")
	}
	authSvc := services.NewAuthService(creds, services.NewTokenService(cfg.JWT))

	app := handlers.NewApp(cfg, handlers.NewDeps(store.Products, authSvc))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.WithError(err).Error("server.listen")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("server.shutdown")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.WithError(err).Error("server.shutdown")
	}
}
