package main

import (
	"net/http"
	"os"
	"time"

	"pet-census/internal/adapters/auth/jwtauth"
	pg "pet-census/internal/adapters/storage/postgres"
	"pet-census/internal/platform/config"
	"pet-census/internal/platform/logger"
	"pet-census/internal/router"
)

// @title Pet Census API
// @version 1.0
// @description Backend del censo de tenencia de animales domésticos.
// @BasePath /
func main() {
	cfg := config.Load()
	log := logger.NewFromEnv()

	opts := router.Options{Log: log}

	// Sin JWT_SECRET el servicio corre en modo dev: claims por headers
	// X-Debug-* y login con token vacío.
	if cfg.JWTSecret != "" {
		signer := jwtauth.New(jwtauth.Config{
			Secret: cfg.JWTSecret,
			Issuer: cfg.JWTIssuer,
			TTL:    cfg.JWTTTL,
		})
		opts.AuthVerifier = signer
		opts.TokenIssuer = signer
	}

	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			log.Error("postgres connection failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		defer db.Close()
		opts.DB = db
	} else {
		log.Warn("DB_DSN not set, using in-memory storage", nil)
	}

	addr := ":" + cfg.Port

	srv := &http.Server{
		Addr:         addr,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
