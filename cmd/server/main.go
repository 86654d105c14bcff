package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/grouptab/grouptab/internal/auth"
	"github.com/grouptab/grouptab/internal/config"
	"github.com/grouptab/grouptab/internal/httpapi"
	"github.com/grouptab/grouptab/internal/identity"
	"github.com/grouptab/grouptab/internal/middleware"
	"github.com/grouptab/grouptab/internal/service"
	"github.com/grouptab/grouptab/internal/storage/sqlite"
	"github.com/grouptab/grouptab/pkg/logging"
)

func main() {
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.SQLiteDBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)
	resolver := identity.NewResolver(store)
	tabs := service.NewTabService(store, identity.NewTokenMinter(nil))

	mux := http.NewServeMux()
	api := httpapi.NewServer(tabs, resolver, authenticator, jwtManager)
	api.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := middleware.Metrics(mux)(middleware.Logging(mux))

	// HTTP/2 without TLS, for clients and proxies that speak h2c.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := ":" + cfg.Port
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
