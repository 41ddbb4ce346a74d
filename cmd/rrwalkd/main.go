package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rrwalk/rrwalk/internal/dns/common/clock"
	"github.com/rrwalk/rrwalk/internal/dns/common/log"
	"github.com/rrwalk/rrwalk/internal/dns/config"
	"github.com/rrwalk/rrwalk/internal/dns/gateways/transport"
	"github.com/rrwalk/rrwalk/internal/dns/gateways/wire"
	"github.com/rrwalk/rrwalk/internal/dns/httpapi"
	"github.com/rrwalk/rrwalk/internal/dns/repos/cache"
	"github.com/rrwalk/rrwalk/internal/dns/repos/cache/bolt"
	"github.com/rrwalk/rrwalk/internal/dns/server"
	"github.com/rrwalk/rrwalk/internal/dns/services/resolver"
)

const (
	version = "0.1.0-dev"

	defaultShutdownTimeout = 10 * time.Second
)

// Application holds every long-lived component the daemon runs.
type Application struct {
	config     *config.AppConfig
	engine     *resolver.Engine
	udpServer  *server.UDPServer
	httpServer *http.Server
	store      *bolt.Store
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := log.Configure(cfg.Env, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Info(map[string]any{
		"version":   version,
		"env":       cfg.Env,
		"log_level": cfg.LogLevel,
		"udp_port":  cfg.UDPPort,
		"http_port": cfg.HTTPPort,
	}, "starting rrwalk resolver")

	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err.Error()}, "failed to build application")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info(map[string]any{"signal": sig.String()}, "shutdown signal received")
		cancel()
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err.Error()}, "server failed")
	}

	log.Info(nil, "rrwalk resolver stopped gracefully")
}

// buildApplication wires the repository, gateway, service, and transport
// layers together from the loaded configuration.
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	logger := log.GetLogger()
	clk := clock.RealClock{}

	store, err := bolt.Open(cfg.CacheStorePath, clk, logger)
	if err != nil {
		return nil, fmt.Errorf("open answer cache: %w", err)
	}
	answerCache := cache.New(store, clk, logger)

	codec := wire.NewUDPCodec(logger)
	exchanger := transport.NewUDPExchanger(codec, logger)

	engine := resolver.NewEngine(exchanger, answerCache, logger, resolver.EngineOptions{
		MaxIterations:  cfg.MaxIterations,
		MaxRecursions:  cfg.MaxRecursions,
		MaxQueryTime:   cfg.MaxQueryTime,
		RequestTimeout: cfg.RequestTimeout,
	})

	udpAddr := net.JoinHostPort(cfg.UDPBindAddress, fmt.Sprintf("%d", cfg.UDPPort))
	udpServer := server.NewUDPServer(udpAddr, codec, logger)

	handler := httpapi.NewHandler(engine, exchanger, logger)
	httpAddr := net.JoinHostPort(cfg.HTTPBindAddress, fmt.Sprintf("%d", cfg.HTTPPort))
	httpServer := &http.Server{
		Addr:    httpAddr,
		Handler: handler.Routes(),
	}

	return &Application{
		config:     cfg,
		engine:     engine,
		udpServer:  udpServer,
		httpServer: httpServer,
		store:      store,
	}, nil
}

// Run starts both front ends and blocks until ctx is cancelled, then drains
// each one within the shutdown deadline.
func (app *Application) Run(ctx context.Context) error {
	if err := app.udpServer.Start(ctx, app.engine); err != nil {
		return fmt.Errorf("start udp server: %w", err)
	}

	go func() {
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(map[string]any{"error": err.Error()}, "http server failed")
		}
	}()

	log.Info(map[string]any{
		"udp":  app.udpServer.Address(),
		"http": app.httpServer.Addr,
	}, "rrwalk resolver listening")

	<-ctx.Done()
	log.Info(nil, "shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := app.udpServer.Stop(); err != nil {
		log.Warn(map[string]any{"error": err.Error()}, "error stopping udp server")
	}
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn(map[string]any{"error": err.Error()}, "error stopping http server")
	}
	if err := app.store.Close(); err != nil {
		log.Warn(map[string]any{"error": err.Error()}, "error closing answer cache store")
	}

	return nil
}
