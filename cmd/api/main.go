package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Elite-tch/privacycart/internal/client"
	"github.com/Elite-tch/privacycart/internal/config"
	"github.com/Elite-tch/privacycart/internal/repository"
	"github.com/Elite-tch/privacycart/internal/sequencer"
	"github.com/Elite-tch/privacycart/internal/server"
	"github.com/Elite-tch/privacycart/internal/service"
	"github.com/Elite-tch/privacycart/internal/session"
	"github.com/Elite-tch/privacycart/internal/telemetry"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger, err := telemetry.NewLogger(cfg.Log, cfg.Tracing.ServiceName)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Tracing, cfg.Environment.Name)
	if err != nil {
		logger.Fatalf("init tracer: %v", err)
	}

	db, err := client.InitDBClient(cfg.Database, cfg.Log.Level == "debug")
	if err != nil {
		logger.Fatalf("init database: %v", err)
	}

	productRepo := repository.NewProductRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	agentRepo := repository.NewAgentRepository(db)

	if cfg.Database.Seed {
		if err := productRepo.Seed(ctx); err != nil {
			logger.Fatalf("seed catalog: %v", err)
		}
		if err := agentRepo.Seed(ctx); err != nil {
			logger.Fatalf("seed agents: %v", err)
		}
		if err := receiptRepo.Seed(ctx); err != nil {
			logger.Fatalf("seed vault history: %v", err)
		}
	}

	catalogService := service.NewCatalogService(productRepo)
	vaultService := service.NewVaultService(receiptRepo, agentRepo, logger)

	settings, err := service.LoadSessionSettings(ctx, catalogService, cfg.Simulation)
	if err != nil {
		logger.Fatalf("load session settings: %v", err)
	}

	sessions := session.NewManager(settings, sequencer.System, cfg.Simulation.SessionTTL, logger)
	sessions.OnSettled(vaultService.SettlementHandler())
	go sessions.Run(ctx)

	shopService := service.NewShopService(catalogService, sessions)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(catalogService, shopService, vaultService, logger, cfg.Tracing.ServiceName)

	logger.Infoj(log.JSON{"msg": "starting HTTP server", "addr": serverAddr, "environment": cfg.Environment.Name})
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("Signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
	}

	stop()
	sessions.CloseAll()

	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Errorf("tracer shutdown error: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
