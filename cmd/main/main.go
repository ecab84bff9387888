package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"stock-dashboard/src/config"
	"stock-dashboard/src/dashboard"
	datasource "stock-dashboard/src/data_source"
	"stock-dashboard/src/generator"
	"stock-dashboard/src/grpc_control"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/network"
	"stock-dashboard/src/orchestrator"
	"stock-dashboard/src/server"
	"stock-dashboard/src/storage"
	"stock-dashboard/src/store"
	"stock-dashboard/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file (+ .env and environment overrides)
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.MConfig, cfg.Name)

	// 1. Storage
	db, err := storage.NewDatabase(cfg.MConfig, logger.NewLogger(cfg.MConfig, "Storage"))
	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
		os.Exit(1)
	}
	if err := db.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	// 2. Store with persisted preferences
	st := store.New(db, logger.NewLogger(cfg.MConfig, "Store"))
	st.UseDefaultTheme(cfg.Dashboard.DefaultTheme)
	if err := st.LoadPreferences(); err != nil {
		appLogger.Warning("Could not load preferences: %v", err)
	}

	// 3. Quote providers
	netMgr := network.NewAsyncNetworkManager(cfg.MConfig, logger.NewLogger(cfg.MConfig, "Network"))
	sources, err := datasource.NewMultiSourceManagerFromConfig(cfg.MConfig, netMgr, logger.NewLogger(cfg.MConfig, "DataSource"))
	if err != nil {
		appLogger.Critical("Failed to build data sources: %v", err)
		os.Exit(1)
	}

	gen := generator.New()
	clock := utils.NewMarketClock(cfg.Dashboard.Symbols, logger.NewLogger(cfg.MConfig, "MarketClock"))

	// 4. Server first: it is the toast notifier for everything below
	srv := server.NewDashboardServer(cfg.MConfig, logger.NewLogger(cfg.MConfig, "Server"))

	orch := orchestrator.NewOrchestrator(cfg.MConfig, sources, gen, st)
	orch.Recorder = db
	orch.Notifier = srv

	ctl := dashboard.NewController(st, orch, gen, clock, srv)
	srv.SetController(ctl)

	// 5. Startup refresh + timer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Fetching initial data...")
	if err := orch.Start(ctx); err != nil {
		appLogger.Critical("Failed to start refresh loop: %v", err)
		os.Exit(1)
	}

	// 6. HTTP + WebSocket
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 7. gRPC Control Server
	if cfg.GrpcPort > 0 {
		addr := fmt.Sprintf("%s:%d", cfg.GrpcHost, cfg.GrpcPort)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			appLogger.Critical("failed to listen for gRPC: %v", err)
			os.Exit(1)
		}
		control := grpc_control.NewControlService(ctl, sources, logger.NewLogger(cfg.MConfig, "ControlService"))
		go func() {
			if err := control.Serve(ctx, lis); err != nil {
				appLogger.Error("gRPC server failed: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	orch.Stop()
	cancel()
	if err := srv.Stop(); err != nil {
		appLogger.Error("Server shutdown: %v", err)
	}
	appLogger.Info("Shutdown complete")
}
