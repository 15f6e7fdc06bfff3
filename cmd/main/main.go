package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drift-observer/src/config"
	"drift-observer/src/driftgw"
	"drift-observer/src/grpc_control"
	"drift-observer/src/interfaces"
	"drift-observer/src/logger"
	"drift-observer/src/network"
	"drift-observer/src/server"
	"drift-observer/src/session"
	"drift-observer/src/storage"
	"drift-observer/src/store"
	"drift-observer/src/wallet"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name)

	// 2. Setup Storage
	var db interfaces.IDatabase

	switch config.Storage.DBType {
	case "postgres":
		db, err = storage.NewPostgresDB(config.MConfig, appLogger)
	default:
		// Default to SQLite
		db, err = storage.NewAsyncSQLiteDB(config.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	if err := db.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}

	// 3. Setup Network
	var networkManager interfaces.INetworkManager = network.NewAsyncNetworkManager(config.MConfig, appLogger)

	// 4. Wallet adapters
	registry := wallet.NewRegistry()
	for _, adapterCfg := range config.Wallet.Adapters {
		registry.Register(wallet.NewKeypairAdapter(adapterCfg.Name, adapterCfg.KeypairPath))
	}
	if len(registry.Names()) == 0 {
		appLogger.Warning("No wallet adapters configured, lookup mode only")
	}

	// 5. Stores
	sessionStore := store.NewSessionStore()
	tradingStore := store.NewTradingSessionStore()
	subStore := store.NewSubaccountStore()

	// 6. Session service wired to the Drift gateway
	factory := driftgw.NewSessionFactory(config, networkManager, appLogger)
	svc := session.NewService(config, registry, factory, sessionStore, tradingStore, subStore, db, appLogger)

	// 7. Dashboard server (REST + websocket push)
	srv := server.NewDashboardServer(config.MConfig, svc, appLogger)
	svc.SetExchanger(srv)

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	// 8. gRPC health control plane
	control := grpc_control.NewControlService(config.MConfig, tradingStore, appLogger)
	svc.SetSessionHook(control.RefreshStatus)
	if config.GrpcPort > 0 {
		go func() {
			if err := control.Start(); err != nil {
				appLogger.Error("gRPC control failed: %v", err)
			}
		}()
	}

	// 9. Periodic retention cleanup
	cleanupTicker := time.NewTicker(6 * time.Hour)
	defer cleanupTicker.Stop()
	go func() {
		for range cleanupTicker.C {
			if err := db.CleanupOldData(); err != nil {
				appLogger.Error("Cleanup failed: %v", err)
			}
		}
	}()

	appLogger.Info("Initialization complete.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	control.Stop()
	srv.Stop()
	if err := db.Close(); err != nil {
		appLogger.Error("DB close failed: %v", err)
	}
}
