package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"drift-observer/src/config"
	"drift-observer/src/driftgw"
	"drift-observer/src/interfaces"
	"drift-observer/src/logger"
	"drift-observer/src/network"
	"drift-observer/src/server"
	"drift-observer/src/session"
	"drift-observer/src/storage"
	"drift-observer/src/store"
	"drift-observer/src/wallet"

	"github.com/mr-tron/base58"
)

// -----------------------------------------------------------------------------
// Manual end-to-end harness: boots a fake gateway, generates a throwaway
// keypair, connects the wallet and walks the trading surface. Useful for
// eyeballing the websocket broadcasts with a browser client.
// -----------------------------------------------------------------------------

const fakeGatewayAddr = "127.0.0.1:9321"

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// 2. Load config and point it at the fake gateway
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	conf.Drift.GatewayURL = "http://" + fakeGatewayAddr
	conf.Drift.GatewayWSURL = "ws://" + fakeGatewayAddr + "/ws"

	// 3. Setup Logger
	appLogger := logger.NewLogger("DEBUG", conf.Name)

	// 4. Fake gateway
	gateway := newFakeGateway(logger.NewLogger("DEBUG", "FakeGateway"))
	go func() {
		if err := gateway.serve(fakeGatewayAddr); err != nil {
			appLogger.Critical("Fake gateway failed: %v", err)
		}
	}()
	time.Sleep(200 * time.Millisecond)

	// 5. Throwaway keypair for the test wallet
	keypairPath, err := writeTestKeypair()
	if err != nil {
		appLogger.Critical("Failed to write test keypair: %v", err)
	}
	defer os.Remove(keypairPath)

	// 6. Components
	var db interfaces.IDatabase
	conf.Storage.DBType = "sqlite"
	conf.Storage.DBPath = filepath.Join(os.TempDir(), "drift-observer-test.db")
	db, err = storage.NewAsyncSQLiteDB(conf.MConfig, logger.NewLogger("DEBUG", "SQLiteDB"))
	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	if err := db.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}
	defer db.Close()

	networkManager := network.NewAsyncNetworkManager(conf.MConfig, logger.NewLogger("DEBUG", "NetworkManager"))

	registry := wallet.NewRegistry()
	registry.Register(wallet.NewKeypairAdapter("TestWallet", keypairPath))

	sessionStore := store.NewSessionStore()
	tradingStore := store.NewTradingSessionStore()
	subStore := store.NewSubaccountStore()

	factory := driftgw.NewSessionFactory(conf, networkManager, appLogger)
	svc := session.NewService(conf, registry, factory, sessionStore, tradingStore, subStore, db, appLogger)

	srv := server.NewDashboardServer(conf.MConfig, svc, appLogger)
	svc.SetExchanger(srv)

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 7. Walk the flow
	ctx := context.Background()

	if err := svc.Connect(ctx, "TestWallet"); err != nil {
		appLogger.Critical("Connect failed: %v", err)
	}

	snapshot := svc.Snapshot("INITIAL")
	appLogger.Info("Connected. Subaccounts: %d, balances: %d", len(snapshot.Subaccounts), len(snapshot.Balances))

	if sig, err := svc.PlaceOrder(ctx, 0, 0, "1.5", "LONG", "LIMIT", "71.50"); err != nil {
		appLogger.Error("PlaceOrder failed: %v", err)
	} else {
		appLogger.Info("PlaceOrder signature: %s", sig)
	}

	if plan, err := svc.PreviewScaledOrders("10", "100", "110", 3); err != nil {
		appLogger.Error("Scaled preview failed: %v", err)
	} else {
		for _, child := range plan {
			appLogger.Info("Scaled child %d: %s @ %s", child.OrderNum, child.Size, child.Price)
		}
	}

	if sig, err := svc.Deposit(ctx, 0, 0, "250"); err != nil {
		appLogger.Error("Deposit failed: %v", err)
	} else {
		appLogger.Info("Deposit signature: %s", sig)
	}

	if txs, err := svc.RecentTransactions(10); err != nil {
		appLogger.Error("RecentTransactions failed: %v", err)
	} else {
		appLogger.Info("Persisted %d transaction(s)", len(txs))
	}

	appLogger.Info("Harness running. Connect a websocket client to ws://%s:%d/ws", conf.Host, conf.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	svc.Disconnect(ctx)
	appLogger.Info("Harness stopped.")
}

// -----------------------------------------------------------------------------

// writeTestKeypair generates an ed25519 keypair and writes the base58 secret
// to a temp file the adapter can load.
func writeTestKeypair() (string, error) {
	_, secret, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", err
	}

	path := filepath.Join(os.TempDir(), "drift-observer-test-keypair.txt")
	if err := os.WriteFile(path, []byte(base58.Encode(secret)), 0600); err != nil {
		return "", err
	}
	return path, nil
}
