package server

import (
	"fmt"
	"strings"
	"sync"

	"drift-observer/src/logger"
	"drift-observer/src/models"
	"drift-observer/src/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	Service *session.Service
	engine  *gin.Engine

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MSnapshot // Strongly typed and Buffered Queue
	register   chan *Client
	unregister chan *Client

	// Local cache
	latestState *models.MSnapshot
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, svc *session.Service, logger *logger.Logger) *DashboardServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:  cfg,
		Logger:  logger,
		Service: svc,
		engine:  gin.Default(),
		clients: make(map[*Client]struct{}),
		// Buffered channel to prevent lock/blocking
		// Queue size of 256 ensures we can handle bursts of updates
		broadcast:  make(chan *models.MSnapshot, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
	s.latestState = svc.Snapshot("INITIAL")

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Tag every request so submissions can be traced through the logs.
	s.engine.Use(func(c *gin.Context) {
		requestID := c.Request.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/session", s.getSession)
	s.engine.GET("/api/wallets", s.getWallets)
	s.engine.GET("/api/subaccounts", s.getSubaccounts)
	s.engine.GET("/api/subaccounts/:id/balances", s.getBalances)
	s.engine.GET("/api/subaccounts/:id/positions", s.getPositions)
	s.engine.GET("/api/subaccounts/:id/orders", s.getOrders)
	s.engine.GET("/api/transactions", s.getTransactions)

	s.engine.POST("/api/session/connect", s.postConnect)
	s.engine.POST("/api/session/lookup", s.postLookup)
	s.engine.POST("/api/session/disconnect", s.postDisconnect)
	s.engine.POST("/api/subaccounts/select", s.postSelectSubaccount)
	s.engine.POST("/api/orders", s.postOrder)
	s.engine.POST("/api/orders/tpsl", s.postTpSl)
	s.engine.POST("/api/orders/scaled/preview", s.postScaledPreview)
	s.engine.POST("/api/orders/scaled", s.postScaledOrders)
	s.engine.POST("/api/deposit", s.postDeposit)
	s.engine.POST("/api/withdraw", s.postWithdraw)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop() error {
	// Clean shutdown
	close(s.broadcast)
	close(s.register)
	close(s.unregister)
	return nil
}

// -----------------------------------------------------------------------------
// Read Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	timestamp := int64(0)
	if s.latestState != nil {
		timestamp = s.latestState.Timestamp
	}
	s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"status":        "ok",
		"connections":   connections,
		"latest_update": timestamp,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getConfig(c *gin.Context) {
	c.JSON(200, gin.H{
		"env":             s.Config.Drift.Env,
		"wallet_adapters": s.Service.WalletNames(),
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getSession(c *gin.Context) {
	snapshot := s.Service.Snapshot("INITIAL")
	c.JSON(200, snapshot.Session)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getWallets(c *gin.Context) {
	c.JSON(200, gin.H{"wallets": s.Service.WalletNames()})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getSubaccounts(c *gin.Context) {
	snapshot := s.Service.Snapshot("INITIAL")
	c.JSON(200, gin.H{
		"subaccounts":    snapshot.Subaccounts,
		"selected_index": snapshot.SelectedIndex,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getBalances(c *gin.Context) {
	subaccountID, err := parseSubaccountID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	balances, err := s.Service.BalancesFor(subaccountID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"balances": balances})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getPositions(c *gin.Context) {
	subaccountID, err := parseSubaccountID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	positions, err := s.Service.PositionsFor(subaccountID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"positions": positions})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getOrders(c *gin.Context) {
	subaccountID, err := parseSubaccountID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	openOrders, err := s.Service.OrdersFor(subaccountID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"orders": openOrders})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getTransactions(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 50)

	transactions, err := s.Service.RecentTransactions(limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"transactions": transactions})
}

// -----------------------------------------------------------------------------
// Session Handlers
// -----------------------------------------------------------------------------

type connectRequest struct {
	Wallet string `json:"wallet" binding:"required"`
}

func (s *DashboardServer) postConnect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := s.Service.Connect(c.Request.Context(), req.Wallet); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(200, s.Service.Snapshot("INITIAL").Session)
}

// -----------------------------------------------------------------------------

type lookupRequest struct {
	Address string `json:"address" binding:"required"`
}

func (s *DashboardServer) postLookup(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := s.Service.Lookup(c.Request.Context(), req.Address); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(200, s.Service.Snapshot("INITIAL").Session)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postDisconnect(c *gin.Context) {
	if err := s.Service.Disconnect(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "disconnected"})
}

// -----------------------------------------------------------------------------

type selectRequest struct {
	Index *int `json:"index" binding:"required"`
}

func (s *DashboardServer) postSelectSubaccount(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := s.Service.SelectSubaccount(c.Request.Context(), *req.Index); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"selected_index": *req.Index})
}

// -----------------------------------------------------------------------------
// Trading Handlers
// -----------------------------------------------------------------------------

type orderRequest struct {
	SubAccountID uint16 `json:"sub_account_id"`
	MarketIndex  int    `json:"market_index"`
	Size         string `json:"size" binding:"required"`
	Direction    string `json:"direction" binding:"required"`
	OrderType    string `json:"order_type" binding:"required"`
	Price        string `json:"price"`
}

func (s *DashboardServer) postOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	txSig, err := s.Service.PlaceOrder(c.Request.Context(), req.SubAccountID, req.MarketIndex, req.Size, req.Direction, req.OrderType, req.Price)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"signature": txSig})
}

// -----------------------------------------------------------------------------

type tpSlRequest struct {
	SubAccountID      uint16 `json:"sub_account_id"`
	MarketIndex       int    `json:"market_index"`
	Size              string `json:"size" binding:"required"`
	PositionDirection string `json:"position_direction" binding:"required"`
	TakeProfitPrice   string `json:"take_profit_price"`
	StopLossPrice     string `json:"stop_loss_price"`
}

func (s *DashboardServer) postTpSl(c *gin.Context) {
	var req tpSlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	signatures, err := s.Service.PlaceTpSl(c.Request.Context(), req.SubAccountID, req.MarketIndex, req.Size, req.PositionDirection, req.TakeProfitPrice, req.StopLossPrice)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"signatures": signatures})
}

// -----------------------------------------------------------------------------

type scaledRequest struct {
	SubAccountID uint16 `json:"sub_account_id"`
	MarketIndex  int    `json:"market_index"`
	Direction    string `json:"direction"`
	TotalSize    string `json:"total_size" binding:"required"`
	StartPrice   string `json:"start_price" binding:"required"`
	EndPrice     string `json:"end_price" binding:"required"`
	Count        int    `json:"count" binding:"required"`
}

func (s *DashboardServer) postScaledPreview(c *gin.Context) {
	var req scaledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	plan, err := s.Service.PreviewScaledOrders(req.TotalSize, req.StartPrice, req.EndPrice, req.Count)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"orders": plan})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postScaledOrders(c *gin.Context) {
	var req scaledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	txSig, err := s.Service.PlaceScaledOrders(c.Request.Context(), req.SubAccountID, req.MarketIndex, req.Direction, req.TotalSize, req.StartPrice, req.EndPrice, req.Count)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"signature": txSig})
}

// -----------------------------------------------------------------------------

type collateralRequest struct {
	SubAccountID uint16 `json:"sub_account_id"`
	MarketIndex  int    `json:"market_index"`
	Amount       string `json:"amount" binding:"required"`
}

func (s *DashboardServer) postDeposit(c *gin.Context) {
	var req collateralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	txSig, err := s.Service.Deposit(c.Request.Context(), req.SubAccountID, req.MarketIndex, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"signature": txSig})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postWithdraw(c *gin.Context) {
	var req collateralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	txSig, err := s.Service.Withdraw(c.Request.Context(), req.SubAccountID, req.MarketIndex, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"signature": txSig})
}
