package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/nexafin/sve/internal/engine"
	"github.com/nexafin/sve/internal/logger"
	"github.com/nexafin/sve/internal/state"
	"github.com/nexafin/sve/internal/types"
	"github.com/nexafin/sve/internal/utils"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer exposes the engine's read-only query surface over HTTP. It never
// mutates engine state.
type WebServer struct {
	router *mux.Router
	port   string
	engine *engine.Engine
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, eng *engine.Engine) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		port:   port,
		engine: eng,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/vault/status", ws.handleVaultStatus).Methods("GET")
	api.HandleFunc("/vault/balance/{account}", ws.handleVaultBalance).Methods("GET")
	api.HandleFunc("/pools", ws.handlePools).Methods("GET")
	api.HandleFunc("/pools/{asset}", ws.handlePool).Methods("GET")
	api.HandleFunc("/positions/{account}/{asset}", ws.handlePosition).Methods("GET")
	api.HandleFunc("/receipts", ws.handleReceipts).Methods("GET")

	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Router exposes the configured handler, primarily for tests.
func (ws *WebServer) Router() http.Handler {
	return ws.router
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth reports engine and database health.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
	}

	status := "OK"
	statusCode := http.StatusOK
	if !dbHealthy {
		status = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	vaultStatus := ws.engine.VaultStatus()
	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"component": map[string]interface{}{
			"name":    "sve-settlement-engine",
			"version": "1.0.0",
		},
		"engine": map[string]interface{}{
			"paused":         vaultStatus.Paused,
			"tvl":            vaultStatus.TVL.String(),
			"yield_rate_bps": vaultStatus.YieldRateBps,
		},
		"database_healthy": dbHealthy,
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleVaultStatus returns the pause flag, TVL, share supply and yield rate.
func (ws *WebServer) handleVaultStatus(w http.ResponseWriter, r *http.Request) {
	status := ws.engine.VaultStatus()
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"paused":         status.Paused,
		"tvl":            status.TVL.String(),
		"tvl_display":    utils.DisplayAmount(status.TVL),
		"total_shares":   status.TotalShares.String(),
		"yield_rate_bps": status.YieldRateBps,
	})
}

// handleVaultBalance returns the live redemption value of an account's shares.
func (ws *WebServer) handleVaultBalance(w http.ResponseWriter, r *http.Request) {
	account := types.AccountID(mux.Vars(r)["account"])

	balance := ws.engine.VaultBalanceOf(account)
	response := map[string]interface{}{
		"account":         string(account),
		"balance":         balance.String(),
		"balance_display": utils.DisplayAmount(balance),
	}
	if record, ok := ws.engine.DepositRecordOf(account); ok {
		response["shares"] = record.Shares.String()
		response["deposited"] = record.Amount.String()
		response["last_deposit_at"] = record.LastDepositAt
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handlePools lists every registered pool.
func (ws *WebServer) handlePools(w http.ResponseWriter, r *http.Request) {
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"pools": ws.engine.Pools(),
	})
}

// handlePool returns one pool's reserves, supply and fee rate.
func (ws *WebServer) handlePool(w http.ResponseWriter, r *http.Request) {
	asset := types.AssetID(mux.Vars(r)["asset"])

	info, err := ws.engine.PoolInfo(asset)
	if err != nil {
		if errors.Is(err, engine.ErrPoolNotFound) {
			ws.writeErrorResponse(w, http.StatusNotFound, "Pool not found")
			return
		}
		webLogger.Error().Err(err).Str("asset", string(asset)).Msg("Failed to get pool info")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve pool")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, info)
}

// handlePosition returns an account's liquidity units in one pool.
func (ws *WebServer) handlePosition(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	account := types.AccountID(vars["account"])
	asset := types.AssetID(vars["asset"])

	position := ws.engine.PositionOf(account, asset)
	ws.writeJSONResponse(w, http.StatusOK, types.LiquidityPosition{
		Account:     account,
		PairedAsset: asset,
		Units:       position,
	})
}

// handleReceipts returns recent settlement receipts from the journal.
func (ws *WebServer) handleReceipts(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	receipts, err := state.GetRecentReceipts(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent receipts")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve receipts")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"receipts": receipts,
	})
}

// corsMiddleware allows cross-origin reads of the query API.
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request at debug level.
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		webLogger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

// writeJSONResponse writes a JSON payload with the given status code.
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes a JSON error payload.
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	ws.writeJSONResponse(w, statusCode, map[string]string{"error": message})
}
