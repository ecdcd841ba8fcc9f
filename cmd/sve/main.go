package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nexafin/sve/internal/config"
	"github.com/nexafin/sve/internal/engine"
	"github.com/nexafin/sve/internal/logger"
	"github.com/nexafin/sve/internal/state"
	"github.com/nexafin/sve/internal/token"
	"github.com/nexafin/sve/internal/types"
	"github.com/nexafin/sve/internal/web"
)

const SNAPSHOT_INTERVAL = 5 * time.Minute

// main is the entry point for the SVE settlement engine.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("SVE Settlement Engine Starting...")

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database connection (settlement journal)
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// --- 2. Asset Bank & Engine ---
	bank := token.NewBank()
	if supplyStr := os.Getenv("SVE_GENESIS_SUPPLY"); supplyStr != "" {
		supply, ok := sdkmath.NewIntFromString(supplyStr)
		if !ok || !supply.IsPositive() {
			log.Fatal().Str("value", supplyStr).Msg("SVE_GENESIS_SUPPLY must be a positive integer")
		}
		if err := bank.Mint(types.AssetID(config.BaseAsset), types.AccountID(config.AdminAccount), supply); err != nil {
			log.Fatal().Err(err).Msg("Failed to mint genesis supply")
		}
		log.Info().Str("supply", supply.String()).Msg("Genesis supply minted to admin account")
	}

	eng, err := engine.New(engine.Config{
		Bank:         bank,
		Journal:      state.Journal{},
		BaseAsset:    types.AssetID(config.BaseAsset),
		Admin:        types.AccountID(config.AdminAccount),
		Custody:      types.AccountID(config.CustodyAccount),
		MinDeposit:   sdkmath.NewIntFromUint64(config.MinDeposit),
		VaultFeeBps:  config.VaultFeeBps,
		PoolFeeBps:   config.PoolFeeBps,
		YieldRateBps: config.YieldRateBps,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize settlement engine")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- 3. Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}
	webServer := web.NewWebServer(webPort, eng)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting SVE query API")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 4. gRPC Health Endpoint ---
	grpcPort := os.Getenv("GRPC_HEALTH_PORT")
	if grpcPort == "" {
		grpcPort = "9090"
	}
	listener, err := net.Listen("tcp", ":"+grpcPort)
	if err != nil {
		log.Fatal().Err(err).Str("port", grpcPort).Msg("Failed to bind gRPC health listener")
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	go func() {
		log.Info().Str("port", grpcPort).Msg("Starting gRPC health endpoint")
		if err := grpcServer.Serve(listener); err != nil {
			log.Error().Err(err).Msg("gRPC health server stopped")
		}
	}()

	// --- 5. Yield Distribution Loop ---
	if config.YieldIntervalMinutes > 0 {
		yieldCaller := types.AccountID(os.Getenv("SVE_YIELD_CALLER"))
		if yieldCaller == "" {
			yieldCaller = types.AccountID(config.AdminAccount)
		}
		if _, err := eng.AddAuthorizedCaller(types.AccountID(config.AdminAccount), yieldCaller); err != nil {
			log.Fatal().Err(err).Msg("Failed to authorize yield caller")
		}
		interval := time.Duration(config.YieldIntervalMinutes) * time.Minute
		go eng.RunYieldLoop(ctx, interval, yieldCaller)
	} else {
		log.Info().Msg("Yield loop disabled (SVE_YIELD_INTERVAL_MINUTES=0)")
	}

	// --- 6. Periodic Vault Snapshots ---
	go func() {
		ticker := time.NewTicker(SNAPSHOT_INTERVAL)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := state.SaveVaultSnapshot(eng.VaultStatus()); err != nil {
					log.Error().Err(err).Msg("Failed to save vault snapshot")
				}
			}
		}
	}()

	// --- 7. Wait for shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

	cancel()
	grpcServer.GracefulStop()
	log.Info().Msg("SVE Settlement Engine stopped.")
}

// mustAtoi parses an integer environment value with a fallback default.
func mustAtoi(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
