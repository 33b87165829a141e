package main

import (
	"time"

	"supplier-payment-backend/internal/config"
	"supplier-payment-backend/internal/logger"
	"supplier-payment-backend/internal/models"
	"supplier-payment-backend/internal/routes"
	"supplier-payment-backend/internal/services/normalize"
	service "supplier-payment-backend/internal/services/reconciliation"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log := logger.New("info", true)
		log.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	if envErr != nil {
		log.Info().Msg("No .env file found, relying on system env")
	}

	threshold := cfg.Reconciliation.ThresholdAmount()
	settings := service.Settings{
		Threshold:    threshold,
		Organization: cfg.Reconciliation.Organization,
		Tolerance:    cfg.Reconciliation.ToleranceAmount(),
		Encoding:     cfg.Reconciliation.InputEncoding,
		Normalize: normalize.Options{
			RequirePeriod:  cfg.Reconciliation.RequirePeriod,
			HeaderScanRows: cfg.Reconciliation.HeaderScanRows,
		},
	}

	db, err := config.InitDB(cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := db.AutoMigrate(
		&models.SupplierRecord{},
		&models.LedgerEntry{},
		&models.ReconciliationPass{},
		&models.RegistryAuditLog{},
	); err != nil {
		log.Fatal().Err(err).Msg("migrate schema")
	}

	r := gin.New()
	r.Use(gin.Recovery(), routes.RequestLogger(log))
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID", "X-Performed-By"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, settings)

	log.Info().
		Str("port", cfg.Server.Port).
		Str("threshold", threshold.String()).
		Msg("supplier payment backend listening")
	if err := r.Run(cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
