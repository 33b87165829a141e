package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	handler "supplier-payment-backend/internal/handlers"
	"supplier-payment-backend/internal/repository"
	service "supplier-payment-backend/internal/services/reconciliation"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, settings service.Settings) {
	supplierRepo := repository.NewSupplierRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	passRepo := repository.NewPassRepository(db)

	reconService := service.NewService(
		supplierRepo,
		ledgerRepo,
		passRepo,
		settings,
	)

	Mount(r, reconService)
}

// Mount wires the API onto r for an already constructed service.
func Mount(r *gin.Engine, reconService *service.Service) {
	reconHandler := handler.NewReconciliationHandler(reconService)
	registryHandler := handler.NewRegistryHandler(reconService)
	ledgerHandler := handler.NewLedgerHandler(reconService)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Reconciliation passes
	passes := api.Group("/passes")
	passes.POST("", reconHandler.Upload)
	passes.GET("", reconHandler.ListPasses)
	passes.GET("/:passId", reconHandler.GetPass)
	passes.GET("/:passId/files/:bucket", reconHandler.DownloadFile)
	passes.POST("/:passId/commit-ledger", reconHandler.CommitLedger)

	// Supplier registry
	registry := api.Group("/registry")
	registry.GET("", registryHandler.List)
	registry.GET("/search", registryHandler.Search)
	registry.GET("/export", registryHandler.Export)
	registry.POST("/upload", registryHandler.Upload)

	// Ledger
	ledger := api.Group("/ledger")
	{
		ledger.GET("", ledgerHandler.Export)
		ledger.PUT("", ledgerHandler.Replace)
		ledger.GET("/stats", ledgerHandler.Stats)
	}
}
