package pharmacy

import (
	"database/sql"

	"go.uber.org/zap"

	"medreserve/internal/config"
	"medreserve/internal/pharmacy/controller"
	"medreserve/internal/pharmacy/repository"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.PharmacyController {
	pharmacyRepo := repository.NewMySQLPharmacyRepository(db)
	inventoryRepo := repository.NewMySQLInventoryRepository(db)

	return controller.NewPharmacyController(pharmacyRepo, inventoryRepo, cfg.Search.DefaultCity, logger)
}
