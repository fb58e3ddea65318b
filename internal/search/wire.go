package search

import (
	"database/sql"

	"go.uber.org/zap"

	"medreserve/internal/config"
	pharmacyrepo "medreserve/internal/pharmacy/repository"
	"medreserve/internal/search/controller"
	"medreserve/internal/search/service"
	"medreserve/internal/search/usecase"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.SearchController {
	pharmacyRepo := pharmacyrepo.NewMySQLPharmacyRepository(db)
	inventoryRepo := pharmacyrepo.NewMySQLInventoryRepository(db)

	svc := service.NewSearchService(pharmacyRepo, inventoryRepo, cfg.Search.ResultLimit, logger)
	searchUC := usecase.NewSearchUseCase(svc)
	recommendUC := usecase.NewRecommendationsUseCase(
		searchUC,
		cfg.Search.DefaultLatitude,
		cfg.Search.DefaultLongitude,
		cfg.Search.MaxDistanceKm,
	)

	return controller.NewSearchController(searchUC, recommendUC, cfg.Search, logger)
}
