package reservation

import (
	"database/sql"

	"go.uber.org/zap"

	"medreserve/internal/config"
	pharmacyrepo "medreserve/internal/pharmacy/repository"
	"medreserve/internal/reservation/controller"
	reservationrepo "medreserve/internal/reservation/repository"
	"medreserve/internal/reservation/service"
	"medreserve/internal/reservation/usecase"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.ReservationController {
	pharmacyRepo := pharmacyrepo.NewMySQLPharmacyRepository(db)
	inventoryRepo := pharmacyrepo.NewMySQLInventoryRepository(db)
	reservationRepo := reservationrepo.NewMySQLReservationRepository(db)

	ledger := service.NewLedgerService(
		db,
		inventoryRepo,
		reservationRepo,
		logger,
		cfg.Reservation.TxTimeout,
		cfg.Reservation.HoldDuration,
	)

	uc := usecase.NewReservationUseCase(
		pharmacyRepo,
		reservationRepo,
		ledger,
		logger,
		cfg.Reservation.MaxRetryAttempts,
	)

	return controller.NewReservationController(uc, logger)
}
