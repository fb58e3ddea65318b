package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"medreserve/internal/domain"
	"medreserve/internal/dto"
	apperrors "medreserve/internal/errors"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type InventoryRepository interface {
	FindByExactNameForUpdate(ctx context.Context, tx *sql.Tx, pharmacyID int, name string) (*domain.InventoryItem, error)
	DecrementStock(ctx context.Context, tx *sql.Tx, itemID int, quantity int) (bool, error)
	IncrementStockByName(ctx context.Context, tx *sql.Tx, pharmacyID int, name string, quantity int) (bool, error)
}

type ReservationRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, res domain.Reservation) (uint, error)
	InsertLine(ctx context.Context, tx *sql.Tx, line domain.ReservationLine) (uint, error)
	FindByID(ctx context.Context, id uint) (*domain.Reservation, error)
	FindExpiredPending(ctx context.Context, now time.Time) ([]domain.Reservation, error)
	TransitionStatus(ctx context.Context, tx *sql.Tx, id uint, from, to string) (bool, error)
}

// LedgerService owns the reservation state machine and keeps inventory and
// outstanding pending reservations reconciled: every decrement taken at
// creation is either consumed by pickup or restored by cancel/expiry.
type LedgerService struct {
	db              TransactionManager
	inventoryRepo   InventoryRepository
	reservationRepo ReservationRepository
	logger          *zap.Logger
	txTimeout       time.Duration
	holdDuration    time.Duration
}

func NewLedgerService(
	db TransactionManager,
	inventoryRepo InventoryRepository,
	reservationRepo ReservationRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
	holdDuration time.Duration,
) *LedgerService {
	return &LedgerService{
		db:              db,
		inventoryRepo:   inventoryRepo,
		reservationRepo: reservationRepo,
		logger:          logger,
		txTimeout:       txTimeout,
		holdDuration:    holdDuration,
	}
}

// Reserve decrements stock for every requested item and persists the
// reservation with snapshotted prices, all in one transaction. Precondition
// failures (unknown medicine, short stock) roll the whole transaction back;
// stock is never left decremented without a reservation record.
func (s *LedgerService) Reserve(ctx context.Context, userID, pharmacyID int, items []dto.ReserveItem) (*domain.Reservation, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	// Rollback is a no-op once the transaction has committed.
	defer tx.Rollback()

	now := time.Now().UTC()
	lines := make([]domain.ReservationLine, 0, len(items))
	total := 0.0

	for _, item := range items {
		row, err := s.inventoryRepo.FindByExactNameForUpdate(txCtx, tx, pharmacyID, item.Name)
		if err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				return nil, apperrors.NewUnprocessableError(
					apperrors.CodeMedicineNotFound,
					fmt.Sprintf("%s is not stocked at this pharmacy", item.Name),
				)
			}
			return nil, err
		}

		if row.StockCount < item.Quantity {
			return nil, apperrors.NewUnprocessableError(
				apperrors.CodeInsufficientStock,
				fmt.Sprintf("only %d units of %s available", row.StockCount, item.Name),
			)
		}

		ok, err := s.inventoryRepo.DecrementStock(txCtx, tx, row.ID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Guard failed despite the row lock; treat it like short stock.
			return nil, apperrors.NewUnprocessableError(
				apperrors.CodeInsufficientStock,
				fmt.Sprintf("only %d units of %s available", row.StockCount, item.Name),
			)
		}

		lineTotal := round2(row.PriceINR * float64(item.Quantity))
		lines = append(lines, domain.ReservationLine{
			MedicineName: row.MedicineName,
			Quantity:     item.Quantity,
			UnitPrice:    row.PriceINR,
			LineTotal:    lineTotal,
		})
		total += lineTotal
	}

	res := domain.Reservation{
		UserID:      userID,
		PharmacyID:  pharmacyID,
		Status:      domain.ReservationStatusPending,
		TotalAmount: round2(total),
		PickupCode:  newPickupCode(),
		ExpiresAt:   now.Add(s.holdDuration),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.reservationRepo.Insert(txCtx, tx, res)
	if err != nil {
		return nil, err
	}

	for i := range lines {
		lines[i].ReservationID = id
		if _, err := s.reservationRepo.InsertLine(txCtx, tx, lines[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit reservation", zap.Error(err))
		return nil, err
	}

	res.ID = id
	res.Lines = lines

	s.logger.Info("reservation created",
		zap.Uint("reservationId", id),
		zap.Int("userId", userID),
		zap.Int("pharmacyId", pharmacyID),
		zap.Int("lineCount", len(lines)),
		zap.Float64("totalAmount", res.TotalAmount),
	)

	return &res, nil
}

// ConfirmPickup validates the supplied code against a pending reservation.
// A late attempt triggers the same inventory reversal as expiry and fails.
func (s *LedgerService) ConfirmPickup(ctx context.Context, reservationID uint, suppliedCode string) (float64, error) {
	res, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return 0, err
	}

	if res.IsTerminal() {
		return 0, apperrors.NewConflictError(fmt.Sprintf("reservation is %s", res.Status))
	}

	if res.PickupCode != suppliedCode {
		return 0, apperrors.NewUnprocessableError(apperrors.CodeInvalidCode, "pickup code does not match")
	}

	if res.IsExpired(time.Now().UTC()) {
		if err := s.expireOne(ctx, res); err != nil {
			return 0, err
		}
		return 0, apperrors.NewUnprocessableError(apperrors.CodeExpired, "reservation hold has expired")
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Stock was set aside at creation; pickup consumes it with no further
	// inventory change.
	ok, err := s.reservationRepo.TransitionStatus(txCtx, tx, res.ID, domain.ReservationStatusPending, domain.ReservationStatusPickedUp)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, apperrors.NewConflictError("reservation is no longer pending")
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	s.logger.Info("reservation picked up",
		zap.Uint("reservationId", res.ID),
		zap.Float64("totalPaid", res.TotalAmount),
	)

	return res.TotalAmount, nil
}

// Cancel reverts the reservation's held stock and marks it cancelled. Only
// the reserving user may cancel.
func (s *LedgerService) Cancel(ctx context.Context, reservationID uint, requestingUserID int) error {
	res, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}

	if res.UserID != requestingUserID {
		return apperrors.NewForbiddenError("reservation belongs to another user")
	}

	if res.IsTerminal() {
		return apperrors.NewConflictError(fmt.Sprintf("reservation is %s", res.Status))
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ok, err := s.reservationRepo.TransitionStatus(txCtx, tx, res.ID, domain.ReservationStatusPending, domain.ReservationStatusCancelled)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewConflictError("reservation is no longer pending")
	}

	if err := s.revertLines(txCtx, tx, res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("reservation cancelled", zap.Uint("reservationId", res.ID), zap.Int("userId", requestingUserID))
	return nil
}

// Sweep reverts every pending reservation past its expiry and marks it
// expired, committing all reversions as one batch. It is invoked inline
// before reservation reads and creates rather than on a timer, and running
// it twice in a row changes nothing the second time.
func (s *LedgerService) Sweep(ctx context.Context) error {
	overdue, err := s.reservationRepo.FindExpiredPending(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if len(overdue) == 0 {
		return nil
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	expired := 0
	for i := range overdue {
		res := &overdue[i]
		ok, err := s.reservationRepo.TransitionStatus(txCtx, tx, res.ID, domain.ReservationStatusPending, domain.ReservationStatusExpired)
		if err != nil {
			return err
		}
		if !ok {
			// Another request already settled this reservation.
			continue
		}
		if err := s.revertLines(txCtx, tx, res); err != nil {
			return err
		}
		expired++
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if expired > 0 {
		s.logger.Info("expired reservations swept", zap.Int("count", expired))
	}
	return nil
}

func (s *LedgerService) expireOne(ctx context.Context, res *domain.Reservation) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ok, err := s.reservationRepo.TransitionStatus(txCtx, tx, res.ID, domain.ReservationStatusPending, domain.ReservationStatusExpired)
	if err != nil {
		return err
	}
	if ok {
		if err := s.revertLines(txCtx, tx, res); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// revertLines restores stock for every snapshotted line. A vanished inventory
// row is skipped so one lost line cannot block the whole reversal, but it is
// logged loudly enough to be noticed.
func (s *LedgerService) revertLines(ctx context.Context, tx *sql.Tx, res *domain.Reservation) error {
	for _, line := range res.Lines {
		ok, err := s.inventoryRepo.IncrementStockByName(ctx, tx, res.PharmacyID, line.MedicineName, line.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			s.logger.Warn("inventory row missing during reversal",
				zap.Uint("reservationId", res.ID),
				zap.Int("pharmacyId", res.PharmacyID),
				zap.String("medicine", line.MedicineName),
				zap.Int("quantity", line.Quantity),
			)
		}
	}
	return nil
}

func newPickupCode() string {
	return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
