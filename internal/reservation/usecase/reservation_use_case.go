package usecase

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"medreserve/internal/domain"
	"medreserve/internal/dto"
	apperrors "medreserve/internal/errors"
)

type LedgerService interface {
	Reserve(ctx context.Context, userID, pharmacyID int, items []dto.ReserveItem) (*domain.Reservation, error)
	ConfirmPickup(ctx context.Context, reservationID uint, suppliedCode string) (float64, error)
	Cancel(ctx context.Context, reservationID uint, requestingUserID int) error
	Sweep(ctx context.Context) error
}

type PharmacyRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Pharmacy, error)
}

type ReservationRepository interface {
	FindByUser(ctx context.Context, userID int) ([]domain.Reservation, error)
}

type ReservationUseCase struct {
	pharmacyRepo     PharmacyRepository
	reservationRepo  ReservationRepository
	ledger           LedgerService
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewReservationUseCase(
	pharmacyRepo PharmacyRepository,
	reservationRepo ReservationRepository,
	ledger LedgerService,
	logger *zap.Logger,
	maxRetryAttempts int,
) *ReservationUseCase {
	return &ReservationUseCase{
		pharmacyRepo:     pharmacyRepo,
		reservationRepo:  reservationRepo,
		ledger:           ledger,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *ReservationUseCase) CreateReservation(ctx context.Context, userID, pharmacyID int, items []dto.ReserveItem) (*dto.ReserveResponse, error) {
	uc.logger.Info("reservation requested",
		zap.Int("userId", userID),
		zap.Int("pharmacyId", pharmacyID),
		zap.Int("itemCount", len(items)),
	)

	// Settle overdue holds before taking new stock.
	if err := uc.ledger.Sweep(ctx); err != nil {
		return nil, err
	}

	pharmacy, err := uc.pharmacyRepo.FindByID(ctx, pharmacyID)
	if err != nil {
		return nil, err
	}

	// Lock inventory rows in a stable order to avoid deadlocks between
	// concurrent reservations.
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	res, err := uc.reserveWithRetry(ctx, userID, pharmacyID, items)
	if err != nil {
		return nil, err
	}

	return &dto.ReserveResponse{
		ReservationID: res.ID,
		PickupCode:    res.PickupCode,
		ExpiresAt:     res.ExpiresAt,
		TotalAmount:   res.TotalAmount,
		PharmacyName:  pharmacy.Name,
	}, nil
}

func (uc *ReservationUseCase) ConfirmPickup(ctx context.Context, reservationID uint, suppliedCode string) (*dto.PickupResponse, error) {
	totalPaid, err := uc.ledger.ConfirmPickup(ctx, reservationID, suppliedCode)
	if err != nil {
		return nil, err
	}

	return &dto.PickupResponse{Success: true, TotalPaid: totalPaid}, nil
}

func (uc *ReservationUseCase) CancelReservation(ctx context.Context, reservationID uint, requestingUserID int) (*dto.CancelResponse, error) {
	if err := uc.ledger.Cancel(ctx, reservationID, requestingUserID); err != nil {
		return nil, err
	}

	return &dto.CancelResponse{Success: true, Message: "reservation cancelled"}, nil
}

func (uc *ReservationUseCase) ListReservations(ctx context.Context, userID int) (*dto.ReservationListResponse, error) {
	if err := uc.ledger.Sweep(ctx); err != nil {
		return nil, err
	}

	reservations, err := uc.reservationRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.ReservationSummary, 0, len(reservations))
	for _, res := range reservations {
		medicines := make([]dto.ReservationLineDTO, 0, len(res.Lines))
		for _, line := range res.Lines {
			medicines = append(medicines, dto.ReservationLineDTO{
				Name:      line.MedicineName,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				LineTotal: line.LineTotal,
			})
		}

		summary := dto.ReservationSummary{
			ReservationID: res.ID,
			PharmacyID:    res.PharmacyID,
			PharmacyName:  res.PharmacyName,
			Status:        res.Status,
			TotalAmount:   res.TotalAmount,
			ExpiresAt:     res.ExpiresAt,
			CreatedAt:     res.CreatedAt,
			Medicines:     medicines,
		}
		// The pickup code is only useful, and only disclosed, while the
		// reservation can still be collected.
		if res.Status == domain.ReservationStatusPending {
			summary.PickupCode = res.PickupCode
		}
		summaries = append(summaries, summary)
	}

	return &dto.ReservationListResponse{Success: true, Reservations: summaries}, nil
}

func (uc *ReservationUseCase) reserveWithRetry(ctx context.Context, userID, pharmacyID int, items []dto.ReserveItem) (*domain.Reservation, error) {
	maxAttempts := uc.maxRetryAttempts
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err := uc.ledger.Reserve(ctx, userID, pharmacyID, items)
		if err == nil {
			return res, nil
		}

		if isDeadlockError(err) {
			if attempt < maxAttempts {
				backoff := backoffs[(attempt-1)%len(backoffs)]
				jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
				time.Sleep(jitter)
				uc.logger.Warn("deadlock detected, retrying",
					zap.Int("attempt", attempt),
					zap.Int("maxAttempts", maxAttempts),
					zap.Int("pharmacyId", pharmacyID),
				)
				continue
			}
			break
		}

		return nil, err
	}

	return nil, apperrors.NewDeadlockError("max retries exceeded")
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}
