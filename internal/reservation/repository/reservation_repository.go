package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"medreserve/internal/domain"
	"medreserve/internal/errors"
)

type MySQLReservationRepository struct {
	db *sql.DB
}

func NewMySQLReservationRepository(db *sql.DB) *MySQLReservationRepository {
	return &MySQLReservationRepository{db: db}
}

func (r *MySQLReservationRepository) Insert(ctx context.Context, tx *sql.Tx, res domain.Reservation) (uint, error) {
	query := `
		INSERT INTO Reservations (userId, pharmacyId, status, totalAmount, pickupCode, expiresAt, createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		res.UserID, res.PharmacyID, res.Status, res.TotalAmount,
		res.PickupCode, res.ExpiresAt, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting reservation: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

func (r *MySQLReservationRepository) InsertLine(ctx context.Context, tx *sql.Tx, line domain.ReservationLine) (uint, error) {
	query := `
		INSERT INTO ReservationItems (reservationId, medicineName, quantity, unitPrice, lineTotal)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		line.ReservationID, line.MedicineName, line.Quantity, line.UnitPrice, line.LineTotal,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting reservation line: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

func (r *MySQLReservationRepository) FindByID(ctx context.Context, id uint) (*domain.Reservation, error) {
	query := `
		SELECT r.id, r.userId, r.pharmacyId, p.name, r.status, r.totalAmount,
		       r.pickupCode, r.expiresAt, r.createdAt, r.updatedAt
		FROM Reservations r
		JOIN Pharmacy p ON p.id = r.pharmacyId
		WHERE r.id = ?
	`

	var res domain.Reservation
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&res.ID, &res.UserID, &res.PharmacyID, &res.PharmacyName, &res.Status,
		&res.TotalAmount, &res.PickupCode, &res.ExpiresAt, &res.CreatedAt, &res.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("reservation with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying reservation by id: %w", err)
	}

	if err := r.loadLines(ctx, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

func (r *MySQLReservationRepository) FindByUser(ctx context.Context, userID int) ([]domain.Reservation, error) {
	query := `
		SELECT r.id, r.userId, r.pharmacyId, p.name, r.status, r.totalAmount,
		       r.pickupCode, r.expiresAt, r.createdAt, r.updatedAt
		FROM Reservations r
		JOIN Pharmacy p ON p.id = r.pharmacyId
		WHERE r.userId = ?
		ORDER BY r.createdAt DESC
	`

	return r.queryReservations(ctx, query, userID)
}

func (r *MySQLReservationRepository) FindExpiredPending(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	query := `
		SELECT r.id, r.userId, r.pharmacyId, p.name, r.status, r.totalAmount,
		       r.pickupCode, r.expiresAt, r.createdAt, r.updatedAt
		FROM Reservations r
		JOIN Pharmacy p ON p.id = r.pharmacyId
		WHERE r.status = ?
		  AND r.expiresAt < ?
	`

	return r.queryReservations(ctx, query, domain.ReservationStatusPending, now)
}

// TransitionStatus moves a reservation from one status to another and stamps
// the update time. It reports false when the reservation was not in the
// expected source status, which keeps concurrent sweeps idempotent.
func (r *MySQLReservationRepository) TransitionStatus(ctx context.Context, tx *sql.Tx, id uint, from, to string) (bool, error) {
	query := `UPDATE Reservations SET status = ?, updatedAt = NOW() WHERE id = ? AND status = ?`

	result, err := tx.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, fmt.Errorf("updating reservation status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *MySQLReservationRepository) queryReservations(ctx context.Context, query string, args ...interface{}) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reservations: %w", err)
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		err := rows.Scan(
			&res.ID, &res.UserID, &res.PharmacyID, &res.PharmacyName, &res.Status,
			&res.TotalAmount, &res.PickupCode, &res.ExpiresAt, &res.CreatedAt, &res.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reservation rows: %w", err)
	}

	for i := range reservations {
		if err := r.loadLines(ctx, &reservations[i]); err != nil {
			return nil, err
		}
	}

	return reservations, nil
}

func (r *MySQLReservationRepository) loadLines(ctx context.Context, res *domain.Reservation) error {
	query := `
		SELECT id, reservationId, medicineName, quantity, unitPrice, lineTotal
		FROM ReservationItems
		WHERE reservationId = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, res.ID)
	if err != nil {
		return fmt.Errorf("querying reservation lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.ReservationLine
		err := rows.Scan(
			&line.ID, &line.ReservationID, &line.MedicineName,
			&line.Quantity, &line.UnitPrice, &line.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("scanning reservation line: %w", err)
		}
		res.Lines = append(res.Lines, line)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating reservation lines: %w", err)
	}

	return nil
}
