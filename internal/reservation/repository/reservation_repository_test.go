package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medreserve/internal/domain"
	"medreserve/internal/errors"
	"medreserve/internal/testutil"
)

// Unit Tests

func TestNewMySQLReservationRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLReservationRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration Tests

func insertReservation(t *testing.T, db *sql.DB, repo *MySQLReservationRepository, pharmacyID, userID int, status string, expiresAt time.Time) uint {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	id, err := repo.Insert(context.Background(), tx, domain.Reservation{
		UserID:      userID,
		PharmacyID:  pharmacyID,
		Status:      status,
		TotalAmount: 96.0,
		PickupCode:  "482913",
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)

	_, err = repo.InsertLine(context.Background(), tx, domain.ReservationLine{
		ReservationID: id,
		MedicineName:  "Dolo 650",
		Quantity:      3,
		UnitPrice:     32.0,
		LineTotal:     96.0,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	return id
}

func TestReservationRepository_InsertAndFindByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLReservationRepository(db)
	pharmacyID := testutil.InsertPharmacy(t, db, "MedPlus", "Hyderabad", 17.4, 78.4)
	expiresAt := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

	id := insertReservation(t, db, repo, pharmacyID, 42, domain.ReservationStatusPending, expiresAt)

	res, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, res.ID)
	assert.Equal(t, 42, res.UserID)
	assert.Equal(t, pharmacyID, res.PharmacyID)
	assert.Equal(t, "MedPlus", res.PharmacyName)
	assert.Equal(t, domain.ReservationStatusPending, res.Status)
	assert.Equal(t, "482913", res.PickupCode)
	assert.InDelta(t, 96.0, res.TotalAmount, 0.001)

	require.Len(t, res.Lines, 1)
	assert.Equal(t, "Dolo 650", res.Lines[0].MedicineName)
	assert.Equal(t, 3, res.Lines[0].Quantity)
	assert.InDelta(t, 32.0, res.Lines[0].UnitPrice, 0.001)
	assert.InDelta(t, 96.0, res.Lines[0].LineTotal, 0.001)
}

func TestReservationRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLReservationRepository(db)

	res, err := repo.FindByID(context.Background(), 99999)
	assert.Error(t, err)
	assert.Nil(t, res)

	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestReservationRepository_FindByUser_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLReservationRepository(db)
	pharmacyID := testutil.InsertPharmacy(t, db, "MedPlus", "Hyderabad", 17.4, 78.4)
	expiresAt := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

	firstID := insertReservation(t, db, repo, pharmacyID, 42, domain.ReservationStatusPending, expiresAt)

	// Nudge the second reservation later so ordering is deterministic.
	secondID := insertReservation(t, db, repo, pharmacyID, 42, domain.ReservationStatusPending, expiresAt)
	_, err := db.Exec("UPDATE Reservations SET createdAt = createdAt + INTERVAL 5 SECOND WHERE id = ?", secondID)
	require.NoError(t, err)

	insertReservation(t, db, repo, pharmacyID, 77, domain.ReservationStatusPending, expiresAt)

	reservations, err := repo.FindByUser(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, reservations, 2)
	assert.Equal(t, secondID, reservations[0].ID)
	assert.Equal(t, firstID, reservations[1].ID)
}

func TestReservationRepository_FindExpiredPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLReservationRepository(db)
	pharmacyID := testutil.InsertPharmacy(t, db, "MedPlus", "Hyderabad", 17.4, 78.4)
	now := time.Now().UTC().Truncate(time.Second)

	expiredID := insertReservation(t, db, repo, pharmacyID, 42, domain.ReservationStatusPending, now.Add(-time.Hour))
	insertReservation(t, db, repo, pharmacyID, 42, domain.ReservationStatusPending, now.Add(time.Hour))
	insertReservation(t, db, repo, pharmacyID, 42, domain.ReservationStatusCancelled, now.Add(-time.Hour))

	expired, err := repo.FindExpiredPending(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, expiredID, expired[0].ID)
	require.Len(t, expired[0].Lines, 1)
	assert.Equal(t, "Dolo 650", expired[0].Lines[0].MedicineName)
}

func TestReservationRepository_TransitionStatus_GuardsSourceStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLReservationRepository(db)
	pharmacyID := testutil.InsertPharmacy(t, db, "MedPlus", "Hyderabad", 17.4, 78.4)
	expiresAt := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

	id := insertReservation(t, db, repo, pharmacyID, 42, domain.ReservationStatusPending, expiresAt)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	ok, err := repo.TransitionStatus(context.Background(), tx, id, domain.ReservationStatusPending, domain.ReservationStatusExpired)
	require.NoError(t, err)
	assert.True(t, ok)

	// A second attempt from the same source status must report no effect.
	ok, err = repo.TransitionStatus(context.Background(), tx, id, domain.ReservationStatusPending, domain.ReservationStatusCancelled)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, tx.Commit())

	res, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusExpired, res.Status)
}
