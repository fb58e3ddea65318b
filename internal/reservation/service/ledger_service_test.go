package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medreserve/internal/domain"
	"medreserve/internal/dto"
	"medreserve/internal/errors"
	pharmacyrepo "medreserve/internal/pharmacy/repository"
	reservationrepo "medreserve/internal/reservation/repository"
	"medreserve/internal/testutil"
)

// Unit Tests

func TestNewPickupCode_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := newPickupCode()
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 32.0, round2(32.0))
	assert.Equal(t, 10.56, round2(10.555))
	assert.Equal(t, 0.1, round2(0.1+0.2-0.2))
}

// Integration Tests

func newTestLedger(t *testing.T, db *sql.DB) *LedgerService {
	t.Helper()
	return NewLedgerService(
		db,
		pharmacyrepo.NewMySQLInventoryRepository(db),
		reservationrepo.NewMySQLReservationRepository(db),
		zap.NewNop(),
		5*time.Second,
		time.Hour,
	)
}

func forceExpired(t *testing.T, db *sql.DB, reservationID uint) {
	t.Helper()
	_, err := db.Exec(
		"UPDATE Reservations SET expiresAt = ? WHERE id = ?",
		time.Now().UTC().Add(-2*time.Hour), reservationID,
	)
	require.NoError(t, err)
}

func TestLedgerService_Reserve_SnapshotsPricesAndDecrementsStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ledger := newTestLedger(t, db)
	pharmacyID := testutil.InsertPharmacy(t, db, "MedPlus", "Hyderabad", 17.4, 78.4)
	doloID := testutil.InsertInventory(t, db, pharmacyID, "Dolo 650", "Paracetamol 650mg", 12, 32.0)
	omezID := testutil.InsertInventory(t, db, pharmacyID, "Omez 20", "Omeprazole 20mg", 8, 65.5)

	res, err := ledger.Reserve(context.Background(), 42, pharmacyID, []dto.ReserveItem{
		{Name: "Dolo 650", Quantity: 3},
		{Name: "Omez 20", Quantity: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ReservationStatusPending, res.Status)
	assert.Len(t, res.PickupCode, 6)
	assert.InDelta(t, 3*32.0+2*65.5, res.TotalAmount, 0.001)

	require.Len(t, res.Lines, 2)
	lineSum := 0.0
	for _, line := range res.Lines {
		lineSum += line.LineTotal
	}
	assert.InDelta(t, res.TotalAmount, lineSum, 0.001)

	assert.Equal(t, 9, testutil.StockCount(t, db, doloID))
	assert.Equal(t, 6, testutil.StockCount(t, db, omezID))
}

func TestLedgerService_Reserve_UnknownMedicineRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ledger := newTestLedger(t, db)
	pharmacyID := testutil.InsertPharmacy(t, db, "MedPlus", "Hyderabad", 17.4, 78.4)
	doloID := testutil.InsertInventory(t, db, pharmacyID, "Dolo 650", "Paracetamol 650mg", 12, 32.0)

	res, err := ledger.Reserve(context.Background(), 42, pharmacyID, []dto.ReserveItem{
		{Name: "Dolo 650", Quantity: 3},
		{Name: "Never Stocked", Quantity: 1},
	})
	assert.Nil(t, res)

	unprocessable, ok := errors.IsUnprocessableError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeMedicineNotFound, unprocessable.Code)

	// The earlier decrement in the same transaction rolled back.
	assert.Equal(t, 12, testutil.StockCount(t, db, doloID))
}

func TestLedgerService_Reserve_InsufficientStockLeavesInventoryUnchanged(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ledger := newTestLedger(t, db)
	pharmacyID := testutil.InsertPharmacy(t, db, "MedPlus", "Hyderabad", 17.4, 78.4)
	doloID := testutil.InsertInventory(t, db, pharmacyID, "Dolo 650", "Paracetamol 650mg", 2, 32.0)

	res, err := ledger.Reserve(context.Background(), 42, pharmacyID, []dto.ReserveItem{
		{Name: "Dolo 650", Quantity: 3},
	})
	assert.Nil(t, res)

	unprocessable, ok := errors.IsUnprocessableError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeInsufficientStock, unprocessable.Code)
	assert.Equal(t, 2, testutil.StockCount(t, db, doloID))
}

func TestLedgerService_ConfirmPickup_CorrectCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ledger := newTestLedger(t, db)
	pharmacyID := testutil.InsertPharmacy(t, db, "MedPlus", "Hyderabad", 17.4, 78.4)
	doloID := testutil.InsertInventory(t, db, pharmacyID, "Dolo 650", "Paracetamol 650mg", 12, 32.0)

	res, err := ledger.Reserve(context.Background(), 42, pharmacyID, []dto.ReserveItem{
		{Name: "Dolo 650", Quantity: 3},
	})
	require.NoError(t, err)

	totalPaid, err := ledger.ConfirmPickup(context.Background(), res.ID, res.PickupCode)
	require.NoError(t, err)
	assert.InDelta(t, 96.0, totalPaid, 0.001)

	// Pickup consumes the held stock without restoring it.
	assert.Equal(t, 9, testutil.StockCount(t, db, doloID))

	stored, err := reservationrepo.NewMySQLReservationRepository(db).FindByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusPickedUp, stored.Status)
}

func TestLedgerService_ConfirmPickup_WrongCodeKeepsPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ledger := newTestLedger(t, db)
	pharmacyID := testutil.InsertPharmacy(t, db, "MedPlus", "Hyderabad", 17.4, 78.4)
	testutil.InsertInventory(t, db, pharmacyID, "Dolo 650", "Paracetamol 650mg", 12, 32.0)

	res, err := ledger.Reserve(context.Background(), 42, pharmacyID, []dto.ReserveItem{
		{Name: "Dolo 650", Quantity: 3},
	})
	require.NoError(t, err)

	wrongCode := "000000"
	if res.PickupCode == wrongCode {
		wrongCode = "999999"
	}

	_, err = ledger.ConfirmPickup(context.Background(), res.ID, wrongCode)
	unprocessable, ok := errors.IsUnprocessableError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeInvalidCode, unprocessable.Code)

	stored, err := reservationrepo.NewMySQLReservationRepository(db).FindByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusPending, stored.Status)
}

func TestLedgerService_ConfirmPickup_LateAttemptExpiresAndRestoresStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ledger := newTestLedger(t, db)
	pharmacyID := testutil.InsertPharmacy(t, db, "MedPlus", "Hyderabad", 17.4, 78.4)
	doloID := testutil.InsertInventory(t, db, pharmacyID, "Dolo 650", "Paracetamol 650mg", 12, 32.0)

	res, err := ledger.Reserve(context.Background(), 42, pharmacyID, []dto.ReserveItem{
		{Name: "Dolo 650", Quantity: 3},
	})
	require.NoError(t, err)
	forceExpired(t, db, res.ID)

	_, err = ledger.ConfirmPickup(context.Background(), res.ID, res.PickupCode)
	unprocessable, ok := errors.IsUnprocessableError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeExpired, unprocessable.Code)

	assert.Equal(t, 12, testutil.StockCount(t, db, doloID))

	stored, err := reservationrepo.NewMySQLReservationRepository(db).FindByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusExpired, stored.Status)
}

func TestLedgerService_ConfirmPickup_TerminalReservationConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ledger := newTestLedger(t, db)
	pharmacyID := testutil.InsertPharmacy(t, db, "MedPlus", "Hyderabad", 17.4, 78.4)
	testutil.InsertInventory(t, db, pharmacyID, "Dolo 650", "Paracetamol 650mg", 12, 32.0)

	res, err := ledger.Reserve(context.Background(), 42, pharmacyID, []dto.ReserveItem{
		{Name: "Dolo 650", Quantity: 3},
	})
	require.NoError(t, err)

	_, err = ledger.ConfirmPickup(context.Background(), res.ID, res.PickupCode)
	require.NoError(t, err)

	_, err = ledger.ConfirmPickup(context.Background(), res.ID, res.PickupCode)
	_, ok := errors.IsConflictError(err)
	assert.True(t, ok)
}

func TestLedgerService_Cancel_RestoresStockExactly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ledger := newTestLedger(t, db)
	pharmacyID := testutil.InsertPharmacy(t, db, "MedPlus", "Hyderabad", 17.4, 78.4)
	doloID := testutil.InsertInventory(t, db, pharmacyID, "Dolo 650", "Paracetamol 650mg", 12, 32.0)
	omezID := testutil.InsertInventory(t, db, pharmacyID, "Omez 20", "Omeprazole 20mg", 8, 65.5)

	res, err := ledger.Reserve(context.Background(), 42, pharmacyID, []dto.ReserveItem{
		{Name: "Dolo 650", Quantity: 3},
		{Name: "Omez 20", Quantity: 2},
	})
	require.NoError(t, err)

	require.NoError(t, ledger.Cancel(context.Background(), res.ID, 42))

	assert.Equal(t, 12, testutil.StockCount(t, db, doloID))
	assert.Equal(t, 8, testutil.StockCount(t, db, omezID))

	stored, err := reservationrepo.NewMySQLReservationRepository(db).FindByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusCancelled, stored.Status)
}

func TestLedgerService_Cancel_OtherUserForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ledger := newTestLedger(t, db)
	pharmacyID := testutil.InsertPharmacy(t, db, "MedPlus", "Hyderabad", 17.4, 78.4)
	doloID := testutil.InsertInventory(t, db, pharmacyID, "Dolo 650", "Paracetamol 650mg", 12, 32.0)

	res, err := ledger.Reserve(context.Background(), 42, pharmacyID, []dto.ReserveItem{
		{Name: "Dolo 650", Quantity: 3},
	})
	require.NoError(t, err)

	err = ledger.Cancel(context.Background(), res.ID, 77)
	_, ok := errors.IsForbiddenError(err)
	assert.True(t, ok)

	// Nothing reverted.
	assert.Equal(t, 9, testutil.StockCount(t, db, doloID))
}

func TestLedgerService_Cancel_AlreadyCancelledConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ledger := newTestLedger(t, db)
	pharmacyID := testutil.InsertPharmacy(t, db, "MedPlus", "Hyderabad", 17.4, 78.4)
	doloID := testutil.InsertInventory(t, db, pharmacyID, "Dolo 650", "Paracetamol 650mg", 12, 32.0)

	res, err := ledger.Reserve(context.Background(), 42, pharmacyID, []dto.ReserveItem{
		{Name: "Dolo 650", Quantity: 3},
	})
	require.NoError(t, err)
	require.NoError(t, ledger.Cancel(context.Background(), res.ID, 42))

	err = ledger.Cancel(context.Background(), res.ID, 42)
	_, ok := errors.IsConflictError(err)
	assert.True(t, ok)

	// The second cancel must not restore stock twice.
	assert.Equal(t, 12, testutil.StockCount(t, db, doloID))
}

func TestLedgerService_Sweep_ExpiresOverdueAndIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ledger := newTestLedger(t, db)
	pharmacyID := testutil.InsertPharmacy(t, db, "MedPlus", "Hyderabad", 17.4, 78.4)
	doloID := testutil.InsertInventory(t, db, pharmacyID, "Dolo 650", "Paracetamol 650mg", 12, 32.0)
	omezID := testutil.InsertInventory(t, db, pharmacyID, "Omez 20", "Omeprazole 20mg", 8, 65.5)

	overdue, err := ledger.Reserve(context.Background(), 42, pharmacyID, []dto.ReserveItem{
		{Name: "Dolo 650", Quantity: 3},
	})
	require.NoError(t, err)
	forceExpired(t, db, overdue.ID)

	fresh, err := ledger.Reserve(context.Background(), 42, pharmacyID, []dto.ReserveItem{
		{Name: "Omez 20", Quantity: 2},
	})
	require.NoError(t, err)

	require.NoError(t, ledger.Sweep(context.Background()))

	assert.Equal(t, 12, testutil.StockCount(t, db, doloID))
	assert.Equal(t, 6, testutil.StockCount(t, db, omezID))

	repo := reservationrepo.NewMySQLReservationRepository(db)
	stored, err := repo.FindByID(context.Background(), overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusExpired, stored.Status)

	untouched, err := repo.FindByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusPending, untouched.Status)

	// Second sweep sees nothing overdue and changes nothing.
	require.NoError(t, ledger.Sweep(context.Background()))
	assert.Equal(t, 12, testutil.StockCount(t, db, doloID))
	assert.Equal(t, 6, testutil.StockCount(t, db, omezID))
}
