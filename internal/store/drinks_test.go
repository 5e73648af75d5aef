package store

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/halflife/internal/engine"
	"github.com/lazypower/halflife/internal/intake"
)

var (
	_ intake.Backend         = (*DB)(nil)
	_ engine.SettingsBackend = (*DB)(nil)
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleDrinks() []intake.Drink {
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	return []intake.Drink{
		{ID: uuid.New(), Name: "coffee", VolumeMl: 240, CaffeineMg: 95, ConsumedAt: base},
		{ID: uuid.New(), Name: "cola", VolumeMl: 355, CaffeineMg: 33.28125, ConsumedAt: base.Add(3*time.Hour + 17*time.Minute + 250*time.Millisecond)},
		// out of chronological order on purpose: insertion order wins
		{ID: uuid.New(), Name: "tea", VolumeMl: 120, CaffeineMg: 23.5, ConsumedAt: base.Add(-30 * time.Minute)},
	}
}

func TestDrinksRoundTrip(t *testing.T) {
	db := testDB(t)
	want := sampleDrinks()

	require.NoError(t, db.SaveDrinks(want))
	got, err := db.LoadDrinks()
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadDrinks mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveDrinksRewritesWholesale(t *testing.T) {
	db := testDB(t)
	drinks := sampleDrinks()
	require.NoError(t, db.SaveDrinks(drinks))

	require.NoError(t, db.SaveDrinks(drinks[2:]))

	got, err := db.LoadDrinks()
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(drinks[2:], got))

	n, err := db.CountDrinks()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLoadDrinksEmpty(t *testing.T) {
	db := testDB(t)

	got, err := db.LoadDrinks()

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveDrinksEmptyClears(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.SaveDrinks(sampleDrinks()))

	require.NoError(t, db.SaveDrinks(nil))

	n, err := db.CountDrinks()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStoreBackedByDBSurvivesReopen(t *testing.T) {
	db := testDB(t)
	first := intake.NewStore(db, nil)
	coffee, err := first.Append(intake.Drink{Name: "coffee", VolumeMl: 240, CaffeineMg: 95, ConsumedAt: time.Now()})
	require.NoError(t, err)

	second := intake.NewStore(db, nil)
	second.Load()

	assert.Empty(t, cmp.Diff([]intake.Drink{coffee}, second.All()))
}

func TestLoadDrinksMalformedID(t *testing.T) {
	db := testDB(t)
	_, err := db.Exec(`
		INSERT INTO drinks (id, position, name, volume_ml, caffeine_mg, consumed_at)
		VALUES ('not-a-uuid', 0, 'coffee', 240, 95, 1000)
	`)
	require.NoError(t, err)

	_, err = db.LoadDrinks()
	assert.Error(t, err)

	// the intake store treats it as an empty list
	s := intake.NewStore(db, nil)
	s.Load()
	assert.Empty(t, s.All())
}

func mockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return &DB{DB: sqlDB, Path: "mock"}, mock
}

func TestSaveDrinksRollsBackOnInsertFailure(t *testing.T) {
	db, mock := mockDB(t)
	drinks := sampleDrinks()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM drinks").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO drinks").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO drinks").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := db.SaveDrinks(drinks)

	require.Error(t, err)
	assert.ErrorContains(t, err, drinks[1].ID.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDrinksBeginFailure(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	err := db.SaveDrinks(sampleDrinks())

	assert.ErrorContains(t, err, "begin save drinks")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadDrinksQueryFailure(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery("SELECT (.+) FROM drinks").WillReturnError(errors.New("no such table: drinks"))

	_, err := db.LoadDrinks()

	assert.ErrorContains(t, err, "query drinks")
	assert.NoError(t, mock.ExpectationsWereMet())
}
