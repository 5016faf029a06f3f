package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirpyerre/healthlog/internal/core/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "healthlog.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createUser(t *testing.T, repo *AccountRepository, name string) *domain.User {
	t.Helper()
	u, err := repo.Create(context.Background(), &domain.User{Username: name, PasswordHash: "hash-" + name})
	require.NoError(t, err)
	return u
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(context.Background(), db, zerolog.Nop()))

	for _, table := range []string{"users", "bmi_logs", "water_logs", "sleep_logs", "calories_logs"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
	assert.NoError(t, Pinger{DB: db}.Ping(context.Background()))
}

func TestAccountRepository_CreateAndFind(t *testing.T) {
	repo := NewAccountRepository(openTestDB(t))
	fixed := time.Date(2026, 3, 1, 8, 30, 0, 123456789, time.UTC)
	repo.now = func() time.Time { return fixed }

	created := createUser(t, repo, "alice")
	assert.Positive(t, created.ID)
	assert.Equal(t, fixed.Truncate(time.Millisecond), created.CreatedAt)

	byName, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, created, byName)

	byID, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-alice", byID.PasswordHash)

	_, err = repo.FindByUsername(context.Background(), "ALICE")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = repo.FindByID(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAccountRepository_DuplicateUsername(t *testing.T) {
	repo := NewAccountRepository(openTestDB(t))
	createUser(t, repo, "bob")

	_, err := repo.Create(context.Background(), &domain.User{Username: "bob", PasswordHash: "other"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	u, err := repo.FindByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "hash-bob", u.PasswordHash, "first registration must be kept")
}

func TestAccountRepository_ConcurrentRegistrationSingleWinner(t *testing.T) {
	repo := NewAccountRepository(openTestDB(t))

	const n = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		won   int
		taken int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(context.Background(), &domain.User{Username: "race", PasswordHash: fmt.Sprint(i)})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case errors.Is(err, domain.ErrUsernameTaken):
				taken++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, won)
	assert.Equal(t, n-1, taken)
}

func TestRecordRepository_AppendRecentRoundTrip(t *testing.T) {
	db := openTestDB(t)
	accounts := NewAccountRepository(db)
	records := NewRecordRepository(db)
	user := createUser(t, accounts, "carol")
	ctx := context.Background()

	bmi, _, err := domain.NewBMIEntry(user.ID, 150, 65.5)
	require.NoError(t, err)
	water, _, _ := domain.NewWaterEntry(user.ID, 5)
	sleep, _, _ := domain.NewSleepEntry(user.ID, 7.5)
	cal, _, _ := domain.NewCaloriesEntry(user.ID, 2000, 2300)

	for _, e := range []domain.Entry{bmi, water, sleep, cal} {
		stored, err := records.Append(ctx, user.ID, e)
		require.NoError(t, err)
		assert.Positive(t, stored.Meta().ID)
		assert.False(t, stored.Meta().CreatedAt.IsZero())

		recent, err := records.Recent(ctx, user.ID, e.Metric(), domain.HistoryLimit)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, stored, recent[0])
	}

	recent, err := records.Recent(ctx, user.ID, domain.MetricBMI, 1)
	require.NoError(t, err)
	got := recent[0].(*domain.BMIEntry)
	assert.Equal(t, 24.6, got.BMI)
	assert.Equal(t, domain.CategoryNormal, got.Category)
}

func TestRecordRepository_RecentScopedOrderedBounded(t *testing.T) {
	db := openTestDB(t)
	accounts := NewAccountRepository(db)
	records := NewRecordRepository(db)
	ctx := context.Background()
	dave := createUser(t, accounts, "dave")
	erin := createUser(t, accounts, "erin")

	for i := 0; i < 25; i++ {
		e, _, err := domain.NewWaterEntry(dave.ID, float64(i))
		require.NoError(t, err)
		_, err = records.Append(ctx, dave.ID, e)
		require.NoError(t, err)
	}
	e, _, _ := domain.NewWaterEntry(erin.ID, 99)
	_, err := records.Append(ctx, erin.ID, e)
	require.NoError(t, err)

	recent, err := records.Recent(ctx, dave.ID, domain.MetricWater, domain.HistoryLimit)
	require.NoError(t, err)
	require.Len(t, recent, domain.HistoryLimit)
	for i, entry := range recent {
		w := entry.(*domain.WaterEntry)
		assert.Equal(t, dave.ID, w.UserID)
		assert.Equal(t, float64(24-i), w.Cups, "newest first")
	}

	other, err := records.Recent(ctx, erin.ID, domain.MetricWater, domain.HistoryLimit)
	require.NoError(t, err)
	require.Len(t, other, 1)

	none, err := records.Recent(ctx, erin.ID, domain.MetricSleep, domain.HistoryLimit)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestRecordRepository_StoreUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	records := NewRecordRepository(db)
	driverErr := errors.New("disk I/O error")

	mock.ExpectQuery("INSERT INTO water_logs").WillReturnError(driverErr)
	water, _, _ := domain.NewWaterEntry(1, 3)
	_, err = records.Append(context.Background(), 1, water)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, driverErr)

	mock.ExpectQuery("SELECT id, user_id, created_at, hours FROM sleep_logs").WillReturnError(driverErr)
	_, err = records.Recent(context.Background(), 1, domain.MetricSleep, 20)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_StoreUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAccountRepository(db)
	mock.ExpectQuery("SELECT id, username").WillReturnError(sql.ErrConnDone)

	_, err = repo.FindByUsername(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
