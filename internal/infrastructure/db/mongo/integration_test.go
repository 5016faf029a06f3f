//go:build integration

package mongo_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sirpyerre/healthlog/internal/core/domain"
	repo "github.com/sirpyerre/healthlog/internal/infrastructure/db/mongo"
)

var uri string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		panic(err)
	}
	uri = fmt.Sprintf("mongodb://%s:%s", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestRepositories(t *testing.T) {
	ctx := context.Background()
	client, db, err := repo.Connect(ctx, repo.Config{URI: uri, Database: "healthlog_test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })
	require.NoError(t, repo.EnsureIndexes(ctx, db))
	require.NoError(t, repo.Pinger{Client: client}.Ping(ctx))

	accounts := repo.NewAccountRepository(db)
	records := repo.NewRecordRepository(db)

	t.Run("accounts", func(t *testing.T) {
		u, err := accounts.Create(ctx, &domain.User{Username: "alice", PasswordHash: "h1"})
		require.NoError(t, err)
		assert.Positive(t, u.ID)

		_, err = accounts.Create(ctx, &domain.User{Username: "alice", PasswordHash: "h2"})
		assert.ErrorIs(t, err, domain.ErrUsernameTaken)

		got, err := accounts.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "h1", got.PasswordHash)

		byID, err := accounts.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u, byID)

		_, err = accounts.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("records", func(t *testing.T) {
		owner, err := accounts.Create(ctx, &domain.User{Username: "bob", PasswordHash: "h"})
		require.NoError(t, err)
		other, err := accounts.Create(ctx, &domain.User{Username: "carol", PasswordHash: "h"})
		require.NoError(t, err)

		for i := 0; i < 22; i++ {
			e, _, err := domain.NewSleepEntry(owner.ID, float64(i))
			require.NoError(t, err)
			_, err = records.Append(ctx, owner.ID, e)
			require.NoError(t, err)
		}
		cal, _, _ := domain.NewCaloriesEntry(other.ID, 2000, 1750)
		stored, err := records.Append(ctx, other.ID, cal)
		require.NoError(t, err)

		recent, err := records.Recent(ctx, owner.ID, domain.MetricSleep, domain.HistoryLimit)
		require.NoError(t, err)
		require.Len(t, recent, domain.HistoryLimit)
		assert.Equal(t, 21.0, recent[0].(*domain.SleepEntry).Hours)
		for _, e := range recent {
			assert.Equal(t, owner.ID, e.Meta().UserID)
		}

		otherRecent, err := records.Recent(ctx, other.ID, domain.MetricCalories, domain.HistoryLimit)
		require.NoError(t, err)
		require.Len(t, otherRecent, 1)
		assert.Equal(t, stored, otherRecent[0])
		assert.Equal(t, -250.0, otherRecent[0].(*domain.CaloriesEntry).Difference)

		empty, err := records.Recent(ctx, other.ID, domain.MetricBMI, domain.HistoryLimit)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}
