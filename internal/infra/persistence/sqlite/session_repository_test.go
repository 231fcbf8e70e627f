package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"vigil/internal/domain/entity"
	"vigil/internal/domain/repository"
	"vigil/internal/infra/persistence/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sqlitedriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "session.db")
	db, err := gorm.Open(sqlitedriver.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.SessionEntryModel{}))

	return db
}

func testSession() *entity.Session {
	return &entity.Session{
		IsAuthenticated: true,
		User: &entity.UserProfile{
			ID:             "user-1",
			FullName:       "Nguyen Van A",
			EmergencyPhone: "0900000001",
			DeviceID:       "dev-1",
		},
	}
}

func TestSessionRepository_LoadEmptyStore(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionRepository_SaveAndLoad(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testSession()))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, loaded.IsAuthenticated)
	require.NotNil(t, loaded.User)
	assert.Equal(t, "user-1", loaded.User.ID)
	assert.Equal(t, "dev-1", loaded.User.DeviceID)
}

func TestSessionRepository_SaveOverwrites(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testSession()))

	updated := testSession()
	updated.User.FullName = "Nguyen Van B"
	require.NoError(t, repo.Save(ctx, updated))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Nguyen Van B", loaded.User.FullName)
}

func TestSessionRepository_SaveRejectsInvalidSession(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))

	err := repo.Save(context.Background(), &entity.Session{IsAuthenticated: true})
	assert.Error(t, err)
}

func TestSessionRepository_Clear(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testSession()))
	require.NoError(t, repo.Clear(ctx))

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	// Both keys are gone, not just one.
	var count int64
	require.NoError(t, db.Model(&model.SessionEntryModel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSessionRepository_ClearEmptyStoreIsNoop(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))

	assert.NoError(t, repo.Clear(context.Background()))
}

func TestSessionRepository_HalfWrittenStateDegradesToLoggedOut(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	// Simulate a flag row without a profile row, which the transactional
	// writes should never produce.
	require.NoError(t, db.Create(&model.SessionEntryModel{
		Key:   model.KeyIsLoggedIn,
		Value: "true",
	}).Error)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, loaded.IsAuthenticated)
	assert.Nil(t, loaded.User)
}
