package gamedata

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thysis/room-designer-api/internal/logging"
)

type fakeSaveRepo struct {
	saves map[uuid.UUID]*GameSave
}

func newFakeSaveRepo() *fakeSaveRepo {
	return &fakeSaveRepo{saves: make(map[uuid.UUID]*GameSave)}
}

func (f *fakeSaveRepo) Upsert(ctx context.Context, save *GameSave) (*GameSave, error) {
	stored := *save
	f.saves[save.UserID] = &stored
	result := stored
	return &result, nil
}

func (f *fakeSaveRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*GameSave, error) {
	save, ok := f.saves[userID]
	if !ok {
		return nil, ErrNotFound
	}
	result := *save
	return &result, nil
}

func newTestService(t *testing.T) (*Service, *fakeSaveRepo) {
	t.Helper()
	repo := newFakeSaveRepo()
	return NewService(repo, logging.NewLogger(true)), repo
}

func sampleData() SaveData {
	return SaveData{
		Inventory: Inventory{
			Items: []Item{{
				Style: Style{ID: "chair_red", Name: "Red Chair", Spritesheet: "furniture.png",
					Type: "furniture", Description: "A red chair", Price: 120},
				Count: 2,
			}},
			Floor: []Style{{ID: "floor_oak", Name: "Oak Floor", Spritesheet: "floors.png",
				Type: "floor", Description: "Oak planks", Price: 50}},
			Wall: []Style{},
		},
		Selection: Selection{
			Floor: Style{ID: "floor_oak", Name: "Oak Floor", Spritesheet: "floors.png",
				Type: "floor", Description: "Oak planks", Price: 50},
		},
		Stats: Stats{TotalBalance: 1500, SnakeHiScore: 42, FruitHiScore: 17, BulletHiScore: 9},
		Tiles: []Tile{{GridX: 1, GridY: 2, GridZ: 0, Col: 3, Row: 4, ID: "floor_oak"}},
	}
}

func TestSaveThenLoad_RoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	userID := uuid.New()

	saveAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return saveAt }

	stored, err := svc.Save(context.Background(), userID, sampleData())
	require.NoError(t, err)
	assert.Equal(t, saveAt, stored.UpdatedAt)

	loaded, err := svc.Load(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, stored, loaded)
}

func TestSave_ReplacesWholesale(t *testing.T) {
	svc, repo := newTestService(t)
	userID := uuid.New()

	_, err := svc.Save(context.Background(), userID, sampleData())
	require.NoError(t, err)

	// A second save with an empty payload wipes everything from the first.
	stored, err := svc.Save(context.Background(), userID, SaveData{})
	require.NoError(t, err)

	assert.Empty(t, stored.Inventory.Items)
	assert.Empty(t, stored.Tiles)
	assert.Zero(t, stored.Stats)
	assert.Empty(t, repo.saves[userID].Inventory.Items)
}

func TestSave_DefaultsMissingFields(t *testing.T) {
	svc, _ := newTestService(t)

	stored, err := svc.Save(context.Background(), uuid.New(), SaveData{})
	require.NoError(t, err)

	assert.NotNil(t, stored.Inventory.Items)
	assert.NotNil(t, stored.Inventory.Floor)
	assert.NotNil(t, stored.Inventory.Wall)
	assert.NotNil(t, stored.Tiles)
}

func TestLoad_NoSaveReturnsDefault(t *testing.T) {
	svc, _ := newTestService(t)
	userID := uuid.New()

	save, err := svc.Load(context.Background(), userID)
	require.NoError(t, err, "a missing save is not an error")

	assert.Equal(t, userID, save.UserID)
	assert.Empty(t, save.Inventory.Items)
	assert.Empty(t, save.Inventory.Floor)
	assert.Empty(t, save.Inventory.Wall)
	assert.Empty(t, save.Tiles)
	assert.Zero(t, save.Stats)
	assert.True(t, save.UpdatedAt.IsZero())
}

func TestSync_NoServerSaveUploads(t *testing.T) {
	svc, _ := newTestService(t)
	userID := uuid.New()

	result, err := svc.Sync(context.Background(), userID, sampleData(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, ActionUpload, result.Action)
	assert.Equal(t, userID, result.Save.UserID)
	assert.Len(t, result.Save.Inventory.Items, 1)
}

func TestSync_TimestampTieUploads(t *testing.T) {
	svc, repo := newTestService(t)
	userID := uuid.New()

	serverAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return serverAt }
	_, err := svc.Save(context.Background(), userID, SaveData{})
	require.NoError(t, err)

	// Equal timestamps favor the client.
	clientData := sampleData()
	result, err := svc.Sync(context.Background(), userID, clientData, serverAt)
	require.NoError(t, err)

	assert.Equal(t, ActionUpload, result.Action)
	assert.Len(t, repo.saves[userID].Inventory.Items, 1, "client data must be persisted")
}

func TestSync_ServerNewerDownloads(t *testing.T) {
	svc, repo := newTestService(t)
	userID := uuid.New()

	serverAt := time.Date(2026, 5, 1, 12, 0, 1, 0, time.UTC)
	svc.now = func() time.Time { return serverAt }
	serverSave, err := svc.Save(context.Background(), userID, sampleData())
	require.NoError(t, err)

	// Client last synced one second before the server save.
	result, err := svc.Sync(context.Background(), userID, SaveData{}, serverAt.Add(-time.Second))
	require.NoError(t, err)

	assert.Equal(t, ActionDownload, result.Action)
	assert.Equal(t, serverSave, result.Save)
	assert.Len(t, repo.saves[userID].Inventory.Items, 1, "server data must be untouched")
}

func TestSync_ClientNewerUploads(t *testing.T) {
	svc, _ := newTestService(t)
	userID := uuid.New()

	serverAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return serverAt }
	_, err := svc.Save(context.Background(), userID, SaveData{})
	require.NoError(t, err)

	result, err := svc.Sync(context.Background(), userID, sampleData(), serverAt.Add(time.Second))
	require.NoError(t, err)

	assert.Equal(t, ActionUpload, result.Action)
}
