package gamedata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thysis/room-designer-api/internal/logging"
)

// Sync actions reported to the client.
const (
	ActionUpload   = "upload"   // client data overwrote the server copy
	ActionDownload = "download" // server copy returned, nothing written
)

// SaveRepository is the slice of the save store the service needs.
type SaveRepository interface {
	Upsert(ctx context.Context, save *GameSave) (*GameSave, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*GameSave, error)
}

// SyncResult is the outcome of a sync: which side won and the record the
// client should now hold.
type SyncResult struct {
	Action string
	Save   *GameSave
}

// Service applies the save/load/sync policy on top of the save store.
type Service struct {
	repo   SaveRepository
	logger *logging.Logger
	now    func() time.Time
}

func NewService(repo SaveRepository, logger *logging.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Save fully replaces the user's stored save with data, stamping it with
// the current time. Creates the record if none exists.
func (s *Service) Save(ctx context.Context, userID uuid.UUID, data SaveData) (*GameSave, error) {
	data = data.Normalize()

	// Payloads can be large; log counts only.
	s.logger.Info("saving game data",
		"user_id", userID,
		"items", len(data.Inventory.Items),
		"floor", len(data.Inventory.Floor),
		"wall", len(data.Inventory.Wall),
		"tiles", len(data.Tiles),
	)

	save := &GameSave{
		UserID:    userID,
		Inventory: data.Inventory,
		Selection: data.Selection,
		Stats:     data.Stats,
		Tiles:     data.Tiles,
		UpdatedAt: s.now(),
	}

	stored, err := s.repo.Upsert(ctx, save)
	if err != nil {
		return nil, fmt.Errorf("failed to save game data: %w", err)
	}

	return stored, nil
}

// Load returns the user's stored save. A user with no save gets a
// synthesized all-empty record; that is a success, not a miss.
func (s *Service) Load(ctx context.Context, userID uuid.UUID) (*GameSave, error) {
	save, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return DefaultSave(userID), nil
		}
		return nil, fmt.Errorf("failed to load game data: %w", err)
	}

	return save, nil
}

// Sync reconciles the client's save against the stored one by timestamp.
// If no server save exists, or the server's updated_at is at or before
// lastSyncTime, the client wins and its data is uploaded. Only a strictly
// newer server save is downloaded: ties go to the client on purpose, so
// keep the <= comparison direction.
func (s *Service) Sync(ctx context.Context, userID uuid.UUID, data SaveData, lastSyncTime time.Time) (*SyncResult, error) {
	existing, err := s.repo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to sync game data: %w", err)
	}

	if existing != nil && existing.UpdatedAt.After(lastSyncTime) {
		s.logger.Info("sync resolved to download", "user_id", userID,
			"server_updated_at", existing.UpdatedAt, "client_last_sync", lastSyncTime)
		return &SyncResult{Action: ActionDownload, Save: existing}, nil
	}

	stored, err := s.Save(ctx, userID, data)
	if err != nil {
		return nil, err
	}

	s.logger.Info("sync resolved to upload", "user_id", userID, "client_last_sync", lastSyncTime)
	return &SyncResult{Action: ActionUpload, Save: stored}, nil
}
