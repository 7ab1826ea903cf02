package gamedata

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/thysis/room-designer-api/internal/database"
)

// ErrNotFound indicates no save exists for the user.
var ErrNotFound = errors.New("game save not found")

// Repository handles game save persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Upsert fully replaces the user's save, creating the row if absent.
// The ON CONFLICT replacement is a single statement, so two racing saves
// for the same user resolve to whichever the database applies last.
func (r *Repository) Upsert(ctx context.Context, save *GameSave) (*GameSave, error) {
	dbSave, err := mapModelToDBSave(save)
	if err != nil {
		return nil, fmt.Errorf("failed to encode game save: %w", err)
	}

	_, err = r.db.NewInsert().
		Model(dbSave).
		On("CONFLICT (user_id) DO UPDATE").
		Set("inventory = EXCLUDED.inventory").
		Set("selection = EXCLUDED.selection").
		Set("stats = EXCLUDED.stats").
		Set("tiles = EXCLUDED.tiles").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert game save: %w", err)
	}

	return mapDBSaveToModel(dbSave)
}

// GetByUserID retrieves the user's save
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*GameSave, error) {
	dbSave := new(database.GameSave)
	err := r.db.NewSelect().
		Model(dbSave).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get game save: %w", err)
	}

	return mapDBSaveToModel(dbSave)
}

func mapModelToDBSave(save *GameSave) (*database.GameSave, error) {
	inventory, err := json.Marshal(save.Inventory)
	if err != nil {
		return nil, err
	}
	selection, err := json.Marshal(save.Selection)
	if err != nil {
		return nil, err
	}
	stats, err := json.Marshal(save.Stats)
	if err != nil {
		return nil, err
	}
	tiles, err := json.Marshal(save.Tiles)
	if err != nil {
		return nil, err
	}

	return &database.GameSave{
		UserID:    save.UserID,
		Inventory: inventory,
		Selection: selection,
		Stats:     stats,
		Tiles:     tiles,
		UpdatedAt: save.UpdatedAt,
	}, nil
}

func mapDBSaveToModel(dbs *database.GameSave) (*GameSave, error) {
	save := &GameSave{
		UserID:    dbs.UserID,
		UpdatedAt: dbs.UpdatedAt,
	}

	if err := json.Unmarshal(dbs.Inventory, &save.Inventory); err != nil {
		return nil, fmt.Errorf("failed to decode inventory: %w", err)
	}
	if err := json.Unmarshal(dbs.Selection, &save.Selection); err != nil {
		return nil, fmt.Errorf("failed to decode selection: %w", err)
	}
	if err := json.Unmarshal(dbs.Stats, &save.Stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	if err := json.Unmarshal(dbs.Tiles, &save.Tiles); err != nil {
		return nil, fmt.Errorf("failed to decode tiles: %w", err)
	}

	return save, nil
}
