package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the database model for the users table.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Username     string    `bun:"username,notnull,unique"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:now()"`
	LastLogin    time.Time `bun:"last_login,notnull,default:now()"`
}

// GameSave is the database model for the game_saves table. One row per user;
// the sub-documents are stored as jsonb so a save replaces them wholesale in
// a single atomic upsert.
type GameSave struct {
	bun.BaseModel `bun:"table:game_saves"`

	ID        int64           `bun:"id,pk,autoincrement"`
	UserID    uuid.UUID       `bun:"user_id,notnull,unique,type:uuid"`
	Inventory json.RawMessage `bun:"inventory,type:jsonb,notnull"`
	Selection json.RawMessage `bun:"selection,type:jsonb,notnull"`
	Stats     json.RawMessage `bun:"stats,type:jsonb,notnull"`
	Tiles     json.RawMessage `bun:"tiles,type:jsonb,notnull"`
	UpdatedAt time.Time       `bun:"updated_at,notnull"`
}
