package gamedata

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Style describes a purchasable floor or wall style. Field names follow the
// wire format the game client already speaks.
type Style struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Spritesheet string  `json:"spritesheet"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Item is an owned inventory item; unlike styles it carries a count.
type Item struct {
	Style
	Count int `json:"count"`
}

// Inventory holds the three independent item sequences.
type Inventory struct {
	Items []Item  `json:"item"`
	Floor []Style `json:"floor"`
	Wall  []Style `json:"wall"`
}

// Selection is the currently equipped floor and wall style. Either may be
// empty when nothing is equipped.
type Selection struct {
	Floor Style `json:"floor"`
	Wall  Style `json:"wall"`
}

// Stats are the player's numeric counters.
type Stats struct {
	TotalBalance  float64 `json:"total_balance"`
	SnakeHiScore  int     `json:"snake_hi_score"`
	FruitHiScore  int     `json:"fruit_hi_score"`
	BulletHiScore int     `json:"bullet_hi_score"`
}

// Tile is a placed tile: grid position in the 3D room plus the 2D screen
// cell it renders into, and the tile type id.
type Tile struct {
	GridX int    `json:"grid_x"`
	GridY int    `json:"grid_y"`
	GridZ int    `json:"grid_z"`
	Col   int    `json:"col"`
	Row   int    `json:"row"`
	ID    string `json:"id"`
}

// Timestamp is a time.Time that also decodes the game client's sync
// timestamps. The client serializes them as bare ISO 8601 without a zone
// offset (e.g. "2026-08-28T12:34:56.789012"), which the stock time.Time
// unmarshaler rejects. Offset-less values are taken as UTC; null and ""
// decode to the zero time, which a sync resolves to upload.
type Timestamp struct {
	time.Time
}

const isoNoOffset = "2006-01-02T15:04:05"

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	// Fractional seconds are accepted by time.Parse even when the layout
	// has none.
	for _, layout := range []string{time.RFC3339, isoNoOffset} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("invalid timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time)
}

// SaveData is the client-provided portion of a save. Missing sub-fields
// decode to zero values; Normalize makes the slices non-nil so the stored
// document never contains nulls.
type SaveData struct {
	Inventory Inventory `json:"inventory"`
	Selection Selection `json:"selection"`
	Stats     Stats     `json:"stats"`
	Tiles     []Tile    `json:"tiles"`
}

// GameSave is the full stored game state for one user.
type GameSave struct {
	UserID    uuid.UUID `json:"user_id"`
	Inventory Inventory `json:"inventory"`
	Selection Selection `json:"selection"`
	Stats     Stats     `json:"stats"`
	Tiles     []Tile    `json:"tiles"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Normalize returns a copy with every sequence non-nil.
func (d SaveData) Normalize() SaveData {
	if d.Inventory.Items == nil {
		d.Inventory.Items = []Item{}
	}
	if d.Inventory.Floor == nil {
		d.Inventory.Floor = []Style{}
	}
	if d.Inventory.Wall == nil {
		d.Inventory.Wall = []Style{}
	}
	if d.Tiles == nil {
		d.Tiles = []Tile{}
	}
	return d
}

// DefaultSave synthesizes an all-empty save for a user with no stored data.
func DefaultSave(userID uuid.UUID) *GameSave {
	return &GameSave{
		UserID:    userID,
		Inventory: Inventory{Items: []Item{}, Floor: []Style{}, Wall: []Style{}},
		Selection: Selection{},
		Stats:     Stats{},
		Tiles:     []Tile{},
	}
}
