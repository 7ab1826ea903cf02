package gamedata

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		// The game client serializes datetime.now().isoformat():
		// microseconds, no zone offset.
		{"client isoformat", `"2026-08-28T12:34:56.789012"`,
			time.Date(2026, 8, 28, 12, 34, 56, 789012000, time.UTC), false},
		{"isoformat without fraction", `"2026-08-28T12:34:56"`,
			time.Date(2026, 8, 28, 12, 34, 56, 0, time.UTC), false},
		{"rfc3339", `"2026-08-28T12:34:56Z"`,
			time.Date(2026, 8, 28, 12, 34, 56, 0, time.UTC), false},
		{"rfc3339 with offset", `"2026-08-28T12:34:56+07:00"`,
			time.Date(2026, 8, 28, 12, 34, 56, 0, time.FixedZone("", 7*3600)), false},
		{"null", `null`, time.Time{}, false},
		{"empty string", `""`, time.Time{}, false},
		{"garbage", `"yesterday"`, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.raw), &ts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(ts.Time), "got %v, want %v", ts.Time, tt.want)
		})
	}
}

func TestNormalize_NeverNil(t *testing.T) {
	normalized := SaveData{}.Normalize()

	assert.NotNil(t, normalized.Inventory.Items)
	assert.NotNil(t, normalized.Inventory.Floor)
	assert.NotNil(t, normalized.Inventory.Wall)
	assert.NotNil(t, normalized.Tiles)
}

func TestNormalize_KeepsExistingData(t *testing.T) {
	data := sampleData().Normalize()

	assert.Len(t, data.Inventory.Items, 1)
	assert.Len(t, data.Inventory.Floor, 1)
	assert.Len(t, data.Tiles, 1)
}

// The game client parses these exact keys; a rename here is a protocol break.
func TestGameSave_WireFormat(t *testing.T) {
	save := DefaultSave(uuid.New())
	save.Stats = Stats{TotalBalance: 10, SnakeHiScore: 1, FruitHiScore: 2, BulletHiScore: 3}
	save.Tiles = []Tile{{GridX: 1, GridY: 2, GridZ: 3, Col: 4, Row: 5, ID: "floor_oak"}}

	raw, err := json.Marshal(save)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Contains(t, decoded, "user_id")
	assert.Contains(t, decoded, "updated_at")

	inventory := decoded["inventory"].(map[string]any)
	assert.Contains(t, inventory, "item")
	assert.Contains(t, inventory, "floor")
	assert.Contains(t, inventory, "wall")

	stats := decoded["stats"].(map[string]any)
	for _, key := range []string{"total_balance", "snake_hi_score", "fruit_hi_score", "bullet_hi_score"} {
		assert.Contains(t, stats, key)
	}

	tile := decoded["tiles"].([]any)[0].(map[string]any)
	for _, key := range []string{"grid_x", "grid_y", "grid_z", "col", "row", "id"} {
		assert.Contains(t, tile, key)
	}
}
