package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Boss is a catalog entity for a boss within a game. No identifier is
// generated or returned on insert.
type Boss struct {
	BossName string          `json:"boss_name"`
	GameID   string          `json:"game_id"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// BossSummary is one boss encounter within a run.
type BossSummary struct {
	GameID            string     `json:"game_id"`
	RunID             uuid.UUID  `json:"run_id"`
	BossSeq           int        `json:"boss_seq"`
	BossName          string     `json:"boss_name"`
	StageIndex        *int       `json:"stage_index,omitempty"`
	StageID           *string    `json:"stage_id,omitempty"`
	EnteredAt         time.Time  `json:"entered_at"`
	DefeatedAt        *time.Time `json:"defeated_at,omitempty"`
	DurationMs        *int64     `json:"duration_ms,omitempty"`
	Defeated          *bool      `json:"defeated,omitempty"`
	DamageTakenInBoss *int       `json:"damage_taken_in_boss,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
