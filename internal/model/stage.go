package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Stage is a catalog entry for a stage, keyed by (stage_id, game_id).
// name_norm is the normalized lookup name; canonical_name is display-facing.
type Stage struct {
	StageID       string          `json:"stage_id"`
	GameID        string          `json:"game_id"`
	StageIndex    *int            `json:"stage_index,omitempty"`
	NameNorm      string          `json:"name_norm"`
	CanonicalName *string         `json:"canonical_name,omitempty"`
	FirstSeenAt   time.Time       `json:"first_seen_at"`
	LastSeenAt    time.Time       `json:"last_seen_at"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
}

// RoomSummary is one room visit within a run. A NULL exited_at means the run
// ended inside this room — the death-hotspot query depends on this convention.
type RoomSummary struct {
	GameID            string     `json:"game_id"`
	RunID             uuid.UUID  `json:"run_id"`
	RoomSeq           int        `json:"room_seq"`
	StageIndex        *int       `json:"stage_index,omitempty"`
	StageID           *string    `json:"stage_id,omitempty"`
	RoomIndex         *int       `json:"room_index,omitempty"`
	RoomNameNorm      *string    `json:"room_name_norm,omitempty"`
	EnteredAt         time.Time  `json:"entered_at"`
	ExitedAt          *time.Time `json:"exited_at,omitempty"`
	CompletionMs      *int64     `json:"completion_ms,omitempty"`
	DamageTakenInRoom *int       `json:"damage_taken_in_room,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
