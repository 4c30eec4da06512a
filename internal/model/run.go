// Package model defines the core domain types for the GameLens dashboard.
//
// All types correspond directly to database tables and the JSON contract of
// the dashboard API. Types use strong typing (UUIDs, time.Time, pointers for
// nullable columns) and avoid interface{} wherever possible.
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// End reasons recognized by the analytics queries. end_reason is free-form on
// ingest; anything outside these two counts as a quit in the run overview.
const (
	EndReasonWin  = "win"
	EndReasonLoss = "loss"
)

// Run is a single playthrough. run_id is server-generated; clients never
// supply it. Created once per playthrough start, immutable through this API.
// run_meta is carried as raw JSON so any shape the client sent (object,
// array, scalar) survives the round trip byte-for-byte in content.
type Run struct {
	RunID       uuid.UUID       `json:"run_id"`
	GameID      string          `json:"game_id"`
	SessionID   string          `json:"session_id"`
	StartedAt   time.Time       `json:"started_at"`
	EndedAt     *time.Time      `json:"ended_at,omitempty"`
	EndReason   *string         `json:"end_reason,omitempty"`
	GameVersion *string         `json:"game_version,omitempty"`
	RunMeta     json.RawMessage `json:"run_meta,omitempty"`
}

// RunSummary is the denormalized end-of-run row for a (game_id, run_id) pair.
// updated_at is stamped server-side at insert time, never trusted from the
// client.
type RunSummary struct {
	GameID           string     `json:"game_id"`
	RunID            uuid.UUID  `json:"run_id"`
	UpdatedAt        time.Time  `json:"updated_at"`
	StartedAt        time.Time  `json:"started_at"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
	DurationMs       *int64     `json:"duration_ms,omitempty"`
	Result           string     `json:"result"`
	FinalStageID     *string    `json:"final_stage_id,omitempty"`
	FinalStageIndex  *int       `json:"final_stage_index,omitempty"`
	FinalRoomIndex   *int       `json:"final_room_index,omitempty"`
	TotalDamageTaken *int       `json:"total_damage_taken,omitempty"`
	ChoiceCount      *int       `json:"choice_count,omitempty"`
}
