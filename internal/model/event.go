package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is a generic append-only fact captured during a run. event_id is
// assigned by the store on insert and returned in the same round trip.
// details is raw JSON: the pipeline sends objects, arrays, or scalars and
// all of them are stored and returned as-is.
type Event struct {
	EventID         int64           `json:"event_id"`
	GameID          string          `json:"game_id"`
	RunID           uuid.UUID       `json:"run_id"`
	OccurredAt      time.Time       `json:"occurred_at"`
	IngestedAt      time.Time       `json:"ingested_at"`
	EventTypeID     int             `json:"event_type_id"`
	SourceCaptureID *string         `json:"source_capture_id,omitempty"`
	Confidence      *float64        `json:"confidence,omitempty"`
	PipelineVersion *string         `json:"pipeline_version,omitempty"`
	ModelVersion    *string         `json:"model_version,omitempty"`
	Details         json.RawMessage `json:"details"`
}

// ChoiceFact records a player's upgrade decision, optionally linked to the
// raw Event that produced it. options_present keeps whatever structure the
// client sent — the choice-stats query groups by its full content, so it is
// carried as raw JSON rather than forced into a map.
type ChoiceFact struct {
	ChoiceFactID      int64           `json:"choice_fact_id"`
	GameID            string          `json:"game_id"`
	EventID           int64           `json:"event_id"`
	RunID             uuid.UUID       `json:"run_id"`
	OccurredAt        time.Time       `json:"occurred_at"`
	StageIndex        *int            `json:"stage_index,omitempty"`
	StageID           *string         `json:"stage_id,omitempty"`
	RoomIndex         *int            `json:"room_index,omitempty"`
	SelectedUpgradeID string          `json:"selected_upgrade_id"`
	ChoiceContext     json.RawMessage `json:"choice_context,omitempty"`
	OptionsPresent    json.RawMessage `json:"options_present,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// DeathFact is the terminal event for a run.
type DeathFact struct {
	DeathFactID      int64           `json:"death_fact_id"`
	GameID           string          `json:"game_id"`
	RunID            uuid.UUID       `json:"run_id"`
	EventID          int64           `json:"event_id"`
	OccurredAt       time.Time       `json:"occurred_at"`
	LevelIndex       *int            `json:"level_index,omitempty"`
	RoomIndex        *int            `json:"room_index,omitempty"`
	HP               *int            `json:"hp,omitempty"`
	MaxHP            *int            `json:"max_hp,omitempty"`
	UpgradesSnapshot json.RawMessage `json:"upgrades_snapshot,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
