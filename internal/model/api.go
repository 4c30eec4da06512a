package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ClientError is the error envelope for every failed request. Both validation
// and persistence failures use it with HTTP 400 — the status code does not
// distinguish them, only Type does.
type ClientError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Error classification strings carried in ClientError.Type.
const (
	ErrTypeValidation    = "ValidationError"
	ErrTypeMalformedBody = "MalformedBody"
	ErrTypeMalformedVal  = "MalformedValue"
)

// InsertRunRequest is the body for POST /runs/insert. run_id is generated
// server-side and is not part of the request. Blob fields are raw JSON so
// any value shape the client sends is accepted and stored as-is.
type InsertRunRequest struct {
	GameID      string          `json:"game_id"`
	SessionID   string          `json:"session_id"`
	StartedAt   time.Time       `json:"started_at"`
	EndedAt     *time.Time      `json:"ended_at,omitempty"`
	EndReason   *string         `json:"end_reason,omitempty"`
	GameVersion *string         `json:"game_version,omitempty"`
	RunMeta     json.RawMessage `json:"run_meta,omitempty"`
}

// InsertRunSummaryRequest is the body for POST /runs/overview/insert.
// Any client-supplied updated_at is ignored; the server stamps it.
type InsertRunSummaryRequest struct {
	GameID           string     `json:"game_id"`
	RunID            uuid.UUID  `json:"run_id"`
	StartedAt        time.Time  `json:"started_at"`
	Result           string     `json:"result"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
	DurationMs       *int64     `json:"duration_ms,omitempty"`
	FinalStageID     *string    `json:"final_stage_id,omitempty"`
	FinalStageIndex  *int       `json:"final_stage_index,omitempty"`
	FinalRoomIndex   *int       `json:"final_room_index,omitempty"`
	TotalDamageTaken *int       `json:"total_damage_taken,omitempty"`
	ChoiceCount      *int       `json:"choice_count,omitempty"`
}

// InsertRoomRequest is the body for POST /rooms/insert.
type InsertRoomRequest struct {
	GameID            string     `json:"game_id"`
	RunID             uuid.UUID  `json:"run_id"`
	RoomSeq           int        `json:"room_seq"`
	EnteredAt         time.Time  `json:"entered_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	StageIndex        *int       `json:"stage_index,omitempty"`
	StageID           *string    `json:"stage_id,omitempty"`
	RoomIndex         *int       `json:"room_index,omitempty"`
	RoomNameNorm      *string    `json:"room_name_norm,omitempty"`
	ExitedAt          *time.Time `json:"exited_at,omitempty"`
	CompletionMs      *int64     `json:"completion_ms,omitempty"`
	DamageTakenInRoom *int       `json:"damage_taken_in_room,omitempty"`
}

// InsertStageRequest is the body for POST /stage/insert.
type InsertStageRequest struct {
	StageID       string          `json:"stage_id"`
	GameID        string          `json:"game_id"`
	NameNorm      string          `json:"name_norm"`
	FirstSeenAt   time.Time       `json:"first_seen_at"`
	LastSeenAt    time.Time       `json:"last_seen_at"`
	StageIndex    *int            `json:"stage_index,omitempty"`
	CanonicalName *string         `json:"canonical_name,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
}

// InsertEventRequest is the body for POST /events/insert.
type InsertEventRequest struct {
	GameID          string          `json:"game_id"`
	RunID           uuid.UUID       `json:"run_id"`
	OccurredAt      time.Time       `json:"occurred_at"`
	IngestedAt      time.Time       `json:"ingested_at"`
	EventTypeID     int             `json:"event_type_id"`
	Details         json.RawMessage `json:"details"`
	SourceCaptureID *string         `json:"source_capture_id,omitempty"`
	Confidence      *float64        `json:"confidence,omitempty"`
	PipelineVersion *string         `json:"pipeline_version,omitempty"`
	ModelVersion    *string         `json:"model_version,omitempty"`
}

// InsertChoiceRequest is the body for POST /events/choices/insert.
type InsertChoiceRequest struct {
	GameID            string          `json:"game_id"`
	EventID           int64           `json:"event_id"`
	RunID             uuid.UUID       `json:"run_id"`
	OccurredAt        time.Time       `json:"occurred_at"`
	SelectedUpgradeID string          `json:"selected_upgrade_id"`
	UpdatedAt         time.Time       `json:"updated_at"`
	StageIndex        *int            `json:"stage_index,omitempty"`
	StageID           *string         `json:"stage_id,omitempty"`
	RoomIndex         *int            `json:"room_index,omitempty"`
	ChoiceContext     json.RawMessage `json:"choice_context,omitempty"`
	OptionsPresent    json.RawMessage `json:"options_present,omitempty"`
}

// InsertBossRequest is the body for POST /events/boss/insert.
type InsertBossRequest struct {
	BossName string          `json:"boss_name"`
	GameID   string          `json:"game_id"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// InsertBossSummaryRequest is the body for POST /events/boss/summary/insert.
type InsertBossSummaryRequest struct {
	GameID            string     `json:"game_id"`
	RunID             uuid.UUID  `json:"run_id"`
	BossSeq           int        `json:"boss_seq"`
	BossName          string     `json:"boss_name"`
	EnteredAt         time.Time  `json:"entered_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	StageIndex        *int       `json:"stage_index,omitempty"`
	StageID           *string    `json:"stage_id,omitempty"`
	DefeatedAt        *time.Time `json:"defeated_at,omitempty"`
	DurationMs        *int64     `json:"duration_ms,omitempty"`
	Defeated          *bool      `json:"defeated,omitempty"`
	DamageTakenInBoss *int       `json:"damage_taken_in_boss,omitempty"`
}

// InsertDeathRequest is the body for POST /events/death/insert.
type InsertDeathRequest struct {
	GameID           string          `json:"game_id"`
	RunID            uuid.UUID       `json:"run_id"`
	OccurredAt       time.Time       `json:"occurred_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	EventID          int64           `json:"event_id"`
	LevelIndex       *int            `json:"level_index,omitempty"`
	RoomIndex        *int            `json:"room_index,omitempty"`
	HP               *int            `json:"hp,omitempty"`
	MaxHP            *int            `json:"max_hp,omitempty"`
	UpgradesSnapshot json.RawMessage `json:"upgrades_snapshot,omitempty"`
}

// MessageResponse is the success body for inserts with no generated id.
type MessageResponse struct {
	Message string `json:"message"`
}

// InsertRunResponse is the success body for POST /runs/insert.
type InsertRunResponse struct {
	Message string    `json:"message"`
	RunID   uuid.UUID `json:"run_id"`
}

// InsertEventResponse is the success body for POST /events/insert.
type InsertEventResponse struct {
	Message string `json:"message"`
	EventID int64  `json:"event_id"`
}

// InsertChoiceResponse is the success body for POST /events/choices/insert.
type InsertChoiceResponse struct {
	Message      string `json:"message"`
	ChoiceFactID int64  `json:"choice_fact_id"`
}

// InsertDeathResponse is the success body for POST /events/death/insert.
type InsertDeathResponse struct {
	Message     string `json:"message"`
	DeathFactID int64  `json:"death_fact_id"`
}

// ChoiceStat is one (selected_upgrade_id, options_present) group in
// GET /events/choices. Two rows land in the same group only when their
// options_present content is deeply equal.
type ChoiceStat struct {
	SelectedUpgradeID     string          `json:"selected_upgrade_id"`
	OptionsPresent        json.RawMessage `json:"options_present"`
	TotalPicks            int64           `json:"total_picks"`
	TotalWins             int64           `json:"total_wins"`
	WinRatePercentage     float64         `json:"win_rate_percentage"`
	AvgRunDurationSeconds *float64        `json:"avg_run_duration_seconds"`
}

// ChoiceStatsResponse is the body for GET /events/choices.
type ChoiceStatsResponse struct {
	ChoicesStats []ChoiceStat `json:"choices_stats"`
}

// BossEvent is one raw boss encounter row in GET /events/boss.
type BossEvent struct {
	BossName          string `json:"boss_name"`
	DurationMs        *int64 `json:"duration_ms"`
	DamageTakenInBoss *int   `json:"damage_taken_in_boss"`
	Defeated          *bool  `json:"defeated"`
}

// BossEventsResponse is the body for GET /events/boss.
type BossEventsResponse struct {
	BossEvents []BossEvent `json:"boss_events"`
}

// DeathEvent is one row in GET /events/death.
type DeathEvent struct {
	LevelIndex        *int            `json:"level_index"`
	RoomIndex         *int            `json:"room_index"`
	DamageTakenInRoom *int            `json:"damage_taken_in_room"`
	UpgradesSnapshot  json.RawMessage `json:"upgrades_snapshot"`
}

// DeathEventsResponse is the body for GET /events/death.
type DeathEventsResponse struct {
	DeathEvents []DeathEvent `json:"death_events"`
}

// RoomSurvivalStat is one room's entry/death ranking row.
type RoomSurvivalStat struct {
	RoomNameNorm  *string `json:"room_name_norm"`
	RunsEntered   int64   `json:"runs_entered"`
	RunsEndedHere int64   `json:"runs_ended_here"`
	DeathRate     float64 `json:"death_rate"`
}

// RoomProgressionResponse is the body for GET /rooms/progression. Both
// deadliest fields are null when no room matched — never an error.
type RoomProgressionResponse struct {
	DeadliestLevelEntityID *string            `json:"deadliest_level_entity_id"`
	TotalDeaths            *int64             `json:"total_deaths"`
	RoomSurvivalStats      []RoomSurvivalStat `json:"room_survival_stats"`
}

// HealthResponse is the body for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Postgres string `json:"postgres"`
	Uptime   int64  `json:"uptime_seconds"`
}
