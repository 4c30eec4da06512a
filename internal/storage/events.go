package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/model"
)

// jsonbArg adapts raw JSON for a jsonb parameter. nil becomes SQL NULL.
// Callers pair it with an explicit ::jsonb cast in the statement.
func jsonbArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

// InsertEvent inserts a generic event. The store assigns event_id via
// RETURNING — the key comes back in the same round trip as the write.
func (db *DB) InsertEvent(ctx context.Context, req model.InsertEventRequest) (int64, error) {
	var eventID int64
	err := db.pool.QueryRow(ctx,
		`INSERT INTO event
		 (game_id, run_id, occurred_at, ingested_at, event_type_id,
		  source_capture_id, confidence, pipeline_version, model_version, details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb)
		 RETURNING event_id`,
		req.GameID, req.RunID, req.OccurredAt, req.IngestedAt, req.EventTypeID,
		req.SourceCaptureID, req.Confidence, req.PipelineVersion, req.ModelVersion, jsonbArg(req.Details),
	).Scan(&eventID)
	if err != nil {
		return 0, fmt.Errorf("storage: insert event: %w", err)
	}
	return eventID, nil
}

// GetEvent retrieves an event by id.
func (db *DB) GetEvent(ctx context.Context, eventID int64) (model.Event, error) {
	var e model.Event
	err := db.pool.QueryRow(ctx,
		`SELECT event_id, game_id, run_id, occurred_at, ingested_at, event_type_id,
		        source_capture_id, confidence, pipeline_version, model_version, details
		 FROM event WHERE event_id = $1`, eventID,
	).Scan(
		&e.EventID, &e.GameID, &e.RunID, &e.OccurredAt, &e.IngestedAt, &e.EventTypeID,
		&e.SourceCaptureID, &e.Confidence, &e.PipelineVersion, &e.ModelVersion, &e.Details,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Event{}, fmt.Errorf("storage: event not found: %d", eventID)
		}
		return model.Event{}, fmt.Errorf("storage: get event: %w", err)
	}
	return e, nil
}

// InsertChoiceFact inserts a choice fact and returns the store-assigned
// choice_fact_id.
func (db *DB) InsertChoiceFact(ctx context.Context, req model.InsertChoiceRequest) (int64, error) {
	var choiceFactID int64
	err := db.pool.QueryRow(ctx,
		`INSERT INTO choice_fact
		 (game_id, event_id, run_id, occurred_at, stage_index, stage_id, room_index,
		  selected_upgrade_id, choice_context, options_present, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10::jsonb, $11)
		 RETURNING choice_fact_id`,
		req.GameID, req.EventID, req.RunID, req.OccurredAt, req.StageIndex, req.StageID,
		req.RoomIndex, req.SelectedUpgradeID, jsonbArg(req.ChoiceContext),
		jsonbArg(req.OptionsPresent), req.UpdatedAt,
	).Scan(&choiceFactID)
	if err != nil {
		return 0, fmt.Errorf("storage: insert choice fact: %w", err)
	}
	return choiceFactID, nil
}

// GetChoiceFact retrieves a choice fact by id.
func (db *DB) GetChoiceFact(ctx context.Context, choiceFactID int64) (model.ChoiceFact, error) {
	var c model.ChoiceFact
	err := db.pool.QueryRow(ctx,
		`SELECT choice_fact_id, game_id, event_id, run_id, occurred_at, stage_index, stage_id,
		        room_index, selected_upgrade_id, choice_context, options_present, updated_at
		 FROM choice_fact WHERE choice_fact_id = $1`, choiceFactID,
	).Scan(
		&c.ChoiceFactID, &c.GameID, &c.EventID, &c.RunID, &c.OccurredAt, &c.StageIndex, &c.StageID,
		&c.RoomIndex, &c.SelectedUpgradeID, &c.ChoiceContext, &c.OptionsPresent, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ChoiceFact{}, fmt.Errorf("storage: choice fact not found: %d", choiceFactID)
		}
		return model.ChoiceFact{}, fmt.Errorf("storage: get choice fact: %w", err)
	}
	return c, nil
}

// InsertDeathFact inserts a death fact and returns the store-assigned
// death_fact_id.
func (db *DB) InsertDeathFact(ctx context.Context, req model.InsertDeathRequest) (int64, error) {
	var deathFactID int64
	err := db.pool.QueryRow(ctx,
		`INSERT INTO death_fact
		 (game_id, run_id, event_id, occurred_at, level_index, room_index,
		  hp, max_hp, upgrades_snapshot, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10)
		 RETURNING death_fact_id`,
		req.GameID, req.RunID, req.EventID, req.OccurredAt, req.LevelIndex, req.RoomIndex,
		req.HP, req.MaxHP, jsonbArg(req.UpgradesSnapshot), req.UpdatedAt,
	).Scan(&deathFactID)
	if err != nil {
		return 0, fmt.Errorf("storage: insert death fact: %w", err)
	}
	return deathFactID, nil
}

// GetDeathFact retrieves a death fact by id.
func (db *DB) GetDeathFact(ctx context.Context, deathFactID int64) (model.DeathFact, error) {
	var d model.DeathFact
	err := db.pool.QueryRow(ctx,
		`SELECT death_fact_id, game_id, run_id, event_id, occurred_at, level_index, room_index,
		        hp, max_hp, upgrades_snapshot, updated_at
		 FROM death_fact WHERE death_fact_id = $1`, deathFactID,
	).Scan(
		&d.DeathFactID, &d.GameID, &d.RunID, &d.EventID, &d.OccurredAt, &d.LevelIndex, &d.RoomIndex,
		&d.HP, &d.MaxHP, &d.UpgradesSnapshot, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DeathFact{}, fmt.Errorf("storage: death fact not found: %d", deathFactID)
		}
		return model.DeathFact{}, fmt.Errorf("storage: get death fact: %w", err)
	}
	return d, nil
}
