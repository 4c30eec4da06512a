package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/model"
)

// InsertStage inserts a stage catalog row keyed by (stage_id, game_id).
func (db *DB) InsertStage(ctx context.Context, req model.InsertStageRequest) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO stage
		 (stage_id, game_id, stage_index, name_norm, canonical_name, first_seen_at, last_seen_at, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)`,
		req.StageID, req.GameID, req.StageIndex, req.NameNorm,
		req.CanonicalName, req.FirstSeenAt, req.LastSeenAt, jsonbArg(req.Metadata),
	)
	if err != nil {
		return fmt.Errorf("storage: insert stage: %w", err)
	}
	return nil
}

// GetStage retrieves a stage by (stage_id, game_id).
func (db *DB) GetStage(ctx context.Context, stageID, gameID string) (model.Stage, error) {
	var s model.Stage
	err := db.pool.QueryRow(ctx,
		`SELECT stage_id, game_id, stage_index, name_norm, canonical_name, first_seen_at, last_seen_at, metadata
		 FROM stage WHERE stage_id = $1 AND game_id = $2`, stageID, gameID,
	).Scan(
		&s.StageID, &s.GameID, &s.StageIndex, &s.NameNorm,
		&s.CanonicalName, &s.FirstSeenAt, &s.LastSeenAt, &s.Metadata,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Stage{}, fmt.Errorf("storage: stage not found: %s", stageID)
		}
		return model.Stage{}, fmt.Errorf("storage: get stage: %w", err)
	}
	return s, nil
}
