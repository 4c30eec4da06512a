package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/model"
)

// InsertRun inserts a new run. run_id is generated here — never taken from
// the client — and returned for the response body.
func (db *DB) InsertRun(ctx context.Context, req model.InsertRunRequest) (uuid.UUID, error) {
	runID := uuid.New()

	_, err := db.pool.Exec(ctx,
		`INSERT INTO run (run_id, game_id, session_id, started_at, ended_at, end_reason, game_version, run_meta)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)`,
		runID, req.GameID, req.SessionID, req.StartedAt,
		req.EndedAt, req.EndReason, req.GameVersion, jsonbArg(req.RunMeta),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("storage: insert run: %w", err)
	}
	return runID, nil
}

// GetRun retrieves a run by (game_id, run_id).
func (db *DB) GetRun(ctx context.Context, gameID string, runID uuid.UUID) (model.Run, error) {
	var r model.Run
	err := db.pool.QueryRow(ctx,
		`SELECT run_id, game_id, session_id, started_at, ended_at, end_reason, game_version, run_meta
		 FROM run WHERE game_id = $1 AND run_id = $2`, gameID, runID,
	).Scan(
		&r.RunID, &r.GameID, &r.SessionID, &r.StartedAt,
		&r.EndedAt, &r.EndReason, &r.GameVersion, &r.RunMeta,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Run{}, fmt.Errorf("storage: run not found: %s", runID)
		}
		return model.Run{}, fmt.Errorf("storage: get run: %w", err)
	}
	return r, nil
}

// ListRuns returns every run for a (game_id, game_version) pair. The run
// overview is computed in memory from this set.
func (db *DB) ListRuns(ctx context.Context, gameID, gameVersion string) ([]model.Run, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT run_id, game_id, session_id, started_at, ended_at, end_reason, game_version, run_meta
		 FROM run WHERE game_id = $1 AND game_version = $2
		 ORDER BY started_at ASC`, gameID, gameVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(
			&r.RunID, &r.GameID, &r.SessionID, &r.StartedAt,
			&r.EndedAt, &r.EndReason, &r.GameVersion, &r.RunMeta,
		); err != nil {
			return nil, fmt.Errorf("storage: scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// InsertRunSummary inserts the denormalized end-of-run row. updated_at is
// stamped here regardless of any client-supplied value.
func (db *DB) InsertRunSummary(ctx context.Context, req model.InsertRunSummaryRequest) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO run_summary
		 (game_id, run_id, updated_at, started_at, ended_at, duration_ms, result,
		  final_stage_id, final_stage_index, final_room_index, total_damage_taken, choice_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		req.GameID, req.RunID, time.Now().UTC(), req.StartedAt, req.EndedAt,
		req.DurationMs, req.Result, req.FinalStageID, req.FinalStageIndex,
		req.FinalRoomIndex, req.TotalDamageTaken, req.ChoiceCount,
	)
	if err != nil {
		return fmt.Errorf("storage: insert run summary: %w", err)
	}
	return nil
}

// GetRunSummary retrieves the summary row for (game_id, run_id).
func (db *DB) GetRunSummary(ctx context.Context, gameID string, runID uuid.UUID) (model.RunSummary, error) {
	var s model.RunSummary
	err := db.pool.QueryRow(ctx,
		`SELECT game_id, run_id, updated_at, started_at, ended_at, duration_ms, result,
		        final_stage_id, final_stage_index, final_room_index, total_damage_taken, choice_count
		 FROM run_summary WHERE game_id = $1 AND run_id = $2`, gameID, runID,
	).Scan(
		&s.GameID, &s.RunID, &s.UpdatedAt, &s.StartedAt, &s.EndedAt, &s.DurationMs, &s.Result,
		&s.FinalStageID, &s.FinalStageIndex, &s.FinalRoomIndex, &s.TotalDamageTaken, &s.ChoiceCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RunSummary{}, fmt.Errorf("storage: run summary not found: %s", runID)
		}
		return model.RunSummary{}, fmt.Errorf("storage: get run summary: %w", err)
	}
	return s, nil
}
