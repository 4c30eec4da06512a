package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/model"
)

// InsertBoss inserts a boss catalog row. No identifier is generated.
func (db *DB) InsertBoss(ctx context.Context, req model.InsertBossRequest) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO boss (boss_name, game_id, metadata) VALUES ($1, $2, $3::jsonb)`,
		req.BossName, req.GameID, jsonbArg(req.Metadata),
	)
	if err != nil {
		return fmt.Errorf("storage: insert boss: %w", err)
	}
	return nil
}

// GetBoss retrieves a boss catalog row by (game_id, boss_name).
func (db *DB) GetBoss(ctx context.Context, gameID, bossName string) (model.Boss, error) {
	var b model.Boss
	err := db.pool.QueryRow(ctx,
		`SELECT boss_name, game_id, metadata FROM boss WHERE game_id = $1 AND boss_name = $2`,
		gameID, bossName,
	).Scan(&b.BossName, &b.GameID, &b.Metadata)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Boss{}, fmt.Errorf("storage: boss not found: %s", bossName)
		}
		return model.Boss{}, fmt.Errorf("storage: get boss: %w", err)
	}
	return b, nil
}

// InsertBossSummary records one boss encounter within a run.
func (db *DB) InsertBossSummary(ctx context.Context, req model.InsertBossSummaryRequest) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO boss_summary
		 (game_id, run_id, boss_seq, boss_name, stage_index, stage_id, entered_at,
		  defeated_at, duration_ms, defeated, damage_taken_in_boss, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		req.GameID, req.RunID, req.BossSeq, req.BossName, req.StageIndex, req.StageID,
		req.EnteredAt, req.DefeatedAt, req.DurationMs, req.Defeated,
		req.DamageTakenInBoss, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("storage: insert boss summary: %w", err)
	}
	return nil
}

// GetBossSummaries returns the boss encounters for a run in sequence order.
func (db *DB) GetBossSummaries(ctx context.Context, gameID string, runID uuid.UUID) ([]model.BossSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT game_id, run_id, boss_seq, boss_name, stage_index, stage_id, entered_at,
		        defeated_at, duration_ms, defeated, damage_taken_in_boss, updated_at
		 FROM boss_summary WHERE game_id = $1 AND run_id = $2
		 ORDER BY boss_seq ASC`, gameID, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: get boss summaries: %w", err)
	}
	defer rows.Close()

	var bosses []model.BossSummary
	for rows.Next() {
		var b model.BossSummary
		if err := rows.Scan(
			&b.GameID, &b.RunID, &b.BossSeq, &b.BossName, &b.StageIndex, &b.StageID,
			&b.EnteredAt, &b.DefeatedAt, &b.DurationMs, &b.Defeated,
			&b.DamageTakenInBoss, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("storage: scan boss summary: %w", err)
		}
		bosses = append(bosses, b)
	}
	return bosses, rows.Err()
}
