package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/model"
)

// ChoiceStats groups choice facts by (selected_upgrade_id, options_present)
// for runs matching (game_id, game_version). Grouping by the jsonb column
// compares the blob's full content, so two rows group together only when
// their options_present is deeply equal. Rounding happens in SQL so the
// 2-decimal contract values arrive exact.
func (db *DB) ChoiceStats(ctx context.Context, gameID, gameVersion string) ([]model.ChoiceStat, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT cf.selected_upgrade_id,
		        cf.options_present,
		        COUNT(*) AS total_picks,
		        COUNT(*) FILTER (WHERE r.end_reason = 'win') AS total_wins,
		        ROUND(COUNT(*) FILTER (WHERE r.end_reason = 'win') * 100.0 / COUNT(*), 2)::float8 AS win_rate_percentage,
		        ROUND(AVG(EXTRACT(EPOCH FROM (r.ended_at - r.started_at)))::numeric, 2)::float8 AS avg_run_duration_seconds
		 FROM choice_fact cf
		 JOIN run r ON r.game_id = cf.game_id AND r.run_id = cf.run_id
		 WHERE cf.game_id = $1 AND r.game_version = $2
		 GROUP BY cf.selected_upgrade_id, cf.options_present
		 ORDER BY cf.selected_upgrade_id ASC, total_picks DESC`,
		gameID, gameVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: choice stats: %w", err)
	}
	defer rows.Close()

	stats := []model.ChoiceStat{}
	for rows.Next() {
		var s model.ChoiceStat
		if err := rows.Scan(
			&s.SelectedUpgradeID, &s.OptionsPresent, &s.TotalPicks, &s.TotalWins,
			&s.WinRatePercentage, &s.AvgRunDurationSeconds,
		); err != nil {
			return nil, fmt.Errorf("storage: scan choice stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// BossEvents returns raw boss encounter rows for (game_id, game_version).
// No aggregation — the dashboard does its own grouping client-side.
func (db *DB) BossEvents(ctx context.Context, gameID, gameVersion string) ([]model.BossEvent, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT bs.boss_name, bs.duration_ms, bs.damage_taken_in_boss, bs.defeated
		 FROM boss_summary bs
		 JOIN run r ON r.game_id = bs.game_id AND r.run_id = bs.run_id
		 WHERE bs.game_id = $1 AND r.game_version = $2`,
		gameID, gameVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: boss events: %w", err)
	}
	defer rows.Close()

	events := []model.BossEvent{}
	for rows.Next() {
		var e model.BossEvent
		if err := rows.Scan(&e.BossName, &e.DurationMs, &e.DamageTakenInBoss, &e.Defeated); err != nil {
			return nil, fmt.Errorf("storage: scan boss event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeathEvents joins death facts with the rooms and runs they belong to.
// game_id is filtered through the room_summary leg and game_version through
// the run leg; the join equates game_id across all three, so the asymmetry
// does not change the result set.
func (db *DB) DeathEvents(ctx context.Context, gameID, gameVersion string) ([]model.DeathEvent, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT df.level_index, df.room_index, rs.damage_taken_in_room, df.upgrades_snapshot
		 FROM death_fact df
		 JOIN room_summary rs ON rs.game_id = df.game_id AND rs.run_id = df.run_id
		 JOIN run r ON r.game_id = df.game_id AND r.run_id = df.run_id
		 WHERE rs.game_id = $1 AND r.game_version = $2`,
		gameID, gameVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: death events: %w", err)
	}
	defer rows.Close()

	events := []model.DeathEvent{}
	for rows.Next() {
		var e model.DeathEvent
		if err := rows.Scan(&e.LevelIndex, &e.RoomIndex, &e.DamageTakenInRoom, &e.UpgradesSnapshot); err != nil {
			return nil, fmt.Errorf("storage: scan death event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// RoomProgression runs the two room-progression reads on a single pooled
// connection: the deadliest-room lookup (rooms where the run ended, ranked
// by count) and the per-room survival ranking. An empty game yields nil
// deadliest values and an empty stats slice, never an error.
func (db *DB) RoomProgression(ctx context.Context, gameID, gameVersion string) (deadliest *string, totalDeaths *int64, stats []model.RoomSurvivalStat, err error) {
	conn, err := db.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("storage: acquire conn: %w", err)
	}
	defer conn.Release()

	// exited_at IS NULL marks the room the run ended in.
	err = conn.QueryRow(ctx,
		`SELECT rs.room_name_norm, COUNT(*) AS deaths
		 FROM room_summary rs
		 JOIN run r ON r.game_id = rs.game_id AND r.run_id = rs.run_id
		 WHERE rs.exited_at IS NULL AND rs.game_id = $1 AND r.game_version = $2
		 GROUP BY rs.room_name_norm
		 ORDER BY deaths DESC
		 LIMIT 1`,
		gameID, gameVersion,
	).Scan(&deadliest, &totalDeaths)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, nil, fmt.Errorf("storage: deadliest room: %w", err)
	}

	rows, err := conn.Query(ctx,
		`SELECT rs.room_name_norm,
		        COUNT(*) AS runs_entered,
		        COUNT(*) FILTER (WHERE rs.exited_at IS NULL) AS runs_ended_here,
		        ROUND(COUNT(*) FILTER (WHERE rs.exited_at IS NULL)::numeric / COUNT(*), 2)::float8 AS death_rate
		 FROM room_summary rs
		 JOIN run r ON r.game_id = rs.game_id AND r.run_id = rs.run_id
		 WHERE rs.game_id = $1 AND r.game_version = $2
		 GROUP BY rs.room_name_norm
		 ORDER BY death_rate DESC, runs_ended_here DESC`,
		gameID, gameVersion,
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("storage: room survival stats: %w", err)
	}
	defer rows.Close()

	stats = []model.RoomSurvivalStat{}
	for rows.Next() {
		var s model.RoomSurvivalStat
		if err := rows.Scan(&s.RoomNameNorm, &s.RunsEntered, &s.RunsEndedHere, &s.DeathRate); err != nil {
			return nil, nil, nil, fmt.Errorf("storage: scan room survival stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, nil, err
	}
	return deadliest, totalDeaths, stats, nil
}
