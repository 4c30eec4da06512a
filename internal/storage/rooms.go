package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/model"
)

// InsertRoomSummary records one room visit within a run. exited_at stays
// NULL when the run ended inside the room.
func (db *DB) InsertRoomSummary(ctx context.Context, req model.InsertRoomRequest) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO room_summary
		 (game_id, run_id, room_seq, stage_index, stage_id, room_index, room_name_norm,
		  entered_at, exited_at, completion_ms, damage_taken_in_room, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		req.GameID, req.RunID, req.RoomSeq, req.StageIndex, req.StageID, req.RoomIndex,
		req.RoomNameNorm, req.EnteredAt, req.ExitedAt, req.CompletionMs,
		req.DamageTakenInRoom, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("storage: insert room summary: %w", err)
	}
	return nil
}

// GetRoomSummaries returns the room visits for a run in sequence order.
func (db *DB) GetRoomSummaries(ctx context.Context, gameID string, runID uuid.UUID) ([]model.RoomSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT game_id, run_id, room_seq, stage_index, stage_id, room_index, room_name_norm,
		        entered_at, exited_at, completion_ms, damage_taken_in_room, updated_at
		 FROM room_summary WHERE game_id = $1 AND run_id = $2
		 ORDER BY room_seq ASC`, gameID, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: get room summaries: %w", err)
	}
	defer rows.Close()

	var rooms []model.RoomSummary
	for rows.Next() {
		var rm model.RoomSummary
		if err := rows.Scan(
			&rm.GameID, &rm.RunID, &rm.RoomSeq, &rm.StageIndex, &rm.StageID, &rm.RoomIndex,
			&rm.RoomNameNorm, &rm.EnteredAt, &rm.ExitedAt, &rm.CompletionMs,
			&rm.DamageTakenInRoom, &rm.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("storage: scan room summary: %w", err)
		}
		rooms = append(rooms, rm)
	}
	return rooms, rows.Err()
}
