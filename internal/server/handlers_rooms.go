package server

import (
	"net/http"

	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/model"
)

// HandleInsertRoom handles POST /rooms/insert. exited_at stays null when the
// run ended inside this room; the death-hotspot query keys off that.
func (h *Handlers) HandleInsertRoom(w http.ResponseWriter, r *http.Request) {
	payload, raw, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	var req model.InsertRoomRequest
	if !gateAndDecode(w, []string{"game_id", "run_id", "room_seq", "entered_at", "updated_at"}, payload, raw, &req) {
		return
	}

	if err := h.db.InsertRoomSummary(r.Context(), req); err != nil {
		h.writePersistenceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Rooms inserted successfully"})
}

// HandleRoomProgression handles GET /rooms/progression: the deadliest-room
// lookup plus the per-room survival ranking, both on one pooled connection.
func (h *Handlers) HandleRoomProgression(w http.ResponseWriter, r *http.Request) {
	if !gateQuery(w, []string{"game_id", "game_version"}, r.URL.Query()) {
		return
	}
	gameID := r.URL.Query().Get("game_id")
	gameVersion := r.URL.Query().Get("game_version")

	deadliest, totalDeaths, stats, err := h.db.RoomProgression(r.Context(), gameID, gameVersion)
	if err != nil {
		h.writePersistenceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.RoomProgressionResponse{
		DeadliestLevelEntityID: deadliest,
		TotalDeaths:            totalDeaths,
		RoomSurvivalStats:      stats,
	})
}
