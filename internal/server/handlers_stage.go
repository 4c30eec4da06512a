package server

import (
	"net/http"

	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/model"
)

// HandleInsertStage handles POST /stage/insert.
func (h *Handlers) HandleInsertStage(w http.ResponseWriter, r *http.Request) {
	payload, raw, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	var req model.InsertStageRequest
	if !gateAndDecode(w, []string{"stage_id", "game_id", "name_norm", "first_seen_at", "last_seen_at"}, payload, raw, &req) {
		return
	}

	if err := h.db.InsertStage(r.Context(), req); err != nil {
		h.writePersistenceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Stage inserted successfully"})
}
