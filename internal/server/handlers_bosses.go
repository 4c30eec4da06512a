package server

import (
	"net/http"

	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/model"
)

// HandleInsertBoss handles POST /events/boss/insert (boss catalog entry,
// no generated id returned).
func (h *Handlers) HandleInsertBoss(w http.ResponseWriter, r *http.Request) {
	payload, raw, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	var req model.InsertBossRequest
	if !gateAndDecode(w, []string{"boss_name", "game_id"}, payload, raw, &req) {
		return
	}

	if err := h.db.InsertBoss(r.Context(), req); err != nil {
		h.writePersistenceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Boss inserted successfully"})
}

// HandleInsertBossSummary handles POST /events/boss/summary/insert.
func (h *Handlers) HandleInsertBossSummary(w http.ResponseWriter, r *http.Request) {
	payload, raw, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	var req model.InsertBossSummaryRequest
	if !gateAndDecode(w, []string{"game_id", "run_id", "boss_seq", "boss_name", "entered_at", "updated_at"}, payload, raw, &req) {
		return
	}

	if err := h.db.InsertBossSummary(r.Context(), req); err != nil {
		h.writePersistenceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Boss summary inserted successfully"})
}

// HandleBossEvents handles GET /events/boss: raw encounter rows for the
// dashboard, no aggregation.
func (h *Handlers) HandleBossEvents(w http.ResponseWriter, r *http.Request) {
	if !gateQuery(w, []string{"game_id", "game_version"}, r.URL.Query()) {
		return
	}
	gameID := r.URL.Query().Get("game_id")
	gameVersion := r.URL.Query().Get("game_version")

	events, err := h.db.BossEvents(r.Context(), gameID, gameVersion)
	if err != nil {
		h.writePersistenceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.BossEventsResponse{BossEvents: events})
}
