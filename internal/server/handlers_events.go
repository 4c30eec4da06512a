package server

import (
	"net/http"

	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/model"
)

// HandleInsertEvent handles POST /events/insert. event_id comes back from
// the store in the same round trip as the write.
func (h *Handlers) HandleInsertEvent(w http.ResponseWriter, r *http.Request) {
	payload, raw, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	var req model.InsertEventRequest
	if !gateAndDecode(w, []string{"game_id", "run_id", "occurred_at", "ingested_at", "event_type_id", "details"}, payload, raw, &req) {
		return
	}

	eventID, err := h.db.InsertEvent(r.Context(), req)
	if err != nil {
		h.writePersistenceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.InsertEventResponse{
		Message: "Event inserted successfully",
		EventID: eventID,
	})
}

// HandleInsertChoice handles POST /events/choices/insert.
func (h *Handlers) HandleInsertChoice(w http.ResponseWriter, r *http.Request) {
	payload, raw, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	var req model.InsertChoiceRequest
	if !gateAndDecode(w, []string{"game_id", "event_id", "run_id", "occurred_at", "selected_upgrade_id", "updated_at"}, payload, raw, &req) {
		return
	}

	choiceFactID, err := h.db.InsertChoiceFact(r.Context(), req)
	if err != nil {
		h.writePersistenceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.InsertChoiceResponse{
		Message:      "Choice inserted successfully",
		ChoiceFactID: choiceFactID,
	})
}

// HandleChoiceStats handles GET /events/choices: win rates and run durations
// grouped by (selected_upgrade_id, options_present).
func (h *Handlers) HandleChoiceStats(w http.ResponseWriter, r *http.Request) {
	if !gateQuery(w, []string{"game_id", "game_version"}, r.URL.Query()) {
		return
	}
	gameID := r.URL.Query().Get("game_id")
	gameVersion := r.URL.Query().Get("game_version")

	stats, err := h.db.ChoiceStats(r.Context(), gameID, gameVersion)
	if err != nil {
		h.writePersistenceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ChoiceStatsResponse{ChoicesStats: stats})
}

// HandleInsertDeath handles POST /events/death/insert.
func (h *Handlers) HandleInsertDeath(w http.ResponseWriter, r *http.Request) {
	payload, raw, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	var req model.InsertDeathRequest
	if !gateAndDecode(w, []string{"game_id", "run_id", "occurred_at", "updated_at", "event_id"}, payload, raw, &req) {
		return
	}

	deathFactID, err := h.db.InsertDeathFact(r.Context(), req)
	if err != nil {
		h.writePersistenceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.InsertDeathResponse{
		Message:     "Death inserted successfully",
		DeathFactID: deathFactID,
	})
}

// HandleDeathEvents handles GET /events/death.
func (h *Handlers) HandleDeathEvents(w http.ResponseWriter, r *http.Request) {
	if !gateQuery(w, []string{"game_id", "game_version"}, r.URL.Query()) {
		return
	}
	gameID := r.URL.Query().Get("game_id")
	gameVersion := r.URL.Query().Get("game_version")

	events, err := h.db.DeathEvents(r.Context(), gameID, gameVersion)
	if err != nil {
		h.writePersistenceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.DeathEventsResponse{DeathEvents: events})
}
