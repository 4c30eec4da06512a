package server

import (
	"net/http"

	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/model"
)

// HandleInsertRun handles POST /runs/insert. run_id is generated server-side
// and returned in the response; a client-supplied run_id is ignored.
func (h *Handlers) HandleInsertRun(w http.ResponseWriter, r *http.Request) {
	payload, raw, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	var req model.InsertRunRequest
	if !gateAndDecode(w, []string{"game_id", "session_id", "started_at"}, payload, raw, &req) {
		return
	}

	runID, err := h.db.InsertRun(r.Context(), req)
	if err != nil {
		h.writePersistenceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.InsertRunResponse{
		Message: "Runs inserted successfully",
		RunID:   runID,
	})
}

// HandleInsertRunSummary handles POST /runs/overview/insert. updated_at is
// stamped server-side at insert time.
func (h *Handlers) HandleInsertRunSummary(w http.ResponseWriter, r *http.Request) {
	payload, raw, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	var req model.InsertRunSummaryRequest
	if !gateAndDecode(w, []string{"game_id", "run_id", "started_at", "result"}, payload, raw, &req) {
		return
	}

	if err := h.db.InsertRunSummary(r.Context(), req); err != nil {
		h.writePersistenceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Run overview inserted successfully"})
}

// HandleRunOverview handles GET /runs/overview. Rows are fetched and the
// counts computed in memory; a version with no runs yields zero counts and
// a null average, not an error.
func (h *Handlers) HandleRunOverview(w http.ResponseWriter, r *http.Request) {
	if !gateQuery(w, []string{"game_id", "game_version"}, r.URL.Query()) {
		return
	}
	gameID := r.URL.Query().Get("game_id")
	gameVersion := r.URL.Query().Get("game_version")

	runs, err := h.db.ListRuns(r.Context(), gameID, gameVersion)
	if err != nil {
		h.writePersistenceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ComputeRunOverview(runs))
}
