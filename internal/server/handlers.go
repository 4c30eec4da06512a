package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/model"
	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/storage"
)

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	db                  *storage.DB
	logger              *slog.Logger
	startedAt           time.Time
	version             string
	maxRequestBodyBytes int64
}

// HandlersDeps holds all dependencies for constructing Handlers.
type HandlersDeps struct {
	DB                  *storage.DB
	Logger              *slog.Logger
	Version             string
	MaxRequestBodyBytes int64
}

// NewHandlers creates a new Handlers with all dependencies.
func NewHandlers(d HandlersDeps) *Handlers {
	return &Handlers{
		db:                  d.DB,
		logger:              d.Logger,
		startedAt:           time.Now(),
		version:             d.Version,
		maxRequestBodyBytes: d.MaxRequestBodyBytes,
	}
}

// readPayload reads the request body and parses it into an untyped map for
// the required-field check. A missing or empty body parses as an empty map
// so the gate reports every required field rather than a read error. The
// raw bytes are returned for the typed decode that follows the gate.
func (h *Handlers) readPayload(w http.ResponseWriter, r *http.Request) (map[string]any, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBodyBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeClientError(w, model.ErrTypeMalformedBody, "failed to read request body: "+err.Error())
		return nil, nil, false
	}
	if len(raw) == 0 {
		return map[string]any{}, raw, true
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		writeClientError(w, model.ErrTypeMalformedBody, "invalid JSON body: "+err.Error())
		return nil, nil, false
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, raw, true
}

// gateAndDecode runs the required-field gate over the untyped payload, then
// decodes the raw bytes into the typed request. Missing fields and malformed
// values surface as distinct error types.
func gateAndDecode(w http.ResponseWriter, required []string, payload map[string]any, raw []byte, target any) bool {
	if err := model.ValidateRequired(required, payload); err != nil {
		writeClientError(w, model.ErrTypeValidation, err.Error())
		return false
	}
	if err := json.Unmarshal(raw, target); err != nil {
		writeClientError(w, model.ErrTypeMalformedVal, "invalid field value: "+err.Error())
		return false
	}
	return true
}

// gateQuery enforces required query parameters with the same gate and error
// envelope as the body checks.
func gateQuery(w http.ResponseWriter, required []string, query url.Values) bool {
	payload := make(map[string]any, len(query))
	for k := range query {
		payload[k] = query.Get(k)
	}
	if err := model.ValidateRequired(required, payload); err != nil {
		writeClientError(w, model.ErrTypeValidation, err.Error())
		return false
	}
	return true
}

// writePersistenceError maps a storage failure onto the client error
// envelope, with the classification in the type field.
func (h *Handlers) writePersistenceError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Warn("persistence failure",
		"error", err,
		"path", r.URL.Path,
		"request_id", RequestIDFromContext(r.Context()),
	)
	writeClientError(w, storage.Classify(err), err.Error())
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	pgStatus := "connected"
	status := "healthy"
	httpStatus := http.StatusOK

	if err := h.db.Ping(r.Context()); err != nil {
		pgStatus = "disconnected"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, model.HealthResponse{
		Status:   status,
		Version:  h.version,
		Postgres: pgStatus,
		Uptime:   int64(time.Since(h.startedAt).Seconds()),
	})
}
