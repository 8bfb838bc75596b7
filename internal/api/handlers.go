package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	respond "github.com/daytrace/daytrace/internal/api/respond"
	"github.com/daytrace/daytrace/internal/category"
	"github.com/daytrace/daytrace/internal/model"
	"github.com/daytrace/daytrace/internal/stats"
	"github.com/daytrace/daytrace/internal/timeparse"
	"github.com/daytrace/daytrace/internal/tracker"
)

// TrackerHandler exposes the session engine over HTTP. Every write goes
// through the engine's Apply entry point, so HTTP callers get the same
// per-user ordering and validation as chat callers.
type TrackerHandler struct {
	engine *tracker.Engine
	agg    *stats.Aggregator
}

// NewTrackerHandler creates a new tracker handler.
func NewTrackerHandler(engine *tracker.Engine, agg *stats.Aggregator) *TrackerHandler {
	return &TrackerHandler{engine: engine, agg: agg}
}

func userIDFromPath(r *http.Request) (int64, error) {
	vars := mux.Vars(r)
	return strconv.ParseInt(vars["userId"], 10, 64)
}

// GetSession GET /api/users/{userId}/session
// An absent session is a valid state, not an error: the body is
// {"session": null} with HTTP 200.
func (h *TrackerHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		respond.WriteBadRequest(w, "userId must be an integer")
		return
	}
	s, err := h.engine.CurrentSession(r.Context(), userID)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"session": s})
}

// GetStats GET /api/users/{userId}/stats?date=YYYY-MM-DD&detailed=true
// Defaults to the current civil day in the service location. A day with
// no records yields an empty report, not 404.
func (h *TrackerHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		respond.WriteBadRequest(w, "userId must be an integer")
		return
	}

	now := h.engine.Now()
	day := model.DayOf(now)
	if ds := r.URL.Query().Get("date"); ds != "" {
		t, err := time.ParseInLocation("2006-01-02", ds, now.Location())
		if err != nil {
			respond.WriteBadRequest(w, "date must be YYYY-MM-DD")
			return
		}
		day = model.DayOf(t)
	}

	detailed := false
	if dv := r.URL.Query().Get("detailed"); dv != "" {
		b, err := strconv.ParseBool(dv)
		if err != nil {
			respond.WriteBadRequest(w, "detailed must be a boolean")
			return
		}
		detailed = b
	}

	rep, err := h.agg.Summarize(r.Context(), stats.Request{UserID: userID, Day: day, Detailed: detailed})
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, rep)
}

// StartActivity POST /api/users/{userId}/activities
// Catalog names start as known activities, anything else becomes a
// custom activity, the same normalization chat backdating applies.
func (h *TrackerHandler) StartActivity(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		respond.WriteBadRequest(w, "userId must be an integer")
		return
	}

	var req struct {
		Name    string `json:"name"`
		StartAt string `json:"startAt,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respond.WriteBadRequest(w, "name is required")
		return
	}

	var at *time.Time
	if req.StartAt != "" {
		parsed, err := timeparse.ParseAt(req.StartAt, h.engine.Now())
		if err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		at = &parsed
	}

	var act tracker.Action
	if category.Known(name) {
		act = tracker.StartKnownActivity{Name: name, At: at}
	} else {
		act = tracker.StartCustomActivity{Text: name, At: at}
	}

	out, err := h.engine.Apply(r.Context(), userID, act)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			respond.WriteUnprocessable(w, err.Error())
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out.Transition)
}

// Sleep POST /api/users/{userId}/sleep
// Runs the end-of-day transition and returns the closing transition
// together with the day's report.
func (h *TrackerHandler) Sleep(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		respond.WriteBadRequest(w, "userId must be an integer")
		return
	}
	out, err := h.engine.Apply(r.Context(), userID, tracker.Sleep{})
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transition": out.Transition,
		"report":     out.Stats,
	})
}

// CloseOpenSessions POST /api/admin/close-open-sessions
// Force-closes every open session at the current instant. Used by
// supervisors before shutdown or maintenance.
func (h *TrackerHandler) CloseOpenSessions(w http.ResponseWriter, r *http.Request) {
	n, err := h.engine.ForceCloseAll(r.Context())
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"closed": n})
}
