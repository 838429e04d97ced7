// Package api exposes a session over HTTP: inspection of tiles, buildings,
// power networks and the ledger, plus placement, removal and rotation.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/signalsfoundry/factory-simulator/core"
	"github.com/signalsfoundry/factory-simulator/internal/logging"
	"github.com/signalsfoundry/factory-simulator/internal/sim/state"
	"github.com/signalsfoundry/factory-simulator/model"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 16

// Option customises the router.
type Option func(*Handler)

// WithMiddleware appends middleware applied to every route, for example
// observability.SimCollector.HTTPMiddleware.
func WithMiddleware(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		if mw != nil {
			h.middleware = append(h.middleware, mw)
		}
	}
}

// Handler serves the HTTP surface of one session.
type Handler struct {
	session    *state.Session
	log        logging.Logger
	middleware []func(http.Handler) http.Handler
}

// NewRouter builds the chi router for sess.
func NewRouter(sess *state.Session, log logging.Logger, opts ...Option) http.Handler {
	h := &Handler{session: sess, log: logging.OrNoop(log)}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)
	for _, mw := range h.middleware {
		r.Use(mw)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/world", h.getWorld)
		r.Get("/catalog", h.getCatalog)
		r.Get("/tiles/{x}/{y}", h.getTile)
		r.Get("/networks", h.getNetworks)
		r.Get("/ledger", h.getLedger)

		r.Route("/buildings", func(r chi.Router) {
			r.Get("/", h.listBuildings)
			r.Post("/", h.placeBuilding)
			r.Get("/{id}", h.getBuilding)
			r.Delete("/{id}", h.removeBuilding)
			r.Post("/{id}/rotate", h.rotateBuilding)
		})
	})
	return r
}

// PlaceRequest is the body of POST /api/buildings.
type PlaceRequest struct {
	Kind   string `json:"kind"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Facing string `json:"facing"`
}

// RotateRequest is the body of POST /api/buildings/{id}/rotate. An empty
// facing turns the building clockwise.
type RotateRequest struct {
	Facing string `json:"facing"`
}

// LedgerResponse is the body of GET /api/ledger.
type LedgerResponse struct {
	Stock      []state.StackView      `json:"stock"`
	Throughput []state.ItemThroughput `json:"throughput"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "session": h.session.ID()})
}

func (h *Handler) getWorld(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

func (h *Handler) getCatalog(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.session.Catalog())
}

func (h *Handler) getTile(w http.ResponseWriter, r *http.Request) {
	x, err := strconv.Atoi(chi.URLParam(r, "x"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid x coordinate")
		return
	}
	y, err := strconv.Atoi(chi.URLParam(r, "y"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid y coordinate")
		return
	}
	tile, err := h.session.Tile(x, y)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tile)
}

func (h *Handler) getNetworks(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.session.Networks())
}

func (h *Handler) getLedger(w http.ResponseWriter, _ *http.Request) {
	snap := h.session.Snapshot()
	respondJSON(w, http.StatusOK, LedgerResponse{Stock: snap.Ledger, Throughput: snap.Throughput})
}

func (h *Handler) listBuildings(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.session.Snapshot().Buildings)
}

func (h *Handler) getBuilding(w http.ResponseWriter, r *http.Request) {
	id, ok := buildingID(w, r)
	if !ok {
		return
	}
	view, err := h.session.Building(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) placeBuilding(w http.ResponseWriter, r *http.Request) {
	var req PlaceRequest
	if !decode(w, r, &req) {
		return
	}
	facing := model.North
	if req.Facing != "" {
		d, err := model.ParseDirection(req.Facing)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		facing = d
	}
	view, err := h.session.Place(r.Context(), req.X, req.Y, req.Kind, facing)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (h *Handler) removeBuilding(w http.ResponseWriter, r *http.Request) {
	id, ok := buildingID(w, r)
	if !ok {
		return
	}
	if err := h.session.Remove(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) rotateBuilding(w http.ResponseWriter, r *http.Request) {
	id, ok := buildingID(w, r)
	if !ok {
		return
	}
	var req RotateRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	var facing model.Direction
	if req.Facing == "" {
		current, err := h.session.Building(id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		d, err := model.ParseDirection(current.Facing)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		facing = d.Next()
	} else {
		d, err := model.ParseDirection(req.Facing)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		facing = d
	}

	view, err := h.session.Rotate(r.Context(), id, facing)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// fail maps domain errors onto HTTP status codes.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed", logging.String("path", r.URL.Path), logging.Err(err))
	}
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownBuilding):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnknownKind),
		errors.Is(err, core.ErrOutOfBounds),
		errors.Is(err, core.ErrTerrain):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrOccupied):
		return http.StatusConflict
	case errors.Is(err, state.ErrInsufficient):
		return http.StatusPaymentRequired
	case errors.Is(err, state.ErrCoreProtected):
		return http.StatusForbidden
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Debug(r.Context(), "http request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.String("request_id", middleware.GetReqID(r.Context())),
			logging.Any("elapsed", time.Since(start)),
		)
	})
}

func buildingID(w http.ResponseWriter, r *http.Request) (model.BuildingID, bool) {
	n, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || n == 0 {
		respondError(w, http.StatusBadRequest, "invalid building id")
		return 0, false
	}
	return model.BuildingID(n), true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
