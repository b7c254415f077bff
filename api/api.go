// Package api serves the catalog over JSON/HTTP.
//
// Every response uses one envelope. Success is {"success":true,"data":...,"message":...};
// failure is {"success":false,"error":...,"fields":[...]}. Validation failures map to
// 400, missing entities to 404, weather source failures to 502 and anything else to 500.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jacentio/bites/catalog"
	"github.com/jacentio/bites/internal/page"
)

// PingFunc reports whether the backing store is reachable.
type PingFunc func(ctx context.Context) error

// Options configures a Handler. Zero values take defaults.
type Options struct {
	// MaxPageLimit caps the limit query parameter.
	// Default: page.DefaultMaxLimit
	MaxPageLimit int

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Handler routes requests to a catalog.Service.
type Handler struct {
	svc      *catalog.Service
	ping     PingFunc
	maxLimit int
	logger   *slog.Logger
	mux      *http.ServeMux
}

// New creates a Handler. ping may be nil, in which case /healthz always succeeds.
func New(svc *catalog.Service, ping PingFunc, opts Options) *Handler {
	h := &Handler{
		svc:      svc,
		ping:     ping,
		maxLimit: opts.MaxPageLimit,
		logger:   opts.Logger,
		mux:      http.NewServeMux(),
	}
	if h.maxLimit <= 0 {
		h.maxLimit = page.DefaultMaxLimit
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	h.mux.HandleFunc("GET /restaurants", h.listRestaurants)
	h.mux.HandleFunc("POST /restaurants", h.createRestaurant)
	h.mux.HandleFunc("GET /restaurants/{restaurantId}", h.getRestaurant)
	h.mux.HandleFunc("GET /restaurants/{restaurantId}/weather", h.weather)
	h.mux.HandleFunc("POST /restaurants/{restaurantId}/reviews", h.addReview)
	h.mux.HandleFunc("GET /restaurants/{restaurantId}/reviews", h.listReviews)
	h.mux.HandleFunc("DELETE /restaurants/{restaurantId}/reviews/{reviewId}", h.deleteReview)
	h.mux.HandleFunc("GET /cuisines", h.listCuisines)
	h.mux.HandleFunc("GET /cuisines/{cuisine}", h.restaurantsByCuisine)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logRequests(h.mux).ServeHTTP(w, r)
}

func (h *Handler) window(r *http.Request) (page.Window, error) {
	q := r.URL.Query()
	return page.Parse(q.Get("page"), q.Get("limit"), h.maxLimit)
}

func (h *Handler) listRestaurants(w http.ResponseWriter, r *http.Request) {
	win, err := h.window(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	restaurants, err := h.svc.ListRestaurants(r.Context(), win)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, restaurants, "")
}

func (h *Handler) createRestaurant(w http.ResponseWriter, r *http.Request) {
	var req restaurantRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := req.validate()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	restaurant, err := h.svc.CreateRestaurant(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, restaurant, "restaurant created")
}

func (h *Handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.svc.GetRestaurant(r.Context(), r.PathValue("restaurantId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, restaurant, "")
}

func (h *Handler) weather(w http.ResponseWriter, r *http.Request) {
	payload, err := h.svc.Weather(r.Context(), r.PathValue("restaurantId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, json.RawMessage(payload), "")
}

func (h *Handler) addReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := req.validate()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	review, err := h.svc.AddReview(r.Context(), r.PathValue("restaurantId"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, review, "review added")
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	win, err := h.window(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	reviews, err := h.svc.ListReviews(r.Context(), r.PathValue("restaurantId"), win)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, reviews, "")
}

func (h *Handler) deleteReview(w http.ResponseWriter, r *http.Request) {
	remaining, err := h.svc.DeleteReview(r.Context(), r.PathValue("restaurantId"), r.PathValue("reviewId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, remaining, "review deleted")
}

func (h *Handler) listCuisines(w http.ResponseWriter, r *http.Request) {
	cuisines, err := h.svc.ListCuisines(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, cuisines, "")
}

func (h *Handler) restaurantsByCuisine(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.svc.RestaurantsByCuisine(r.Context(), r.PathValue("cuisine"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, restaurants, "")
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			h.logger.Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "store unreachable"})
			return
		}
	}
	writeData(w, http.StatusOK, "ok", "")
}
