package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/carla-lopez/backendCoderhouse/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Store Store
	Log   *zap.Logger

	// CreateLimitPerMin caps per-IP cart creation; 0 disables it.
	CreateLimitPerMin int
}

// Routes is mounted under /api/carts.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	if s.CreateLimitPerMin > 0 {
		limiter := kit.NewIPRateLimiter(s.CreateLimitPerMin, 60)
		r.With(limiter.Middleware).Post("/", s.create)
	} else {
		r.Post("/", s.create)
	}

	r.Get("/{cid}", s.get)
	r.Post("/{cid}/product/{pid}", s.addItem)

	return r
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	c, err := s.Store.Create(r.Context())
	if err != nil {
		s.logErr("create cart failed", err)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, c)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cid")

	c, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err, id)
		return
	}
	kit.WriteJSON(w, http.StatusOK, c)
}

type addItemReq struct {
	Quantity int `json:"quantity"`
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cid")

	productID, err := strconv.ParseInt(chi.URLParam(r, "pid"), 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusNotFound, "product not found", map[string]any{"product_id": chi.URLParam(r, "pid")})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	var req addItemReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	c, err := s.Store.AddItem(r.Context(), cartID, productID, req.Quantity)
	if err != nil {
		s.writeStoreError(w, r, err, cartID)
		return
	}
	kit.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, cartID string) {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ErrCartNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "cart not found", map[string]any{"cart_id": cartID})
	case errors.Is(err, ErrProductNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "product not found", nil)
	default:
		s.logErr("cart store failed", err)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) logErr(msg string, err error) {
	if s.Log != nil {
		s.Log.Error(msg, zap.Error(err))
	}
}
