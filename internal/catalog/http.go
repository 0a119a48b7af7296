package catalog

import (
	"encoding/json"
	"errors"
	"io"
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
}

// Routes is mounted under /api/products.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.list)
	r.Post("/", s.create)
	r.Get("/{pid}", s.get)
	r.Put("/{pid}", s.update)
	r.Delete("/{pid}", s.delete)

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	products, err := s.Store.List(r.Context(), limit)
	if err != nil {
		s.logErr("list products failed", err)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if products == nil {
		products = []Product{}
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	p, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err, id)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var f Fields
	if !decodeBody(w, r, &f) {
		return
	}

	p, err := s.Store.Add(r.Context(), f)
	if err != nil {
		s.writeStoreError(w, r, err, 0)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var patch Patch
	if !decodeBody(w, r, &patch) {
		return
	}

	p, err := s.Store.Update(r.Context(), id, patch)
	if err != nil {
		s.writeStoreError(w, r, err, id)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err, id)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// productID parses the {pid} segment. A non-numeric id cannot match
// any product, so it reports not found rather than bad request.
func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "pid")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": "extra data after json object"})
		return false
	}
	return true
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, id int64) {
	switch {
	case errors.Is(err, ErrValidation):
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ErrDuplicateCode):
		kit.WriteError(w, r, http.StatusConflict, "code already exists", nil)
	case errors.Is(err, ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
	default:
		s.logErr("product store failed", err)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) logErr(msg string, err error) {
	if s.Log != nil {
		s.Log.Error(msg, zap.Error(err))
	}
}
