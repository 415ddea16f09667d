package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/scenekit/internal/assets"
	"github.com/roach88/scenekit/internal/canvas"
	"github.com/roach88/scenekit/internal/ir"
	"github.com/roach88/scenekit/internal/prefab"
	"github.com/roach88/scenekit/internal/router"
	"github.com/roach88/scenekit/internal/scenegraph"
	"github.com/roach88/scenekit/internal/store"
)

// StateView is the JSON form of a router state.
type StateView struct {
	Path      string            `json:"path"`
	RouteID   string            `json:"routeId,omitempty"`
	RoutePath string            `json:"routePath,omitempty"`
	SceneID   string            `json:"sceneId,omitempty"`
	Params    map[string]string `json:"params"`
	Query     map[string]string `json:"query"`
}

// ViewState projects st for responses.
func ViewState(st ir.RouterState) StateView {
	v := StateView{
		Path:      st.CurrentPath,
		RoutePath: st.RoutePath(),
		SceneID:   st.SceneID(),
		Params:    st.Params,
		Query:     st.Query,
	}
	if st.CurrentRoute != nil {
		v.RouteID = st.CurrentRoute.ID
	}
	return v
}

// RenderView is the reply of GET /render/*.
type RenderView struct {
	State   StateView          `json:"state"`
	Changed bool               `json:"changed"`
	Render  *canvas.RenderNode `json:"render"`
}

// InstanceRequest is the body of POST /prefabs/{id}/instances.
type InstanceRequest struct {
	VariantID  string         `json:"variantId,omitempty"`
	CustomID   string         `json:"customId,omitempty"`
	ParentID   string         `json:"parentId,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// UpdateRequest is the body of PATCH /instances/{id}.
type UpdateRequest struct {
	Parameters map[string]any `json:"parameters"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	m := s.canvas.Manifest()
	writeOK(w, http.StatusOK, map[string]string{
		"manifest": m.ID,
		"version":  m.Version,
		"hash":     s.hash,
	})
}

func (s *Server) handleRoutes(w http.ResponseWriter, _ *http.Request) {
	entries := s.canvas.Router().Routes()
	if entries == nil {
		entries = []router.Entry{}
	}
	writeOK(w, http.StatusOK, entries)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, ViewState(s.canvas.State()))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	path := "/" + chi.URLParam(r, "*")
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}
	changed := s.canvas.Navigate(path)

	st := s.canvas.State()
	if !st.Resolved() {
		writeError(w, http.StatusNotFound, CodeNotFound, "no route matches "+st.CurrentPath)
		return
	}
	if err := s.canvas.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	writeOK(w, http.StatusOK, RenderView{
		State:   ViewState(st),
		Changed: changed,
		Render:  s.canvas.Render(),
	})
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, ok := s.canvas.Assets().Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "asset not found: "+id)
		return
	}
	value, err := s.canvas.Assets().Resolve(id)
	if err != nil {
		status, code := http.StatusUnprocessableEntity, CodeBadRequest
		if assets.IsNotFound(err) {
			status, code = http.StatusNotFound, CodeNotFound
		}
		writeError(w, status, code, err.Error())
		return
	}
	writeOK(w, http.StatusOK, map[string]any{
		"id":    a.ID,
		"type":  a.Type,
		"value": value,
	})
}

func (s *Server) handleCreateInstance(w http.ResponseWriter, r *http.Request) {
	var req InstanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}

	prefabID := chi.URLParam(r, "id")
	if req.CustomID != "" {
		if _, exists := s.canvas.Prefabs().GetInstance(req.CustomID); exists {
			writeError(w, http.StatusConflict, CodeConflict, "instance id already in use: "+req.CustomID)
			return
		}
	}
	inst, err := s.canvas.Instantiate(prefabID, prefab.Options{
		VariantID:  req.VariantID,
		CustomID:   req.CustomID,
		Parameters: req.Parameters,
	}, req.ParentID)
	if err != nil {
		s.writePrefabError(w, err)
		return
	}
	if err := s.persist(r, *inst); err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	s.logger.Info("prefab instantiated",
		"prefab", prefabID,
		"instance", inst.ID,
		"parent", req.ParentID)
	writeOK(w, http.StatusCreated, inst)
}

func (s *Server) handleGetInstance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	inst, ok := s.canvas.Prefabs().GetInstance(id)
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "instance not found: "+id)
		return
	}
	writeOK(w, http.StatusOK, inst)
}

func (s *Server) handleUpdateInstance(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}
	inst, err := s.canvas.UpdateInstance(chi.URLParam(r, "id"), req.Parameters)
	if err != nil {
		s.writePrefabError(w, err)
		return
	}
	if err := s.persist(r, *inst); err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	writeOK(w, http.StatusOK, inst)
}

func (s *Server) handleDeleteInstance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.canvas.RemoveInstance(id) {
		writeError(w, http.StatusNotFound, CodeNotFound, "instance not found: "+id)
		return
	}
	if s.store != nil {
		if _, err := s.store.DeleteInstance(r.Context(), id); err != nil {
			writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
			return
		}
	}
	writeOK(w, http.StatusOK, map[string]string{"deleted": id})
}

// persist upserts the instance record when a store is attached.
func (s *Server) persist(r *http.Request, inst ir.PrefabInstance) error {
	if s.store == nil {
		return nil
	}
	return s.store.WriteInstance(r.Context(), store.InstanceFromPrefab(inst, s.clock.Next()))
}

func (s *Server) writePrefabError(w http.ResponseWriter, err error) {
	switch {
	case prefab.IsPrefabNotFound(err), prefab.IsNotFound(err), errors.Is(err, scenegraph.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, scenegraph.ErrDuplicateID):
		writeError(w, http.StatusConflict, CodeConflict, err.Error())
	default:
		writeError(w, http.StatusUnprocessableEntity, CodeBadRequest, err.Error())
	}
}
