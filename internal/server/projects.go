package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/untillpro/goutils/logger"
	"gopkg.in/yaml.v3"

	"github.com/matthewbaird/admingen/internal/project"
	"github.com/matthewbaird/admingen/internal/registry"
)

// reserved names collide with the server's own routes.
var reserved = map[string]bool{
	"admin": true, "admin-app": true, "ui": true, "ws": true, "healthz": true,
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*registry.Api, bool) {
	api, err := s.cfg.Store.ByName(r.Context(), chi.URLParam(r, "project"))
	if errors.Is(err, registry.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		logger.Error(err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return nil, false
	}
	return api, true
}

// apiRoot is where the admin app of project name finds its API.
func (s *Server) apiRoot(name string) string {
	host := s.cfg.Hostname
	if host == "" {
		host = "localhost"
	}
	if s.cfg.PortExt == "" {
		return fmt.Sprintf("//%s/%s/api", host, name)
	}
	return fmt.Sprintf("//%s:%s/%s/api", host, s.cfg.PortExt, name)
}

// projectAdminYAML serves the project's admin.yaml pointed at this server.
func (s *Server) projectAdminYAML(w http.ResponseWriter, r *http.Request) {
	api, ok := s.lookup(w, r)
	if !ok {
		return
	}
	path := project.Layout{Dir: api.Path}.AdminYAML()
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warning("no admin.yaml for", api.Name, "at", path)
		http.NotFound(w, r)
		return
	}
	out, err := rewriteAPIRoot(data, s.apiRoot(api.Name))
	if err != nil {
		logger.Error("admin.yaml of", api.Name, err)
		writeError(w, http.StatusInternalServerError, "INVALID_ADMIN_YAML", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(out)
}

// rewriteAPIRoot sets the top-level api_root key, keeping key order.
func rewriteAPIRoot(data []byte, root string) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("admin.yaml is not a mapping")
	}
	m := doc.Content[0]
	value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: root}
	found := false
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == "api_root" {
			m.Content[i+1] = value
			found = true
			break
		}
	}
	if !found {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "api_root"}
		m.Content = append([]*yaml.Node{key, value}, m.Content...)
	}
	return yaml.Marshal(&doc)
}

// proxy forwards /<project>/api/... to the project's upstream as /api/....
func (s *Server) proxy(w http.ResponseWriter, r *http.Request) {
	api, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if api.Upstream == "" {
		writeError(w, http.StatusBadGateway, "NO_UPSTREAM", "no upstream registered for "+api.Name)
		return
	}
	target, err := url.Parse(api.Upstream)
	if err != nil {
		writeError(w, http.StatusBadGateway, "BAD_UPSTREAM", err.Error())
		return
	}
	prefix := "/" + api.Name
	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = strings.TrimPrefix(pr.In.URL.Path, prefix)
			pr.Out.URL.RawPath = ""
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("proxy", api.Name, err)
			writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
		},
	}
	rp.ServeHTTP(w, r)
}

type addApiRequest struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Upstream string `json:"upstream"`
}

func (s *Server) listApis(w http.ResponseWriter, r *http.Request) {
	apis, err := s.cfg.Store.List(r.Context())
	if err != nil {
		logger.Error(err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	if apis == nil {
		apis = []*registry.Api{}
	}
	writeJSON(w, http.StatusOK, apis)
}

func (s *Server) addApi(w http.ResponseWriter, r *http.Request) {
	var req addApiRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if reserved[req.Name] {
		writeError(w, http.StatusBadRequest, "INVALID_API", "reserved name: "+req.Name)
		return
	}
	api, err := s.cfg.Store.Add(r.Context(), req.Name, req.Path, req.Upstream)
	switch {
	case errors.Is(err, registry.ErrInvalid):
		writeError(w, http.StatusBadRequest, "INVALID_API", err.Error())
		return
	case errors.Is(err, registry.ErrDuplicate):
		writeError(w, http.StatusConflict, "DUPLICATE_API", err.Error())
		return
	case err != nil:
		logger.Error(err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	logger.Info("registered", api.Name, "->", api.Path)
	writeJSON(w, http.StatusCreated, api)
}

func (s *Server) getApi(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}
	api, err := s.cfg.Store.Get(r.Context(), id.String())
	if errors.Is(err, registry.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	if err != nil {
		logger.Error(err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, api)
}

func (s *Server) deleteApi(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}
	err := s.cfg.Store.Delete(r.Context(), id.String())
	if errors.Is(err, registry.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	if err != nil {
		logger.Error(err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
