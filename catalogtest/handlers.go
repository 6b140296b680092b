package catalogtest

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

func joinNamespace(ns []string) string {
	return strings.Join(ns, namespaceSeparator)
}

func tableKey(ns []string, name string) string {
	return joinNamespace(ns) + "/" + name
}

func notFound(c *gin.Context, e ErrorModel) {
	c.JSON(e.Code, ErrorResponse{Error: e})
}

func (s *Server) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, configResponse{
		Defaults:  orEmpty(s.cfg.Defaults),
		Overrides: orEmpty(s.cfg.Overrides),
	})
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func (s *Server) issueToken(c *gin.Context) {
	if c.PostForm("grant_type") != "client_credentials" {
		c.JSON(http.StatusBadRequest, OAuthErrorResponse{Error: "invalid_request", ErrorDescription: "unsupported grant"})
		return
	}

	id, secret := c.PostForm("client_id"), c.PostForm("client_secret")
	if s.cfg.Credentials != nil {
		if want, ok := s.cfg.Credentials[id]; !ok || want != secret {
			c.JSON(http.StatusUnauthorized, OAuthErrorResponse{
				Error:            "invalid_client",
				ErrorDescription: fmt.Sprintf("Credentials for key %s do not match", id),
			})
			return
		}
	}

	s.mu.Lock()
	s.issued++
	token := fmt.Sprintf("token-%d", s.issued)
	s.tokens[token] = true
	s.mu.Unlock()

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:     token,
		TokenType:       "Bearer",
		ExpiresIn:       3600,
		IssuedTokenType: "urn:ietf:params:oauth:token-type:access_token",
	})
}

func (s *Server) listNamespaces(c *gin.Context) {
	var parent []string
	if p := c.Query("parent"); p != "" {
		parent = strings.Split(p, namespaceSeparator)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if parent != nil {
		if _, ok := s.namespaces[joinNamespace(parent)]; !ok {
			notFound(c, ErrNamespaceNotFound)
			return
		}
	}

	namespaces := [][]string{}
	for key := range s.namespaces {
		ns := strings.Split(key, namespaceSeparator)
		if len(ns) != len(parent)+1 || !slices.Equal(ns[:len(parent)], parent) {
			continue
		}
		if s.cfg.RelativeNamespaces {
			ns = ns[len(parent):]
		}
		namespaces = append(namespaces, ns)
	}
	slices.SortFunc(namespaces, func(a, b []string) int {
		return strings.Compare(joinNamespace(a), joinNamespace(b))
	})

	c.JSON(http.StatusOK, gin.H{"namespaces": namespaces})
}

func (s *Server) createNamespace(c *gin.Context) {
	var req namespaceBody
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Namespace) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrBadRequest})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := joinNamespace(req.Namespace)
	if _, ok := s.namespaces[key]; ok {
		c.JSON(http.StatusConflict, ErrorResponse{Error: ErrNamespaceAlreadyExists})
		return
	}
	s.namespaces[key] = maps.Clone(orEmpty(req.Properties))

	c.JSON(http.StatusOK, namespaceBody{Namespace: req.Namespace, Properties: orEmpty(req.Properties)})
}

func (s *Server) loadNamespace(c *gin.Context) {
	ns := strings.Split(c.Param("namespace"), namespaceSeparator)

	s.mu.Lock()
	defer s.mu.Unlock()

	props, ok := s.namespaces[joinNamespace(ns)]
	if !ok {
		notFound(c, ErrNamespaceNotFound)
		return
	}
	c.JSON(http.StatusOK, namespaceBody{Namespace: ns, Properties: props})
}

func (s *Server) namespaceExists(c *gin.Context) {
	s.mu.Lock()
	_, ok := s.namespaces[c.Param("namespace")]
	s.mu.Unlock()

	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) dropNamespace(c *gin.Context) {
	key := c.Param("namespace")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.namespaces[key]; !ok {
		notFound(c, ErrNamespaceNotFound)
		return
	}
	for _, t := range s.tables {
		if joinNamespace(t.namespace) == key {
			c.JSON(http.StatusConflict, ErrorResponse{Error: ErrNamespaceNotEmpty})
			return
		}
	}
	delete(s.namespaces, key)
	c.Status(http.StatusNoContent)
}

func (s *Server) updateProperties(c *gin.Context) {
	var req updatePropertiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrBadRequest})
		return
	}
	for _, removal := range req.Removals {
		if _, exists := req.Updates[removal]; exists {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: ErrUnprocessableEntityDuplicateKey})
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	props, ok := s.namespaces[c.Param("namespace")]
	if !ok {
		notFound(c, ErrNamespaceNotFound)
		return
	}

	resp := updatePropertiesResponse{Updated: []string{}, Removed: []string{}, Missing: []string{}}
	for _, k := range req.Removals {
		if _, ok := props[k]; ok {
			delete(props, k)
			resp.Removed = append(resp.Removed, k)
		} else {
			resp.Missing = append(resp.Missing, k)
		}
	}
	for k, v := range req.Updates {
		props[k] = v
		resp.Updated = append(resp.Updated, k)
	}
	slices.Sort(resp.Updated)

	c.JSON(http.StatusOK, resp)
}

func (s *Server) listTables(c *gin.Context) {
	key := c.Param("namespace")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.namespaces[key]; !ok {
		notFound(c, ErrNamespaceNotFound)
		return
	}

	resp := listTablesResponse{Identifiers: []Identifier{}}
	for _, t := range s.tables {
		if joinNamespace(t.namespace) == key {
			resp.Identifiers = append(resp.Identifiers, Identifier{Namespace: t.namespace, Name: t.name})
		}
	}
	slices.SortFunc(resp.Identifiers, func(a, b Identifier) int {
		return strings.Compare(a.Name, b.Name)
	})

	c.JSON(http.StatusOK, resp)
}

func (s *Server) createTable(c *gin.Context) {
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrBadRequest})
		return
	}
	s.addTable(c, req.Name, func(ns []string) (*tableEntry, error) {
		location := req.Location
		if location == "" {
			location = s.defaultLocation(ns, req.Name)
		}
		return newTableEntry(ns, req.Name, location, req.Schema, req.Properties)
	})
}

func (s *Server) registerTable(c *gin.Context) {
	var req registerTableRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.MetadataLocation == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrBadRequest})
		return
	}
	s.addTable(c, req.Name, func(ns []string) (*tableEntry, error) {
		e, err := newTableEntry(ns, req.Name, s.defaultLocation(ns, req.Name), nil, nil)
		if err != nil {
			return nil, err
		}
		e.metadataLoc = req.MetadataLocation
		return e, nil
	})
}

func (s *Server) addTable(c *gin.Context, name string, build func(ns []string) (*tableEntry, error)) {
	ns := strings.Split(c.Param("namespace"), namespaceSeparator)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.namespaces[joinNamespace(ns)]; !ok {
		notFound(c, ErrNamespaceNotFound)
		return
	}
	key := tableKey(ns, name)
	if _, ok := s.tables[key]; ok {
		c.JSON(http.StatusConflict, ErrorResponse{Error: ErrTableAlreadyExists})
		return
	}

	entry, err := build(ns)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorModel{Message: err.Error(), Type: "BadRequestException", Code: http.StatusBadRequest}})
		return
	}
	s.tables[key] = entry

	c.JSON(http.StatusOK, s.tableResponse(entry))
}

func (s *Server) defaultLocation(ns []string, name string) string {
	return strings.TrimSuffix(s.cfg.Warehouse, "/") + "/" + strings.Join(ns, ".") + "/" + name
}

func (s *Server) tableResponse(e *tableEntry) loadTableResponse {
	return loadTableResponse{
		MetadataLoc: e.metadataLoc,
		Metadata:    e.metadata(),
		Config:      s.cfg.TableConfig,
	}
}

func (s *Server) lookupTable(c *gin.Context) (*tableEntry, bool) {
	ns := strings.Split(c.Param("namespace"), namespaceSeparator)
	e, ok := s.tables[tableKey(ns, c.Param("table"))]
	return e, ok
}

func (s *Server) loadTable(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookupTable(c)
	if !ok {
		notFound(c, ErrTableNotFound)
		return
	}
	c.JSON(http.StatusOK, s.tableResponse(e))
}

func (s *Server) tableExists(c *gin.Context) {
	s.mu.Lock()
	_, ok := s.lookupTable(c)
	s.mu.Unlock()

	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) commitTable(c *gin.Context) {
	var req commitTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrBadRequest})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookupTable(c)
	if !ok {
		notFound(c, ErrTableNotFound)
		return
	}
	if err := e.apply(req.Requirements, req.Updates); err != nil {
		failed := ErrRequirementFailed
		failed.Message = "Requirement failed: " + err.Error()
		c.JSON(http.StatusConflict, ErrorResponse{Error: failed})
		return
	}

	c.JSON(http.StatusOK, commitTableResponse{MetadataLoc: e.metadataLoc, Metadata: e.metadata()})
}

func (s *Server) dropTable(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookupTable(c)
	if !ok {
		notFound(c, ErrTableNotFound)
		return
	}
	delete(s.tables, tableKey(e.namespace, e.name))
	c.Status(http.StatusNoContent)
}

func (s *Server) renameTable(c *gin.Context) {
	var req renameTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrBadRequest})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src := tableKey(req.Source.Namespace, req.Source.Name)
	e, ok := s.tables[src]
	if !ok {
		notFound(c, ErrTableNotFound)
		return
	}
	if _, ok := s.namespaces[joinNamespace(req.Destination.Namespace)]; !ok {
		notFound(c, ErrNamespaceNotFound)
		return
	}
	dst := tableKey(req.Destination.Namespace, req.Destination.Name)
	if _, ok := s.tables[dst]; ok {
		c.JSON(http.StatusConflict, ErrorResponse{Error: ErrTableAlreadyExists})
		return
	}

	delete(s.tables, src)
	e.namespace = append([]string(nil), req.Destination.Namespace...)
	e.name = req.Destination.Name
	s.tables[dst] = e

	c.Status(http.StatusNoContent)
}
