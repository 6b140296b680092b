// Package catalogtest provides an in-memory REST catalog server for tests.
// It implements the namespace, table, config and token endpoints and can be
// told to fail specific routes or expire issued tokens.
package catalogtest

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xixipi-lining/iceberg-rest-client/logger"
)

const namespaceSeparator = "\x1F"

type Config struct {
	// Prefix is the resource-path prefix catalog routes are served under.
	Prefix    string
	Defaults  map[string]string
	Overrides map[string]string

	// Credentials maps client ids to secrets. A non-nil map turns on bearer
	// authentication for every route except the token endpoint.
	Credentials map[string]string

	// TableConfig is returned as the config of every load table response.
	TableConfig map[string]string

	// RelativeNamespaces lists child namespaces without their parent.
	RelativeNamespaces bool

	Warehouse string
	Logger    logger.Logger
}

// Request is a recorded inbound request.
type Request struct {
	ID       string
	Method   string
	Route    string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

type fault struct {
	method string
	route  string
	status int
	body   string
}

type Server struct {
	*httptest.Server

	cfg  Config
	base string
	log  logger.Logger

	mu         sync.Mutex
	namespaces map[string]map[string]string
	tables     map[string]*tableEntry
	tokens     map[string]bool
	issued     int
	faults     []fault
	requests   []Request
}

// New starts a server. Callers must Close it.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Warehouse == "" {
		cfg.Warehouse = "file:///tmp/warehouse"
	}

	s := &Server{
		cfg:        cfg,
		base:       "/v1",
		log:        cfg.Logger,
		namespaces: map[string]map[string]string{},
		tables:     map[string]*tableEntry{},
		tokens:     map[string]bool{},
	}
	if p := strings.Trim(cfg.Prefix, "/"); p != "" {
		s.base = "/v1/" + p
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.UseRawPath = true
	engine.Use(cors.Default())
	engine.Use(gin.Recovery())
	engine.Use(s.record())
	engine.Use(s.injectFaults())
	engine.Use(s.authenticate())
	s.setup(engine)

	s.Server = httptest.NewServer(engine)
	return s
}

func (s *Server) setup(engine *gin.Engine) {
	v1 := engine.Group("/v1")
	{
		v1.GET("/config", s.getConfig)
		v1.POST("/oauth/tokens", s.issueToken)
	}

	api := engine.Group(s.base)
	{
		namespaces := api.Group("/namespaces")
		{
			namespaces.GET("", s.listNamespaces)
			namespaces.POST("", s.createNamespace)

			namespace := namespaces.Group("/:namespace")
			{
				namespace.GET("", s.loadNamespace)
				namespace.HEAD("", s.namespaceExists)
				namespace.DELETE("", s.dropNamespace)
				namespace.POST("/properties", s.updateProperties)
				namespace.POST("/register", s.registerTable)

				tables := namespace.Group("/tables")
				{
					tables.GET("", s.listTables)
					tables.POST("", s.createTable)

					table := tables.Group("/:table")
					{
						table.GET("", s.loadTable)
						table.HEAD("", s.tableExists)
						table.POST("", s.commitTable)
						table.DELETE("", s.dropTable)
					}
				}
			}
		}

		api.POST("/tables/rename", s.renameTable)
	}
}

// route strips the version and prefix from a gin route pattern.
func (s *Server) route(fullPath string) string {
	if r, ok := strings.CutPrefix(fullPath, s.base+"/"); ok {
		return "/" + r
	}
	return strings.TrimPrefix(fullPath, "/v1")
}

func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.New().String()

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			ID:       requestID,
			Method:   c.Request.Method,
			Route:    s.route(c.FullPath()),
			Path:     c.Request.URL.Path,
			RawQuery: c.Request.URL.RawQuery,
			Header:   c.Request.Header.Clone(),
			Body:     body,
		})
		s.mu.Unlock()

		c.Next()

		s.log.
			WithField("requestID", requestID).
			WithField("path", c.Request.URL.Path).
			WithField("method", c.Request.Method).
			WithField("status", c.Writer.Status()).
			WithField("latency", time.Since(start).String()).
			Debug("request")
	}
}

func (s *Server) injectFaults() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := s.route(c.FullPath())

		s.mu.Lock()
		var hit *fault
		for i, f := range s.faults {
			if f.method == c.Request.Method && f.route == route {
				hit = &f
				s.faults = append(s.faults[:i], s.faults[i+1:]...)
				break
			}
		}
		s.mu.Unlock()

		if hit != nil {
			c.Data(hit.status, "application/json", []byte(hit.body))
			c.Abort()
		}
	}
}

func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.Credentials == nil || s.route(c.FullPath()) == "/oauth/tokens" {
			return
		}

		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		s.mu.Lock()
		valid, known := s.tokens[token]
		s.mu.Unlock()

		switch {
		case !ok || !known:
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: ErrNotAuthorized})
		case !valid:
			c.AbortWithStatusJSON(ErrAuthenticationTimeout.Code, ErrorResponse{Error: ErrAuthenticationTimeout})
		}
	}
}

// Fail makes the next request matching method and route answer with status
// and body instead of reaching its handler. Routes are written without the
// version or prefix, e.g. "/namespaces/:namespace/tables/:table".
func (s *Server) Fail(method, route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, fault{method: method, route: route, status: status, body: body})
}

// FailJSON is Fail with a generic error body.
func (s *Server) FailJSON(method, route string, status int, errType, message string) {
	s.Fail(method, route, status, fmt.Sprintf(`{"error":{"message":%q,"type":%q,"code":%d}}`, message, errType, status))
}

// ExpireTokens marks every issued token as expired.
func (s *Server) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for t := range s.tokens {
		s.tokens[t] = false
	}
}

// IssuedTokens reports how many tokens the token endpoint handed out.
func (s *Server) IssuedTokens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo filters Requests by method and route.
func (s *Server) RequestsTo(method, route string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Route == route {
			out = append(out, r)
		}
	}
	return out
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}
