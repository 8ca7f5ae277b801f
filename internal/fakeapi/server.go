// Package fakeapi is an in-process stand-in for the YouVersion Platform API.
// It serves a small embedded data set with the same paths, parameters,
// status codes and JSON shapes as the real service, records every request
// and lets tests force any route to fail.
package fakeapi

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// AppKeyHeader is the header the API authenticates with.
const AppKeyHeader = "X-YVP-App-Key"

// Recorded is one request as the server saw it.
type Recorded struct {
	Method string
	// Path is the escaped path exactly as sent.
	Path   string
	Query  url.Values
	Header http.Header
}

// Failure replaces the normal response of one path.
type Failure struct {
	Status int
	Body   string
	Header map[string]string
	// Times limits how often the failure fires; 0 means always.
	Times int
}

// Server is the fake API. The zero value is not usable; call New.
type Server struct {
	router *gin.Engine
	data   *dataset
	appKey string

	mu       sync.Mutex
	requests []Recorded
	failures map[string]*Failure
	latency  time.Duration
}

// Option configures Server.
type Option func(*Server)

// WithAppKey sets the only accepted app key. Empty accepts any non-empty key.
func WithAppKey(key string) Option {
	return func(s *Server) { s.appKey = key }
}

// WithLatency delays every response.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

// New builds the fake API router around the embedded fixtures.
func New(opts ...Option) (*Server, error) {
	d, err := loadDataset()
	if err != nil {
		return nil, err
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:   gin.New(),
		data:     d,
		failures: make(map[string]*Failure),
	}
	for _, o := range opts {
		o(s)
	}

	s.router.Use(gin.Recovery(), s.record, s.inject, s.auth)
	s.routes()
	return s, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

// Fail makes requests to path (escaped, without query) answer with f.
func (s *Server) Fail(path string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = &f
}

// Reset drops recorded requests and injected failures.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
	s.failures = make(map[string]*Failure)
}

// Requests returns a copy of everything received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

// Last returns the most recent request.
func (s *Server) Last() (Recorded, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Recorded{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.requests = append(s.requests, Recorded{
		Method: c.Request.Method,
		Path:   c.Request.URL.EscapedPath(),
		Query:  c.Request.URL.Query(),
		Header: c.Request.Header.Clone(),
	})
	latency := s.latency
	s.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}
	c.Next()
}

func (s *Server) inject(c *gin.Context) {
	s.mu.Lock()
	f, ok := s.failures[c.Request.URL.EscapedPath()]
	if ok && f.Times > 0 {
		f.Times--
		if f.Times == 0 {
			delete(s.failures, c.Request.URL.EscapedPath())
		}
	}
	s.mu.Unlock()
	if !ok {
		c.Next()
		return
	}

	for k, v := range f.Header {
		c.Header(k, v)
	}
	c.Data(f.Status, "application/json", []byte(f.Body))
	c.Abort()
}

func (s *Server) auth(c *gin.Context) {
	key := c.GetHeader(AppKeyHeader)
	if key == "" || (s.appKey != "" && key != s.appKey) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or missing app key"})
		return
	}
	c.Next()
}

func (s *Server) routes() {
	v1 := s.router.Group("/v1")

	v1.GET("/bibles", s.listVersions)
	v1.GET("/bibles/:id", s.getVersion)
	v1.GET("/bibles/:id/books", s.listBooks)
	v1.GET("/bibles/:id/books/:book", s.getBook)
	v1.GET("/bibles/:id/books/:book/chapters", s.listChapters)
	v1.GET("/bibles/:id/books/:book/chapters/:chapter", s.getChapter)
	v1.GET("/bibles/:id/books/:book/chapters/:chapter/verses", s.listVerses)
	v1.GET("/bibles/:id/books/:book/chapters/:chapter/verses/:verse", s.getVerse)
	v1.GET("/bibles/:id/passages/:locator", s.getPassage)

	v1.GET("/languages", s.listLanguages)
	v1.GET("/languages/:id", s.getLanguage)

	v1.GET("/licenses", s.listLicenses)

	v1.GET("/organizations", s.listOrganizations)
	v1.GET("/organizations/:id", s.getOrganization)
	v1.GET("/organizations/:id/bibles", s.listOrganizationVersions)

	v1.GET("/verse_of_the_days", s.listDailySelections)
	v1.GET("/verse_of_the_days/:day", s.getDailySelection)

	s.router.NoRoute(func(c *gin.Context) {
		notFound(c, "Route %s not found", c.Request.URL.Path)
	})
}

func notFound(c *gin.Context, format string, args ...any) {
	c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf(format, args...)})
}

func badRequest(c *gin.Context, format string, args ...any) {
	c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf(format, args...)})
}

// pageParams are the parsed page_size, page_token and fields[] parameters.
type pageParams struct {
	size   int
	offset int
	fields []string
}

const defaultPageSize = 25

func parsePage(c *gin.Context) (pageParams, bool) {
	p := pageParams{size: defaultPageSize, fields: c.QueryArray("fields[]")}

	switch raw := c.Query("page_size"); raw {
	case "":
	case "*":
		if len(p.fields) == 0 || len(p.fields) > 3 {
			badRequest(c, "page_size=* requires between 1 and 3 fields")
			return p, false
		}
		p.size = -1
	default:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			badRequest(c, "page_size must be between 1 and 100")
			return p, false
		}
		p.size = n
	}

	if tok := c.Query("page_token"); tok != "" {
		n, err := strconv.Atoi(tok)
		if err != nil || n < 0 {
			badRequest(c, "invalid page_token")
			return p, false
		}
		p.offset = n
	}
	return p, true
}

// writePage slices items according to p and writes the collection envelope.
func writePage[T any](c *gin.Context, p pageParams, items []T, project func(T) any) {
	total := len(items)
	start := min(p.offset, total)
	end := total
	if p.size > 0 {
		end = min(start+p.size, total)
	}

	data := make([]any, 0, end-start)
	for _, it := range items[start:end] {
		data = append(data, narrow(project(it), p.fields))
	}

	var next any
	if end < total {
		next = strconv.Itoa(end)
	}
	c.JSON(http.StatusOK, gin.H{
		"data":            data,
		"next_page_token": next,
		"total_count":     total,
	})
}

// writeList writes an unpaginated collection envelope.
func writeList[T any](c *gin.Context, items []T, project func(T) any) {
	data := make([]any, 0, len(items))
	for _, it := range items {
		data = append(data, project(it))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// narrow keeps only fields. Items that are not JSON objects pass through.
func narrow(v any, fields []string) any {
	m, ok := v.(map[string]any)
	if !ok || len(fields) == 0 {
		return v
	}
	out := make(map[string]any, len(fields)+1)
	out["id"] = m["id"]
	for _, f := range fields {
		if val, ok := m[f]; ok {
			out[f] = val
		}
	}
	return out
}

var languageRangeRe = regexp.MustCompile(`^(\*|[A-Za-z]{1,8})(-(\*|[A-Za-z0-9]{1,8}))*$`)

func matchesRange(tag, rng string) bool {
	if rng == "*" {
		return true
	}
	rng = strings.TrimSuffix(rng, "-*")
	return strings.EqualFold(tag, rng) || strings.HasPrefix(strings.ToLower(tag), strings.ToLower(rng)+"-")
}

func identity[T any](v T) any { return v }
