// Package httpserver exposes a registry of ringfs partitions over HTTP,
// grounded on cmd/readup/main.go's gin.Default() + gin-contrib/static
// server shape, narrowed from cannyls's put/get/random verbs to ringfs's
// append/fetch/discard verbs plus a Prometheus scrape endpoint.
package httpserver

import (
	"encoding/hex"
	"net/http"
	"sync"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/flashring/ringfs/metrics"
	"github.com/flashring/ringfs/registry"
	"github.com/flashring/ringfs/ringerr"
	"github.com/flashring/ringfs/ringfs"
)

// Server wraps a registry.Registry with the mutex HTTP handlers need
// because ringfs.Instance has no internal locking and concurrent
// mutating calls on one instance are undefined.
type Server struct {
	reg     *registry.Registry
	locks   map[string]*sync.Mutex
	locksMu sync.Mutex
}

// New builds a Server around reg.
func New(reg *registry.Registry) *Server {
	return &Server{reg: reg, locks: make(map[string]*sync.Mutex)}
}

func (s *Server) lockFor(name string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

func (s *Server) instance(c *gin.Context) (*ringfs.Instance, bool) {
	name := c.Param("name")
	inst, err := s.reg.Get(name)
	if err != nil {
		c.String(http.StatusNotFound, err.Error())
		return nil, false
	}
	return inst, true
}

type appendRequest struct {
	Payload string `json:"payload"` // hex-encoded, must decode to the object size
}

type fetchResponse struct {
	Payload string `json:"payload"`
}

type statsResponse struct {
	Capacity      int32 `json:"capacity"`
	CountEstimate int32 `json:"count_estimate"`
	CountExact    int32 `json:"count_exact"`
}

// Engine builds the gin.Engine serving this Server's routes.
func (s *Server) Engine() *gin.Engine {
	r := gin.Default()
	r.Use(static.Serve("/static", static.LocalFile("./static", false)))

	r.GET("/partitions", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.reg.Names())
	})

	r.GET("/metrics", gin.WrapH(metrics.PrometheusHandler))

	r.GET("/partitions/:name/stats", func(c *gin.Context) {
		inst, ok := s.instance(c)
		if !ok {
			return
		}
		name := c.Param("name")
		lock := s.lockFor(name)
		lock.Lock()
		defer lock.Unlock()

		exact, err := inst.CountExact()
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.JSON(http.StatusOK, statsResponse{
			Capacity:      inst.Capacity(),
			CountEstimate: inst.CountEstimate(),
			CountExact:    exact,
		})
	})

	r.POST("/partitions/:name/append", func(c *gin.Context) {
		inst, ok := s.instance(c)
		if !ok {
			return
		}
		var req appendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		payload, err := hex.DecodeString(req.Payload)
		if err != nil {
			c.String(http.StatusBadRequest, "payload must be hex-encoded")
			return
		}

		name := c.Param("name")
		lock := s.lockFor(name)
		lock.Lock()
		defer lock.Unlock()

		if err := inst.Append(payload); err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.POST("/partitions/:name/fetch", func(c *gin.Context) {
		inst, ok := s.instance(c)
		if !ok {
			return
		}
		var req struct {
			ObjectSize int32 `json:"object_size"`
		}
		_ = c.ShouldBindJSON(&req)
		if req.ObjectSize <= 0 {
			c.String(http.StatusBadRequest, "object_size is required")
			return
		}

		name := c.Param("name")
		lock := s.lockFor(name)
		lock.Lock()
		defer lock.Unlock()

		buf := make([]byte, req.ObjectSize)
		if err := inst.Fetch(buf); err != nil {
			if errors.Cause(err) == ringerr.ErrEmpty {
				c.Status(http.StatusNoContent)
				return
			}
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.JSON(http.StatusOK, fetchResponse{Payload: hex.EncodeToString(buf)})
	})

	r.POST("/partitions/:name/discard", func(c *gin.Context) {
		inst, ok := s.instance(c)
		if !ok {
			return
		}
		name := c.Param("name")
		lock := s.lockFor(name)
		lock.Lock()
		defer lock.Unlock()

		if err := inst.Discard(); err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.Status(http.StatusNoContent)
	})

	return r
}

// Run starts the HTTP server on addr, blocking until it exits.
func (s *Server) Run(addr string) error {
	return s.Engine().Run(addr)
}
