package emulator

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/pushmesh/hub-sdk-go/model/hub"
	"github.com/pushmesh/hub-sdk-go/wire"
	"github.com/samber/lo"
)

// Usage is the injectable counter state of one emulated hub.
type Usage struct {
	Operations             int64 `json:"dailyOperations"`
	MaxActiveDevices       int64 `json:"dailyMaxActiveDevices"`
	MaxActiveRegistrations int64 `json:"dailyMaxActiveRegistrations"`
}

type store struct {
	log   *slog.Logger
	mx    sync.Mutex
	hubs  map[string]*hub.Description
	usage map[string]*Usage
}

// NewHandler builds the in-memory stand-in for the hub management REST
// surface: same routes, same wire documents, bearer-token auth. Every
// successful hub operation bumps the daily operations counter, and tests
// may inject arbitrary counters via POST {hub}/usage.
func NewHandler(token string, log *slog.Logger) (h *gin.Engine) {
	gin.SetMode(gin.ReleaseMode)
	h = gin.New()
	s := &store{
		log:   log,
		hubs:  map[string]*hub.Description{},
		usage: map[string]*Usage{},
	}
	g := h.Group("/v1/hubs", authorize(token))
	g.GET("", s.list)
	g.PUT("/:hub", s.put)
	g.GET("/:hub", s.get)
	g.DELETE("/:hub", s.del)
	g.POST("/:hub/usage", s.setUsage)
	return
}

func authorize(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer "+token {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func (s *store) put(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	var d *hub.Description
	if err == nil {
		d, err = hub.UnmarshalWireXML(data)
	}
	if err != nil {
		c.String(http.StatusBadRequest, "bad hub document: %s", err)
		return
	}
	path := c.Param("hub")
	if d.Path() != path {
		c.String(http.StatusBadRequest, "document path %q does not match request path %q", d.Path(), path)
		return
	}
	s.mx.Lock()
	defer s.mx.Unlock()
	_, exists := s.hubs[path]
	switch {
	case c.GetHeader("If-None-Match") == "*":
		if exists {
			c.String(http.StatusConflict, "hub %q already exists", path)
			return
		}
		s.hubs[path] = d
		s.usage[path] = &Usage{}
		s.usage[path].Operations++
		s.log.Info(fmt.Sprintf("emulator: created hub %s", path))
		s.respond(c, http.StatusCreated, d)
	case c.GetHeader("If-Match") == "*":
		if !exists {
			c.String(http.StatusNotFound, "hub %q does not exist", path)
			return
		}
		s.hubs[path] = d
		s.usage[path].Operations++
		s.log.Info(fmt.Sprintf("emulator: updated hub %s", path))
		s.respond(c, http.StatusOK, d)
	default:
		c.String(http.StatusBadRequest, "PUT requires If-None-Match or If-Match")
	}
}

func (s *store) get(c *gin.Context) {
	path := c.Param("hub")
	s.mx.Lock()
	defer s.mx.Unlock()
	d, found := s.hubs[path]
	if !found {
		c.String(http.StatusNotFound, "hub %q does not exist", path)
		return
	}
	s.usage[path].Operations++
	s.respond(c, http.StatusOK, d)
}

func (s *store) del(c *gin.Context) {
	path := c.Param("hub")
	s.mx.Lock()
	defer s.mx.Unlock()
	_, found := s.hubs[path]
	if !found {
		c.String(http.StatusNotFound, "hub %q does not exist", path)
		return
	}
	delete(s.hubs, path)
	delete(s.usage, path)
	s.log.Info(fmt.Sprintf("emulator: deleted hub %s", path))
	c.Status(http.StatusNoContent)
}

func (s *store) list(c *gin.Context) {
	s.mx.Lock()
	paths := lo.Keys(s.hubs)
	s.mx.Unlock()
	sort.Strings(paths)
	c.JSON(http.StatusOK, paths)
}

func (s *store) setUsage(c *gin.Context) {
	var u Usage
	err := c.ShouldBindJSON(&u)
	if err != nil {
		c.String(http.StatusBadRequest, "bad usage document: %s", err)
		return
	}
	path := c.Param("hub")
	s.mx.Lock()
	defer s.mx.Unlock()
	_, found := s.hubs[path]
	if !found {
		c.String(http.StatusNotFound, "hub %q does not exist", path)
		return
	}
	s.usage[path] = &u
	c.Status(http.StatusNoContent)
}

// respond re-serializes the stored description with the emulated usage
// counters spliced into the wire record, the same way the real service
// reports them. Callers hold the store lock.
func (s *store) respond(c *gin.Context, status int, d *hub.Description) {
	rec := d.WireRecord()
	u := s.usage[d.Path()]
	if u.Operations > 0 {
		rec[hub.FieldDailyOperations] = wire.Value{Text: strconv.FormatInt(u.Operations, 10)}
	}
	if u.MaxActiveDevices > 0 {
		rec[hub.FieldDailyMaxActiveDevices] = wire.Value{Text: strconv.FormatInt(u.MaxActiveDevices, 10)}
	}
	if u.MaxActiveRegistrations > 0 {
		rec[hub.FieldDailyMaxActiveRegistrations] = wire.Value{Text: strconv.FormatInt(u.MaxActiveRegistrations, 10)}
	}
	data, err := wire.EncodeXML(hub.DescriptionSchema(), rec)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to serialize hub %q: %s", d.Path(), err)
		return
	}
	c.Data(status, "application/xml", data)
}
