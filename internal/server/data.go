package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dadmor/campaignforge/internal/db"
	"github.com/dadmor/campaignforge/internal/metrics"
)

// listEnvelope is the list response shape the admin frontend expects:
// the page plus the unpaginated total for its pagination controls.
type listEnvelope struct {
	Data  []map[string]any `json:"data"`
	Total int              `json:"total"`
}

// reservedParams are query keys with list semantics; everything else
// becomes an equality filter.
var reservedParams = map[string]bool{
	"limit":  true,
	"offset": true,
	"sort":   true,
	"order":  true,
}

func (s *Server) listOptions(c *gin.Context) db.ListOptions {
	opts := db.ListOptions{
		SortField: c.Query("sort"),
		SortDesc:  c.Query("order") == "desc",
	}
	if n, err := strconv.Atoi(c.Query("limit")); err == nil {
		opts.Limit = n
	}
	if n, err := strconv.Atoi(c.Query("offset")); err == nil {
		opts.Offset = n
	}

	filter := make(map[string]any)
	for key, values := range c.Request.URL.Query() {
		if reservedParams[key] || len(values) == 0 {
			continue
		}
		filter[key] = values[0]
	}
	if len(filter) > 0 {
		opts.Filter = filter
	}
	return opts
}

func (s *Server) observeQuery(start time.Time, err error) {
	if s.collector != nil {
		s.collector.RecordOutcome(metrics.OpDBQuery, time.Since(start), err)
	}
}

func (s *Server) handleList(c *gin.Context) {
	start := time.Now()
	records, total, err := s.data.List(c.Request.Context(), c.Param("resource"), s.listOptions(c))
	s.observeQuery(start, err)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []map[string]any{}
	}
	c.JSON(http.StatusOK, listEnvelope{Data: records, Total: total})
}

func (s *Server) handleGet(c *gin.Context) {
	start := time.Now()
	record, err := s.data.Get(c.Request.Context(), c.Param("resource"), c.Param("id"))
	s.observeQuery(start, err)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) handleCreate(c *gin.Context) {
	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	start := time.Now()
	record, err := s.data.Create(c.Request.Context(), c.Param("resource"), values)
	s.observeQuery(start, err)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": record})
}

func (s *Server) handleUpdate(c *gin.Context) {
	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	start := time.Now()
	record, err := s.data.Update(c.Request.Context(), c.Param("resource"), c.Param("id"), values)
	s.observeQuery(start, err)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) handleDelete(c *gin.Context) {
	start := time.Now()
	err := s.data.Delete(c.Request.Context(), c.Param("resource"), c.Param("id"))
	s.observeQuery(start, err)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
