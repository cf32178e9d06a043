// Package server exposes the knowledge graph over HTTP.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/graphrag/internal/core"
	"github.com/agenthands/graphrag/internal/core/extraction"
	"github.com/agenthands/graphrag/internal/core/model"
	"github.com/agenthands/graphrag/internal/logger"
	"github.com/agenthands/graphrag/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

type Server struct {
	RAG     *core.GraphRAG
	Metrics *metrics.Metrics
}

func NewServer(rag *core.GraphRAG, m *metrics.Metrics) *Server {
	return &Server{RAG: rag, Metrics: m}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLog())

	r.GET("/health", s.Health)
	r.GET("/schema", s.Schema)

	r.POST("/extraction/extract", s.Extract)
	r.POST("/extraction/extract-and-import", s.ExtractAndImport)

	r.GET("/graph/stats", s.GraphStats)
	r.POST("/graph/search", s.Search)
	r.GET("/graph/entities/:name/relationships", s.EntityRelationships)

	r.POST("/communities/detect", s.DetectCommunities)
	r.POST("/communities/summarize", s.SummarizeCommunities)
	r.GET("/communities", s.ListCommunities)
	r.GET("/communities/:id", s.GetCommunity)

	r.POST("/qa/ask", s.Ask)

	if s.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}
	return r
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"request_id", c.GetString("request_id"),
			"elapsed", time.Since(start))
	}
}

// fail writes err with a status derived from its code.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrSchemaUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, model.ErrCommunityNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrEmptyGraph):
		status = http.StatusConflict
	}
	logger.Error("request failed", "path", c.FullPath(), "request_id", c.GetString("request_id"), "err", err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Schema(c *gin.Context) {
	sc, err := s.RAG.Schema()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"version":     sc.Version,
		"description": sc.Description,
		"entities":    sc.Entities,
		"relations":   sc.Relations,
		"loaded_at":   sc.LoadedAt,
	})
}

type ExtractRequest struct {
	Text string `json:"text" binding:"required"`
}

type ExtractResponse struct {
	Success          bool                    `json:"success"`
	Error            string                  `json:"error,omitempty"`
	Result           *model.ExtractionResult `json:"result"`
	Stats            model.ExtractionStats   `json:"stats"`
	ValidationErrors []string                `json:"validation_errors"`
}

func (s *Server) extractResponse(result *model.ExtractionResult) ExtractResponse {
	return ExtractResponse{
		Success:          result.Success,
		Error:            result.ErrorMessage(),
		Result:           result,
		Stats:            extraction.Stats(result),
		ValidationErrors: s.RAG.ValidateExtraction(result),
	}
}

func (s *Server) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "text is required")
		return
	}
	result, err := s.RAG.Extract(c.Request.Context(), req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.extractResponse(result))
}

func (s *Server) ExtractAndImport(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "text is required")
		return
	}
	out, err := s.RAG.Ingest(c.Request.Context(), req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"extraction": s.extractResponse(out.Extraction),
		"imported":   out.Imported,
		"import":     out.Import,
	})
}

func (s *Server) GraphStats(c *gin.Context) {
	stats, err := s.RAG.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// SearchRequest filters are optional. An empty body lists entities up to the default limit.
type SearchRequest struct {
	EntityType  string `json:"entity_type"`
	NamePattern string `json:"name_pattern"`
	Limit       int    `json:"limit" binding:"gte=0"`
}

func (s *Server) Search(c *gin.Context) {
	var req SearchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid search request")
			return
		}
	}
	entities, err := s.RAG.SearchEntities(c.Request.Context(), req.EntityType, req.NamePattern, req.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(entities), "entities": entities})
}

func (s *Server) EntityRelationships(c *gin.Context) {
	name := c.Param("name")
	rels, err := s.RAG.EntityRelationships(c.Request.Context(), name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entity": name, "count": len(rels), "relationships": rels})
}

type DetectRequest struct {
	Algorithm string `json:"algorithm"`
}

func (s *Server) DetectCommunities(c *gin.Context) {
	var req DetectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request")
			return
		}
	}
	result, err := s.RAG.DetectCommunities(c.Request.Context(), req.Algorithm)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type SummarizeRequest struct {
	Level       string `json:"level"`
	CommunityID *int   `json:"community_id"`
}

func (s *Server) SummarizeCommunities(c *gin.Context) {
	var req SummarizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request")
			return
		}
	}
	ctx := c.Request.Context()
	if req.CommunityID != nil {
		cs, err := s.RAG.SummarizeCommunity(ctx, *req.CommunityID, req.Level)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, cs)
		return
	}
	report, err := s.RAG.SummarizeCommunities(ctx, req.Level)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) ListCommunities(c *gin.Context) {
	list, err := s.RAG.ListCommunities(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"communities": list, "total": len(list)})
}

func (s *Server) GetCommunity(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		badRequest(c, "community id must be an integer")
		return
	}
	cs, err := s.RAG.Store.CommunitySummary(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cs)
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
	Strategy string `json:"strategy"`
}

func (s *Server) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "question is required")
		return
	}
	if _, err := model.ParseStrategy(req.Strategy); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := s.RAG.Ask(c.Request.Context(), req.Question, req.Strategy)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
