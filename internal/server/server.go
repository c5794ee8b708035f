// Package server is the thin HTTP surface over the query pipeline.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"ncert-rag/internal/llm"
	"ncert-rag/internal/models"
)

// QueryService is what the handlers need from the pipeline.
type QueryService interface {
	Answer(ctx context.Context, q models.Query) (*models.QueryResponse, error)
	AnswerStream(ctx context.Context, q models.Query, fn func(fragment string) error) error
	DocumentCount(ctx context.Context) (int, error)
	ModelInfo() llm.ModelInfo
}

type Server struct {
	service QueryService
}

func NewServer(service QueryService) *Server {
	return &Server{service: service}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.root)
	router.GET("/health", s.health)
	router.GET("/model-info", s.modelInfo)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/query", s.query)
		apiV1.POST("/query/stream", s.queryStream)
	}
	return router
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "NCERT Doubt Solver - Multilingual RAG API",
		"features": gin.H{
			"cross_language_support": true,
			"supported_languages":    []string{models.LanguageEnglish, models.LanguageHindi},
		},
	})
}

func (s *Server) health(c *gin.Context) {
	count, err := s.service.DocumentCount(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"total_documents": count,
	})
}

func (s *Server) modelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.ModelInfo())
}

func (s *Server) query(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}

	response, err := s.service.Answer(c.Request.Context(), q)
	if err != nil {
		log.Error().Err(err).Msg("Query processing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, response)
}

func (s *Server) queryStream(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}

	c.Writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Writer.WriteHeader(http.StatusOK)

	err := s.service.AnswerStream(c.Request.Context(), q, func(fragment string) error {
		if _, err := c.Writer.WriteString(fragment); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		// Headers are already out; the disconnect or failure ends the stream.
		log.Error().Err(err).Msg("Streaming query failed")
	}
}

func bindQuery(c *gin.Context) (models.Query, bool) {
	var q models.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return q, false
	}
	if q.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return q, false
	}
	if q.Grade == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "grade is required"})
		return q, false
	}
	return q, true
}
