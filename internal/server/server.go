package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppiankov/lexnav/internal/document"
	"github.com/ppiankov/lexnav/internal/pipeline"
)

// Server exposes the traversal engine over HTTP JSON.
type Server struct {
	pipe   *pipeline.Pipeline
	log    *zap.Logger
	engine *gin.Engine
}

// New creates a server around a ready pipeline.
func New(pipe *pipeline.Pipeline, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		pipe:   pipe,
		log:    log,
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)
	api := s.engine.Group("/api")
	{
		api.POST("/traversals", s.startTraversal)
		api.GET("/results/latest", s.latestResult)
		api.DELETE("/results/latest", s.clearResult)
		api.GET("/document", s.documentTree)
	}
}

// Router returns the underlying engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Info("http server listening", zap.String("addr", addr))
	return s.engine.Run(addr)
}

// TraversalRequest is the ingress body for starting a traversal.
type TraversalRequest struct {
	CaseInformation map[string]interface{} `json:"caseInformation" binding:"required"`
	MaxDepth        int                    `json:"maxDepth"`
	Threshold       *float64               `json:"threshold"`
}

func (s *Server) startTraversal(c *gin.Context) {
	var req TraversalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := s.pipe.Run(c.Request.Context(), req.CaseInformation, pipeline.RunOptions{
		MaxDepth:  req.MaxDepth,
		Threshold: req.Threshold,
	})
	if err != nil {
		s.log.Warn("traversal request failed", zap.Error(err))
		switch {
		case errors.Is(err, pipeline.ErrNilCaseInfo):
			errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		case isDocumentError(err):
			errorResponse(c, http.StatusUnprocessableEntity, "INVALID_DOCUMENT", err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			errorResponse(c, http.StatusServiceUnavailable, "CANCELLED", err.Error())
		default:
			errorResponse(c, http.StatusInternalServerError, "TRAVERSAL_FAILED", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func (s *Server) latestResult(c *gin.Context) {
	result, err := s.pipe.Latest()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "STORE_UNAVAILABLE", err.Error())
		return
	}
	if result == nil {
		errorResponse(c, http.StatusNotFound, "NOT_FOUND", "no traversal result stored")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func (s *Server) clearResult(c *gin.Context) {
	if err := s.pipe.ClearLatest(); err != nil {
		errorResponse(c, http.StatusInternalServerError, "STORE_UNAVAILABLE", err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) documentTree(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "document": s.pipe.Tree()})
}

func (s *Server) health(c *gin.Context) {
	oracleUp := false
	if provider := s.pipe.Provider(); provider != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		oracleUp = provider.IsAvailable(ctx)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "oracle": oracleUp})
}

func isDocumentError(err error) bool {
	var malformed *document.MalformedDocumentError
	var invalid *document.InvalidTreeError
	return errors.As(err, &malformed) || errors.As(err, &invalid)
}

func errorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
