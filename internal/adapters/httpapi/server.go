// Package httpapi exposes the verification pipeline over HTTP. It is
// transport glue only: request parsing and error mapping live here, all
// decision logic stays in the core.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mitraverify/mitraverify/internal/config"
	"github.com/mitraverify/mitraverify/internal/core"
	"github.com/mitraverify/mitraverify/internal/language"
	"go.uber.org/zap"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Server serves the verification HTTP API
type Server struct {
	engine     *core.FusionEngine
	httpServer *http.Server
	cfg        config.ServerConfig
	modelInfo  ModelInfo
	logger     *zap.Logger
}

// ModelInfo describes the configured model backends for the stats endpoint
type ModelInfo struct {
	TextModel      string `json:"text_model"`
	ImageModel     string `json:"image_model"`
	EmbeddingModel string `json:"embedding_model"`
}

// NewServer creates a new HTTP API server
func NewServer(engine *core.FusionEngine, cfg config.ServerConfig, modelInfo ModelInfo, logger *zap.Logger) *Server {
	s := &Server{
		engine:    engine,
		cfg:       cfg,
		modelInfo: modelInfo,
		logger:    logger,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.handleHealth)

	api := router.Group("/api/v1")
	api.POST("/verify", s.handleVerify)
	api.POST("/verify/text", s.handleVerifyText)
	api.POST("/verify/image", s.handleVerifyImage)
	api.GET("/stats", s.handleStats)

	s.httpServer = &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: router,
	}

	return s
}

// Router returns the underlying handler, used by tests
func (s *Server) Router() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving in the background
func (s *Server) Start() error {
	go func() {
		s.logger.Info("HTTP API listening", zap.String("address", s.cfg.ListenAddress))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleVerify verifies a claim submitted as text, image, or both
func (s *Server) handleVerify(c *gin.Context) {
	text := c.PostForm("text")

	imageData, err := s.readImageFile(c, false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.runVerification(c, &core.VerificationRequest{Text: text, Image: imageData})
}

// handleVerifyText verifies a text-only claim
func (s *Server) handleVerifyText(c *gin.Context) {
	text := c.PostForm("text")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text content is required"})
		return
	}

	s.runVerification(c, &core.VerificationRequest{Text: text})
}

// handleVerifyImage verifies an image-only claim
func (s *Server) handleVerifyImage(c *gin.Context) {
	imageData, err := s.readImageFile(c, true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.runVerification(c, &core.VerificationRequest{Image: imageData})
}

// handleStats reports system capabilities and configured models
func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "operational",
		"supported_languages": []string{language.English, language.Hindi},
		"supported_formats":   []string{"text", "image/jpeg", "image/png", "image/gif", "image/webp"},
		"model_info":          s.modelInfo,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readImageFile extracts the uploaded image, enforcing type and size limits
func (s *Server) readImageFile(c *gin.Context, required bool) ([]byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		if required {
			return nil, fmt.Errorf("image file is required")
		}
		return nil, nil
	}

	if s.cfg.MaxUploadSize > 0 && fileHeader.Size > s.cfg.MaxUploadSize {
		return nil, fmt.Errorf("image exceeds maximum upload size of %d bytes", s.cfg.MaxUploadSize)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "" && !allowedImageTypes[contentType] {
		return nil, fmt.Errorf("unsupported file type %q", contentType)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return data, nil
}

// runVerification invokes the fusion engine and maps core errors onto
// HTTP status codes
func (s *Server) runVerification(c *gin.Context, request *core.VerificationRequest) {
	result, err := s.engine.Verify(c.Request.Context(), request)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, core.ErrInvalidInput), errors.Is(err, core.ErrUnsupportedFormat):
			status = http.StatusBadRequest
		case errors.Is(err, core.ErrAllComponentsUnavailable):
			status = http.StatusServiceUnavailable
		}
		s.logger.Warn("Verification request failed", zap.Int("status", status), zap.Error(err))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
