package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/couchcryptid/cloud-classification-api/internal/config"
	"github.com/couchcryptid/cloud-classification-api/internal/domain"
	"github.com/gin-gonic/gin"
)

// uploadField is the multipart form field carrying the image.
const uploadField = "file"

// statusClientClosedRequest is recorded when the client disconnects mid-delay.
const statusClientClosedRequest = 499

var availableEndpoints = []string{"/", "/health", "/ping", "/predict-cloud", "/model-info", "/cloud-types"}

type errorResponse struct {
	Error              string   `json:"error"`
	Message            string   `json:"message"`
	Detail             string   `json:"detail,omitempty"`
	AvailableEndpoints []string `json:"available_endpoints,omitempty"`
}

type rootResponse struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

type healthResponse struct {
	Status           string   `json:"status"`
	Message          string   `json:"message"`
	Timestamp        int64    `json:"timestamp"`
	Version          string   `json:"version"`
	SupportedFormats []string `json:"supported_formats"`
	MaxFileSize      string   `json:"max_file_size"`
}

type pingResponse struct {
	Ping      string `json:"ping"`
	Timestamp int64  `json:"timestamp"`
}

type cloudTypesResponse struct {
	Count      int                `json:"count"`
	CloudTypes []domain.CloudType `json:"cloud_types"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, rootResponse{
		Message: "Cloud Classification API",
		Status:  "running",
		Endpoints: map[string]string{
			"health":      "/health",
			"ping":        "/ping",
			"predict":     "/predict-cloud",
			"model_info":  "/model-info",
			"cloud_types": "/cloud-types",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	exts := domain.AllowedExtensions()
	formats := make([]string, len(exts))
	for i, ext := range exts {
		formats[i] = strings.TrimPrefix(ext, ".")
	}
	c.JSON(http.StatusOK, healthResponse{
		Status:           "healthy",
		Message:          "Cloud Classification API is running",
		Timestamp:        s.clock.Now().Unix(),
		Version:          config.APIVersion,
		SupportedFormats: formats,
		MaxFileSize:      "10MB",
	})
}

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, pingResponse{Ping: "pong", Timestamp: s.clock.Now().Unix()})
}

func (s *Server) handleModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, s.predictor.Info())
}

func (s *Server) handleCloudTypes(c *gin.Context) {
	types := domain.CloudTypes()
	c.JSON(http.StatusOK, cloudTypesResponse{Count: len(types), CloudTypes: types})
}

func (s *Server) handlePredict(c *gin.Context) {
	upload, err := readUpload(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	prediction, err := s.predictor.Predict(c.Request.Context(), upload)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, prediction)
}

func (s *Server) handleNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, errorResponse{
		Error:              "Not Found",
		Message:            "The requested endpoint was not found",
		AvailableEndpoints: availableEndpoints,
	})
}

func (s *Server) handleMethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, errorResponse{
		Error:              "Method Not Allowed",
		Message:            c.Request.Method + " is not supported on " + c.Request.URL.Path,
		AvailableEndpoints: availableEndpoints,
	})
}

// readUpload pulls the multipart file and runs the domain validation on it.
func readUpload(c *gin.Context) (domain.Upload, error) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.Upload{}, domain.FileTooLarge(0)
		}
		return domain.Upload{}, domain.NewValidationError(domain.ErrNoFile, "", nil)
	}

	f, err := fh.Open()
	if err != nil {
		return domain.Upload{}, domain.NewValidationError(domain.ErrReadFailure, err.Error(), err)
	}
	defer f.Close()

	return domain.ReadUpload(fh.Filename, fh.Header.Get("Content-Type"), f)
}

func (s *Server) writeError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		s.metrics.ValidationErrors.WithLabelValues(validationReason(ve.Kind)).Inc()
		s.logger.Info("upload rejected", "reason", ve.Error(), "request_id", c.GetString(requestIDKey))
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "Bad Request",
			Message: ve.Error(),
			Detail:  ve.Detail,
		})
	case errors.Is(err, context.Canceled):
		s.logger.Info("client disconnected before prediction completed", "request_id", c.GetString(requestIDKey))
		c.AbortWithStatus(statusClientClosedRequest)
	default:
		s.logger.Error("prediction failed", "error", err, "request_id", c.GetString(requestIDKey))
		c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   "Internal Server Error",
			Message: "internal server error: " + err.Error(),
		})
	}
}

func validationReason(kind error) string {
	switch {
	case errors.Is(kind, domain.ErrNoFile):
		return "no_file"
	case errors.Is(kind, domain.ErrReadFailure):
		return "read_failure"
	case errors.Is(kind, domain.ErrEmptyFile):
		return "empty_file"
	case errors.Is(kind, domain.ErrFileTooLarge):
		return "file_too_large"
	case errors.Is(kind, domain.ErrInvalidFileType):
		return "invalid_file_type"
	default:
		return "other"
	}
}
