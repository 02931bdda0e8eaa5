package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/timelinetracker/backend/internal/export"
	"github.com/timelinetracker/backend/internal/models"
	"github.com/timelinetracker/backend/internal/store"
)

type Handler struct {
	Store          *store.Estimates
	Validator      *validator.Validate
	Logger         zerolog.Logger
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// SaveRequest is the POST body of /api/timeline.
type SaveRequest struct {
	UserID string           `json:"userId"`
	Data   *models.Document `json:"data"`
}

type SaveResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func (h *Handler) storageContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.RequestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.RequestTimeout)
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		h.Logger.Error().Err(err).Msg("storage ping failed")
		writeError(c, http.StatusServiceUnavailable, "Storage unavailable", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Options answers CORS preflights that reach the router.
func (h *Handler) Options(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h *Handler) MethodNotAllowed(c *gin.Context) {
	writeError(c, http.StatusMethodNotAllowed, "Method not allowed", nil)
}

// @Summary Get a timeline
// @Tags timeline
// @Produce json
// @Param userId query string true "user identifier"
// @Success 200 {object} models.Document
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/timeline [get]
func (h *Handler) GetTimeline(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		writeError(c, http.StatusBadRequest, "userId is required", nil)
		return
	}

	ctx, cancel := h.storageContext(c)
	defer cancel()
	doc, err := h.Store.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(c, http.StatusNotFound, "Data not found", nil)
			return
		}
		h.Logger.Error().Err(err).Str("user_id", userID).Msg("failed to retrieve timeline")
		writeError(c, http.StatusInternalServerError, "Failed to retrieve data", nil)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// @Summary Save a timeline
// @Description Replaces the whole document stored for userId.
// @Tags timeline
// @Accept json
// @Produce json
// @Param body body SaveRequest true "user identifier and document"
// @Success 200 {object} SaveResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/timeline [post]
func (h *Handler) SaveTimeline(c *gin.Context) {
	if h.MaxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBodyBytes)
	}

	var req SaveRequest
	dec := json.NewDecoder(c.Request.Body)
	if err := dec.Decode(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := h.Validator.Var(req.UserID, "required"); err != nil || req.Data == nil {
		writeError(c, http.StatusBadRequest, "userId and data are required", nil)
		return
	}
	if err := h.Validator.Struct(req.Data); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid timeline data", models.FieldErrors(err))
		return
	}

	ctx, cancel := h.storageContext(c)
	defer cancel()
	location, err := h.Store.Save(ctx, req.UserID, *req.Data)
	if err != nil {
		h.Logger.Error().Err(err).Str("user_id", req.UserID).Msg("failed to save timeline")
		writeError(c, http.StatusInternalServerError, "Failed to save data", nil)
		return
	}
	h.Logger.Info().
		Str("user_id", req.UserID).
		Int("tickets", len(req.Data.Tickets)).
		Msg("timeline saved")
	c.JSON(http.StatusOK, SaveResponse{Success: true, URL: location})
}

// @Summary Delete a timeline
// @Description Deleting an identifier with nothing stored also succeeds.
// @Tags timeline
// @Produce json
// @Param userId query string true "user identifier"
// @Success 200 {object} map[string]any
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/timeline [delete]
func (h *Handler) DeleteTimeline(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		writeError(c, http.StatusBadRequest, "userId is required", nil)
		return
	}

	ctx, cancel := h.storageContext(c)
	defer cancel()
	if err := h.Store.Delete(ctx, userID); err != nil {
		h.Logger.Error().Err(err).Str("user_id", userID).Msg("failed to delete timeline")
		writeError(c, http.StatusInternalServerError, "Failed to delete data", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary Export a timeline
// @Tags timeline
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param userId query string true "user identifier"
// @Param format query string false "csv or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/timeline/export [get]
func (h *Handler) ExportTimeline(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		writeError(c, http.StatusBadRequest, "userId is required", nil)
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "format must be csv or xlsx", nil)
		return
	}

	ctx, cancel := h.storageContext(c)
	defer cancel()
	doc, err := h.Store.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(c, http.StatusNotFound, "Data not found", nil)
			return
		}
		h.Logger.Error().Err(err).Str("user_id", userID).Msg("failed to load timeline for export")
		writeError(c, http.StatusInternalServerError, "Failed to retrieve data", nil)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, doc); err != nil {
		h.Logger.Error().Err(err).Str("format", string(format)).Msg("export failed")
		writeError(c, http.StatusInternalServerError, "Failed to export data", nil)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func writeError(c *gin.Context, status int, message string, details any) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Details: details})
}
