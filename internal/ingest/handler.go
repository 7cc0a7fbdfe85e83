package ingest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/silentpacific/wtm-sub000/internal/menu"
	"github.com/silentpacific/wtm-sub000/internal/restaurant"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileUploader is the slice of object storage the handler needs.
type FileUploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type Handler struct {
	jobs        JobRepository
	store       FileUploader
	restaurants *restaurant.Service
	logger      *zap.Logger
}

func NewHandler(
	jobs JobRepository,
	store FileUploader,
	restaurants *restaurant.Service,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		jobs:        jobs,
		store:       store,
		restaurants: restaurants,
		logger:      logger,
	}
}

const maxUploadBytes = 20 << 20 // 20 MB

// Upload accepts a menu photo or PDF and queues it for scanning.
func (h *Handler) Upload(c *gin.Context) {
	restaurantID := c.PostForm("restaurant_id")
	if restaurantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "restaurant_id is required"})
		return
	}
	if !h.requireOwner(c, restaurantID) {
		return
	}

	fileHeader, err := c.FormFile("menu_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "menu_file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds 20 MB limit"})
		return
	}
	if err := menu.ValidateFileExtension(fileHeader.Filename); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	key := "menus/" + restaurantID + "/" + uuid.New().String() + ext

	if _, err := h.store.Upload(c.Request.Context(), key, data, contentType); err != nil {
		h.logger.Error("upload to object storage failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}

	job := &Job{
		RestaurantID: restaurantID,
		ObjectKey:    key,
		Filename:     fileHeader.Filename,
		MimeType:     contentType,
	}
	if err := h.jobs.Create(c.Request.Context(), job); err != nil {
		h.logger.Error("create scan job failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue scan"})
		return
	}

	c.JSON(http.StatusAccepted, job)
}

// Status returns the most recent scan job for a restaurant.
func (h *Handler) Status(c *gin.Context) {
	restaurantID := c.Param("restaurant_id")
	if !h.requireOwner(c, restaurantID) {
		return
	}

	job, err := h.jobs.LatestByRestaurant(c.Request.Context(), restaurantID)
	if err != nil {
		if errors.Is(err, ErrNoJob) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no scans for this restaurant"})
			return
		}
		h.logger.Error("fetch scan status failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch scan status"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// Retry puts the latest failed scan back in the queue. The original
// upload is still in object storage, so no re-upload is needed.
func (h *Handler) Retry(c *gin.Context) {
	restaurantID := c.Param("restaurant_id")
	if !h.requireOwner(c, restaurantID) {
		return
	}

	job, err := h.jobs.LatestByRestaurant(c.Request.Context(), restaurantID)
	if err != nil {
		if errors.Is(err, ErrNoJob) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no scans for this restaurant"})
			return
		}
		h.logger.Error("fetch scan job failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch scan job"})
		return
	}

	if err := h.jobs.ResetForRetry(c.Request.Context(), job.ID); err != nil {
		if errors.Is(err, ErrJobNotRetryable) {
			c.JSON(http.StatusConflict, gin.H{"error": "scan is not in a failed state"})
			return
		}
		h.logger.Error("retry scan job failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retry scan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "scan queued for retry", "job_id": job.ID})
}

func (h *Handler) requireOwner(c *gin.Context, restaurantID string) bool {
	userID := c.GetString("userID")
	if err := h.restaurants.RequireOwner(c.Request.Context(), restaurantID, userID); err != nil {
		if errors.Is(err, restaurant.ErrNotOwner) {
			c.JSON(http.StatusForbidden, gin.H{"error": "you do not own this restaurant"})
			return false
		}
		h.logger.Error("ownership check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify ownership"})
		return false
	}
	return true
}
