package menu

import (
	"errors"
	"net/http"

	"github.com/silentpacific/wtm-sub000/internal/restaurant"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	owners  OwnershipChecker
	saver   TreeSaver
}

func NewHandler(service *Service, owners OwnershipChecker, saver TreeSaver) *Handler {
	return &Handler{service: service, owners: owners, saver: saver}
}

// --------------------------------------------------
// Owner: fetch the editable tree
// --------------------------------------------------
func (h *Handler) GetTree(c *gin.Context) {
	menuID := c.Param("menu_id")

	m, err := h.requireMenuOwner(c, menuID)
	if err != nil {
		return
	}

	sections, err := h.service.LoadTree(c.Request.Context(), menuID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"menu":     m,
		"sections": sections,
	})
}

// --------------------------------------------------
// Owner: save an edited tree (diff against stored state)
// --------------------------------------------------

type saveRequest struct {
	Sections []Section `json:"sections"`
}

func (h *Handler) SaveTree(c *gin.Context) {
	menuID := c.Param("menu_id")

	if _, err := h.requireMenuOwner(c, menuID); err != nil {
		return
	}

	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ctx := c.Request.Context()

	original, err := h.service.LoadTree(ctx, menuID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.saver.Apply(ctx, menuID, original, req.Sections)
	if err != nil {
		// storage may be partially updated; the client keeps its edits
		// and retries against the refreshed tree
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save menu"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sections": saved})
}

// --------------------------------------------------
// Public: diner-facing menu by slug
// --------------------------------------------------
func (h *Handler) PublicMenu(c *gin.Context) {
	slug := c.Param("slug")

	m, sections, err := h.service.PublicMenu(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrMenuNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "menu not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"menu":     m,
		"sections": sections,
		"url":      h.service.MenuURL(m.Slug),
		"qr_url":   h.service.QRImageURL(m.Slug),
	})
}

// requireMenuOwner resolves the menu and enforces that the caller owns
// the restaurant it belongs to. Writes the error response itself.
func (h *Handler) requireMenuOwner(c *gin.Context, menuID string) (*Menu, error) {
	m, err := h.service.GetMenu(c.Request.Context(), menuID)
	if err != nil {
		if errors.Is(err, ErrMenuNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "menu not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, err
	}

	userID := c.GetString("userID")
	if err := h.owners.RequireOwner(c.Request.Context(), m.RestaurantID, userID); err != nil {
		if errors.Is(err, restaurant.ErrNotOwner) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, err
	}

	return m, nil
}
