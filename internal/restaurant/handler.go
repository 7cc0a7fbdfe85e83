package restaurant

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name        string `json:"name"`
	City        string `json:"city"`
	CuisineType string `json:"cuisine_type"`
}

func (h *Handler) CreateRestaurant(c *gin.Context) {
	ownerID := c.GetString("userID")

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	restaurant, err := h.service.CreateRestaurant(
		c.Request.Context(),
		req.Name,
		req.City,
		req.CuisineType,
		ownerID,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, restaurant)
}

func (h *Handler) ListMyRestaurants(c *gin.Context) {
	ownerID := c.GetString("userID")

	restaurants, err := h.service.ListMyRestaurants(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"restaurants": restaurants})
}
