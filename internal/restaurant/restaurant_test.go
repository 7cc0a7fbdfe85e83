package restaurant

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupTestRouter(repo Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	service := NewService(repo)
	handler := NewHandler(service)

	// test stand-in for the auth middleware
	r.Use(func(c *gin.Context) {
		c.Set("userID", "owner-1")
		c.Next()
	})

	r.POST("/restaurants", handler.CreateRestaurant)
	r.GET("/restaurants/me", handler.ListMyRestaurants)

	return r
}

func TestCreateRestaurant(t *testing.T) {
	repo := NewInMemoryRepository()
	router := setupTestRouter(repo)

	payload := map[string]string{
		"name":         "Bistro Adelaide",
		"city":         "Adelaide",
		"cuisine_type": "Modern Australian",
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/restaurants", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created Restaurant
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("expected generated restaurant ID")
	}
	if created.OwnerID != "owner-1" {
		t.Fatalf("expected owner-1, got %s", created.OwnerID)
	}
}

func TestCreateRestaurantMissingFields(t *testing.T) {
	repo := NewInMemoryRepository()
	router := setupTestRouter(repo)

	payload := map[string]string{"name": "No City"}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/restaurants", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRequireOwner(t *testing.T) {
	repo := NewInMemoryRepository()
	service := NewService(repo)

	ctx := context.Background()
	created, err := service.CreateRestaurant(ctx, "Cafe", "Sydney", "Cafe", "owner-1")
	if err != nil {
		t.Fatal(err)
	}

	if err := service.RequireOwner(ctx, created.ID, "owner-1"); err != nil {
		t.Fatalf("expected owner to pass, got %v", err)
	}
	if err := service.RequireOwner(ctx, created.ID, "someone-else"); err != ErrNotOwner {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}
