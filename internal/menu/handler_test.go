package menu_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/silentpacific/wtm-sub000/internal/diffsync"
	"github.com/silentpacific/wtm-sub000/internal/menu"
	"github.com/silentpacific/wtm-sub000/internal/restaurant"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ptr[T any](v T) *T { return &v }

func newTestRouter(t *testing.T) (*gin.Engine, *menu.InMemoryRepository, *restaurant.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := menu.NewInMemoryRepository()
	service := menu.NewService(repo, "https://menus.example.com/m")

	restaurants := restaurant.NewService(restaurant.NewInMemoryRepository())
	editor := diffsync.NewEditor(repo, zap.NewNop())
	handler := menu.NewHandler(service, restaurants, editor)

	r := gin.New()
	// stand-in for the JWT middleware
	r.Use(func(c *gin.Context) {
		if v := c.GetHeader("X-Test-User"); v != "" {
			c.Set("userID", v)
		}
	})
	r.GET("/menus/:menu_id/tree", handler.GetTree)
	r.PUT("/menus/:menu_id/tree", handler.SaveTree)
	r.GET("/m/:slug", handler.PublicMenu)

	return r, repo, restaurants
}

func seed(t *testing.T, repo *menu.InMemoryRepository, restaurants *restaurant.Service) (ownerID string, m *menu.Menu) {
	t.Helper()
	ctx := context.Background()
	ownerID = "owner-1"

	rest, err := restaurants.CreateRestaurant(ctx, "Bistro Adelaide", "Adelaide", "Modern Australian", ownerID)
	require.NoError(t, err)

	m = &menu.Menu{RestaurantID: rest.ID, Name: "Dinner", Slug: "dinner"}
	require.NoError(t, repo.CreateMenu(ctx, m))

	sec := &menu.Section{ID: "sec-1", MenuID: m.ID, Name: "Mains", DisplayOrder: 0}
	require.NoError(t, repo.InsertSection(ctx, sec))
	require.NoError(t, repo.InsertDish(ctx, &menu.Dish{
		ID: "dish-1", SectionID: "sec-1", MenuID: m.ID, Name: "Schnitzel", Price: ptr(22.0),
	}))
	return ownerID, m
}

func TestGetTreeRequiresOwnership(t *testing.T) {
	r, repo, restaurants := newTestRouter(t)
	_, m := seed(t, repo, restaurants)

	req := httptest.NewRequest(http.MethodGet, "/menus/"+m.ID+"/tree", nil)
	req.Header.Set("X-Test-User", "intruder")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestSaveTreeRoundTrip(t *testing.T) {
	r, repo, restaurants := newTestRouter(t)
	ownerID, m := seed(t, repo, restaurants)

	// fetch the editable tree
	req := httptest.NewRequest(http.MethodGet, "/menus/"+m.ID+"/tree", nil)
	req.Header.Set("X-Test-User", ownerID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched struct {
		Sections []menu.Section `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	require.Len(t, fetched.Sections, 1)

	// change a price, add a dish, save
	fetched.Sections[0].Dishes[0].Price = ptr(24.0)
	fetched.Sections[0].Dishes = append(fetched.Sections[0].Dishes, menu.Dish{
		Name: "Roast Pumpkin Salad", Price: ptr(18.0), DietaryTags: []string{"Vegan"},
	})

	body, err := json.Marshal(gin.H{"sections": fetched.Sections})
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPut, "/menus/"+m.ID+"/tree", bytes.NewReader(body))
	req.Header.Set("X-Test-User", ownerID)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	tree, err := repo.LoadTree(context.Background(), m.ID)
	require.NoError(t, err)
	require.Len(t, tree[0].Dishes, 2)
	require.Equal(t, 24.0, *tree[0].Dishes[0].Price)
	require.Equal(t, []string{"vegan"}, tree[0].Dishes[1].DietaryTags)
}

func TestPublicMenuBySlug(t *testing.T) {
	r, repo, restaurants := newTestRouter(t)
	seed(t, repo, restaurants)

	req := httptest.NewRequest(http.MethodGet, "/m/dinner", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Menu     menu.Menu      `json:"menu"`
		Sections []menu.Section `json:"sections"`
		URL      string         `json:"url"`
		QRURL    string         `json:"qr_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Dinner", resp.Menu.Name)
	require.Len(t, resp.Sections, 1)
	require.Equal(t, "https://menus.example.com/m/dinner", resp.URL)
	require.Contains(t, resp.QRURL, "api.qrserver.com")

	// unknown slug is a 404
	req = httptest.NewRequest(http.MethodGet, "/m/nope", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}
