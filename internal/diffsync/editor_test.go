package diffsync

import (
	"context"
	"testing"

	"github.com/silentpacific/wtm-sub000/internal/menu"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingStore counts every write so tests can assert the editor
// touched exactly the rows it should have.
type recordingStore struct {
	*menu.InMemoryRepository

	sectionInserts int
	sectionUpdates int
	sectionDeletes int
	dishInserts    int
	dishUpdates    int
	dishDeletes    int

	lastDishUpdate menu.DishFields
}

func (r *recordingStore) InsertSection(ctx context.Context, s *menu.Section) error {
	r.sectionInserts++
	return r.InMemoryRepository.InsertSection(ctx, s)
}

func (r *recordingStore) UpdateSection(ctx context.Context, id string, f menu.SectionFields) error {
	r.sectionUpdates++
	return r.InMemoryRepository.UpdateSection(ctx, id, f)
}

func (r *recordingStore) DeleteSection(ctx context.Context, id string) error {
	r.sectionDeletes++
	return r.InMemoryRepository.DeleteSection(ctx, id)
}

func (r *recordingStore) InsertDish(ctx context.Context, d *menu.Dish) error {
	r.dishInserts++
	return r.InMemoryRepository.InsertDish(ctx, d)
}

func (r *recordingStore) UpdateDish(ctx context.Context, id string, f menu.DishFields) error {
	r.dishUpdates++
	r.lastDishUpdate = f
	return r.InMemoryRepository.UpdateDish(ctx, id, f)
}

func (r *recordingStore) DeleteDish(ctx context.Context, id string) error {
	r.dishDeletes++
	return r.InMemoryRepository.DeleteDish(ctx, id)
}

func (r *recordingStore) reset() {
	r.sectionInserts, r.sectionUpdates, r.sectionDeletes = 0, 0, 0
	r.dishInserts, r.dishUpdates, r.dishDeletes = 0, 0, 0
	r.lastDishUpdate = menu.DishFields{}
}

func ptr[T any](v T) *T { return &v }

// seedMenu stores a two-section menu and returns its id plus the
// stored tree as a baseline.
func seedMenu(t *testing.T, repo *menu.InMemoryRepository) (string, []menu.Section) {
	t.Helper()
	ctx := context.Background()

	m := &menu.Menu{RestaurantID: "rest-1", Name: "Dinner", Slug: "dinner"}
	require.NoError(t, repo.CreateMenu(ctx, m))

	starters := &menu.Section{ID: "sec-starters", MenuID: m.ID, Name: "Starters", DisplayOrder: 0}
	mains := &menu.Section{ID: "sec-mains", MenuID: m.ID, Name: "Mains", DisplayOrder: 1}
	require.NoError(t, repo.InsertSection(ctx, starters))
	require.NoError(t, repo.InsertSection(ctx, mains))

	dishes := []*menu.Dish{
		{ID: "dish-soup", SectionID: "sec-starters", MenuID: m.ID, Name: "Soup", Price: ptr(6.5)},
		{ID: "dish-bread", SectionID: "sec-starters", MenuID: m.ID, Name: "Garlic Bread", Price: ptr(4.0)},
		{ID: "dish-steak", SectionID: "sec-mains", MenuID: m.ID, Name: "Steak", Price: ptr(24.0), Allergens: []string{"dairy"}},
	}
	for _, d := range dishes {
		require.NoError(t, repo.InsertDish(ctx, d))
	}

	tree, err := repo.LoadTree(ctx, m.ID)
	require.NoError(t, err)
	return m.ID, tree
}

func cloneTree(tree []menu.Section) []menu.Section {
	out := make([]menu.Section, len(tree))
	for i, s := range tree {
		out[i] = s
		out[i].Dishes = append([]menu.Dish(nil), s.Dishes...)
	}
	return out
}

func TestApplyNoChangesWritesNothing(t *testing.T) {
	store := &recordingStore{InMemoryRepository: menu.NewInMemoryRepository()}
	menuID, baseline := seedMenu(t, store.InMemoryRepository)
	store.reset()

	editor := NewEditor(store, zap.NewNop())
	_, err := editor.Apply(context.Background(), menuID, baseline, cloneTree(baseline))
	require.NoError(t, err)

	require.Zero(t, store.sectionInserts+store.sectionUpdates+store.sectionDeletes)
	require.Zero(t, store.dishInserts+store.dishUpdates+store.dishDeletes)
}

func TestApplySinglePriceChange(t *testing.T) {
	store := &recordingStore{InMemoryRepository: menu.NewInMemoryRepository()}
	menuID, baseline := seedMenu(t, store.InMemoryRepository)
	store.reset()

	edited := cloneTree(baseline)
	edited[1].Dishes[0].Price = ptr(26.0)

	editor := NewEditor(store, zap.NewNop())
	_, err := editor.Apply(context.Background(), menuID, baseline, edited)
	require.NoError(t, err)

	require.Equal(t, 1, store.dishUpdates)
	require.Zero(t, store.dishInserts)
	require.Zero(t, store.dishDeletes)
	require.Zero(t, store.sectionUpdates)

	require.True(t, store.lastDishUpdate.PriceSet)
	require.Nil(t, store.lastDishUpdate.Name)
	require.Nil(t, store.lastDishUpdate.SectionID)

	tree, err := store.LoadTree(context.Background(), menuID)
	require.NoError(t, err)
	require.Equal(t, 26.0, *tree[1].Dishes[0].Price)
}

func TestApplyReorderSectionsUpdatesOrderOnly(t *testing.T) {
	store := &recordingStore{InMemoryRepository: menu.NewInMemoryRepository()}
	menuID, baseline := seedMenu(t, store.InMemoryRepository)
	store.reset()

	edited := cloneTree(baseline)
	edited[0].DisplayOrder, edited[1].DisplayOrder = 1, 0
	edited[0], edited[1] = edited[1], edited[0]

	editor := NewEditor(store, zap.NewNop())
	_, err := editor.Apply(context.Background(), menuID, baseline, edited)
	require.NoError(t, err)

	require.Equal(t, 2, store.sectionUpdates)
	require.Zero(t, store.sectionInserts)
	require.Zero(t, store.sectionDeletes)
	require.Zero(t, store.dishInserts+store.dishUpdates+store.dishDeletes)

	tree, err := store.LoadTree(context.Background(), menuID)
	require.NoError(t, err)
	require.Equal(t, "Mains", tree[0].Name)
	require.Equal(t, "Starters", tree[1].Name)
	require.Equal(t, "Steak", tree[0].Dishes[0].Name)
}

func TestApplyMixedEdit(t *testing.T) {
	store := &recordingStore{InMemoryRepository: menu.NewInMemoryRepository()}
	menuID, baseline := seedMenu(t, store.InMemoryRepository)
	store.reset()

	edited := cloneTree(baseline)
	// rename a dish, delete another, add a new one in a new section
	edited[0].Dishes[0].Name = "Pumpkin Soup"
	edited[0].Dishes = edited[0].Dishes[:1]
	edited = append(edited, menu.Section{
		Name:         "Desserts",
		DisplayOrder: 2,
		Dishes: []menu.Dish{
			{Name: "Tiramisu", Price: ptr(9.0), DietaryTags: []string{"Vegetarian", "vegetarian"}},
		},
	})

	editor := NewEditor(store, zap.NewNop())
	next, err := editor.Apply(context.Background(), menuID, baseline, edited)
	require.NoError(t, err)

	require.Equal(t, 1, store.sectionInserts)
	require.Equal(t, 1, store.dishInserts)
	require.Equal(t, 1, store.dishUpdates)
	require.Equal(t, 1, store.dishDeletes)

	// generated ids are filled into the returned baseline
	require.NotEmpty(t, next[2].ID)
	require.NotEmpty(t, next[2].Dishes[0].ID)
	require.Equal(t, next[2].ID, next[2].Dishes[0].SectionID)

	tree, err := store.LoadTree(context.Background(), menuID)
	require.NoError(t, err)
	require.Len(t, tree, 3)
	require.Len(t, tree[0].Dishes, 1)
	require.Equal(t, "Pumpkin Soup", tree[0].Dishes[0].Name)
	require.Equal(t, []string{"vegetarian"}, tree[2].Dishes[0].DietaryTags)
}

func TestApplyReparentDish(t *testing.T) {
	store := &recordingStore{InMemoryRepository: menu.NewInMemoryRepository()}
	menuID, baseline := seedMenu(t, store.InMemoryRepository)
	store.reset()

	edited := cloneTree(baseline)
	moved := edited[0].Dishes[1] // Garlic Bread
	edited[0].Dishes = edited[0].Dishes[:1]
	edited[1].Dishes = append(edited[1].Dishes, moved)

	editor := NewEditor(store, zap.NewNop())
	_, err := editor.Apply(context.Background(), menuID, baseline, edited)
	require.NoError(t, err)

	require.Equal(t, 1, store.dishUpdates)
	require.Zero(t, store.dishInserts)
	require.Zero(t, store.dishDeletes)
	require.NotNil(t, store.lastDishUpdate.SectionID)
	require.Equal(t, "sec-mains", *store.lastDishUpdate.SectionID)

	tree, err := store.LoadTree(context.Background(), menuID)
	require.NoError(t, err)
	require.Len(t, tree[0].Dishes, 1)
	require.Len(t, tree[1].Dishes, 2)
}

func TestApplyDeleteSectionCascades(t *testing.T) {
	store := &recordingStore{InMemoryRepository: menu.NewInMemoryRepository()}
	menuID, baseline := seedMenu(t, store.InMemoryRepository)
	store.reset()

	edited := cloneTree(baseline)[1:] // drop Starters and its two dishes

	editor := NewEditor(store, zap.NewNop())
	_, err := editor.Apply(context.Background(), menuID, baseline, edited)
	require.NoError(t, err)

	require.Equal(t, 1, store.sectionDeletes)
	// cascade handles the orphaned dishes, no per-dish deletes
	require.Zero(t, store.dishDeletes)

	tree, err := store.LoadTree(context.Background(), menuID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Equal(t, "Mains", tree[0].Name)
}

func TestApplyMoveOutOfDeletedSection(t *testing.T) {
	store := &recordingStore{InMemoryRepository: menu.NewInMemoryRepository()}
	menuID, baseline := seedMenu(t, store.InMemoryRepository)
	store.reset()

	edited := cloneTree(baseline)
	soup := edited[0].Dishes[0]
	edited = edited[1:] // Starters deleted
	edited[0].Dishes = append(edited[0].Dishes, soup)

	editor := NewEditor(store, zap.NewNop())
	_, err := editor.Apply(context.Background(), menuID, baseline, edited)
	require.NoError(t, err)

	// Soup survived the cascade by being reinserted under Mains
	require.Equal(t, 1, store.dishInserts)

	tree, err := store.LoadTree(context.Background(), menuID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Dishes, 2)
}

func TestApplyTagSetEquality(t *testing.T) {
	store := &recordingStore{InMemoryRepository: menu.NewInMemoryRepository()}
	menuID, baseline := seedMenu(t, store.InMemoryRepository)
	store.reset()

	// reordered/duplicated tags with the same set are not a change
	edited := cloneTree(baseline)
	edited[1].Dishes[0].Allergens = []string{"DAIRY", "dairy"}

	editor := NewEditor(store, zap.NewNop())
	_, err := editor.Apply(context.Background(), menuID, baseline, edited)
	require.NoError(t, err)
	require.Zero(t, store.dishUpdates)

	// an actual tag change writes normalized tags
	edited[1].Dishes[0].Allergens = []string{"Dairy", "Gluten"}
	_, err = editor.Apply(context.Background(), menuID, baseline, edited)
	require.NoError(t, err)
	require.Equal(t, 1, store.dishUpdates)
	require.Equal(t, []string{"dairy", "gluten"}, store.lastDishUpdate.Allergens)
}
