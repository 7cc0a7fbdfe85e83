package menu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Bistro Adelaide":     "bistro-adelaide",
		"  Café // 42!  ":     "café-42",
		"---":                 "menu",
		"Chez  Marie's Place": "chez-marie-s-place",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestUniqueSlugSuffixesOnCollision(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	service := NewService(repo, "http://localhost/m")

	first, err := service.CreateMenu(ctx, "rest-1", "Bistro Adelaide")
	require.NoError(t, err)
	require.Equal(t, "bistro-adelaide", first.Slug)

	second, err := service.CreateMenu(ctx, "rest-1", "Bistro Adelaide")
	require.NoError(t, err)
	require.Equal(t, "bistro-adelaide-1", second.Slug)

	third, err := service.CreateMenu(ctx, "rest-2", "Bistro Adelaide")
	require.NoError(t, err)
	require.Equal(t, "bistro-adelaide-2", third.Slug)
}
