package menu

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
)

// The allergens/dietary_tags columns are TEXT[] NOT NULL, so the
// values handed to pgx must never wire-encode as SQL NULL, not even
// for a dish with no tags at all.
func TestTagColumnNeverEncodesAsNull(t *testing.T) {
	m := pgtype.NewMap()

	for _, tags := range [][]string{
		nil,
		{},
		{"  ", ""},
		{"Dairy", "dairy"},
	} {
		value := tagColumn(tags)
		require.NotNil(t, value)

		buf, err := m.Encode(pgtype.TextArrayOID, pgtype.TextFormatCode, value, nil)
		require.NoError(t, err)
		require.NotNil(t, buf, "tags %v encoded as SQL NULL", tags)
	}
}

func TestTagColumnNormalizes(t *testing.T) {
	require.Equal(t, []string{"dairy", "gluten"}, tagColumn([]string{"Dairy", "GLUTEN", "dairy"}))
	require.Equal(t, []string{}, tagColumn(nil))
}
