package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/testinfra"
)

func TestEnsureCreatesTables(t *testing.T) {
	ctx := context.Background()
	db := testinfra.SQLiteDB(t)

	require.NoError(t, Ensure(ctx, db))
	require.NoError(t, Ensure(ctx, db), "second run is a no-op")

	var tables []string
	require.NoError(t, db.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`))
	assert.Equal(t, []string{"books", "users"}, tables)
}
