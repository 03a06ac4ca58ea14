package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	store, closeDB, err := openRegistry(ctx, filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	defer closeDB()

	shop := filepath.Join(t.TempDir(), "shop")
	require.NoError(t, register(ctx, store, []string{shop}))
	require.NoError(t, register(ctx, store, []string{shop}))

	apis, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, apis, 1)
	assert.Equal(t, "shop", apis[0].Name)
	assert.Equal(t, shop, apis[0].Path)
}

func TestEnvOr(t *testing.T) {
	t.Setenv("SRA_UI_PATH", "")
	assert.Equal(t, ".", envOr("SRA_UI_PATH", "."))
	t.Setenv("SRA_UI_PATH", "/srv/ui")
	assert.Equal(t, "/srv/ui", envOr("SRA_UI_PATH", "."))
}
