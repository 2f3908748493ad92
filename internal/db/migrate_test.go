package db

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationSource_Versions(t *testing.T) {
	src, err := MigrationSource()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	next, err := src.Next(first)
	require.NoError(t, err)
	assert.Equal(t, RequiredSchemaVersion, next, "latest embedded migration must match the required version")

	r, _, err := src.ReadUp(next)
	require.NoError(t, err)
	defer r.Close()
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ADD COLUMN IF NOT EXISTS paid")
}

func TestMigrationSource_CascadeDelete(t *testing.T) {
	src, err := MigrationSource()
	require.NoError(t, err)
	defer src.Close()

	r, _, err := src.ReadUp(1)
	require.NoError(t, err)
	defer r.Close()
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(body), "REFERENCES orders (id) ON DELETE CASCADE")
}

func TestCheckVersion(t *testing.T) {
	assert.NoError(t, checkVersion(RequiredSchemaVersion, false))
	assert.ErrorIs(t, checkVersion(1, false), ErrSchemaTooOld)
	assert.Error(t, checkVersion(RequiredSchemaVersion, true))
}
