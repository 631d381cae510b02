package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGet(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "readings.db")
	db, err := Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	const key = uint32(0x01<<16 | 0x0C)

	_, found, err := Get(db, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, Put(db, key, 519.462345))

	v, found, err := Get(db, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.InDelta(t, 519.462345, v, 1e-9)
}
