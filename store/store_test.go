package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry() *Entry {
	issued := time.Unix(1700000000, 0)
	return &Entry{
		AccessToken: "tok1",
		IssuedAt:    issued,
		ExpiresAt:   issued.Add(time.Hour),
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	aStore := NewMemoryStore()

	_, ok, err := aStore.Lookup(ctx)
	require.Nil(t, err)
	assert.False(t, ok)

	require.Nil(t, aStore.Save(ctx, testEntry()))
	entry, ok, err := aStore.Lookup(ctx)
	require.Nil(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok1", entry.AccessToken)
	assert.Equal(t, time.Hour, entry.ExpiresAt.Sub(entry.IssuedAt))

	require.Nil(t, aStore.Clear(ctx))
	_, ok, err = aStore.Lookup(ctx)
	require.Nil(t, err)
	assert.False(t, ok)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	location := filepath.Join(t.TempDir(), "token.json")
	aStore := NewFileStore(location)

	_, ok, err := aStore.Lookup(ctx)
	require.Nil(t, err)
	assert.False(t, ok)

	require.Nil(t, aStore.Save(ctx, testEntry()))

	// a separate instance sees the persisted token
	reopened := NewFileStore(location)
	entry, ok, err := reopened.Lookup(ctx)
	require.Nil(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok1", entry.AccessToken)
	assert.True(t, entry.ExpiresAt.Equal(entry.IssuedAt.Add(time.Hour)))

	require.Nil(t, reopened.Clear(ctx))
	_, ok, err = aStore.Lookup(ctx)
	require.Nil(t, err)
	assert.False(t, ok)

	// clearing an absent token is a no-op
	require.Nil(t, reopened.Clear(ctx))
}
