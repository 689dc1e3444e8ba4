// ABOUTME: Tests for the in-memory MockStore journal
// ABOUTME: Verifies it mirrors SQLiteStore ordering, filtering and error injection

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_AppendAndGet(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	entry := testEntry(ActionLogin, "@admin:example.org", time.Time{})
	require.NoError(t, store.Append(ctx, entry))
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, OutcomeOK, entry.Outcome)

	got, err := store.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, *entry, *got)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMockStore_ListNewestFirst(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, store.Append(ctx, testEntry(ActionLogin, "late", base.Add(time.Minute))))
	require.NoError(t, store.Append(ctx, testEntry(ActionLogin, "early", base)))

	purge := ActionPurgeRoom
	entries, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "late", entries[0].TargetID)

	entries, err = store.List(ctx, Filter{Action: &purge})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMockStore_AppendErr(t *testing.T) {
	store := NewMockStore()
	store.AppendErr = errors.New("disk full")

	err := store.Append(context.Background(), testEntry(ActionLogout, "x", time.Time{}))
	assert.EqualError(t, err, "disk full")
	assert.Empty(t, store.Entries())
}
