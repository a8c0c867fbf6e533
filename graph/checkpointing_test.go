package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCheckpointStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCheckpointStore()

	cp2 := NewCheckpoint("run", Route{Step: 2, From: "b", To: END}, "second")
	cp1 := NewCheckpoint("run", Route{Step: 1, From: "a", To: "b"}, "first")
	other := NewCheckpoint("other", Route{Step: 1, From: "a", To: END}, "x")

	require.NoError(t, store.Save(ctx, cp2))
	require.NoError(t, store.Save(ctx, cp1))
	require.NoError(t, store.Save(ctx, other))

	loaded, err := store.Load(ctx, cp1.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.NodeName)

	list, err := store.List(ctx, "run")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, cp1.ID, list[0].ID)
	assert.Equal(t, cp2.ID, list[1].ID)

	// Saving the same ID twice replaces it without duplicating the index.
	cp1.Label = "relabelled"
	require.NoError(t, store.Save(ctx, cp1))
	list, err = store.List(ctx, "run")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, store.Clear(ctx, "run"))
	list, err = store.List(ctx, "run")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = store.Load(ctx, cp1.ID)
	assert.ErrorIs(t, err, ErrCheckpointNotFound)

	list, err = store.List(ctx, "other")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDecodeState(t *testing.T) {
	type counter struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	direct := &Checkpoint{State: counter{Name: "a", Count: 1}}
	got, err := DecodeState[counter](direct)
	require.NoError(t, err)
	assert.Equal(t, counter{Name: "a", Count: 1}, got)

	generic := &Checkpoint{State: map[string]any{"name": "b", "count": float64(2)}}
	got, err = DecodeState[counter](generic)
	require.NoError(t, err)
	assert.Equal(t, counter{Name: "b", Count: 2}, got)

	raw := &Checkpoint{State: []byte(`{"name":"c","count":3}`)}
	got, err = DecodeState[counter](raw)
	require.NoError(t, err)
	assert.Equal(t, counter{Name: "c", Count: 3}, got)

	_, err = DecodeState[counter](&Checkpoint{State: "not an object"})
	assert.ErrorContains(t, err, "failed to decode checkpoint state")
}
