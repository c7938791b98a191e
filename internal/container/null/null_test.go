package null

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mibstore/internal/container"
)

func TestSink_DiscardsEverything(t *testing.T) {
	c := Factory().Produce()
	require.NotNil(t, c)
	require.Equal(t, Name, c.Type())

	res, err := c.Insert("anything")
	require.NoError(t, err)
	require.False(t, res.Partial())
	require.Zero(t, c.Size())

	_, ok := c.Find("anything")
	require.False(t, ok)

	_, err = c.Remove("anything")
	require.NoError(t, err)

	visited := 0
	c.ForEach(func(any) { visited++ })
	require.Zero(t, visited)

	_, err = c.Free()
	require.NoError(t, err)
}

func TestSink_AsSecondaryIndex(t *testing.T) {
	primary := Factory().Produce()
	sink := Factory().Produce()
	require.NoError(t, primary.AddIndex(sink))

	res, err := primary.Insert(1)
	require.NoError(t, err)
	require.False(t, res.Partial())

	_, isUnordered := container.Store(New()).(container.Unordered)
	require.True(t, isUnordered)
}
