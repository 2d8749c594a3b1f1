package store_test

import (
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-jobopts/internal/store"
)

func TestOrderedStoreListsInInsertionOrder(t *testing.T) {
	t.Parallel()

	g := graph.NewWithStore(graph.StringHash, store.NewOrderedStore[string, string](), graph.Directed())

	names := []string{"Pythia8", "HepMCToEDMConverter", "StableParticles", "out"}
	for _, name := range names {
		require.NoError(t, g.AddVertex(name))
	}

	require.NoError(t, g.AddEdge("HepMCToEDMConverter", "StableParticles"))
	require.NoError(t, g.AddEdge("Pythia8", "HepMCToEDMConverter"))

	s := store.NewOrderedStore[string, string]()
	for _, name := range names {
		require.NoError(t, s.AddVertex(name, name, graph.VertexProperties{}))
	}

	got, err := s.ListVertices()
	require.NoError(t, err)
	assert.Equal(t, names, got)

	require.NoError(t, s.AddEdge("b", "c", graph.Edge[string]{Source: "b", Target: "c"}))
	require.NoError(t, s.AddEdge("a", "b", graph.Edge[string]{Source: "a", Target: "b"}))
	edges, err := s.ListEdges()
	require.NoError(t, err)
	require.Len(t, edges, 2)
	assert.Equal(t, "b", edges[0].Source)
	assert.Equal(t, "a", edges[1].Source)

	order, err := g.Size()
	require.NoError(t, err)
	assert.Equal(t, 2, order)
}

func TestOrderedStoreDuplicateVertex(t *testing.T) {
	t.Parallel()

	s := store.NewOrderedStore[string, string]()
	require.NoError(t, s.AddVertex("a", "a", graph.VertexProperties{}))
	assert.ErrorIs(t, s.AddVertex("a", "a", graph.VertexProperties{}), graph.ErrVertexAlreadyExists)
}

func TestOrderedStoreRemove(t *testing.T) {
	t.Parallel()

	s := store.NewOrderedStore[string, string]()
	require.NoError(t, s.AddVertex("a", "a", graph.VertexProperties{}))
	require.NoError(t, s.AddVertex("b", "b", graph.VertexProperties{}))
	require.NoError(t, s.AddEdge("a", "b", graph.Edge[string]{Source: "a", Target: "b"}))

	assert.ErrorIs(t, s.RemoveVertex("a"), graph.ErrVertexHasEdges)
	assert.ErrorIs(t, s.RemoveVertex("missing"), graph.ErrVertexNotFound)

	require.NoError(t, s.RemoveEdge("a", "b"))
	_, err := s.Edge("a", "b")
	assert.ErrorIs(t, err, graph.ErrEdgeNotFound)

	require.NoError(t, s.RemoveVertex("a"))
	got, err := s.ListVertices()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, got)

	edges, err := s.ListEdges()
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestOrderedStoreCreatesCycle(t *testing.T) {
	t.Parallel()

	s := store.NewOrderedStore[int, int]()
	for i := 1; i <= 4; i++ {
		require.NoError(t, s.AddVertex(i, i, graph.VertexProperties{}))
	}

	require.NoError(t, s.AddEdge(1, 2, graph.Edge[int]{Source: 1, Target: 2}))
	require.NoError(t, s.AddEdge(2, 3, graph.Edge[int]{Source: 2, Target: 3}))

	cycle, err := s.CreatesCycle(3, 1)
	require.NoError(t, err)
	assert.True(t, cycle)

	cycle, err = s.CreatesCycle(1, 4)
	require.NoError(t, err)
	assert.False(t, cycle)

	cycle, err = s.CreatesCycle(2, 2)
	require.NoError(t, err)
	assert.True(t, cycle)

	_, err = s.CreatesCycle(1, 9)
	assert.ErrorIs(t, err, graph.ErrVertexNotFound)
}
