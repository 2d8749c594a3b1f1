// Package store provides a graph.Store that remembers insertion order.
//
// The default store of github.com/dominikbraun/graph keeps vertices and edges in maps, so listing them
// yields a different order on every run. Pipelines are ordered by nature, and the rendered graphs must be
// stable, so this store lists vertices and edges in the order they were added.
package store

import (
	"fmt"
	"sync"

	"github.com/dominikbraun/graph"
)

type edgeKey[K comparable] struct {
	source, target K
}

// OrderedStore is an in-memory graph.Store listing vertices and edges in insertion order.
type OrderedStore[K comparable, T any] struct {
	lock             sync.RWMutex
	vertices         map[K]T
	vertexProperties map[K]*graph.VertexProperties
	vertexOrder      []K

	// outEdges and inEdges store all outgoing and ingoing edges for all vertices, keyed by the hash of
	// the opposite vertex.
	outEdges  map[K]map[K]graph.Edge[K]
	inEdges   map[K]map[K]graph.Edge[K]
	edgeOrder []edgeKey[K]
}

// NewOrderedStore returns an empty store.
func NewOrderedStore[K comparable, T any]() *OrderedStore[K, T] {
	return &OrderedStore[K, T]{
		vertices:         make(map[K]T),
		vertexProperties: make(map[K]*graph.VertexProperties),
		outEdges:         make(map[K]map[K]graph.Edge[K]),
		inEdges:          make(map[K]map[K]graph.Edge[K]),
	}
}

func (s *OrderedStore[K, T]) AddVertex(k K, t T, p graph.VertexProperties) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[k]; ok {
		return graph.ErrVertexAlreadyExists
	}

	s.vertices[k] = t
	s.vertexProperties[k] = &p
	s.vertexOrder = append(s.vertexOrder, k)

	return nil
}

func (s *OrderedStore[K, T]) ListVertices() ([]K, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	hashes := make([]K, len(s.vertexOrder))
	copy(hashes, s.vertexOrder)

	return hashes, nil
}

func (s *OrderedStore[K, T]) VertexCount() (int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.vertices), nil
}

func (s *OrderedStore[K, T]) Vertex(k K) (T, graph.VertexProperties, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.vertices[k]
	if !ok {
		return v, graph.VertexProperties{}, graph.ErrVertexNotFound
	}

	return v, *s.vertexProperties[k], nil
}

func (s *OrderedStore[K, T]) RemoveVertex(k K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[k]; !ok {
		return graph.ErrVertexNotFound
	}

	if len(s.inEdges[k]) > 0 || len(s.outEdges[k]) > 0 {
		return graph.ErrVertexHasEdges
	}

	delete(s.inEdges, k)
	delete(s.outEdges, k)
	delete(s.vertices, k)
	delete(s.vertexProperties, k)

	for i, hash := range s.vertexOrder {
		if hash == k {
			s.vertexOrder = append(s.vertexOrder[:i], s.vertexOrder[i+1:]...)

			break
		}
	}

	return nil
}

func (s *OrderedStore[K, T]) AddEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.outEdges[sourceHash]; !ok {
		s.outEdges[sourceHash] = make(map[K]graph.Edge[K])
	}

	if _, ok := s.outEdges[sourceHash][targetHash]; !ok {
		s.edgeOrder = append(s.edgeOrder, edgeKey[K]{source: sourceHash, target: targetHash})
	}

	s.outEdges[sourceHash][targetHash] = edge

	if _, ok := s.inEdges[targetHash]; !ok {
		s.inEdges[targetHash] = make(map[K]graph.Edge[K])
	}

	s.inEdges[targetHash][sourceHash] = edge

	return nil
}

func (s *OrderedStore[K, T]) UpdateEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	if _, err := s.Edge(sourceHash, targetHash); err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.outEdges[sourceHash][targetHash] = edge
	s.inEdges[targetHash][sourceHash] = edge

	return nil
}

func (s *OrderedStore[K, T]) RemoveEdge(sourceHash, targetHash K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.inEdges[targetHash], sourceHash)
	delete(s.outEdges[sourceHash], targetHash)

	for i, key := range s.edgeOrder {
		if key.source == sourceHash && key.target == targetHash {
			s.edgeOrder = append(s.edgeOrder[:i], s.edgeOrder[i+1:]...)

			break
		}
	}

	return nil
}

func (s *OrderedStore[K, T]) Edge(sourceHash, targetHash K) (graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	edge, ok := s.outEdges[sourceHash][targetHash]
	if !ok {
		return graph.Edge[K]{}, graph.ErrEdgeNotFound
	}

	return edge, nil
}

func (s *OrderedStore[K, T]) ListEdges() ([]graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	res := make([]graph.Edge[K], 0, len(s.edgeOrder))
	for _, key := range s.edgeOrder {
		res = append(res, s.outEdges[key.source][key.target])
	}

	return res, nil
}

// CreatesCycle reports whether an edge from source to target would close a cycle. It walks inEdges
// from source instead of building a predecessor map.
func (s *OrderedStore[K, T]) CreatesCycle(source, target K) (bool, error) {
	if _, _, err := s.Vertex(source); err != nil {
		return false, fmt.Errorf("could not get vertex with hash %v: %w", source, err)
	}

	if _, _, err := s.Vertex(target); err != nil {
		return false, fmt.Errorf("could not get vertex with hash %v: %w", target, err)
	}

	if source == target {
		return true, nil
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	stack := []K{source}
	visited := make(map[K]struct{})

	for len(stack) > 0 {
		currentHash := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := visited[currentHash]; ok {
			continue
		}

		// target is an ancestor of source: the new edge would close the loop.
		if currentHash == target {
			return true, nil
		}

		visited[currentHash] = struct{}{}

		for adjacency := range s.inEdges[currentHash] {
			stack = append(stack, adjacency)
		}
	}

	return false, nil
}

var _ graph.Store[string, string] = (*OrderedStore[string, string])(nil)
