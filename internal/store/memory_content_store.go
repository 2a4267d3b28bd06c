package store

import (
	"context"
	"strings"
	"sync"
)

// MemoryContentStore is an in-memory implementation of ContentStore for
// development and testing. All operations are safe for concurrent use; a
// single lock makes CreateIfAbsent atomic.
type MemoryContentStore struct {
	mu    sync.RWMutex
	nodes map[string]*memoryNode
}

type memoryNode struct {
	properties map[string]Property
	entries    []AccessEntry
}

// NewMemoryContentStore creates a new in-memory content store with an
// empty root node.
func NewMemoryContentStore() *MemoryContentStore {
	return &MemoryContentStore{
		nodes: map[string]*memoryNode{
			"/": newMemoryNode(),
		},
	}
}

func newMemoryNode() *memoryNode {
	return &memoryNode{properties: make(map[string]Property)}
}

// Exists reports whether a node exists at path.
func (s *MemoryContentStore) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.nodes[path]
	return exists, nil
}

// CreateIfAbsent creates the node at path and any missing intermediate
// nodes, reporting whether this call created the leaf.
func (s *MemoryContentStore) CreateIfAbsent(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[path]; exists {
		return false, nil
	}

	// Create missing ancestors first.
	segments := strings.Split(strings.Trim(path, "/"), "/")
	current := ""
	for _, seg := range segments[:len(segments)-1] {
		current = current + "/" + seg
		if _, exists := s.nodes[current]; !exists {
			s.nodes[current] = newMemoryNode()
		}
	}

	s.nodes[path] = newMemoryNode()
	return true, nil
}

// Properties returns copies of all properties of the node at path.
func (s *MemoryContentStore) Properties(ctx context.Context, path string) ([]Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, exists := s.nodes[path]
	if !exists {
		return nil, ErrNodeNotFound
	}

	props := make([]Property, 0, len(node.properties))
	for _, prop := range node.properties {
		props = append(props, copyProperty(prop))
	}
	return props, nil
}

// GetProperty returns a copy of a single property.
func (s *MemoryContentStore) GetProperty(ctx context.Context, path, name string) (Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, exists := s.nodes[path]
	if !exists {
		return Property{}, ErrNodeNotFound
	}

	prop, ok := node.properties[name]
	if !ok {
		return Property{}, ErrPropertyNotFound
	}
	return copyProperty(prop), nil
}

// SetProperty upserts a property on the node at path.
func (s *MemoryContentStore) SetProperty(ctx context.Context, path string, prop Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, exists := s.nodes[path]
	if !exists {
		return ErrNodeNotFound
	}

	if existing, ok := node.properties[prop.Name]; ok && existing.Protected {
		return ErrProtectedProperty
	}

	node.properties[prop.Name] = copyProperty(prop)
	return nil
}

// RemoveProperty removes a property if present.
func (s *MemoryContentStore) RemoveProperty(ctx context.Context, path, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, exists := s.nodes[path]
	if !exists {
		return ErrNodeNotFound
	}

	delete(node.properties, name)
	return nil
}

// RemoveNode removes the node at path and its entire subtree.
func (s *MemoryContentStore) RemoveNode(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[path]; !exists {
		return ErrNodeNotFound
	}

	prefix := path + "/"
	for p := range s.nodes {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(s.nodes, p)
		}
	}
	return nil
}

// AddAccessEntry appends one access-control row to the node at path.
func (s *MemoryContentStore) AddAccessEntry(ctx context.Context, path string, entry AccessEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, exists := s.nodes[path]
	if !exists {
		return ErrNodeNotFound
	}

	node.entries = append(node.entries, entry)
	return nil
}

// AccessEntries returns the access-control rows on path in insertion order.
func (s *MemoryContentStore) AccessEntries(ctx context.Context, path string) ([]AccessEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, exists := s.nodes[path]
	if !exists {
		return nil, ErrNodeNotFound
	}

	entries := make([]AccessEntry, len(node.entries))
	copy(entries, node.entries)
	return entries, nil
}

func copyProperty(prop Property) Property {
	cp := prop
	cp.Values = make([]string, len(prop.Values))
	copy(cp.Values, prop.Values)
	return cp
}
