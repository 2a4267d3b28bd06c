package store

import (
	"context"
	"errors"
)

// Errors
var (
	ErrNodeNotFound      = errors.New("node not found")
	ErrPropertyNotFound  = errors.New("property not found")
	ErrProtectedProperty = errors.New("property is protected")
	ErrPermissionDenied  = errors.New("permission denied")
)

// Right is a named access right on a content node.
type Right string

const (
	RightRead               Right = "read"
	RightWrite              Right = "write"
	RightAddChildNodes      Right = "add-child-nodes"
	RightRemoveChildNodes   Right = "remove-child-nodes"
	RightRemoveNode         Right = "remove-node"
	RightModifyProperties   Right = "modify-properties"
	RightNodeTypeManagement Right = "node-type-management"
)

// Property is a named value on a content node. A property with a single
// element and Multi=false is a scalar; Multi distinguishes a one-element
// multi-valued property from a scalar. Values are plain strings copied
// without coercion.
//
// Protected properties are owned by the store's own schema and reject
// writes through SetProperty.
type Property struct {
	Name      string
	Values    []string
	Multi     bool
	Protected bool
}

// Scalar builds a single-valued property.
func Scalar(name, value string) Property {
	return Property{Name: name, Values: []string{value}}
}

// Multi builds a multi-valued property.
func Multi(name string, values ...string) Property {
	return Property{Name: name, Values: values, Multi: true}
}

// First returns the first value, or the empty string for an empty property.
func (p Property) First() string {
	if len(p.Values) == 0 {
		return ""
	}
	return p.Values[0]
}

// AccessEntry is one access-control row on a node: a principal either
// granted or denied a single right. Entries are additive; duplicates may
// accumulate and must be tolerated by ACL evaluation.
type AccessEntry struct {
	Principal string
	Right     Right
	Allow     bool
}

// ContentStore is the hierarchical object store the engine provisions
// into. Paths are absolute, slash-separated.
//
// CreateIfAbsent must be atomic with respect to concurrent callers: exactly
// one caller observes created=true for a given path. First-creation side
// effects (stamps, grants) key off that flag.
type ContentStore interface {
	// Exists reports whether a node exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// CreateIfAbsent creates the node at path, including any missing
	// intermediate nodes, and reports whether this call created it.
	CreateIfAbsent(ctx context.Context, path string) (created bool, err error)

	// Properties returns all properties of the node at path.
	Properties(ctx context.Context, path string) ([]Property, error)

	// GetProperty returns a single property, or ErrPropertyNotFound.
	GetProperty(ctx context.Context, path, name string) (Property, error)

	// SetProperty upserts a property. Returns ErrProtectedProperty if the
	// existing property is protected, ErrNodeNotFound if the node is missing.
	SetProperty(ctx context.Context, path string, prop Property) error

	// RemoveProperty removes a property if present. Removing an absent
	// property is not an error.
	RemoveProperty(ctx context.Context, path, name string) error

	// RemoveNode removes the node at path and its entire subtree.
	RemoveNode(ctx context.Context, path string) error

	// AddAccessEntry appends one access-control row to the node at path.
	// Existing rows are never removed or reordered.
	AddAccessEntry(ctx context.Context, path string, entry AccessEntry) error

	// AccessEntries returns the access-control rows on path in insertion
	// order.
	AccessEntries(ctx context.Context, path string) ([]AccessEntry, error)
}
