package identity

import (
	"context"
	"errors"
)

// Errors
var (
	ErrAccountNotFound = errors.New("account not found")
)

// Kind distinguishes user accounts from group accounts.
type Kind string

const (
	KindUser  Kind = "user"
	KindGroup Kind = "group"
)

// Attribute is one named attribute of an account, carrying one or many
// scalar values. Multi distinguishes a single-element multi-valued
// attribute from a scalar one.
type Attribute struct {
	Name   string
	Values []string
	Multi  bool
}

// Account is an identity record owned by the external identity store: a
// principal name, a kind, and an ordered set of attributes. The engine
// reads attributes and never mutates the account itself.
type Account struct {
	Name string
	Kind Kind

	attrs []Attribute
	index map[string]int
}

// NewAccount creates an account with no attributes.
func NewAccount(name string, kind Kind) *Account {
	return &Account{
		Name:  name,
		Kind:  kind,
		index: make(map[string]int),
	}
}

// IsGroup reports whether the account is a group.
func (a *Account) IsGroup() bool {
	return a.Kind == KindGroup
}

// SetAttribute upserts an attribute, preserving first-insertion order.
func (a *Account) SetAttribute(attr Attribute) {
	if i, ok := a.index[attr.Name]; ok {
		a.attrs[i] = attr
		return
	}
	a.index[attr.Name] = len(a.attrs)
	a.attrs = append(a.attrs, attr)
}

// SetScalar upserts a single-valued attribute.
func (a *Account) SetScalar(name, value string) {
	a.SetAttribute(Attribute{Name: name, Values: []string{value}})
}

// SetMulti upserts a multi-valued attribute.
func (a *Account) SetMulti(name string, values ...string) {
	a.SetAttribute(Attribute{Name: name, Values: values, Multi: true})
}

// AttributeNames returns the attribute names in insertion order.
func (a *Account) AttributeNames() []string {
	names := make([]string, len(a.attrs))
	for i, attr := range a.attrs {
		names[i] = attr.Name
	}
	return names
}

// Attribute returns the named attribute and whether it exists.
func (a *Account) Attribute(name string) (Attribute, bool) {
	i, ok := a.index[name]
	if !ok {
		return Attribute{}, false
	}
	return a.attrs[i], true
}

// Resolver resolves principal names to accounts in the external identity
// store.
type Resolver interface {
	Resolve(ctx context.Context, principalName string) (*Account, error)
}
