package profile

import (
	"context"
	"errors"

	"github.com/wolfeidau/authsync/internal/store"
)

// PrivateSet is the set of attribute names an account has declared
// private. It is loaded once per reconciliation pass; an operator may edit
// the declaration between passes, so it is never cached beyond one pass.
type PrivateSet map[string]struct{}

// LoadPrivateSet reads the declared private properties from the profile
// node. An absent declaration yields an empty set.
func LoadPrivateSet(ctx context.Context, contentStore store.ContentStore, profilePath string) (PrivateSet, error) {
	prop, err := contentStore.GetProperty(ctx, profilePath, PrivatePropertiesProperty)
	if err != nil {
		if errors.Is(err, store.ErrPropertyNotFound) {
			return PrivateSet{}, nil
		}
		return nil, err
	}

	set := make(PrivateSet, len(prop.Values))
	for _, name := range prop.Values {
		set[name] = struct{}{}
	}
	return set, nil
}

// IsPrivate reports whether the attribute name is a member of the declared
// private set.
func IsPrivate(attributeName string, declared PrivateSet) bool {
	_, private := declared[attributeName]
	return private
}
