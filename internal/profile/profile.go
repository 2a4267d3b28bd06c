// Package profile synchronises an account's attributes onto its public
// profile node under a privacy policy.
package profile

import "strings"

// Reserved attribute-name prefixes. Attributes carrying either prefix are
// store- or access-control-internal metadata and are never replicated onto
// a profile, with the single exception of PrincipalProperty below.
const (
	SystemPrefix = "sys:"
	AuthPrefix   = "auth:"
)

// Well-known property names on profile and private-space nodes.
const (
	// PrincipalProperty mirrors the owning principal's name onto the
	// profile. It is the one internal-prefixed property written there,
	// stamped once if absent.
	PrincipalProperty = AuthPrefix + "principal"

	// PrivatePropertiesProperty is the multi-valued property on a profile
	// node listing attribute names that must never be replicated.
	PrivatePropertiesProperty = "privateProperties"

	// ResourceTypeProperty tags a node with its rendered resource type.
	ResourceTypeProperty = "resourceType"

	// CreatedProperty and CreatedByProperty stamp a private space with its
	// creation time and the principal it was created for.
	CreatedProperty   = SystemPrefix + "created"
	CreatedByProperty = SystemPrefix + "createdBy"
)

// Profile resource types, distinguishing user from group profiles.
const (
	UserProfileResourceType  = "authsync/user-profile"
	GroupProfileResourceType = "authsync/group-profile"
)

// IsInternalName reports whether an attribute name carries one of the
// reserved internal prefixes.
func IsInternalName(name string) bool {
	return strings.HasPrefix(name, SystemPrefix) || strings.HasPrefix(name, AuthPrefix)
}
