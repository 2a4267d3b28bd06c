// Package paths derives the deterministic content-store locations for an
// account's public profile and private space, and defines the account
// manager paths the provisioning engine recognises.
package paths

import (
	"strings"

	"github.com/wolfeidau/authsync/internal/identity"
)

// Account manager resource paths. Operations on the roots address the
// collection itself (the principal arrives as a request parameter);
// operations under the prefixes address an individual account.
const (
	UserRoot    = "/system/accountManager/user"
	GroupRoot   = "/system/accountManager/group"
	UserPrefix  = UserRoot + "/"
	GroupPrefix = GroupRoot + "/"
)

func home(kind identity.Kind) string {
	if kind == identity.KindGroup {
		return "/_group"
	}
	return "/_user"
}

// PublicHome returns the account's public subtree root. Owner grants are
// applied here so future public children share the same access rows.
func PublicHome(kind identity.Kind, name string) string {
	return home(kind) + "/public/" + name
}

// Profile returns the path of the account's public profile node.
func Profile(kind identity.Kind, name string) string {
	return PublicHome(kind, name) + "/profile"
}

// PrivateSpace returns the root of the account's owner-only subtree.
func PrivateSpace(kind identity.Kind, name string) string {
	return home(kind) + "/private/" + name
}

// LastSegment returns the final path segment of p.
func LastSegment(p string) string {
	p = strings.TrimSuffix(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
