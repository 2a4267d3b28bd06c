package acl

import "github.com/wolfeidau/authsync/internal/store"

// Universal principals. Private spaces always carry explicit deny rows for
// both, regardless of what other entries exist.
const (
	Anonymous = "anonymous"
	Everyone  = "everyone"
)

// Capability is a requested access right with its polarity baked in. The
// polarity is part of the capability itself, not a separate parameter, so a
// grant call reads as a list of pre-tagged outcomes.
type Capability struct {
	Right store.Right
	Allow bool
}

var (
	ReadGranted               = Capability{Right: store.RightRead, Allow: true}
	ReadDenied                = Capability{Right: store.RightRead, Allow: false}
	WriteGranted              = Capability{Right: store.RightWrite, Allow: true}
	WriteDenied               = Capability{Right: store.RightWrite, Allow: false}
	AddChildNodesGranted      = Capability{Right: store.RightAddChildNodes, Allow: true}
	RemoveChildNodesGranted   = Capability{Right: store.RightRemoveChildNodes, Allow: true}
	RemoveNodeGranted         = Capability{Right: store.RightRemoveNode, Allow: true}
	ModifyPropertiesGranted   = Capability{Right: store.RightModifyProperties, Allow: true}
	NodeTypeManagementGranted = Capability{Right: store.RightNodeTypeManagement, Allow: true}
)

// OwnerCapabilities returns the full set granted to an account over its own
// profile and private space.
func OwnerCapabilities() []Capability {
	return []Capability{
		ReadGranted,
		WriteGranted,
		RemoveChildNodesGranted,
		ModifyPropertiesGranted,
		AddChildNodesGranted,
		RemoveNodeGranted,
		NodeTypeManagementGranted,
	}
}
