package models

// ModificationType identifies the kind of atomic change recorded in a
// change batch.
type ModificationType string

const (
	ModificationCreate ModificationType = "create"
	ModificationModify ModificationType = "modify"
	ModificationDelete ModificationType = "delete"
	ModificationMove   ModificationType = "move"
	ModificationCopy   ModificationType = "copy"
)

// Modification is a single atomic change observed during an account
// operation. Source is always set; Destination is set for moves/copies and,
// when present, is authoritative for addressing.
type Modification struct {
	Type        ModificationType
	Source      string
	Destination string
}

// Path returns the destination path if present, otherwise the source path.
func (m Modification) Path() string {
	if m.Destination != "" {
		return m.Destination
	}
	return m.Source
}

// ChangeBatch is the unit of input to the provisioning engine: the account
// path that triggered the operation plus the ordered list of modifications
// the operation produced.
//
// Name carries the node-name request parameter supplied when the batch
// addresses a collection root (the principal is not derivable from the path
// in that case). Actor is the session user performing the operation, used
// for event attribution.
type ChangeBatch struct {
	AccountPath   string
	Name          string
	Actor         string
	Modifications []Modification
}
