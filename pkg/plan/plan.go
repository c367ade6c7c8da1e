// Package plan computes and represents the changes needed to move a hosted
// DNS zone to its desired state.
package plan

import (
	"fmt"

	"gitlab.bluewillows.net/root/zonesync/pkg/record"
)

// Op is the kind of change to apply to a single record.
type Op int

const (
	OpCreate Op = iota
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Change is one Create, Update or Delete of a single record. Existing is set
// for Update and Delete; New is set for Create and Update.
type Change struct {
	Op       Op
	Existing *record.Record
	New      *record.Record
}

// Record returns the record that identifies the change: the desired record
// where one exists, otherwise the existing one.
func (c Change) Record() *record.Record {
	if c.New != nil {
		return c.New
	}
	return c.Existing
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s", c.Op, c.Record())
}

// Plan is an ordered list of changes for one zone. Changes are applied
// strictly in slice order.
type Plan struct {
	Zone    *record.Zone // desired state
	Changes []Change
}

// HasChanges reports whether the plan contains any work.
func (p *Plan) HasChanges() bool {
	return len(p.Changes) > 0
}
