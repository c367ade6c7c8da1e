package plan

import (
	"fmt"

	"gitlab.bluewillows.net/root/zonesync/pkg/record"
)

// Diff compares a zone's existing (hosted) state against its desired state
// and produces the plan that converges them. Creates and Updates come first
// in desired-record order, then Deletes in existing-record order; both
// orders are the zones' sorted enumeration, so the same inputs always yield
// the same plan.
func Diff(existing, desired *record.Zone) (*Plan, error) {
	if existing.Name != desired.Name {
		return nil, fmt.Errorf("cannot diff zones %s and %s", existing.Name, desired.Name)
	}

	p := &Plan{Zone: desired}

	for _, want := range desired.Records() {
		have := existing.Find(want.Name, want.Type)
		switch {
		case have == nil:
			p.Changes = append(p.Changes, Change{Op: OpCreate, New: want})
		case !have.Equal(want):
			p.Changes = append(p.Changes, Change{Op: OpUpdate, Existing: have, New: want})
		}
	}

	for _, have := range existing.Records() {
		if desired.Find(have.Name, have.Type) == nil {
			p.Changes = append(p.Changes, Change{Op: OpDelete, Existing: have})
		}
	}

	return p, nil
}
