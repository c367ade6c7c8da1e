// Package provider defines the interface that all DNS providers must implement.
package provider

import (
	"context"

	"gitlab.bluewillows.net/root/zonesync/pkg/plan"
	"gitlab.bluewillows.net/root/zonesync/pkg/record"
)

// Provider defines the interface for DNS providers. A provider translates
// between the generic record model and one hosting service's API.
type Provider interface {
	// Name returns the provider instance name (e.g., "vultr-prod").
	Name() string

	// Type returns the provider type (e.g., "vultr").
	Type() string

	// Populate loads the zone's current records from the provider into the
	// given zone object. It returns whether the zone exists at the provider;
	// a missing zone is not an error and leaves the zone empty. target marks
	// a load whose result will be diffed against desired state; lenient
	// relaxes record validation on add.
	Populate(ctx context.Context, zone *record.Zone, target, lenient bool) (exists bool, err error)

	// Apply executes the plan's changes against the provider, strictly in
	// plan order, one record operation at a time. It returns the number of
	// changes fully applied. On error the zone is left with the already
	// applied prefix of the plan in place; no rollback is attempted.
	Apply(ctx context.Context, p *plan.Plan) (applied int, err error)
}

// SupportedTypes reports whether a provider manages the given record kind.
// Providers carry their own kind sets; this helper implements the common
// membership check.
func SupportedTypes(kinds []record.Type, t record.Type) bool {
	for _, k := range kinds {
		if k == t {
			return true
		}
	}
	return false
}
