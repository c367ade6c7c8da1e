package record

import (
	"fmt"
	"sort"
	"strings"

	"github.com/miekg/dns"
)

// Zone is the in-memory record set of one DNS zone. The name is always
// stored fully qualified (with trailing dot). A zone holds at most one
// Record per (name, type) pair.
type Zone struct {
	Name string

	records map[Key]*Record
}

// NewZone creates an empty zone. The name is normalized to fully qualified
// form; an invalid domain name is rejected.
func NewZone(name string) (*Zone, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, fmt.Errorf("zone name is required")
	}
	fqdn := dns.Fqdn(name)
	if _, ok := dns.IsDomainName(fqdn); !ok {
		return nil, fmt.Errorf("invalid zone name %q", name)
	}
	return &Zone{
		Name:    fqdn,
		records: make(map[Key]*Record),
	}, nil
}

// Domain returns the zone name without the trailing dot, the form most
// provider APIs expect.
func (z *Zone) Domain() string {
	return strings.TrimSuffix(z.Name, ".")
}

// Add inserts a record into the zone. Adding a second record with the same
// (name, type) is an error unless lenient is set, in which case the new
// record replaces the old one.
func (z *Zone) Add(r *Record, lenient bool) error {
	if r == nil {
		return fmt.Errorf("zone %s: nil record", z.Name)
	}
	if len(r.Values) == 0 {
		return fmt.Errorf("zone %s: record %s %s has no values", z.Name, r.Name, r.Type)
	}
	if r.Type.SingleValue() && len(r.Values) > 1 {
		return fmt.Errorf("zone %s: %s record %q must have exactly one value", z.Name, r.Type, r.Name)
	}
	key := r.Key()
	if _, exists := z.records[key]; exists && !lenient {
		return fmt.Errorf("zone %s: duplicate record %s %s", z.Name, r.Name, r.Type)
	}
	z.records[key] = r
	return nil
}

// Find returns the record with the given identity, or nil.
func (z *Zone) Find(name string, t Type) *Record {
	return z.records[Key{Name: name, Type: t}]
}

// Records returns all records sorted by name then type, so that repeated
// enumerations of equivalent zones always agree.
func (z *Zone) Records() []*Record {
	out := make([]*Record, 0, len(z.records))
	for _, r := range z.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// Len returns the number of records in the zone.
func (z *Zone) Len() int {
	return len(z.records)
}

// Equal reports whether two zones have the same name and semantically equal
// record sets.
func (z *Zone) Equal(o *Zone) bool {
	if z.Name != o.Name || len(z.records) != len(o.records) {
		return false
	}
	for key, r := range z.records {
		other, ok := o.records[key]
		if !ok || !r.Equal(other) {
			return false
		}
	}
	return true
}
