// Package record defines the provider-agnostic DNS record model used by
// zonesync. Providers translate between this model and their own wire
// representation; nothing in this package is specific to any DNS host.
package record

import (
	"fmt"
	"sort"
	"strings"

	"github.com/miekg/dns"
)

// Type is a DNS record kind.
type Type string

// Record kinds zonesync can manage.
const (
	TypeA     Type = "A"
	TypeAAAA  Type = "AAAA"
	TypeCAA   Type = "CAA"
	TypeCNAME Type = "CNAME"
	TypeMX    Type = "MX"
	TypeNS    Type = "NS"
	TypeSRV   Type = "SRV"
	TypeTXT   Type = "TXT"
)

// Types returns all supported record kinds in a stable order.
func Types() []Type {
	return []Type{TypeA, TypeAAAA, TypeCAA, TypeCNAME, TypeMX, TypeNS, TypeSRV, TypeTXT}
}

// ParseType validates a record type string against the supported kinds.
// The string must also name a real DNS type as known to the dns package.
func ParseType(s string) (Type, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if _, ok := dns.StringToType[s]; !ok {
		return "", fmt.Errorf("unknown DNS record type %q", s)
	}
	t := Type(s)
	for _, supported := range Types() {
		if t == supported {
			return t, nil
		}
	}
	return "", fmt.Errorf("unsupported record type %q", s)
}

// SingleValue reports whether the kind admits exactly one value.
func (t Type) SingleValue() bool {
	return t == TypeCNAME
}

// String returns the type as its DNS presentation name.
func (t Type) String() string {
	return string(t)
}

// Value is one rdata value of a Record. It is a flat tagged shape: which
// fields are meaningful depends on the record type. Scalar kinds (A, AAAA,
// CNAME, NS, TXT) use only Data; MX uses Priority (preference) and Data
// (exchange); SRV uses Priority, Weight, Port and Data (target); CAA uses
// Flags, Tag and Data (value).
type Value struct {
	Data     string
	Priority uint16
	Weight   uint16
	Port     uint16
	Flags    uint8
	Tag      string
}

// Equal reports field-wise equality.
func (v Value) Equal(o Value) bool {
	return v == o
}

// sortKey produces a total order over values for comparison purposes.
func (v Value) sortKey() string {
	return fmt.Sprintf("%05d %05d %05d %03d %s %s", v.Priority, v.Weight, v.Port, v.Flags, v.Tag, v.Data)
}

// Record is one DNS entry in a zone: a zone-relative name (empty string for
// the apex), a kind, a TTL and one or more values.
type Record struct {
	Name   string
	Type   Type
	TTL    int
	Values []Value
}

// Key identifies a record within a zone. Zones hold at most one Record per
// (name, type) pair; multi-value data lives in Values.
type Key struct {
	Name string
	Type Type
}

// Key returns the record's (name, type) identity.
func (r *Record) Key() Key {
	return Key{Name: r.Name, Type: r.Type}
}

// FQDN returns the record's fully qualified name within the given zone.
// The zone name must carry a trailing dot.
func (r *Record) FQDN(zone string) string {
	if r.Name == "" {
		return zone
	}
	return r.Name + "." + zone
}

// Equal reports whether two records are semantically identical: same
// identity, same TTL and the same set of values. Value order does not
// matter; values are an unordered set even though they are stored in
// provider response order.
func (r *Record) Equal(o *Record) bool {
	if r.Name != o.Name || r.Type != o.Type || r.TTL != o.TTL {
		return false
	}
	if len(r.Values) != len(o.Values) {
		return false
	}
	a := sortedValues(r.Values)
	b := sortedValues(o.Values)
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (r *Record) String() string {
	values := make([]string, len(r.Values))
	for i, v := range r.Values {
		values[i] = v.Data
	}
	name := r.Name
	if name == "" {
		name = "@"
	}
	return fmt.Sprintf("%s %s ttl=%d [%s]", name, r.Type, r.TTL, strings.Join(values, " "))
}

func sortedValues(values []Value) []Value {
	out := make([]Value, len(values))
	copy(out, values)
	sort.Slice(out, func(i, j int) bool {
		return out[i].sortKey() < out[j].sortKey()
	})
	return out
}
