package record

import (
	"testing"
)

func TestParseType_Supported(t *testing.T) {
	for _, kind := range Types() {
		parsed, err := ParseType(string(kind))
		if err != nil {
			t.Errorf("ParseType(%q) returned error: %v", kind, err)
		}
		if parsed != kind {
			t.Errorf("ParseType(%q) = %q", kind, parsed)
		}
	}
}

func TestParseType_Normalizes(t *testing.T) {
	parsed, err := ParseType(" cname ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != TypeCNAME {
		t.Errorf("expected CNAME, got %q", parsed)
	}
}

func TestParseType_Rejected(t *testing.T) {
	// SSHFP is a real DNS type but not a managed kind
	if _, err := ParseType("SSHFP"); err == nil {
		t.Error("expected error for SSHFP")
	}
	// not a DNS type at all
	if _, err := ParseType("BOGUS"); err == nil {
		t.Error("expected error for BOGUS")
	}
}

func TestRecordEqual_ValueOrderIgnored(t *testing.T) {
	a := &Record{Name: "", Type: TypeA, TTL: 300, Values: []Value{
		{Data: "1.2.3.4"}, {Data: "5.6.7.8"},
	}}
	b := &Record{Name: "", Type: TypeA, TTL: 300, Values: []Value{
		{Data: "5.6.7.8"}, {Data: "1.2.3.4"},
	}}
	if !a.Equal(b) {
		t.Error("records with reordered values should be equal")
	}
}

func TestRecordEqual_TTLDiffers(t *testing.T) {
	a := &Record{Name: "www", Type: TypeCNAME, TTL: 300, Values: []Value{{Data: "example.com."}}}
	b := &Record{Name: "www", Type: TypeCNAME, TTL: 600, Values: []Value{{Data: "example.com."}}}
	if a.Equal(b) {
		t.Error("records with different TTLs should not be equal")
	}
}

func TestRecordEqual_PriorityFields(t *testing.T) {
	a := &Record{Name: "", Type: TypeMX, TTL: 300, Values: []Value{
		{Data: "mail.example.com.", Priority: 10},
	}}
	b := &Record{Name: "", Type: TypeMX, TTL: 300, Values: []Value{
		{Data: "mail.example.com.", Priority: 20},
	}}
	if a.Equal(b) {
		t.Error("MX records with different preferences should not be equal")
	}
}

func TestRecordFQDN(t *testing.T) {
	apex := &Record{Name: "", Type: TypeA}
	if got := apex.FQDN("example.com."); got != "example.com." {
		t.Errorf("apex FQDN = %q", got)
	}
	www := &Record{Name: "www", Type: TypeA}
	if got := www.FQDN("example.com."); got != "www.example.com." {
		t.Errorf("www FQDN = %q", got)
	}
}

func TestNewZone_Normalizes(t *testing.T) {
	z, err := NewZone("Example.COM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if z.Name != "example.com." {
		t.Errorf("expected example.com., got %q", z.Name)
	}
	if z.Domain() != "example.com" {
		t.Errorf("expected example.com, got %q", z.Domain())
	}
}

func TestNewZone_Empty(t *testing.T) {
	if _, err := NewZone("  "); err == nil {
		t.Error("expected error for empty zone name")
	}
}

func TestZoneAdd_Duplicate(t *testing.T) {
	z, _ := NewZone("example.com")
	first := &Record{Name: "www", Type: TypeA, TTL: 300, Values: []Value{{Data: "1.2.3.4"}}}
	second := &Record{Name: "www", Type: TypeA, TTL: 600, Values: []Value{{Data: "5.6.7.8"}}}

	if err := z.Add(first, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := z.Add(second, false); err == nil {
		t.Error("expected duplicate error")
	}
	// lenient replaces
	if err := z.Add(second, true); err != nil {
		t.Errorf("lenient add failed: %v", err)
	}
	if got := z.Find("www", TypeA); got == nil || got.TTL != 600 {
		t.Errorf("lenient add should replace, got %v", got)
	}
}

func TestZoneAdd_CNAMESingleValue(t *testing.T) {
	z, _ := NewZone("example.com")
	r := &Record{Name: "www", Type: TypeCNAME, TTL: 300, Values: []Value{
		{Data: "a.example.com."}, {Data: "b.example.com."},
	}}
	if err := z.Add(r, false); err == nil {
		t.Error("expected error for multi-value CNAME")
	}
}

func TestZoneAdd_NoValues(t *testing.T) {
	z, _ := NewZone("example.com")
	if err := z.Add(&Record{Name: "www", Type: TypeA, TTL: 300}, false); err == nil {
		t.Error("expected error for record without values")
	}
}

func TestZoneRecords_Sorted(t *testing.T) {
	z, _ := NewZone("example.com")
	records := []*Record{
		{Name: "www", Type: TypeA, TTL: 300, Values: []Value{{Data: "1.2.3.4"}}},
		{Name: "", Type: TypeNS, TTL: 300, Values: []Value{{Data: "ns1.example.com."}}},
		{Name: "", Type: TypeA, TTL: 300, Values: []Value{{Data: "1.2.3.4"}}},
		{Name: "mail", Type: TypeA, TTL: 300, Values: []Value{{Data: "1.2.3.4"}}},
	}
	for _, r := range records {
		if err := z.Add(r, false); err != nil {
			t.Fatalf("add %v: %v", r, err)
		}
	}

	got := z.Records()
	want := []Key{
		{Name: "", Type: TypeA},
		{Name: "", Type: TypeNS},
		{Name: "mail", Type: TypeA},
		{Name: "www", Type: TypeA},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i, r := range got {
		if r.Key() != want[i] {
			t.Errorf("position %d: expected %v, got %v", i, want[i], r.Key())
		}
	}
}

func TestZoneEqual(t *testing.T) {
	a, _ := NewZone("example.com")
	b, _ := NewZone("example.com")
	r := &Record{Name: "www", Type: TypeA, TTL: 300, Values: []Value{{Data: "1.2.3.4"}}}
	_ = a.Add(r, false)
	if a.Equal(b) {
		t.Error("zones with different record counts should not be equal")
	}
	_ = b.Add(&Record{Name: "www", Type: TypeA, TTL: 300, Values: []Value{{Data: "1.2.3.4"}}}, false)
	if !a.Equal(b) {
		t.Error("expected zones to be equal")
	}
}
