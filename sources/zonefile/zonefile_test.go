package zonefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitlab.bluewillows.net/root/zonesync/pkg/record"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

const sampleYAML = `
"@":
  - type: A
    ttl: 300
    values: [1.2.3.4, 5.6.7.8]
  - type: MX
    data:
      - value: mail1.unit.tests.
        priority: 10
      - value: mail2.unit.tests.
        priority: 20
www:
  - type: CNAME
    value: unit.tests.
_sip._tcp:
  - type: SRV
    ttl: 600
    data:
      - value: sip.unit.tests.
        priority: 10
        weight: 20
        port: 5060
caa:
  - type: CAA
    data:
      - value: ca.unit.tests
        tag: issue
txt:
  - type: TXT
    values:
      - "Bah bah black sheep"
`

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "unit.tests.yaml", sampleYAML)

	zone, err := Load(path, "unit.tests.", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zone.Len() != 6 {
		t.Fatalf("expected 6 records, got %d", zone.Len())
	}

	a := zone.Find("", record.TypeA)
	if a == nil || len(a.Values) != 2 || a.Values[0].Data != "1.2.3.4" {
		t.Errorf("unexpected apex A record: %v", a)
	}

	mx := zone.Find("", record.TypeMX)
	if mx == nil || len(mx.Values) != 2 {
		t.Fatalf("unexpected apex MX record: %v", mx)
	}
	if mx.Values[0].Priority != 10 || mx.Values[0].Data != "mail1.unit.tests." {
		t.Errorf("unexpected MX value: %+v", mx.Values[0])
	}

	srv := zone.Find("_sip._tcp", record.TypeSRV)
	if srv == nil {
		t.Fatal("missing SRV record")
	}
	v := srv.Values[0]
	if v.Priority != 10 || v.Weight != 20 || v.Port != 5060 || v.Data != "sip.unit.tests." {
		t.Errorf("unexpected SRV value: %+v", v)
	}
	if srv.TTL != 600 {
		t.Errorf("expected ttl 600, got %d", srv.TTL)
	}

	caa := zone.Find("caa", record.TypeCAA)
	if caa == nil || caa.Values[0].Tag != "issue" || caa.Values[0].Flags != 0 {
		t.Errorf("unexpected CAA record: %v", caa)
	}

	txt := zone.Find("txt", record.TypeTXT)
	if txt == nil || txt.TTL != 300 {
		t.Errorf("TXT record should default to ttl 300: %v", txt)
	}
}

func TestLoad_TOML(t *testing.T) {
	content := `
[[www]]
type = "A"
ttl = 120
values = ["1.2.3.4"]

[["@"]]
type = "MX"

[["@".data]]
value = "mail.unit.tests."
priority = 0
`
	path := writeFile(t, "unit.tests.toml", content)

	zone, err := Load(path, "unit.tests.", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := zone.Find("www", record.TypeA)
	if a == nil || a.TTL != 120 || a.Values[0].Data != "1.2.3.4" {
		t.Errorf("unexpected A record: %v", a)
	}

	mx := zone.Find("", record.TypeMX)
	if mx == nil || mx.Values[0].Priority != 0 || mx.Values[0].Data != "mail.unit.tests." {
		t.Errorf("unexpected MX record: %v", mx)
	}
}

func TestLoad_ConfiguredDefaultTTL(t *testing.T) {
	content := `
www:
  - type: A
    values: [1.2.3.4]
mail:
  - type: A
    ttl: 60
    values: [5.6.7.8]
`
	path := writeFile(t, "unit.tests.yaml", content)

	zone, err := Load(path, "unit.tests.", 3600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	www := zone.Find("www", record.TypeA)
	if www == nil || www.TTL != 3600 {
		t.Errorf("record without ttl should use the configured default 3600, got %v", www)
	}

	mail := zone.Find("mail", record.TypeA)
	if mail == nil || mail.TTL != 60 {
		t.Errorf("explicit ttl should win over the default, got %v", mail)
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, "unit.tests.json", `{}`)
	if _, err := Load(path, "unit.tests.", 0); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "unit.tests.", 0); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_ErrorsNameTheRecord(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{
			"unknown type",
			"www:\n  - type: SSHFP\n    value: whatever\n",
			"www/SSHFP",
		},
		{
			"no values",
			"www:\n  - type: A\n",
			"www/A",
		},
		{
			"value and values together",
			"www:\n  - type: A\n    value: 1.2.3.4\n    values: [5.6.7.8]\n",
			"www/A",
		},
		{
			"mx without data",
			"\"@\":\n  - type: MX\n    value: mail.unit.tests.\n",
			"@/MX",
		},
		{
			"caa without tag",
			"\"@\":\n  - type: CAA\n    data:\n      - value: ca.unit.tests\n",
			"@/CAA",
		},
		{
			"duplicate record",
			"www:\n  - type: A\n    value: 1.2.3.4\n  - type: A\n    value: 5.6.7.8\n",
			"duplicate",
		},
		{
			"multi-value cname",
			"www:\n  - type: CNAME\n    values: [a.unit.tests., b.unit.tests.]\n",
			"CNAME",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "zone.yaml", tc.content)
			_, err := Load(path, "unit.tests.", 0)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}
