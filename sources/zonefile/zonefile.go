// Package zonefile loads desired zone state from YAML or TOML files.
//
// A zone file maps record names (relative to the zone, "" or "@" for the
// apex) to one or more record definitions:
//
//	"":
//	  - type: A
//	    ttl: 300
//	    values: [1.2.3.4, 5.6.7.8]
//	www:
//	  - type: CNAME
//	    value: unit.tests.
//	"":
//	  - type: MX
//	    data:
//	      - value: mail.unit.tests.
//	        priority: 10
//
// Scalar kinds (A, AAAA, CNAME, NS, TXT) use value or values. Kinds with
// extra fields (MX, SRV, CAA) use a data list of tables.
package zonefile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"gitlab.bluewillows.net/root/zonesync/pkg/record"
)

// fallbackTTL applies when neither the record definition nor the caller
// supplies a TTL.
const fallbackTTL = 300

type fileValue struct {
	Value    string `yaml:"value" toml:"value"`
	Priority uint16 `yaml:"priority" toml:"priority"`
	Weight   uint16 `yaml:"weight" toml:"weight"`
	Port     uint16 `yaml:"port" toml:"port"`
	Flags    uint8  `yaml:"flags" toml:"flags"`
	Tag      string `yaml:"tag" toml:"tag"`
}

type fileRecord struct {
	Type   string      `yaml:"type" toml:"type"`
	TTL    int         `yaml:"ttl" toml:"ttl"`
	Value  string      `yaml:"value" toml:"value"`
	Values []string    `yaml:"values" toml:"values"`
	Data   []fileValue `yaml:"data" toml:"data"`
}

type zoneFile map[string][]fileRecord

// Load reads the zone file at path and returns the desired state for
// zoneName. The format follows the file extension: .yaml and .yml parse as
// YAML, .toml as TOML. Records that do not set a ttl get defaultTTL;
// passing 0 selects the built-in fallback of 300.
func Load(path, zoneName string, defaultTTL int) (*record.Zone, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading zone file: %w", err)
	}

	var zf zoneFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &zf); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(raw, &zf); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported zone file extension %q (want .yaml, .yml or .toml)", ext)
	}

	return buildZone(zoneName, zf, defaultTTL)
}

func buildZone(zoneName string, zf zoneFile, defaultTTL int) (*record.Zone, error) {
	if defaultTTL <= 0 {
		defaultTTL = fallbackTTL
	}
	zone, err := record.NewZone(zoneName)
	if err != nil {
		return nil, err
	}

	for name, defs := range zf {
		if name == "@" {
			name = ""
		}
		for _, def := range defs {
			rec, err := buildRecord(name, def, defaultTTL)
			if err != nil {
				return nil, err
			}
			if err := zone.Add(rec, false); err != nil {
				return nil, fmt.Errorf("zone %s: %w", zone.Name, err)
			}
		}
	}
	return zone, nil
}

func buildRecord(name string, def fileRecord, defaultTTL int) (*record.Record, error) {
	t, err := record.ParseType(def.Type)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", describe(name, def.Type), err)
	}

	ttl := def.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}

	values, err := recordValues(t, def)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", describe(name, string(t)), err)
	}

	return &record.Record{Name: name, Type: t, TTL: ttl, Values: values}, nil
}

func recordValues(t record.Type, def fileRecord) ([]record.Value, error) {
	switch t {
	case record.TypeMX, record.TypeSRV, record.TypeCAA:
		if len(def.Data) == 0 {
			return nil, fmt.Errorf("%s records need a data list", t)
		}
		if def.Value != "" || len(def.Values) > 0 {
			return nil, fmt.Errorf("%s records use data, not value/values", t)
		}
		values := make([]record.Value, 0, len(def.Data))
		for _, d := range def.Data {
			if d.Value == "" {
				return nil, fmt.Errorf("%s data entry is missing a value", t)
			}
			if t == record.TypeCAA && d.Tag == "" {
				return nil, fmt.Errorf("CAA data entry is missing a tag")
			}
			values = append(values, record.Value{
				Data:     d.Value,
				Priority: d.Priority,
				Weight:   d.Weight,
				Port:     d.Port,
				Flags:    d.Flags,
				Tag:      d.Tag,
			})
		}
		return values, nil

	default:
		raw := def.Values
		if def.Value != "" {
			if len(raw) > 0 {
				return nil, fmt.Errorf("%s record sets both value and values", t)
			}
			raw = []string{def.Value}
		}
		if len(raw) == 0 {
			return nil, fmt.Errorf("%s record has no values", t)
		}
		values := make([]record.Value, 0, len(raw))
		for _, v := range raw {
			values = append(values, record.Value{Data: v})
		}
		return values, nil
	}
}

func describe(name, typ string) string {
	if name == "" {
		name = "@"
	}
	return name + "/" + typ
}
