package vultr

import (
	"fmt"
	"strconv"
	"strings"

	"gitlab.bluewillows.net/root/zonesync/pkg/record"
)

// defaultRecordTTL applies when neither the record, the provider config nor
// the Vultr entry carries a TTL.
const defaultRecordTTL = 300

// supportedTypes is the set of record kinds this provider manages. Entries
// of any other kind are skipped on populate and rejected on apply.
var supportedTypes = []record.Type{
	record.TypeA,
	record.TypeAAAA,
	record.TypeCAA,
	record.TypeCNAME,
	record.TypeMX,
	record.TypeNS,
	record.TypeSRV,
	record.TypeTXT,
}

// appendDot makes a target name fully qualified unless it already is.
func appendDot(value string) string {
	if value == "" || strings.HasSuffix(value, ".") {
		return value
	}
	return value + "."
}

func entryTTL(entries []dnsRecord, defaultTTL int) int {
	if len(entries) > 0 && entries[0].TTL > 0 {
		return entries[0].TTL
	}
	if defaultTTL > 0 {
		return defaultTTL
	}
	return defaultRecordTTL
}

// recordFromEntries decodes the Vultr entries sharing one (name, type) into
// a single generic record. Entry order is preserved in Values so that
// repeated populates of unchanged hosted state build identical records.
func recordFromEntries(t record.Type, name string, entries []dnsRecord, defaultTTL int) (*record.Record, error) {
	rec := &record.Record{
		Name: name,
		Type: t,
		TTL:  entryTTL(entries, defaultTTL),
	}

	var err error
	switch t {
	case record.TypeA, record.TypeAAAA, record.TypeTXT:
		rec.Values = decodeMultiple(entries)
	case record.TypeNS:
		rec.Values = decodeNS(entries)
	case record.TypeCNAME:
		rec.Values = decodeCNAME(entries)
	case record.TypeCAA:
		rec.Values, err = decodeCAA(entries)
	case record.TypeMX:
		rec.Values = decodeMX(entries)
	case record.TypeSRV:
		rec.Values, err = decodeSRV(entries)
	default:
		err = fmt.Errorf("no decoder for record type %s", t)
	}
	if err != nil {
		return nil, fmt.Errorf("record %q %s: %w", name, t, err)
	}
	return rec, nil
}

func decodeMultiple(entries []dnsRecord) []record.Value {
	values := make([]record.Value, 0, len(entries))
	for _, e := range entries {
		values = append(values, record.Value{Data: strings.ReplaceAll(e.Data, ";", "\\;")})
	}
	return values
}

func decodeNS(entries []dnsRecord) []record.Value {
	values := make([]record.Value, 0, len(entries))
	for _, e := range entries {
		values = append(values, record.Value{Data: appendDot(e.Data)})
	}
	return values
}

func decodeCNAME(entries []dnsRecord) []record.Value {
	return []record.Value{{Data: appendDot(entries[0].Data)}}
}

// decodeCAA parses Vultr's `flags tag "value"` data format.
func decodeCAA(entries []dnsRecord) ([]record.Value, error) {
	values := make([]record.Value, 0, len(entries))
	for _, e := range entries {
		parts := strings.SplitN(e.Data, " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed CAA data %q", e.Data)
		}
		flags, err := strconv.ParseUint(parts[0], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("malformed CAA flags in %q: %w", e.Data, err)
		}
		values = append(values, record.Value{
			Flags: uint8(flags),
			Tag:   parts[1],
			Data:  strings.Trim(parts[2], `"`),
		})
	}
	return values, nil
}

// decodeMX reads the exchange from data and the preference from the
// separate priority field.
func decodeMX(entries []dnsRecord) []record.Value {
	values := make([]record.Value, 0, len(entries))
	for _, e := range entries {
		values = append(values, record.Value{
			Priority: uint16(e.Priority),
			Data:     appendDot(e.Data),
		})
	}
	return values
}

// decodeSRV parses Vultr's `weight port target` data format; the priority
// lives in the separate priority field.
func decodeSRV(entries []dnsRecord) ([]record.Value, error) {
	values := make([]record.Value, 0, len(entries))
	for _, e := range entries {
		parts := strings.SplitN(e.Data, " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed SRV data %q", e.Data)
		}
		weight, err := strconv.ParseUint(parts[0], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("malformed SRV weight in %q: %w", e.Data, err)
		}
		port, err := strconv.ParseUint(parts[1], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("malformed SRV port in %q: %w", e.Data, err)
		}
		values = append(values, record.Value{
			Priority: uint16(e.Priority),
			Weight:   uint16(weight),
			Port:     uint16(port),
			Data:     appendDot(parts[2]),
		})
	}
	return values, nil
}

// paramsFor encodes a generic record into the Vultr create calls that
// realize it, one per value. A record without a TTL falls back to the
// provider's configured default.
func paramsFor(r *record.Record, defaultTTL int) ([]createRecordRequest, error) {
	ttl := r.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if ttl <= 0 {
		ttl = defaultRecordTTL
	}
	switch r.Type {
	case record.TypeA, record.TypeAAAA, record.TypeTXT, record.TypeNS:
		return encodeMultiple(r, ttl), nil
	case record.TypeCNAME:
		return encodeCNAME(r, ttl), nil
	case record.TypeCAA:
		return encodeCAA(r, ttl), nil
	case record.TypeMX:
		return encodeMX(r, ttl), nil
	case record.TypeSRV:
		return encodeSRV(r, ttl), nil
	default:
		return nil, fmt.Errorf("no encoder for record type %s", r.Type)
	}
}

func encodeMultiple(r *record.Record, ttl int) []createRecordRequest {
	params := make([]createRecordRequest, 0, len(r.Values))
	for _, v := range r.Values {
		params = append(params, createRecordRequest{
			Name: r.Name,
			Type: string(r.Type),
			Data: strings.ReplaceAll(v.Data, "\\;", ";"),
			TTL:  ttl,
		})
	}
	return params
}

func encodeCNAME(r *record.Record, ttl int) []createRecordRequest {
	return []createRecordRequest{{
		Name: r.Name,
		Type: string(r.Type),
		Data: r.Values[0].Data,
		TTL:  ttl,
	}}
}

func encodeCAA(r *record.Record, ttl int) []createRecordRequest {
	params := make([]createRecordRequest, 0, len(r.Values))
	for _, v := range r.Values {
		params = append(params, createRecordRequest{
			Name: r.Name,
			Type: string(r.Type),
			Data: fmt.Sprintf("%d %s %q", v.Flags, v.Tag, v.Data),
			TTL:  ttl,
		})
	}
	return params
}

func encodeMX(r *record.Record, ttl int) []createRecordRequest {
	params := make([]createRecordRequest, 0, len(r.Values))
	for _, v := range r.Values {
		priority := int(v.Priority)
		params = append(params, createRecordRequest{
			Name:     r.Name,
			Type:     string(r.Type),
			Data:     v.Data,
			TTL:      ttl,
			Priority: &priority,
		})
	}
	return params
}

func encodeSRV(r *record.Record, ttl int) []createRecordRequest {
	params := make([]createRecordRequest, 0, len(r.Values))
	for _, v := range r.Values {
		priority := int(v.Priority)
		params = append(params, createRecordRequest{
			Name:     r.Name,
			Type:     string(r.Type),
			Data:     fmt.Sprintf("%d %d %s", v.Weight, v.Port, strings.TrimSuffix(v.Data, ".")),
			TTL:      ttl,
			Priority: &priority,
		})
	}
	return params
}
