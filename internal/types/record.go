package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SourcesField is the one schema key holding a list rather than a scalar.
const SourcesField = "sources"

// WineRecord is a fixed-schema wine description. Every key of the schema is always present;
// a nil value means "unknown".
type WineRecord struct {
	keys    []string
	values  map[string]*string
	sources []string
}

// NewWineRecord returns a record with every key set to unknown.
// The sources key, if listed, is held as an empty list.
func NewWineRecord(keys []string) *WineRecord {
	r := &WineRecord{
		keys:    make([]string, 0, len(keys)),
		values:  make(map[string]*string, len(keys)),
		sources: []string{},
	}
	for _, k := range keys {
		r.keys = append(r.keys, k)
		if k != SourcesField {
			r.values[k] = nil
		}
	}
	return r
}

// Keys returns the schema keys in order.
func (r *WineRecord) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Has reports whether key belongs to the record's schema.
func (r *WineRecord) Has(key string) bool {
	if key == SourcesField {
		for _, k := range r.keys {
			if k == SourcesField {
				return true
			}
		}
		return false
	}
	_, ok := r.values[key]
	return ok
}

// Get returns the value for key, nil when unknown or not in the schema.
func (r *WineRecord) Get(key string) *string {
	return r.values[key]
}

// Value returns the value for key or "" when unknown.
func (r *WineRecord) Value(key string) string {
	return Deref(r.values[key])
}

// Set assigns a value to a schema key. Keys outside the schema are ignored.
// Empty strings are stored as empty strings; callers decide whether they count as missing.
func (r *WineRecord) Set(key string, value *string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	if value == nil {
		r.values[key] = nil
		return
	}
	v := *value
	r.values[key] = &v
}

// Sources returns a copy of the ordered source list.
func (r *WineRecord) Sources() []string {
	out := make([]string, len(r.sources))
	copy(out, r.sources)
	return out
}

// SetSources replaces the source list, dropping blank entries.
func (r *WineRecord) SetSources(sources []string) {
	r.sources = r.sources[:0]
	for _, s := range sources {
		if s = strings.TrimSpace(s); s != "" {
			r.sources = append(r.sources, s)
		}
	}
}

// Missing returns the keys among fields whose value is nil or blank.
func (r *WineRecord) Missing(fields []string) []string {
	var missing []string
	for _, f := range fields {
		if f == SourcesField {
			if r.Has(SourcesField) && len(r.sources) == 0 {
				missing = append(missing, f)
			}
			continue
		}
		if !r.Has(f) {
			continue
		}
		if v := r.values[f]; v == nil || strings.TrimSpace(*v) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Clone returns a deep copy.
func (r *WineRecord) Clone() *WineRecord {
	c := NewWineRecord(r.keys)
	for k, v := range r.values {
		c.Set(k, v)
	}
	c.SetSources(r.sources)
	return c
}

// Map returns the record as a plain map, suitable for JSON documents and templates.
func (r *WineRecord) Map() map[string]any {
	m := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		if k == SourcesField {
			m[k] = r.Sources()
			continue
		}
		if v := r.values[k]; v != nil {
			m[k] = *v
		} else {
			m[k] = nil
		}
	}
	return m
}

// MarshalJSON encodes the record as an object in schema order.
func (r *WineRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var val []byte
		if k == SourcesField {
			val, err = json.Marshal(r.sources)
		} else {
			val, err = json.Marshal(r.values[k])
		}
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
