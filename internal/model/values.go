package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ValueKind discriminates the variants a record value can hold.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindTime
	KindStringList
)

// Value is one schema-flexible record value. Exactly one variant is set,
// selected by Kind. Timestamps keep their original textual form in Str so
// round-tripping a record never rewrites what the caller stored.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
	Time time.Time
	List []string
}

func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }
func NumberValue(n float64) Value {
	return Value{Kind: KindNumber, Num: n}
}
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }
func NullValue() Value       { return Value{Kind: KindNull} }
func ListValue(items []string) Value {
	return Value{Kind: KindStringList, List: items}
}

// TimeValue keeps both the parsed timestamp and its RFC3339 text form.
func TimeValue(t time.Time) Value {
	return Value{Kind: KindTime, Time: t, Str: t.Format(time.RFC3339)}
}

// MarshalJSON renders the active variant.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindTime:
		return json.Marshal(v.Str)
	case KindStringList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.Kind)
	}
}

// UnmarshalJSON accepts strings, numbers, booleans, null and string lists.
// Strings in RFC3339 form are promoted to timestamps. Nested objects are
// rejected: record values are flat by contract.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty value")
	}

	switch data[0] {
	case 'n':
		if string(data) != "null" {
			return fmt.Errorf("invalid value %q", data)
		}
		*v = NullValue()
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			*v = Value{Kind: KindTime, Time: t, Str: s}
			return nil
		}
		*v = StringValue(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
		return nil
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("list values must contain only strings: %w", err)
		}
		*v = ListValue(items)
		return nil
	case '{':
		return fmt.Errorf("nested objects are not supported as record values")
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid value %q", data)
		}
		*v = NumberValue(n)
		return nil
	}
}

// FieldValue is one flattened {field, value} pair as exposed to transport.
type FieldValue struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

// ValueMap is an insertion-ordered mapping from field name to Value. It is
// the in-memory form of the jsonb `values` column on a record.
type ValueMap struct {
	keys  []string
	items map[string]Value
}

// NewValueMap returns an empty mapping.
func NewValueMap() ValueMap {
	return ValueMap{items: map[string]Value{}}
}

// Set inserts or overwrites a key. Overwriting preserves the key's position.
func (m *ValueMap) Set(key string, v Value) {
	if m.items == nil {
		m.items = map[string]Value{}
	}
	if _, exists := m.items[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.items[key] = v
}

// Get returns the value stored under key.
func (m ValueMap) Get(key string) (Value, bool) {
	v, ok := m.items[key]
	return v, ok
}

// Has reports whether the key is present.
func (m ValueMap) Has(key string) bool {
	_, ok := m.items[key]
	return ok
}

// Len returns the number of stored keys.
func (m ValueMap) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m ValueMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Pairs flattens the mapping into ordered {field, value} pairs for transport.
func (m ValueMap) Pairs() []FieldValue {
	pairs := make([]FieldValue, 0, len(m.keys))
	for _, k := range m.keys {
		pairs = append(pairs, FieldValue{Field: k, Value: m.items[k]})
	}
	return pairs
}

// MarshalJSON writes the mapping as a JSON object in insertion order.
func (m ValueMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.items[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping the key order of the document.
func (m *ValueMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object for record values")
	}

	*m = NewValueMap()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		m.Set(key, v)
	}

	// consume closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Value implements driver.Valuer so the mapping persists as jsonb.
func (m ValueMap) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for reading the jsonb column back.
func (m *ValueMap) Scan(src interface{}) error {
	if src == nil {
		*m = NewValueMap()
		return nil
	}
	var data []byte
	switch s := src.(type) {
	case []byte:
		data = s
	case string:
		data = []byte(s)
	default:
		return fmt.Errorf("unsupported source type %T for record values", src)
	}
	return m.UnmarshalJSON(data)
}
