package structure

import (
	"bytes"
	"encoding/json"
	"math"
)

// Member is one decoded composite member.
type Member struct {
	Name  string
	Value any
}

// Record is a decoded composite sample. Members keep the declaration order of
// the type structure.
type Record []Member

// Get returns the value of the first member called name.
func (r Record) Get(name string) (any, bool) {
	for _, m := range r {
		if m.Name == name {
			return m.Value, true
		}
	}

	return nil, false
}

// Names returns the member names in declaration order.
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, m := range r {
		names[i] = m.Name
	}

	return names
}

// MarshalJSON encodes the record as a JSON object with members in declaration order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, m := range r {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(m.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(JSONValue(m.Value))
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// JSONValue returns v in a form encoding/json accepts. NaN and infinite
// floats become the strings "NaN", "+Inf" and "-Inf"; any other value is
// returned unchanged.
func JSONValue(v any) any {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	default:
		return v
	}

	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}

	return v
}
