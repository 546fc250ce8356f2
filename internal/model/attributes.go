// Package model defines the shared domain types for part attribute lookups.
package model

import (
	"bytes"
	"encoding/json"
)

// Attributes is an insertion-ordered mapping of specification attribute
// names to display values. Names are unique; the first value set for a
// name wins. Values are plain display strings, never structured data.
type Attributes struct {
	names  []string
	values map[string]string
}

// NewAttributes creates an empty attribute map.
func NewAttributes() *Attributes {
	return &Attributes{values: make(map[string]string)}
}

// Set records a name/value pair, preserving insertion order. A name that
// is already present keeps its original value and position.
func (a *Attributes) Set(name, value string) {
	if _, ok := a.values[name]; ok {
		return
	}
	a.names = append(a.names, name)
	a.values[name] = value
}

// Get returns the value for a name and whether it is present.
func (a *Attributes) Get(name string) (string, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Names returns the attribute names in insertion order.
func (a *Attributes) Names() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.names)
}

// Empty reports whether the map holds no attributes. A nil receiver is
// empty, so failed lookups can carry a nil map safely.
func (a *Attributes) Empty() bool {
	return a.Len() == 0
}

// MarshalJSON emits the attributes as a JSON object with keys in
// insertion order.
func (a *Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range a.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(a.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving key order.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	a.names = nil
	a.values = make(map[string]string)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return &json.UnmarshalTypeError{Value: "non-object", Type: nil}
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)
		var val string
		if err := dec.Decode(&val); err != nil {
			return err
		}
		a.Set(key, val)
	}
	_, err = dec.Token() // closing brace
	return err
}
