package validation

import (
	"net/url"
	"slices"
	"time"
)

// Kind tags the shape of a submitted form value.
type Kind uint8

// Value shapes.
const (
	// KindScalar is a single submitted value.
	KindScalar Kind = iota
	// KindList is a sequence of submitted values, possibly empty.
	KindList
)

// Value is one form field: either a scalar or a list of strings.
//
// Browsers send a single checked checkbox as a scalar and several as a
// sequence, so list fields are normalized with AsList before any rule runs.
type Value struct {
	kind  Kind
	items []string
}

// Scalar returns a scalar value.
func Scalar(s string) Value {
	return Value{kind: KindScalar, items: []string{s}}
}

// List returns a list value holding a copy of items.
func List(items ...string) Value {
	return Value{kind: KindList, items: slices.Clone(items)}
}

// Kind returns the shape of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// String returns the scalar, or the first element of a list.
func (v Value) String() string {
	if len(v.items) == 0 {
		return ""
	}
	return v.items[0]
}

// Items returns a copy of every element. A scalar yields one element.
func (v Value) Items() []string {
	return slices.Clone(v.items)
}

// AsList returns the value as a list. A scalar becomes a one-element list.
func (v Value) AsList() Value {
	return Value{kind: KindList, items: slices.Clone(v.items)}
}

// AsScalar returns the value as a scalar holding its first element.
func (v Value) AsScalar() Value {
	return Scalar(v.String())
}

// Values maps form field names to values.
type Values map[string]Value

// FromForm builds Values from a parsed form. Fields named in lists become
// lists (empty when absent); every other field becomes a scalar holding its
// first submitted value.
func FromForm(form url.Values, lists ...string) Values {
	vals := make(Values, len(form)+len(lists))
	for name, submitted := range form {
		if len(submitted) == 1 {
			vals[name] = Scalar(submitted[0])
		} else {
			vals[name] = List(submitted...)
		}
	}
	for name, v := range vals {
		if !slices.Contains(lists, name) {
			vals[name] = v.AsScalar()
		}
	}
	for _, name := range lists {
		vals[name] = vals[name].AsList()
	}
	return vals
}

// Get returns the scalar value of field, or "" when absent.
func (vs Values) Get(field string) string {
	return vs[field].String()
}

// List returns the elements of field, or nil when absent.
func (vs Values) List(field string) []string {
	v, ok := vs[field]
	if !ok {
		return nil
	}
	return v.Items()
}

// Set stores a scalar.
func (vs Values) Set(field, s string) {
	vs[field] = Scalar(s)
}

// SetList stores a list.
func (vs Values) SetList(field string, items ...string) {
	vs[field] = List(items...)
}

// Time parses field as an ISO-8601 date. It returns nil when the field is
// empty or not a date.
func (vs Values) Time(field string) *time.Time {
	t, ok := ParseISO8601(vs.Get(field))
	if !ok {
		return nil
	}
	return &t
}

// Clone returns a deep copy.
func (vs Values) Clone() Values {
	out := make(Values, len(vs))
	for k, v := range vs {
		out[k] = Value{kind: v.kind, items: slices.Clone(v.items)}
	}
	return out
}
