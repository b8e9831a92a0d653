package filtrex

import (
	"maps"
	"slices"
)

// Record is the keyed data an expression is evaluated against. Own reports
// only properties the record holds directly; expressions can never see
// anything else.
type Record interface {
	Own(name string) (Value, bool)
}

// KeyedRecord is a Record that can enumerate its own keys.
type KeyedRecord interface {
	Record
	Keys() []string
}

// MapRecord is an immutable Record backed by a map.
type MapRecord struct {
	fields map[string]Value
}

// NewRecord copies fields into a new record.
func NewRecord(fields map[string]Value) *MapRecord {
	return &MapRecord{fields: maps.Clone(fields)}
}

func (r *MapRecord) Own(name string) (Value, bool) {
	if r == nil {
		return NewNil(), false
	}
	v, ok := r.fields[name]
	return v, ok
}

func (r *MapRecord) Keys() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.fields))
}

func (r *MapRecord) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// InheritedRecord layers its own fields over a base record of defaults.
// Lookup falls back to the base; Own does not, so inherited defaults stay
// invisible to expressions.
type InheritedRecord struct {
	base Record
	own  *MapRecord
}

// Inherit builds a record whose own fields are own and whose defaults come
// from base.
func Inherit(base Record, own map[string]Value) *InheritedRecord {
	return &InheritedRecord{base: base, own: NewRecord(own)}
}

func (r *InheritedRecord) Own(name string) (Value, bool) {
	return r.own.Own(name)
}

func (r *InheritedRecord) Keys() []string {
	return r.own.Keys()
}

// Base returns the record defaults are read from.
func (r *InheritedRecord) Base() Record {
	return r.base
}

// Lookup resolves name through the whole chain, own fields first.
func (r *InheritedRecord) Lookup(name string) (Value, bool) {
	if v, ok := r.own.Own(name); ok {
		return v, true
	}
	switch base := r.base.(type) {
	case nil:
		return NewNil(), false
	case *InheritedRecord:
		return base.Lookup(name)
	default:
		return base.Own(name)
	}
}
