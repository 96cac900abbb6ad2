package model

import (
	"fmt"
	"maps"
	"sort"
)

// ObjectValue maps top-level field names to decoded field values.
type ObjectValue map[string]any

// Keys returns the field names in ascending order.
func (o ObjectValue) Keys() []string {
	out := make([]string, 0, len(o))
	for k := range o {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (o ObjectValue) Clone() ObjectValue {
	if o == nil {
		return nil
	}
	return maps.Clone(o)
}

// MaybeDocument is either a found document with its data or a confirmed
// missing one. Both carry a version.
type MaybeDocument struct {
	key     DocumentKey
	version SnapshotVersion
	data    ObjectValue
	found   bool
}

func NewFoundDocument(key DocumentKey, version SnapshotVersion, data ObjectValue) MaybeDocument {
	if data == nil {
		data = ObjectValue{}
	}
	return MaybeDocument{key: key, version: version, data: data.Clone(), found: true}
}

func NewMissingDocument(key DocumentKey, version SnapshotVersion) MaybeDocument {
	return MaybeDocument{key: key, version: version}
}

func (d MaybeDocument) Key() DocumentKey { return d.key }

func (d MaybeDocument) Version() SnapshotVersion { return d.version }

func (d MaybeDocument) Found() bool { return d.found }

// Data returns a copy of the document fields; nil for a missing document.
func (d MaybeDocument) Data() ObjectValue {
	return d.data.Clone()
}

// Field returns one top-level field value.
func (d MaybeDocument) Field(name string) (any, bool) {
	v, ok := d.data[name]
	return v, ok
}

func (d MaybeDocument) String() string {
	if !d.found {
		return fmt.Sprintf("MissingDocument(%s, %s)", d.key, d.version)
	}
	return fmt.Sprintf("Document(%s, %s, fields=%v)", d.key, d.version, d.data.Keys())
}
