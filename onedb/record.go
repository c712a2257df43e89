// Package onedb streams top-level objects out of an exported NIOS-style
// XML database. The exports run to multiple gigabytes, so the reader never
// holds more than one object in memory at a time.
package onedb

// TypeProperty names the property every object carries to declare its type.
const TypeProperty = "__type"

// Property is one NAME/VALUE pair attached to a database object.
type Property struct {
	Name  string
	Value string
}

// Record is one top-level object from the database stream. Seq is its
// 1-based ordinal position in the stream, carried into findings as
// provenance. The name index is built once per record and reused by every
// action in the object's pipeline.
type Record struct {
	Seq   int
	Props []Property

	index map[string]string
}

// NewRecord builds a record from explicit properties. The reader uses it
// for every streamed object; tests use it to synthesize records.
func NewRecord(seq int, props []Property) *Record {
	return newRecord(seq, props)
}

func newRecord(seq int, props []Property) *Record {
	r := &Record{Seq: seq, Props: props, index: make(map[string]string, len(props))}
	for _, p := range props {
		// First occurrence wins, matching first-match property scans.
		if _, ok := r.index[p.Name]; !ok {
			r.index[p.Name] = p.Value
		}
	}
	return r
}

// Get returns the value of the named property and whether it was present.
func (r *Record) Get(name string) (string, bool) {
	v, ok := r.index[name]
	return v, ok
}

// Value returns the named property's value, or "" if absent.
func (r *Record) Value(name string) string {
	return r.index[name]
}

// Type returns the record's declared type, or "" if the record carries no
// __type property.
func (r *Record) Type() string {
	return r.index[TypeProperty]
}
