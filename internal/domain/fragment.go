package domain

import "strings"

// RawRecord is one untrusted upstream record.
type RawRecord map[string]any

// Get returns the value at a dotted path such as "author.name". Missing
// keys and non-map intermediates yield nil.
func (r RawRecord) Get(path string) any {
	var cur any = map[string]any(r)
	for _, key := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case map[string]any:
			cur = m[key]
		case RawRecord:
			cur = m[key]
		default:
			return nil
		}
	}
	return cur
}

// First returns the first present value among keys.
func (r RawRecord) First(keys ...string) any {
	for _, k := range keys {
		if v := r.Get(k); v != nil {
			return v
		}
	}
	return nil
}

// Fragment represents a batch of raw records for import/export operations.
// Invalid counts decoded entries that were not objects.
type Fragment struct {
	Records []RawRecord `json:"records"`
	Invalid int         `json:"-"`
}

// NewFragment creates an empty fragment
func NewFragment() *Fragment {
	return &Fragment{
		Records: make([]RawRecord, 0),
	}
}

// Add appends a record to the fragment
func (f *Fragment) Add(rec RawRecord) {
	f.Records = append(f.Records, rec)
}
