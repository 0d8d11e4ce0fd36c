package diagram

import "slices"

// Clone returns a deep copy of d. Callers that derive a new diagram from an
// existing one start from a clone so the original stays untouched.
func (d Diagram) Clone() Diagram {
	out := d
	if d.Tables != nil {
		out.Tables = make([]Table, len(d.Tables))
		for i, t := range d.Tables {
			out.Tables[i] = t.Clone()
		}
	}
	out.Relationships = slices.Clone(d.Relationships)
	out.Dependencies = slices.Clone(d.Dependencies)
	if d.CustomTypes != nil {
		out.CustomTypes = make([]CustomType, len(d.CustomTypes))
		for i, ct := range d.CustomTypes {
			ct.Values = slices.Clone(ct.Values)
			ct.Fields = slices.Clone(ct.Fields)
			out.CustomTypes[i] = ct
		}
	}
	return out
}

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	out := t
	out.Fields = slices.Clone(t.Fields)
	if t.Indexes != nil {
		out.Indexes = make([]Index, len(t.Indexes))
		for i, idx := range t.Indexes {
			idx.FieldIDs = slices.Clone(idx.FieldIDs)
			out.Indexes[i] = idx
		}
	}
	return out
}
