package reconcile

import "erdgraph/internal/diagram"

// KeepPresentation returns a copy of d in which every table that shares its
// id with a table of previous takes that table's position, color and
// comments, and every such table's fields take the comments of the previous
// field with the same id. Tables and fields new in d keep what they have.
//
// Re-importing a schema onto an edited diagram is Reconcile(previous, built)
// followed by KeepPresentation(previous, ...): identities and presentation
// come from previous, structure from the new build.
func KeepPresentation(previous, d diagram.Diagram) diagram.Diagram {
	byID := make(map[string]diagram.Table, len(previous.Tables))
	for _, t := range previous.Tables {
		byID[t.ID] = t
	}

	out := d.Clone()
	for i := range out.Tables {
		t := &out.Tables[i]
		p, ok := byID[t.ID]
		if !ok {
			continue
		}
		t.X, t.Y, t.Color = p.X, p.Y, p.Color
		if p.Comments != nil {
			t.Comments = copyString(p.Comments)
		}
		for j := range t.Fields {
			f, ok := p.Field(t.Fields[j].ID)
			if ok && f.Comments != nil {
				t.Fields[j].Comments = copyString(f.Comments)
			}
		}
	}
	return out
}

func copyString(s *string) *string {
	v := *s
	return &v
}
