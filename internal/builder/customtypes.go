package builder

import (
	"slices"

	"erdgraph/internal/diagram"
	"erdgraph/internal/metadata"
)

func (b *Builder) CustomTypes(infos []metadata.CustomTypeInfo) []diagram.CustomType {
	out := make([]diagram.CustomType, 0, len(infos))
	for _, info := range infos {
		ct := diagram.CustomType{
			ID:     b.newID(),
			Schema: b.dialect.SchemaOrDefault(info.Schema),
			Name:   info.Type,
			Kind:   diagram.CustomTypeKind(info.Kind),
			Values: slices.Clone(info.Values),
		}
		for _, f := range info.Fields {
			ct.Fields = append(ct.Fields, diagram.CustomTypeField{Field: f.Field, Type: f.Type})
		}
		out = append(out, ct)
	}
	return out
}
