// Package builder turns validated introspection metadata into a diagram.
//
// Build is the entry point. It assigns fresh ids to every entity, resolves
// references between them and drops derived entities whose references do not
// resolve. Dropped entities are listed in the returned Report; they never fail
// the build.
package builder

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"erdgraph/internal/diagram"
	"erdgraph/internal/dialect"
	"erdgraph/internal/metadata"
)

// Options controls a build. Zero values fall back to defaults: the dialect
// tables of DatabaseType, random UUIDs and the wall clock.
type Options struct {
	Name         string
	DatabaseType diagram.DatabaseType
	Dialect      *dialect.Config
	NewID        func() string
	Now          func() time.Time
}

// GapKind names the kind of reference that could not be resolved.
type GapKind string

const (
	GapColumn      GapKind = "column"
	GapIndexColumn GapKind = "index_column"
	GapForeignKey  GapKind = "foreign_key"
	GapView        GapKind = "view_definition"
)

// Gap is one derived entity left out of the diagram.
type Gap struct {
	Kind   GapKind `json:"kind"`
	Detail string  `json:"detail"`
}

type Report struct {
	Gaps []Gap `json:"gaps"`
}

// Builder builds the entities of one diagram. All entities built by the same
// Builder share its id source and creation time. A Builder is not safe for
// concurrent use.
type Builder struct {
	dialect   dialect.Config
	newID     func() string
	now       time.Time
	createdAt int64
	report    Report
}

func (b *Builder) gap(kind GapKind, format string, args ...any) {
	b.report.Gaps = append(b.report.Gaps, Gap{Kind: kind, Detail: fmt.Sprintf(format, args...)})
}

// New returns a Builder for opts. Build is the usual entry point; the
// individual steps are exported for callers that assemble diagrams
// themselves.
func New(opts Options) *Builder {
	b := &Builder{
		newID:  opts.NewID,
		now:    time.Now(),
		report: Report{Gaps: []Gap{}},
	}
	if opts.Now != nil {
		b.now = opts.Now()
	}
	b.createdAt = b.now.UnixMilli()
	if opts.Dialect != nil {
		b.dialect = *opts.Dialect
	} else {
		b.dialect = dialect.For(opts.DatabaseType)
	}
	if b.newID == nil {
		b.newID = uuid.NewString
	}
	return b
}

// Report returns the gaps recorded so far.
func (b *Builder) Report() Report {
	return Report{Gaps: slices.Clone(b.report.Gaps)}
}

// Build assembles a diagram from m.
func Build(m metadata.DatabaseMetadata, opts Options) (diagram.Diagram, Report) {
	if opts.DatabaseType == "" {
		opts.DatabaseType = diagram.Generic
	}
	b := New(opts)

	tables := b.Tables(m)
	relationships := b.Relationships(m.FKInfo, tables)
	dependencies := b.Dependencies(m.Views, tables)
	customTypes := b.CustomTypes(m.CustomTypes)

	name := opts.Name
	if name == "" {
		name = m.DatabaseName
	}
	if name == "" {
		name = "Diagram"
	}

	d := diagram.Diagram{
		ID:            b.newID(),
		Name:          name,
		DatabaseType:  opts.DatabaseType,
		Tables:        AdjustPositions(tables, relationships),
		Relationships: relationships,
		Dependencies:  dependencies,
		CustomTypes:   customTypes,
		CreatedAt:     b.now,
		UpdatedAt:     b.now,
	}
	return d, b.Report()
}
