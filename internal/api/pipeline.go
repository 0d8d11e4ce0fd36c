package api

import (
	"encoding/json"

	"erdgraph/internal/builder"
	"erdgraph/internal/diagram"
	"erdgraph/internal/dialect"
	"erdgraph/internal/metadata"
	"erdgraph/internal/reconcile"
	"erdgraph/pkg/config"
)

// ImportRequest describes one import of a metadata payload.
type ImportRequest struct {
	Metadata     json.RawMessage          `json:"metadata" binding:"required"`
	DatabaseType string                   `json:"databaseType"`
	Name         string                   `json:"name"`
	DiagramID    string                   `json:"diagramId"`
	Selection    []metadata.TableSelector `json:"selection" binding:"omitempty,dive"`
}

type ImportResult struct {
	Diagram diagram.Diagram `json:"diagram"`
	Gaps    []builder.Gap   `json:"gaps"`
}

// Import parses, filters and builds the payload of req. When previous is
// given the result replaces it: matching entities keep their ids, tables keep
// their position, color and comments, and the diagram keeps its id and
// creation time. Structure always comes from the new payload.
func Import(req ImportRequest, dialects config.Dialects, previous *diagram.Diagram) (ImportResult, error) {
	m, err := metadata.Parse(req.Metadata)
	if err != nil {
		return ImportResult{}, err
	}
	if len(req.Selection) > 0 {
		m = metadata.Filter(m, req.Selection)
	}

	t := dialect.NormalizeType(req.DatabaseType)
	if previous != nil && req.DatabaseType == "" {
		t = previous.DatabaseType
	}
	cfg := dialects.Apply(t)
	d, report := builder.Build(m, builder.Options{
		Name:         req.Name,
		DatabaseType: t,
		Dialect:      &cfg,
	})

	if previous != nil {
		d = reconcile.KeepPresentation(*previous, reconcile.Reconcile(*previous, d))
		d.ID = previous.ID
		d.CreatedAt = previous.CreatedAt
		if req.Name == "" {
			d.Name = previous.Name
		}
	}
	return ImportResult{Diagram: d, Gaps: report.Gaps}, nil
}
