package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"erdgraph/internal/api"
	"erdgraph/internal/diagram"
	"erdgraph/internal/logger"
	"erdgraph/internal/metadata"
)

var (
	importDialect  string
	importName     string
	importTables   []string
	importViews    []string
	importPrevious string
	importOutput   string
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Build a diagram from a metadata JSON file",
	Long: `Build a diagram from a metadata JSON file. With --previous the new diagram
keeps the ids of the matching entities of an earlier diagram.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	f := importCmd.Flags()
	f.StringVar(&importDialect, "dialect", "", "database type (postgresql, mysql, sqlite, sql_server, ...)")
	f.StringVar(&importName, "name", "", "diagram name (default: database name)")
	f.StringSliceVar(&importTables, "tables", nil, "only these tables, as schema.table")
	f.StringSliceVar(&importViews, "views", nil, "only these views, as schema.view")
	f.StringVar(&importPrevious, "previous", "", "earlier diagram JSON to reconcile with")
	f.StringVarP(&importOutput, "output", "o", "", "output file (default: stdout)")
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var previous *diagram.Diagram
	if importPrevious != "" {
		raw, err := os.ReadFile(importPrevious)
		if err != nil {
			return err
		}
		var d diagram.Diagram
		if err := json.Unmarshal(raw, &d); err != nil {
			return fmt.Errorf("previous diagram %s: %w", importPrevious, err)
		}
		previous = &d
	}

	req := api.ImportRequest{
		Metadata:     data,
		DatabaseType: importDialect,
		Name:         importName,
		Selection:    selection(importTables, importViews),
	}
	res, err := api.Import(req, appCfg.Dialects, previous)
	if err != nil {
		return err
	}
	for _, g := range res.Gaps {
		logger.Warn("%s: %s", g.Kind, g.Detail)
	}

	out, err := json.MarshalIndent(res.Diagram, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(importOutput, out)
}

// selection turns schema.name arguments into selectors. A name without a
// dot selects an object without a schema.
func selection(tables, views []string) []metadata.TableSelector {
	var out []metadata.TableSelector
	add := func(names []string, typ metadata.ObjectType) {
		for _, n := range names {
			n = strings.TrimSpace(n)
			if n == "" {
				continue
			}
			schema, name, ok := strings.Cut(n, ".")
			if !ok {
				schema, name = "", n
			}
			out = append(out, metadata.TableSelector{Schema: schema, Table: name, Type: typ})
		}
	}
	add(tables, metadata.TableObject)
	add(views, metadata.ViewObject)
	return out
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	logger.Info("wrote %s", path)
	return nil
}
