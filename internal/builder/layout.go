package builder

import (
	"math"
	"sort"

	"erdgraph/internal/diagram"
)

const (
	tableWidth     = 224
	tableHeader    = 42
	fieldHeight    = 32
	horizontalGap  = 80
	verticalGap    = 80
	maxTableFields = 20
)

// AdjustPositions lays the tables out on a grid and returns the repositioned
// copies. Tables with the most relationships go first so that hubs land in
// the top left corner; views keep their place after the tables.
func AdjustPositions(tables []diagram.Table, relationships []diagram.Relationship) []diagram.Table {
	out := make([]diagram.Table, len(tables))
	copy(out, tables)
	if len(out) == 0 {
		return out
	}

	degree := make(map[string]int)
	for _, r := range relationships {
		degree[r.SourceTableID]++
		if r.TargetTableID != r.SourceTableID {
			degree[r.TargetTableID]++
		}
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ta, tb := out[order[a]], out[order[b]]
		if ta.IsView != tb.IsView {
			return !ta.IsView
		}
		return degree[ta.ID] > degree[tb.ID]
	})

	columns := int(math.Ceil(math.Sqrt(float64(len(out)))))
	y := 0.0
	for row := 0; row*columns < len(order); row++ {
		rowHeight := 0.0
		for col := 0; col < columns && row*columns+col < len(order); col++ {
			t := &out[order[row*columns+col]]
			t.X = float64(col * (tableWidth + horizontalGap))
			t.Y = y
			rowHeight = math.Max(rowHeight, tableHeight(*t))
		}
		y += rowHeight + verticalGap
	}
	return out
}

func tableHeight(t diagram.Table) float64 {
	n := min(len(t.Fields), maxTableFields)
	return float64(tableHeader + n*fieldHeight)
}
