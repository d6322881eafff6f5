package warehouse

import "context"

// Request is the analytical query document submitted to the execution
// service. Engines pass it through verbatim; only the template layer
// interprets its structure.
type Request map[string]any

// Column holds one result column in row order. Values carry the decoded
// Go representations: string, int64, float64, bool, time.Time or nil.
type Column struct {
	Name   string
	Values []any
}

// Table is a column-major result set. All columns have the same length.
type Table struct {
	Columns []Column
}

type Engine interface {
	Acquire(ctx context.Context, request Request) (Table, error)
}

func (t Table) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

func (t Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, column := range t.Columns {
		names = append(names, column.Name)
	}
	return names
}

// Row returns the values at the given row index in column order.
func (t Table) Row(index int) []any {
	row := make([]any, 0, len(t.Columns))
	for _, column := range t.Columns {
		row = append(row, column.Values[index])
	}
	return row
}
