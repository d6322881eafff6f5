package omni

import (
	"bytes"
	"encoding/base64"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ticketlens/ticketlens/internal/warehouse"
)

// DecodeResult turns a magic-prefixed encoded result into a table. The
// whole string is base64, magic marker included: the marker is just how
// the stream's leading continuation bytes encode. A stream with zero
// rows decodes into an empty table that still carries the schema
// columns.
func DecodeResult(encoded string) (warehouse.Table, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return warehouse.Table{}, &DecodeError{Stage: "base64", Err: err}
	}

	reader, err := ipc.NewReader(bytes.NewReader(raw), ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return warehouse.Table{}, &DecodeError{Stage: "stream", Err: err}
	}
	defer reader.Release()

	fields := reader.Schema().Fields()
	columns := make([]warehouse.Column, len(fields))
	for i, field := range fields {
		columns[i] = warehouse.Column{Name: field.Name}
	}

	for reader.Next() {
		record := reader.Record()
		for i := 0; i < int(record.NumCols()); i++ {
			columns[i].Values = appendColumnValues(columns[i].Values, record.Column(i))
		}
	}
	if err := reader.Err(); err != nil {
		return warehouse.Table{}, &DecodeError{Stage: "stream", Err: err}
	}

	return warehouse.Table{Columns: columns}, nil
}

func appendColumnValues(values []any, column arrow.Array) []any {
	for i := 0; i < column.Len(); i++ {
		if column.IsNull(i) {
			values = append(values, nil)
			continue
		}
		values = append(values, columnValue(column, i))
	}
	return values
}

func columnValue(column arrow.Array, i int) any {
	switch typed := column.(type) {
	case *array.String:
		return typed.Value(i)
	case *array.LargeString:
		return typed.Value(i)
	case *array.Int8:
		return int64(typed.Value(i))
	case *array.Int16:
		return int64(typed.Value(i))
	case *array.Int32:
		return int64(typed.Value(i))
	case *array.Int64:
		return typed.Value(i)
	case *array.Uint8:
		return int64(typed.Value(i))
	case *array.Uint16:
		return int64(typed.Value(i))
	case *array.Uint32:
		return int64(typed.Value(i))
	case *array.Uint64:
		return int64(typed.Value(i))
	case *array.Float32:
		return float64(typed.Value(i))
	case *array.Float64:
		return typed.Value(i)
	case *array.Boolean:
		return typed.Value(i)
	case *array.Timestamp:
		unit := typed.DataType().(*arrow.TimestampType).Unit
		return typed.Value(i).ToTime(unit).UTC()
	case *array.Date32:
		return typed.Value(i).ToTime().UTC()
	case *array.Date64:
		return typed.Value(i).ToTime().UTC()
	default:
		return column.ValueStr(i)
	}
}
