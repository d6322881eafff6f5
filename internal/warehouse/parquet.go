package warehouse

import (
	"bytes"
	"fmt"
	"time"

	"github.com/parquet-go/parquet-go"
)

// EncodeTableToParquet writes the table as a single parquet file. The
// schema is derived from the column names and the first non-nil value of
// each column; every column is optional so nil values survive as nulls.
func EncodeTableToParquet(table Table) ([]byte, error) {
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}

	group := parquet.Group{}
	for _, column := range table.Columns {
		group[column.Name] = parquet.Optional(parquetNode(column))
	}
	schema := parquet.NewSchema("result", group)

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[map[string]any](buf, schema)
	rows := table.RowCount()
	for index := 0; index < rows; index++ {
		row := make(map[string]any, len(table.Columns))
		for _, column := range table.Columns {
			value := column.Values[index]
			if value == nil {
				continue
			}
			row[column.Name] = parquetValue(value)
		}
		if _, err := writer.Write([]map[string]any{row}); err != nil {
			return nil, fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func parquetNode(column Column) parquet.Node {
	for _, value := range column.Values {
		switch value.(type) {
		case nil:
			continue
		case bool:
			return parquet.Leaf(parquet.BooleanType)
		case int64:
			return parquet.Int(64)
		case float64:
			return parquet.Leaf(parquet.DoubleType)
		case time.Time:
			return parquet.Timestamp(parquet.Millisecond)
		default:
			return parquet.String()
		}
	}
	return parquet.String()
}

func parquetValue(value any) any {
	switch typed := value.(type) {
	case string:
		return typed
	case bool, int64, float64:
		return typed
	case time.Time:
		return typed.UnixMilli()
	default:
		return fmt.Sprintf("%v", typed)
	}
}
