package sqlhost

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aitch25/lib-mysqludf-str/internal/udf"
)

// Table is a fully read query result. Values are udf.Args so that text,
// blobs and NULLs keep their SQL type.
type Table struct {
	Columns []string
	Rows    [][]udf.Arg
}

// QueryAll runs query and reads every row.
func (h *Host) QueryAll(ctx context.Context, query string, args ...any) (*Table, error) {
	rows, err := h.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	t := &Table{Columns: cols}
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make([]udf.Arg, len(cols))
		for i, v := range raw {
			if b, ok := v.([]byte); ok {
				v = bytes.Clone(b)
			}
			a, err := toArg(v)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", cols[i], err)
			}
			row[i] = a
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}
