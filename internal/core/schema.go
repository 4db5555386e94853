package core

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SchemaBuilder derives a ColumnMeta for every column of a table.
type SchemaBuilder struct {
	Inferencer TypeInferencer
}

// NewSchemaBuilder returns a builder using the default type inferencer.
func NewSchemaBuilder() SchemaBuilder {
	return SchemaBuilder{Inferencer: NewTypeInferencer()}
}

// Build infers the schema for a table, keyed by column name.
//
// Columns are independent, so inference fans out across workers and joins
// before returning. Returns a *SchemaError when the table has no columns
// or a row disagrees with the header width; a pure function of the table
// otherwise.
func (b SchemaBuilder) Build(ctx context.Context, t *Table) (map[string]ColumnMeta, error) {
	cols := t.Columns()
	if len(cols) == 0 {
		return nil, &SchemaError{Reason: "table has no columns"}
	}
	for i, row := range t.rows {
		if len(row) != len(cols) {
			return nil, &SchemaError{
				Reason: fmt.Sprintf("row %d has %d values, expected %d", i+1, len(row), len(cols)),
			}
		}
	}

	metas := make([]ColumnMeta, len(cols))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, name := range cols {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			inf := b.Inferencer.InferColumn(t.ColumnValues(i))
			unique := inf.UniqueCount
			metas[i] = ColumnMeta{
				Name:          name,
				DType:         inf.DType,
				MissingCount:  inf.MissingCount,
				UniqueCount:   &unique,
				ExampleValues: inf.ExampleValues,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	schema := make(map[string]ColumnMeta, len(metas))
	for _, m := range metas {
		schema[m.Name] = m
	}
	return schema, nil
}
