package curate

import (
	"context"

	"go.uber.org/zap"

	perrors "github.com/wdm0006/loanprep/pkg/errors"
	"github.com/wdm0006/loanprep/pkg/frame"
)

// Drop removes the named columns. Columns that are not present are skipped.
type Drop struct {
	Columns []string
	Logger  *zap.Logger
}

func (t *Drop) Name() string { return "drop_columns" }

func (t *Drop) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	log := orNop(t.Logger)
	var present []string
	for _, c := range t.Columns {
		if f.HasColumn(c) {
			present = append(present, c)
		}
	}
	if len(present) == 0 {
		log.Info("no identifier columns to drop", zap.Strings("looked_for", t.Columns))
		return f.Clone(), nil
	}
	log.Info("dropped columns", zap.Strings("columns", present))
	return f.Drop(present...), nil
}

// Require fails with a MissingColumns error naming every absent column.
type Require struct{ Columns []string }

func (t *Require) Name() string { return "require_columns" }

func (t *Require) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if missing := f.Missing(t.Columns...); len(missing) > 0 {
		return nil, perrors.MissingColumns(missing)
	}
	return f, nil
}

// Select keeps exactly the named columns, in that order, values untouched.
type Select struct{ Columns []string }

func (t *Select) Name() string { return "select_columns" }

func (t *Select) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if missing := f.Missing(t.Columns...); len(missing) > 0 {
		return nil, perrors.MissingColumns(missing)
	}
	return f.Select(t.Columns...)
}

func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
