package curate

import (
	"context"

	"go.uber.org/zap"

	perrors "github.com/wdm0006/loanprep/pkg/errors"
	"github.com/wdm0006/loanprep/pkg/frame"
)

// BoolToInt rewrites a boolean column as 0/1 integers. Numeric columns pass
// through; any other kind is kept as-is and logged as a warning.
type BoolToInt struct {
	Column string
	Logger *zap.Logger
}

func (t *BoolToInt) Name() string { return "bool_to_int" }

func (t *BoolToInt) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	log := orNop(t.Logger).With(zap.String("column", t.Column))
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return nil, perrors.MissingColumns([]string{t.Column})
	}
	out := f.Clone()
	switch c := col.(type) {
	case *frame.BoolColumn:
		ic := frame.NewIntColumn(c.Name(), c.Len())
		for i := 0; i < c.Len(); i++ {
			v, ok := c.Get(i)
			if !ok {
				ic.SetNull(i)
				continue
			}
			if v {
				ic.Set(i, 1)
			} else {
				ic.Set(i, 0)
			}
		}
		if err := out.ReplaceColumn(ic); err != nil {
			return nil, err
		}
		log.Info("converted boolean column to integer")
	case *frame.IntColumn, *frame.FloatColumn:
		log.Info("column already numeric")
	default:
		log.Warn("column is neither boolean nor numeric",
			zap.String("kind", col.Kind().String()),
			zap.String("code", string(perrors.KindUnrecognizedTarget)))
	}
	return out, nil
}
