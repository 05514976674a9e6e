// Package golearn converts prepared frames to and from
// github.com/sjwhitworth/golearn/base DenseInstances so model code can
// consume a dataset in-process.
package golearn

import (
	"fmt"
	"math"

	"github.com/sjwhitworth/golearn/base"

	"github.com/wdm0006/loanprep/pkg/frame"
	csvio "github.com/wdm0006/loanprep/pkg/io/csvio"
)

// ToDenseInstances converts a Frame into golearn DenseInstances. Int and
// float columns become float attributes (nulls are NaN); everything else is
// categorical. classColumn, when not empty, is set as the class attribute.
func ToDenseInstances(f *frame.Frame, classColumn string) (*base.DenseInstances, error) {
	if classColumn != "" && !f.HasColumn(classColumn) {
		return nil, fmt.Errorf("golearn: class column %q not in frame", classColumn)
	}
	cols := f.Schema().Columns
	attrs := make([]base.Attribute, len(cols))
	for i, cs := range cols {
		if cs.Type.Numeric() {
			attrs[i] = base.NewFloatAttribute(cs.Name)
			continue
		}
		ca := new(base.CategoricalAttribute)
		ca.SetName(cs.Name)
		attrs[i] = ca
	}

	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.Extend(f.Rows()); err != nil {
		return nil, err
	}

	for c, cs := range cols {
		col, _ := f.ColumnByName(cs.Name)
		for r := 0; r < f.Rows(); r++ {
			if cs.Type.Numeric() {
				v, ok := frame.FloatAt(col, r)
				if !ok {
					v = math.NaN()
				}
				inst.Set(specs[c], r, base.PackFloatToBytes(v))
				continue
			}
			if col.IsNull(r) {
				continue
			}
			inst.Set(specs[c], r, attrs[c].GetSysValFromString(csvio.FormatCell(col, r)))
		}
		if cs.Name == classColumn {
			if err := inst.AddClassAttribute(attrs[c]); err != nil {
				return nil, err
			}
		}
	}
	return inst, nil
}

// FromDenseInstances converts golearn DenseInstances into a Frame. Float
// attributes become float columns, all others string columns.
func FromDenseInstances(inst *base.DenseInstances) (*frame.Frame, error) {
	attrs := inst.AllAttributes()
	schema := frame.Schema{Columns: make([]frame.ColumnSchema, len(attrs))}
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		k := frame.KindString
		if _, ok := a.(*base.FloatAttribute); ok {
			k = frame.KindFloat
		}
		schema.Columns[i] = frame.ColumnSchema{Name: a.GetName(), Type: k, Nullable: true}
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}
	f := frame.NewFrame(schema)
	_, nrows := inst.Size()
	for r := 0; r < nrows; r++ {
		f.AppendNullRow()
		for c, cs := range schema.Columns {
			raw := inst.Get(specs[c], r)
			if cs.Type == frame.KindFloat {
				v := base.UnpackBytesToFloat(raw)
				if math.IsNaN(v) {
					continue
				}
				if err := f.SetCell(r, cs.Name, v); err != nil {
					return nil, err
				}
				continue
			}
			if err := f.SetCell(r, cs.Name, specs[c].GetAttribute().GetStringFromSysVal(raw)); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}
