package frame

import (
	"fmt"
	"strings"
)

// Schema describes the logical shape of a dataset.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name     string
	Type     Kind
	Nullable bool
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, cs := range s.Columns {
		out[i] = cs.Name
	}
	return out
}

// Kind enumerates supported logical types.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Numeric reports whether values of this kind can be read as float64.
func (k Kind) Numeric() bool { return k == KindInt || k == KindFloat }

// Column is a typed, nullable column abstraction.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	SetNull(i int)
	// Take returns a new column holding the given rows, in order.
	Take(rows []int) Column
}

func takeRows[T any](data []T, nulls []bool, rows []int) ([]T, []bool) {
	d := make([]T, len(rows))
	n := make([]bool, len(rows))
	for i, r := range rows {
		d[i] = data[r]
		n[i] = nulls[r]
	}
	return d, n
}

type BoolColumn struct {
	name  string
	data  []bool
	nulls []bool
}

func NewBoolColumn(name string, n int) *BoolColumn {
	return &BoolColumn{name: name, data: make([]bool, n), nulls: make([]bool, n)}
}
func (c *BoolColumn) Name() string           { return c.name }
func (c *BoolColumn) Kind() Kind             { return KindBool }
func (c *BoolColumn) Len() int               { return len(c.data) }
func (c *BoolColumn) IsNull(i int) bool      { return c.nulls[i] }
func (c *BoolColumn) SetNull(i int)          { c.nulls[i] = true }
func (c *BoolColumn) Get(i int) (bool, bool) { return c.data[i], !c.nulls[i] }
func (c *BoolColumn) Set(i int, v bool)      { c.data[i] = v; c.nulls[i] = false }
func (c *BoolColumn) AppendNull()            { c.data = append(c.data, false); c.nulls = append(c.nulls, true) }
func (c *BoolColumn) Append(v bool)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *BoolColumn) Take(rows []int) Column {
	d, n := takeRows(c.data, c.nulls, rows)
	return &BoolColumn{name: c.name, data: d, nulls: n}
}

type IntColumn struct {
	name  string
	data  []int64
	nulls []bool
}

func NewIntColumn(name string, n int) *IntColumn {
	return &IntColumn{name: name, data: make([]int64, n), nulls: make([]bool, n)}
}
func (c *IntColumn) Name() string            { return c.name }
func (c *IntColumn) Kind() Kind              { return KindInt }
func (c *IntColumn) Len() int                { return len(c.data) }
func (c *IntColumn) IsNull(i int) bool       { return c.nulls[i] }
func (c *IntColumn) SetNull(i int)           { c.nulls[i] = true }
func (c *IntColumn) Get(i int) (int64, bool) { return c.data[i], !c.nulls[i] }
func (c *IntColumn) Set(i int, v int64)      { c.data[i] = v; c.nulls[i] = false }
func (c *IntColumn) AppendNull()             { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *IntColumn) Append(v int64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *IntColumn) Take(rows []int) Column {
	d, n := takeRows(c.data, c.nulls, rows)
	return &IntColumn{name: c.name, data: d, nulls: n}
}

type FloatColumn struct {
	name  string
	data  []float64
	nulls []bool
}

func NewFloatColumn(name string, n int) *FloatColumn {
	return &FloatColumn{name: name, data: make([]float64, n), nulls: make([]bool, n)}
}
func (c *FloatColumn) Name() string              { return c.name }
func (c *FloatColumn) Kind() Kind                { return KindFloat }
func (c *FloatColumn) Len() int                  { return len(c.data) }
func (c *FloatColumn) IsNull(i int) bool         { return c.nulls[i] }
func (c *FloatColumn) SetNull(i int)             { c.nulls[i] = true }
func (c *FloatColumn) Get(i int) (float64, bool) { return c.data[i], !c.nulls[i] }
func (c *FloatColumn) Set(i int, v float64)      { c.data[i] = v; c.nulls[i] = false }
func (c *FloatColumn) AppendNull()               { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *FloatColumn) Append(v float64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *FloatColumn) Take(rows []int) Column {
	d, n := takeRows(c.data, c.nulls, rows)
	return &FloatColumn{name: c.name, data: d, nulls: n}
}

type StringColumn struct {
	name  string
	data  []string
	nulls []bool
}

func NewStringColumn(name string, n int) *StringColumn {
	return &StringColumn{name: name, data: make([]string, n), nulls: make([]bool, n)}
}
func (c *StringColumn) Name() string             { return c.name }
func (c *StringColumn) Kind() Kind               { return KindString }
func (c *StringColumn) Len() int                 { return len(c.data) }
func (c *StringColumn) IsNull(i int) bool        { return c.nulls[i] }
func (c *StringColumn) SetNull(i int)            { c.nulls[i] = true }
func (c *StringColumn) Get(i int) (string, bool) { return c.data[i], !c.nulls[i] }
func (c *StringColumn) Set(i int, v string)      { c.data[i] = v; c.nulls[i] = false }
func (c *StringColumn) AppendNull()              { c.data = append(c.data, ""); c.nulls = append(c.nulls, true) }
func (c *StringColumn) Append(v string)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *StringColumn) Take(rows []int) Column {
	d, n := takeRows(c.data, c.nulls, rows)
	return &StringColumn{name: c.name, data: d, nulls: n}
}

// FloatAt reads a numeric cell as float64. ok is false for nulls and
// non-numeric columns.
func FloatAt(c Column, i int) (float64, bool) {
	switch col := c.(type) {
	case *FloatColumn:
		return col.Get(i)
	case *IntColumn:
		v, ok := col.Get(i)
		return float64(v), ok
	}
	return 0, false
}

// Frame is a columnar container for tabular data.
//
// Every row carries the position it had in the source it was loaded from.
// Row subsets keep that position so rows stay traceable within a run.
type Frame struct {
	schema Schema
	cols   []Column
	index  map[string]int // name -> col index
	nrows  int
	source []int
}

func NewFrame(s Schema) *Frame {
	f := &Frame{schema: s, cols: make([]Column, len(s.Columns)), index: make(map[string]int)}
	for i, cs := range s.Columns {
		switch cs.Type {
		case KindBool:
			f.cols[i] = NewBoolColumn(cs.Name, 0)
		case KindInt:
			f.cols[i] = NewIntColumn(cs.Name, 0)
		case KindFloat:
			f.cols[i] = NewFloatColumn(cs.Name, 0)
		case KindString:
			f.cols[i] = NewStringColumn(cs.Name, 0)
		default:
			panic("invalid column kind")
		}
		f.index[cs.Name] = i
	}
	return f
}

// FromColumns builds a Frame from equally sized columns. source holds the
// source row position of each row; nil numbers rows from zero.
func FromColumns(cols []Column, source []int) (*Frame, error) {
	n := 0
	if len(cols) > 0 {
		n = cols[0].Len()
	}
	if source == nil {
		source = make([]int, n)
		for i := range source {
			source[i] = i
		}
	}
	if len(source) != n {
		return nil, fmt.Errorf("frame: source index has %d rows, columns have %d", len(source), n)
	}
	f := &Frame{cols: make([]Column, len(cols)), index: make(map[string]int, len(cols)), nrows: n, source: source}
	f.schema.Columns = make([]ColumnSchema, len(cols))
	for i, c := range cols {
		if c.Len() != n {
			return nil, fmt.Errorf("frame: column %s has %d rows, expected %d", c.Name(), c.Len(), n)
		}
		if _, dup := f.index[c.Name()]; dup {
			return nil, fmt.Errorf("frame: duplicate column %s", c.Name())
		}
		f.cols[i] = c
		f.index[c.Name()] = i
		f.schema.Columns[i] = ColumnSchema{Name: c.Name(), Type: c.Kind(), Nullable: true}
	}
	return f, nil
}

func (f *Frame) Schema() Schema { return f.schema }
func (f *Frame) Rows() int      { return f.nrows }
func (f *Frame) Cols() int      { return len(f.cols) }

// SourceRow returns the source position of row i.
func (f *Frame) SourceRow(i int) int { return f.source[i] }

// SourceRows returns a copy of the source positions of every row.
func (f *Frame) SourceRows() []int {
	out := make([]int, len(f.source))
	copy(out, f.source)
	return out
}

func (f *Frame) ColumnByName(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Missing returns the names not present in f, in the order given.
func (f *Frame) Missing(names ...string) []string {
	var out []string
	for _, n := range names {
		if !f.HasColumn(n) {
			out = append(out, n)
		}
	}
	return out
}

// Take returns a deep copy holding only the given rows, in the given order.
func (f *Frame) Take(rows []int) *Frame {
	cols := make([]Column, len(f.cols))
	for i, c := range f.cols {
		cols[i] = c.Take(rows)
	}
	src := make([]int, len(rows))
	for i, r := range rows {
		src[i] = f.source[r]
	}
	out, _ := FromColumns(cols, src)
	return out
}

// Clone returns a deep copy of f.
func (f *Frame) Clone() *Frame {
	rows := make([]int, f.nrows)
	for i := range rows {
		rows[i] = i
	}
	return f.Take(rows)
}

// Select returns a deep copy holding exactly the named columns, in that order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	if missing := f.Missing(names...); len(missing) > 0 {
		return nil, fmt.Errorf("frame: unknown columns: %s", strings.Join(missing, ", "))
	}
	all := f.allRows()
	cols := make([]Column, len(names))
	for i, n := range names {
		c, _ := f.ColumnByName(n)
		cols[i] = c.Take(all)
	}
	return FromColumns(cols, f.SourceRows())
}

// Drop returns a deep copy without the named columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	all := f.allRows()
	var cols []Column
	for _, c := range f.cols {
		if _, ok := skip[c.Name()]; ok {
			continue
		}
		cols = append(cols, c.Take(all))
	}
	if len(cols) == 0 {
		return &Frame{index: map[string]int{}, nrows: f.nrows, source: f.SourceRows()}
	}
	out, _ := FromColumns(cols, f.SourceRows())
	return out
}

// ReplaceColumn swaps the column with the same name for c, keeping its
// position. c may have a different kind.
func (f *Frame) ReplaceColumn(c Column) error {
	i, ok := f.index[c.Name()]
	if !ok {
		return fmt.Errorf("unknown column: %s", c.Name())
	}
	if c.Len() != f.nrows {
		return fmt.Errorf("column %s has %d rows, frame has %d", c.Name(), c.Len(), f.nrows)
	}
	f.cols[i] = c
	f.schema.Columns[i].Type = c.Kind()
	return nil
}

func (f *Frame) allRows() []int {
	rows := make([]int, f.nrows)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// AppendNullRow appends a row with all-null values.
func (f *Frame) AppendNullRow() {
	for _, c := range f.cols {
		switch col := c.(type) {
		case *BoolColumn:
			col.AppendNull()
		case *IntColumn:
			col.AppendNull()
		case *FloatColumn:
			col.AppendNull()
		case *StringColumn:
			col.AppendNull()
		default:
			panic("unknown column type")
		}
	}
	f.source = append(f.source, f.nrows)
	f.nrows++
}

// SetCell sets a single cell value by name (row must exist).
func (f *Frame) SetCell(row int, name string, v any) error {
	i, ok := f.index[name]
	if !ok {
		return fmt.Errorf("unknown column: %s", name)
	}
	c := f.cols[i]
	switch col := c.(type) {
	case *BoolColumn:
		if v == nil {
			col.SetNull(row)
			return nil
		}
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("column %s expects bool", name)
		}
		col.Set(row, b)
	case *IntColumn:
		if v == nil {
			col.SetNull(row)
			return nil
		}
		switch t := v.(type) {
		case int:
			col.Set(row, int64(t))
		case int64:
			col.Set(row, t)
		case float64:
			col.Set(row, int64(t))
		default:
			return fmt.Errorf("column %s expects int/int64", name)
		}
	case *FloatColumn:
		if v == nil {
			col.SetNull(row)
			return nil
		}
		switch t := v.(type) {
		case float32:
			col.Set(row, float64(t))
		case float64:
			col.Set(row, t)
		case int:
			col.Set(row, float64(t))
		case int64:
			col.Set(row, float64(t))
		default:
			return fmt.Errorf("column %s expects float64", name)
		}
	case *StringColumn:
		if v == nil {
			col.SetNull(row)
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("column %s expects string", name)
		}
		col.Set(row, s)
	default:
		return fmt.Errorf("unknown column kind")
	}
	return nil
}
