package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/wdm0006/loanprep/pkg/frame"
)

type NumStats struct {
	Count int     `json:"count" yaml:"count"`
	Nulls int     `json:"nulls" yaml:"nulls"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Sum   float64 `json:"sum" yaml:"sum"`
}

// Mean is 0 for a column with no values.
func (n NumStats) Mean() float64 {
	if n.Count == 0 {
		return 0
	}
	return n.Sum / float64(n.Count)
}

type BoolStats struct {
	Count int `json:"count" yaml:"count"`
	Nulls int `json:"nulls" yaml:"nulls"`
	True  int `json:"true" yaml:"true"`
	False int `json:"false" yaml:"false"`
}

type StringStats struct {
	Count int
	Nulls int
	TopK  int
	Freqs map[string]int
}

type ColumnProfile struct {
	Name string
	Kind frame.Kind
	Num  *NumStats
	Bool *BoolStats
	Str  *StringStats
}

type Collector struct {
	rows  int
	cols  []ColumnProfile
	index map[string]int
	topK  int
}

func NewCollector(schema frame.Schema, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK}
	c.cols = make([]ColumnProfile, len(schema.Columns))
	for i, cs := range schema.Columns {
		cp := ColumnProfile{Name: cs.Name, Kind: cs.Type}
		switch cs.Type {
		case frame.KindFloat, frame.KindInt:
			cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
		case frame.KindBool:
			cp.Bool = &BoolStats{}
		case frame.KindString:
			cp.Str = &StringStats{TopK: topK, Freqs: make(map[string]int)}
		}
		c.cols[i] = cp
		c.index[cs.Name] = i
	}
	return c
}

// Of profiles a single frame.
func Of(f *frame.Frame, topK int) *Collector {
	c := NewCollector(f.Schema(), topK)
	c.ConsumeFrame(f)
	return c
}

// ConsumeFrame adds the rows of f. Columns unknown to the collector are skipped.
func (c *Collector) ConsumeFrame(f *frame.Frame) {
	c.rows += f.Rows()
	for _, cs := range f.Schema().Columns {
		idx, ok := c.index[cs.Name]
		if !ok {
			continue
		}
		cp := &c.cols[idx]
		col, _ := f.ColumnByName(cs.Name)
		switch col := col.(type) {
		case *frame.FloatColumn, *frame.IntColumn:
			if cp.Num == nil {
				continue
			}
			for i := 0; i < col.Len(); i++ {
				v, ok := frame.FloatAt(col, i)
				if !ok {
					cp.Num.Nulls++
					continue
				}
				cp.Num.Count++
				if v < cp.Num.Min {
					cp.Num.Min = v
				}
				if v > cp.Num.Max {
					cp.Num.Max = v
				}
				cp.Num.Sum += v
			}
		case *frame.BoolColumn:
			if cp.Bool == nil {
				continue
			}
			for i := 0; i < col.Len(); i++ {
				v, ok := col.Get(i)
				if !ok {
					cp.Bool.Nulls++
					continue
				}
				cp.Bool.Count++
				if v {
					cp.Bool.True++
				} else {
					cp.Bool.False++
				}
			}
		case *frame.StringColumn:
			if cp.Str == nil {
				continue
			}
			for i := 0; i < col.Len(); i++ {
				v, ok := col.Get(i)
				if !ok {
					cp.Str.Nulls++
					continue
				}
				cp.Str.Count++
				if c.topK > 0 {
					cp.Str.Freqs[v]++
				}
			}
		}
	}
}

func (c *Collector) Rows() int { return c.rows }

// Column returns the profile of one column.
func (c *Collector) Column(name string) (ColumnProfile, bool) {
	i, ok := c.index[name]
	if !ok {
		return ColumnProfile{}, false
	}
	return c.cols[i], true
}

// Counts returns how often each value of a numeric or boolean column occurs,
// keyed by its rendered value. Booleans count as 0 and 1.
func Counts(f *frame.Frame, name string) map[string]int {
	col, ok := f.ColumnByName(name)
	if !ok {
		return nil
	}
	out := map[string]int{}
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			out["null"]++
			continue
		}
		switch c := col.(type) {
		case *frame.BoolColumn:
			if v, _ := c.Get(i); v {
				out["1"]++
			} else {
				out["0"]++
			}
		case *frame.StringColumn:
			v, _ := c.Get(i)
			out[v]++
		default:
			v, _ := frame.FloatAt(c, i)
			out[fmt.Sprint(v)]++
		}
	}
	return out
}

func (c *Collector) ReportText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Profile Summary (%d rows)\n", c.rows)
	for _, cp := range c.cols {
		fmt.Fprintf(&b, "- %s (%v): ", cp.Name, cp.Kind)
		switch {
		case cp.Num != nil:
			min, max := cp.Num.Min, cp.Num.Max
			if cp.Num.Count == 0 {
				min, max = 0, 0
			}
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n", cp.Num.Count, cp.Num.Nulls, min, max, cp.Num.Mean())
		case cp.Bool != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d true=%d false=%d\n", cp.Bool.Count, cp.Bool.Nulls, cp.Bool.True, cp.Bool.False)
		case cp.Str != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d\n", cp.Str.Count, cp.Str.Nulls)
			for _, kv := range cp.Str.top(c.topK) {
				fmt.Fprintf(&b, "  * %q: %d\n", kv.Value, kv.Count)
			}
		default:
			b.WriteString("\n")
		}
	}
	return b.String()
}

type ValueCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

func (s *StringStats) top(k int) []ValueCount {
	arr := make([]ValueCount, 0, len(s.Freqs))
	for v, n := range s.Freqs {
		arr = append(arr, ValueCount{v, n})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].Count != arr[j].Count {
			return arr[i].Count > arr[j].Count
		}
		return arr[i].Value < arr[j].Value
	})
	if k > 0 && k < len(arr) {
		arr = arr[:k]
	}
	return arr
}

type JSONProfile struct {
	Rows    int          `json:"rows" yaml:"rows"`
	Columns []JSONColumn `json:"columns" yaml:"columns"`
}

type JSONColumn struct {
	Name string       `json:"name" yaml:"name"`
	Kind string       `json:"kind" yaml:"kind"`
	Num  *NumStats    `json:"num,omitempty" yaml:"num,omitempty"`
	Bool *BoolStats   `json:"bool,omitempty" yaml:"bool,omitempty"`
	Top  []ValueCount `json:"top,omitempty" yaml:"top,omitempty"`
}

func (c *Collector) ReportJSON() JSONProfile {
	out := JSONProfile{Rows: c.rows, Columns: make([]JSONColumn, 0, len(c.cols))}
	for _, cp := range c.cols {
		jc := JSONColumn{Name: cp.Name, Kind: cp.Kind.String(), Num: cp.Num, Bool: cp.Bool}
		if cp.Str != nil {
			jc.Top = cp.Str.top(c.topK)
		}
		out.Columns = append(out.Columns, jc)
	}
	return out
}
