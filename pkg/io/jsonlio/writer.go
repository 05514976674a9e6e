package jsonlio

import (
	"bufio"
	"encoding/json"
	"io"

	iox "github.com/wdm0006/loanprep/pkg/io/ioutils"
	"github.com/wdm0006/loanprep/pkg/frame"
)

// WriteAll writes one JSON object per row. Null cells are omitted.
func WriteAll(path string, f *frame.Frame) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if err := Write(out, f); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func Write(out io.Writer, f *frame.Frame) error {
	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)
	for r := 0; r < f.Rows(); r++ {
		if err := enc.Encode(Record(f, r)); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Record returns row r keyed by column name with typed values.
func Record(f *frame.Frame, r int) map[string]any {
	m := make(map[string]any, f.Cols())
	for _, cs := range f.Schema().Columns {
		col, _ := f.ColumnByName(cs.Name)
		switch c := col.(type) {
		case *frame.FloatColumn:
			if v, ok := c.Get(r); ok {
				m[cs.Name] = v
			}
		case *frame.IntColumn:
			if v, ok := c.Get(r); ok {
				m[cs.Name] = v
			}
		case *frame.BoolColumn:
			if v, ok := c.Get(r); ok {
				m[cs.Name] = v
			}
		case *frame.StringColumn:
			if v, ok := c.Get(r); ok {
				m[cs.Name] = v
			}
		}
	}
	return m
}
