package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	iox "github.com/wdm0006/loanprep/pkg/io/ioutils"
	"github.com/wdm0006/loanprep/pkg/frame"
)

type WriterOptions struct {
	Delimiter rune // default ','
}

// WriteAll writes a Frame to a CSV file with a header row and no index
// column. Missing parent directories are created; a .gz path is compressed.
func WriteAll(path string, f *frame.Frame, opt WriterOptions) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if err := Write(out, f, opt); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Write serializes f as CSV to w.
func Write(out io.Writer, f *frame.Frame, opt WriterOptions) error {
	w := csv.NewWriter(out)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}

	// header
	hdr := f.Schema().Names()
	if err := w.Write(hdr); err != nil {
		return err
	}

	cols := make([]frame.Column, len(hdr))
	for c, name := range hdr {
		cols[c], _ = f.ColumnByName(name)
	}
	row := make([]string, len(hdr))
	for r := 0; r < f.Rows(); r++ {
		for c, col := range cols {
			row[c] = FormatCell(col, r)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// FormatCell renders one cell the way the CSV writer does. Nulls are empty.
func FormatCell(col frame.Column, r int) string {
	switch c := col.(type) {
	case *frame.FloatColumn:
		if v, ok := c.Get(r); ok {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	case *frame.IntColumn:
		if v, ok := c.Get(r); ok {
			return strconv.FormatInt(v, 10)
		}
	case *frame.BoolColumn:
		if v, ok := c.Get(r); ok {
			if v {
				return "True"
			}
			return "False"
		}
	case *frame.StringColumn:
		if v, ok := c.Get(r); ok {
			return v
		}
	}
	return ""
}
