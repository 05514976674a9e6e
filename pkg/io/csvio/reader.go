package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	iox "github.com/wdm0006/loanprep/pkg/io/ioutils"
	"github.com/wdm0006/loanprep/pkg/frame"
)

// ErrEmpty is returned when the input holds no header row.
var ErrEmpty = errors.New("csv: empty input")

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // default ','
	SampleRows int  // rows inspected for type inference; <= 0 inspects every row
}

type Reader struct {
	r     *csv.Reader
	opt   ReaderOptions
	names []string
	buf   [][]string
	line  int
}

// Open opens a CSV file (or stdin for "-") and returns a Reader. gzip input
// is decompressed transparently. The returned Closer releases the file.
func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	return NewReaderFrom(rc, opt), rc, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (stdin, pipe).
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	rr := csv.NewReader(r)
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	return &Reader{r: rr, opt: opt}
}

// InferSchema reads the header (if present) and samples rows to determine
// column kinds. Sampled rows are kept for ReadAll.
func (r *Reader) InferSchema() (frame.Schema, []string, error) {
	rec, err := r.r.Read()
	if err == io.EOF {
		return frame.Schema{}, nil, ErrEmpty
	}
	if err != nil {
		return frame.Schema{}, nil, err
	}
	r.line++
	names := make([]string, len(rec))
	if r.opt.HasHeader {
		for i := range rec {
			names[i] = strings.TrimSpace(strings.ToValidUTF8(rec[i], "?"))
		}
		// strip BOM on first header cell if present
		if len(names) > 0 {
			names[0] = strings.TrimPrefix(names[0], "\ufeff")
		}
	} else {
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
		r.buf = append(r.buf, append([]string(nil), rec...))
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return frame.Schema{}, nil, fmt.Errorf("csv: duplicate column %q in header", n)
		}
		seen[n] = struct{}{}
	}

	max := r.opt.SampleRows
	for max <= 0 || len(r.buf) < max {
		rr, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return frame.Schema{}, nil, err
		}
		r.line++
		r.buf = append(r.buf, rr)
	}

	kinds := inferKinds(r.buf, len(names))
	schema := frame.Schema{Columns: make([]frame.ColumnSchema, len(names))}
	for i := range names {
		schema.Columns[i] = frame.ColumnSchema{Name: names[i], Type: kinds[i], Nullable: true}
	}
	r.names = names
	return schema, names, nil
}

// ReadAll loads the buffered sample plus the rest of the CSV into a Frame.
// A value that does not parse as its column kind is an error.
func (r *Reader) ReadAll(schema frame.Schema) (*frame.Frame, error) {
	f := frame.NewFrame(schema)
	for i, rec := range r.buf {
		// data line numbers are 1-based and count the header
		line := i + 1
		if r.opt.HasHeader {
			line++
		}
		if err := appendRecord(f, schema, rec, line); err != nil {
			return nil, err
		}
	}
	r.buf = nil
	for {
		rec, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		r.line++
		if err := appendRecord(f, schema, rec, r.line); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Load reads a whole CSV file with a header row.
func Load(path string, opt ReaderOptions) (*frame.Frame, error) {
	opt.HasHeader = true
	rdr, c, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()
	schema, _, err := rdr.InferSchema()
	if err != nil {
		return nil, err
	}
	return rdr.ReadAll(schema)
}

func appendRecord(f *frame.Frame, schema frame.Schema, rec []string, line int) error {
	if len(rec) != len(schema.Columns) {
		return fmt.Errorf("csv: line %d: need %d fields, got %d", line, len(schema.Columns), len(rec))
	}
	f.AppendNullRow()
	row := f.Rows() - 1
	for i, cs := range schema.Columns {
		val := strings.ToValidUTF8(strings.TrimSpace(rec[i]), "?")
		if isNullCell(val) {
			continue
		}
		var v any
		var err error
		switch cs.Type {
		case frame.KindFloat:
			v, err = strconv.ParseFloat(val, 64)
		case frame.KindInt:
			v, err = strconv.ParseInt(val, 10, 64)
		case frame.KindBool:
			var ok bool
			if v, ok = parseBool(val); !ok {
				err = strconv.ErrSyntax
			}
		default:
			v = val
		}
		if err != nil {
			return fmt.Errorf("csv: line %d: column %s: cannot parse %q as %s", line, cs.Name, val, cs.Type)
		}
		if err := f.SetCell(row, cs.Name, v); err != nil {
			return err
		}
	}
	return nil
}

// parseBool accepts only the spelled-out forms so 0/1 columns stay numeric.
func parseBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

var numre = regexp.MustCompile(`^[-+]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][-+]?[0-9]+)?$`)

// isNullCell reports cells read as missing: empty or a NaN marker.
func isNullCell(v string) bool {
	return v == "" || strings.EqualFold(v, "nan")
}

func inferKinds(rows [][]string, ncol int) []frame.Kind {
	kinds := make([]frame.Kind, ncol)
	for c := 0; c < ncol; c++ {
		nonEmpty, integer, num, boolean := 0, 0, 0, 0
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if isNullCell(v) {
				continue
			}
			nonEmpty++
			if _, ok := parseBool(v); ok {
				boolean++
				continue
			}
			if numre.MatchString(v) {
				num++
				if _, err := strconv.ParseInt(v, 10, 64); err == nil {
					integer++
				}
			}
		}
		switch {
		case nonEmpty == 0:
			// an all-empty column reads as missing numbers
			kinds[c] = frame.KindFloat
		case boolean == nonEmpty:
			kinds[c] = frame.KindBool
		case integer == nonEmpty:
			kinds[c] = frame.KindInt
		case num == nonEmpty:
			kinds[c] = frame.KindFloat
		default:
			kinds[c] = frame.KindString
		}
	}
	return kinds
}
