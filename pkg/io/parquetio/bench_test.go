package parquetio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/loanprep/pkg/frame"
)

func makeFrame(rows int) *frame.Frame {
	s := frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "income", Type: frame.KindFloat, Nullable: true},
		{Name: "loan_approved", Type: frame.KindInt, Nullable: true},
	}}
	f := frame.NewFrame(s)
	for i := 0; i < rows; i++ {
		f.AppendNullRow()
		_ = f.SetCell(i, "income", float64(i%100)/100)
		_ = f.SetCell(i, "loan_approved", int64(i%2))
	}
	return f
}

func TestWriteThenInspect(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sub", "train.parquet")
	require.NoError(t, WriteAll(p, makeFrame(250)))

	s, err := Inspect(p)
	require.NoError(t, err)
	assert.Equal(t, int64(250), s.Rows)
	assert.Len(t, s.Columns, 2)
}

func BenchmarkParquetWrite(b *testing.B) {
	f := makeFrame(50000)
	path := filepath.Join(b.TempDir(), "bench.parquet")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = WriteAll(path, f)
	}
}
