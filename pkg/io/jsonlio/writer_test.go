package jsonlio

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/loanprep/pkg/frame"
)

func TestWriteAll(t *testing.T) {
	s := frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "income", Type: frame.KindFloat},
		{Name: "loan_approved", Type: frame.KindInt},
	}}
	f := frame.NewFrame(s)
	for i := 0; i < 3; i++ {
		f.AppendNullRow()
		_ = f.SetCell(i, "loan_approved", int64(i%2))
	}
	_ = f.SetCell(0, "income", 0.25)

	p := filepath.Join(t.TempDir(), "out", "rows.jsonl")
	require.NoError(t, WriteAll(p, f))

	fh, err := os.Open(p)
	require.NoError(t, err)
	defer func() { _ = fh.Close() }()

	var rows []map[string]any
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		rows = append(rows, m)
	}
	require.Len(t, rows, 3)
	assert.Equal(t, 0.25, rows[0]["income"])
	assert.NotContains(t, rows[1], "income")
	assert.Equal(t, float64(1), rows[1]["loan_approved"])
}
