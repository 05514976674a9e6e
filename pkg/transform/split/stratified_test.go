package split

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/wdm0006/loanprep/pkg/errors"
	"github.com/wdm0006/loanprep/pkg/frame"
)

// labelled builds n rows whose target is 1 for the first pos rows.
func labelled(n, pos int) *frame.Frame {
	s := frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "income", Type: frame.KindInt},
		{Name: "loan_approved", Type: frame.KindInt},
	}}
	f := frame.NewFrame(s)
	for i := 0; i < n; i++ {
		f.AppendNullRow()
		_ = f.SetCell(i, "income", int64(i))
		v := int64(0)
		if i < pos {
			v = 1
		}
		_ = f.SetCell(i, "loan_approved", v)
	}
	return f
}

func positives(t *testing.T, f *frame.Frame) int {
	t.Helper()
	col, _ := f.ColumnByName("loan_approved")
	n := 0
	for i := 0; i < col.Len(); i++ {
		v, _ := frame.FloatAt(col, i)
		if v == 1 {
			n++
		}
	}
	return n
}

func TestLoanExample(t *testing.T) {
	f := labelled(1000, 300)
	train, test, err := New("loan_approved").Split(f)
	require.NoError(t, err)

	assert.Equal(t, 800, train.Rows())
	assert.Equal(t, 200, test.Rows())
	assert.Equal(t, 240, positives(t, train))
	assert.Equal(t, 60, positives(t, test))

	classes, err := New("loan_approved").Classes(train, test)
	require.NoError(t, err)
	assert.Equal(t, []Class{{Value: 0, Train: 560, Test: 140}, {Value: 1, Train: 240, Test: 60}}, classes)
}

func TestPartitionsAreDisjointAndComplete(t *testing.T) {
	f := labelled(137, 41)
	train, test, err := New("loan_approved").Split(f)
	require.NoError(t, err)

	seen := map[int]bool{}
	for _, fr := range []*frame.Frame{train, test} {
		prev := -1
		for _, r := range fr.SourceRows() {
			assert.False(t, seen[r], "row %d in both partitions", r)
			seen[r] = true
			assert.Greater(t, r, prev, "partitions keep source order")
			prev = r
		}
	}
	assert.Len(t, seen, 137)
}

func TestDeterministic(t *testing.T) {
	f := labelled(250, 90)
	a1, b1, err := New("loan_approved").Indices(f)
	require.NoError(t, err)
	a2, b2, err := New("loan_approved").Indices(f)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)

	other := &Stratified{Column: "loan_approved", TestSize: DefaultTestSize, Seed: 7}
	a3, _, err := other.Indices(f)
	require.NoError(t, err)
	assert.NotEqual(t, a1, a3)
}

func TestTestSizeRoundsUp(t *testing.T) {
	// 0.07 * 100 is 7.000000000000001 in float64, so eight rows are held out
	s := &Stratified{Column: "loan_approved", TestSize: 0.07, Seed: DefaultSeed}
	train, test, err := s.Split(labelled(100, 50))
	require.NoError(t, err)
	assert.Equal(t, 8, test.Rows())
	assert.Equal(t, 92, train.Rows())
	assert.Equal(t, 4, positives(t, test))
}

func TestClassShareWithinOneRow(t *testing.T) {
	for _, tc := range []struct{ n, pos int }{{10, 4}, {11, 3}, {99, 50}, {503, 17}, {1000, 300}, {1001, 2}} {
		f := labelled(tc.n, tc.pos)
		train, test, err := New("loan_approved").Split(f)
		require.NoError(t, err, "n=%d pos=%d", tc.n, tc.pos)
		require.Equal(t, tc.n, train.Rows()+test.Rows())
		assert.Equal(t, int(math.Ceil(0.2*float64(tc.n))), test.Rows())

		frac := float64(tc.pos) / float64(tc.n)
		for _, part := range []*frame.Frame{train, test} {
			ideal := frac * float64(part.Rows())
			got := float64(positives(t, part))
			assert.LessOrEqual(t, math.Abs(got-ideal), 1.0, "n=%d pos=%d rows=%d", tc.n, tc.pos, part.Rows())
		}
	}
}

func TestBooleanLabels(t *testing.T) {
	s := frame.Schema{Columns: []frame.ColumnSchema{{Name: "loan_approved", Type: frame.KindBool}}}
	f := frame.NewFrame(s)
	for i := 0; i < 20; i++ {
		f.AppendNullRow()
		_ = f.SetCell(i, "loan_approved", i%4 == 0)
	}
	classes, err := func() ([]Class, error) {
		sp := New("loan_approved")
		tr, te, err := sp.Split(f)
		if err != nil {
			return nil, err
		}
		return sp.Classes(tr, te)
	}()
	require.NoError(t, err)
	assert.Equal(t, []Class{{Value: 0, Train: 12, Test: 3}, {Value: 1, Train: 4, Test: 1}}, classes)
}

func TestSplitFailures(t *testing.T) {
	cases := map[string]*frame.Frame{
		"singleton class": labelled(50, 1),
		"too few rows":    labelled(4, 2),
		"empty":           labelled(0, 0),
	}
	withNull := labelled(20, 5)
	col, _ := withNull.ColumnByName("loan_approved")
	col.SetNull(3)
	cases["null label"] = withNull

	txt := frame.NewFrame(frame.Schema{Columns: []frame.ColumnSchema{{Name: "loan_approved", Type: frame.KindString}}})
	for i := 0; i < 10; i++ {
		txt.AppendNullRow()
		_ = txt.SetCell(i, "loan_approved", "yes")
	}
	cases["text label"] = txt
	cases["no column"] = labelled(20, 5).Drop("loan_approved")

	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := New("loan_approved").Split(f)
			require.Error(t, err)
			assert.True(t, perrors.IsKind(err, perrors.KindSplitFailure), "got %v", err)
		})
	}

	_, _, err := (&Stratified{Column: "loan_approved", TestSize: 1.5}).Split(labelled(10, 5))
	assert.True(t, perrors.IsKind(err, perrors.KindSplitFailure))
}
