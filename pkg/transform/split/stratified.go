package split

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	perrors "github.com/wdm0006/loanprep/pkg/errors"
	"github.com/wdm0006/loanprep/pkg/frame"
)

const (
	DefaultTestSize = 0.2
	DefaultSeed     = 42
)

// Stratified partitions rows into train and test sets so that every class
// of Column keeps its share in both. The same input and seed always give
// the same partitions.
type Stratified struct {
	Column   string
	TestSize float64 // fraction of rows held out, (0, 1)
	Seed     int64
}

// New returns a splitter with the fixed 80/20 ratio and seed 42.
func New(column string) *Stratified {
	return &Stratified{Column: column, TestSize: DefaultTestSize, Seed: DefaultSeed}
}

// Class is the row count of one target value in a partition.
type Class struct {
	Value float64
	Train int
	Test  int
}

// Split returns row-disjoint train and test frames whose union is f. Both
// keep the source row order. Failures are SplitFailure errors.
func (s *Stratified) Split(f *frame.Frame) (train, test *frame.Frame, err error) {
	trainRows, testRows, err := s.Indices(f)
	if err != nil {
		return nil, nil, err
	}
	return f.Take(trainRows), f.Take(testRows), nil
}

// Indices computes the row positions of both partitions.
func (s *Stratified) Indices(f *frame.Frame) (trainRows, testRows []int, err error) {
	if s.TestSize <= 0 || s.TestSize >= 1 {
		return nil, nil, perrors.SplitFailure(fmt.Errorf("test size %v must be in (0, 1)", s.TestSize))
	}
	labels, err := s.labels(f)
	if err != nil {
		return nil, nil, perrors.SplitFailure(err)
	}
	n := len(labels)
	nTest := int(math.Ceil(s.TestSize * float64(n)))
	nTrain := n - nTest

	byClass := map[float64][]int{}
	for i, v := range labels {
		byClass[v] = append(byClass[v], i)
	}
	classes := make([]float64, 0, len(byClass))
	for v := range byClass {
		classes = append(classes, v)
	}
	sort.Float64s(classes)

	for _, v := range classes {
		if len(byClass[v]) < 2 {
			return nil, nil, perrors.SplitFailure(fmt.Errorf("the least populated class %v in %s has only 1 member; every class needs at least 2", v, s.Column))
		}
	}
	if nTest < len(classes) {
		return nil, nil, perrors.SplitFailure(fmt.Errorf("test set of %d rows cannot hold all %d classes", nTest, len(classes)))
	}
	if nTrain < len(classes) {
		return nil, nil, perrors.SplitFailure(fmt.Errorf("train set of %d rows cannot hold all %d classes", nTrain, len(classes)))
	}

	alloc := allocate(classes, byClass, n, nTest)

	rng := rand.New(rand.NewSource(s.Seed))
	for i, v := range classes {
		rows := append([]int(nil), byClass[v]...)
		rng.Shuffle(len(rows), func(a, b int) { rows[a], rows[b] = rows[b], rows[a] })
		testRows = append(testRows, rows[:alloc[i]]...)
		trainRows = append(trainRows, rows[alloc[i]:]...)
	}
	sort.Ints(trainRows)
	sort.Ints(testRows)
	return trainRows, testRows, nil
}

// Classes counts each target value in a finished split.
func (s *Stratified) Classes(train, test *frame.Frame) ([]Class, error) {
	counts := map[float64]*Class{}
	add := func(f *frame.Frame, isTest bool) error {
		labels, err := s.labels(f)
		if err != nil {
			return err
		}
		for _, v := range labels {
			c, ok := counts[v]
			if !ok {
				c = &Class{Value: v}
				counts[v] = c
			}
			if isTest {
				c.Test++
			} else {
				c.Train++
			}
		}
		return nil
	}
	if err := add(train, false); err != nil {
		return nil, err
	}
	if err := add(test, true); err != nil {
		return nil, err
	}
	out := make([]Class, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out, nil
}

// allocate gives each class the floor of its proportional share of the test
// set, then hands the leftover rows to the largest remainders. Ties go to
// the larger class, then the smaller value.
func allocate(classes []float64, byClass map[float64][]int, n, nTest int) []int {
	alloc := make([]int, len(classes))
	rem := make([]int, len(classes))
	left := nTest
	for i, v := range classes {
		share := len(byClass[v]) * nTest
		alloc[i] = share / n
		rem[i] = share % n
		left -= alloc[i]
	}
	order := make([]int, len(classes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if rem[ia] != rem[ib] {
			return rem[ia] > rem[ib]
		}
		return len(byClass[classes[ia]]) > len(byClass[classes[ib]])
	})
	for k := 0; k < left; k++ {
		alloc[order[k%len(order)]]++
	}
	return alloc
}

var errEmpty = errors.New("no rows to split")

func (s *Stratified) labels(f *frame.Frame) ([]float64, error) {
	if f.Rows() == 0 {
		return nil, errEmpty
	}
	col, ok := f.ColumnByName(s.Column)
	if !ok {
		return nil, fmt.Errorf("unknown stratification column %s", s.Column)
	}
	out := make([]float64, col.Len())
	for i := range out {
		if col.IsNull(i) {
			return nil, fmt.Errorf("column %s has a missing value at source row %d", s.Column, f.SourceRow(i))
		}
		switch c := col.(type) {
		case *frame.BoolColumn:
			if v, _ := c.Get(i); v {
				out[i] = 1
			}
		case *frame.IntColumn, *frame.FloatColumn:
			out[i], _ = frame.FloatAt(c, i)
		default:
			return nil, fmt.Errorf("column %s is %s; stratification needs numeric or boolean labels", s.Column, col.Kind())
		}
	}
	return out, nil
}
