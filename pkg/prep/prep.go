// Package prep runs the loan application preprocessing pipeline: load a CSV,
// curate its columns, optionally split into train and test sets, optionally
// min-max scale the features, and write every output table.
package prep

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wdm0006/loanprep/pkg/frame"
	"github.com/wdm0006/loanprep/pkg/profile"
	"github.com/wdm0006/loanprep/pkg/transform/scale"
	"github.com/wdm0006/loanprep/pkg/transform/split"
)

// Target is the label column.
const Target = "loan_approved"

// Fixed file names of a split run.
const (
	TrainFile = "loan_approval_train_preprocessing.csv"
	TestFile  = "loan_approval_test_preprocessing.csv"
)

var (
	// Features are the model inputs every run requires.
	Features = []string{"income", "credit_score", "loan_amount", "years_employed", "points"}
	// Identifiers are removed when DropIdentifiers is set.
	Identifiers = []string{"name", "city"}
)

// Stages switches the optional pipeline steps.
type Stages struct {
	// DropIdentifiers selects the drop-and-normalize curation policy.
	// When false the columns are only selected.
	DropIdentifiers bool
	Split           bool
	Scale           bool
}

// Options describes one run: where the loan table comes from, which stages
// apply, and where the results go.
type Options struct {
	Input     string
	Delimiter rune

	// Output is the single destination of a run without Split.
	Output string
	// OutputFolder receives TrainFile and TestFile when Split is set.
	OutputFolder string
	// Format is csv (default), jsonl or parquet.
	Format string

	Stages Stages
}

// Output is one named table the run produced.
type Output struct {
	Name  string
	Path  string
	Frame *frame.Frame
	// Classes counts target values, keyed by their rendered value.
	Classes map[string]int
}

// Result reports a finished run. RunID tags every log line of the run and
// Outputs lists the produced tables, train before test for a split run.
type Result struct {
	RunID     string
	InputRows int
	Outputs   []Output
	// Split holds per-class partition sizes when the run split the data.
	Split []split.Class
}

// Run executes the configured pipeline. Stages run strictly in order and the
// first failure aborts the run, so no output is written unless every stage
// before the writer succeeded. Write failures are collected per output.
func Run(ctx context.Context, opts Options, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	res := &Result{RunID: uuid.NewString()}
	log := logger.With(zap.String("run_id", res.RunID))
	log.Info("run started",
		zap.String("input", opts.Input),
		zap.Bool("drop_identifiers", opts.Stages.DropIdentifiers),
		zap.Bool("split", opts.Stages.Split),
		zap.Bool("scale", opts.Stages.Scale))

	raw, err := Load(opts.Input, opts.Delimiter)
	if err != nil {
		return nil, err
	}
	res.InputRows = raw.Rows()
	log.Info("loaded dataset", zap.Int("rows", raw.Rows()), zap.Strings("columns", raw.Schema().Names()))

	curated, err := Curate(ctx, raw, opts.Stages.DropIdentifiers, log)
	if err != nil {
		return nil, err
	}
	log.Info("curated columns", zap.Strings("columns", curated.Schema().Names()))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outputs, err := partition(curated, opts, res, log)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.Stages.Scale {
		if err := scaleOutputs(outputs); err != nil {
			return nil, err
		}
		log.Info("scaled features", zap.Strings("columns", Features))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i := range outputs {
		outputs[i].Classes = profile.Counts(outputs[i].Frame, Target)
		if ce := log.Check(zap.DebugLevel, "output profile"); ce != nil {
			ce.Write(zap.String("output", outputs[i].Name), zap.Any("profile", profile.Of(outputs[i].Frame, 5).ReportJSON()))
		}
	}
	res.Outputs = outputs

	if err := Write(outputs, opts.Format, log); err != nil {
		return res, err
	}
	log.Info("run finished", zap.Int("outputs", len(outputs)))
	return res, nil
}

// partition returns the tables to write: train and test when splitting,
// otherwise the whole curated table. The first table is the fitting subset.
func partition(curated *frame.Frame, opts Options, res *Result, log *zap.Logger) ([]Output, error) {
	if !opts.Stages.Split {
		return []Output{{Name: "dataset", Path: opts.Output, Frame: curated}}, nil
	}
	sp := split.New(Target)
	train, test, err := sp.Split(curated)
	if err != nil {
		return nil, err
	}
	classes, err := sp.Classes(train, test)
	if err != nil {
		return nil, err
	}
	res.Split = classes
	for _, c := range classes {
		log.Info("split class", zap.Float64("value", c.Value), zap.Int("train", c.Train), zap.Int("test", c.Test))
	}
	log.Info("split dataset", zap.Int("train_rows", train.Rows()), zap.Int("test_rows", test.Rows()))
	return []Output{
		{Name: "train", Path: OutputPath(opts.OutputFolder, TrainFile, opts.Format), Frame: train},
		{Name: "test", Path: OutputPath(opts.OutputFolder, TestFile, opts.Format), Frame: test},
	}, nil
}

// scaleOutputs fits on the first output and applies the same bounds to all.
func scaleOutputs(outputs []Output) error {
	sc := scale.NewMinMax(Features...)
	if err := sc.Fit(outputs[0].Frame); err != nil {
		return fmt.Errorf("fit scaler: %w", err)
	}
	for i := range outputs {
		scaled, err := sc.Transform(outputs[i].Frame)
		if err != nil {
			return fmt.Errorf("scale %s: %w", outputs[i].Name, err)
		}
		outputs[i].Frame = scaled
	}
	return nil
}
