package prep

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	perrors "github.com/wdm0006/loanprep/pkg/errors"
	"github.com/wdm0006/loanprep/pkg/frame"
	csvio "github.com/wdm0006/loanprep/pkg/io/csvio"
	"github.com/wdm0006/loanprep/pkg/io/jsonlio"
	"github.com/wdm0006/loanprep/pkg/io/parquetio"
	"github.com/wdm0006/loanprep/pkg/transform/curate"
)

// Load reads the raw record table. A missing path is FileNotFound, any
// other read or parse error is LoadFailure.
func Load(path string, delimiter rune) (*frame.Frame, error) {
	f, err := csvio.Load(path, csvio.ReaderOptions{Delimiter: delimiter})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, perrors.FileNotFound(path, err)
		}
		return nil, perrors.LoadFailure(path, err)
	}
	return f, nil
}

// Columns returns the feature columns followed by the target.
func Columns() []string {
	return append(append([]string(nil), Features...), Target)
}

// CurationPipeline builds the column curation steps. With dropIdentifiers
// the identifiers are removed and a boolean target becomes 0/1. Either way
// the result holds exactly the features followed by the target.
func CurationPipeline(dropIdentifiers bool, logger *zap.Logger) *frame.Pipeline {
	p := frame.NewPipeline()
	if !dropIdentifiers {
		return p.Add(&curate.Select{Columns: Columns()})
	}
	return p.
		Add(&curate.Drop{Columns: Identifiers, Logger: logger}).
		Add(&curate.Require{Columns: []string{Target}}).
		Add(&curate.BoolToInt{Column: Target, Logger: logger}).
		Add(&curate.Select{Columns: Columns()})
}

// Curate runs the curation pipeline. raw is never modified.
func Curate(ctx context.Context, raw *frame.Frame, dropIdentifiers bool, logger *zap.Logger) (*frame.Frame, error) {
	return CurationPipeline(dropIdentifiers, logger).Run(ctx, raw)
}

// OutputPath joins folder and a fixed file name, swapping the .csv
// extension for the output format.
func OutputPath(folder, name, format string) string {
	if format != "" && format != "csv" {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + "." + format
	}
	return filepath.Join(folder, name)
}

// Write serializes every output. A failed output does not stop the others;
// all failures come back together as WriteFailure errors.
func Write(outputs []Output, format string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var errs error
	for _, o := range outputs {
		if err := writeOne(o, format); err != nil {
			logger.Error("write failed", zap.String("output", o.Name), zap.String("path", o.Path), zap.Error(err))
			errs = multierr.Append(errs, perrors.WriteFailure(o.Path, err))
			continue
		}
		logger.Info("wrote output", zap.String("output", o.Name), zap.String("path", o.Path), zap.Int("rows", o.Frame.Rows()))
	}
	return errs
}

func writeOne(o Output, format string) error {
	if o.Path == "" {
		return errors.New("no destination path")
	}
	switch format {
	case "", "csv":
		return csvio.WriteAll(o.Path, o.Frame, csvio.WriterOptions{})
	case "jsonl":
		return jsonlio.WriteAll(o.Path, o.Frame)
	case "parquet":
		return parquetio.WriteAll(o.Path, o.Frame)
	}
	return fmt.Errorf("unsupported output format %q", format)
}
