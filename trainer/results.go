package trainer

import (
	"context"
	"os"

	"github.com/pkg/errors"
	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/exports"
)

// Results is the table of per-epoch accuracies, rewritten to disk on every append.
type Results struct {
	path string
	df   *dataframe.DataFrame
}

// NewResults creates an empty table written to path.
func NewResults(path string) *Results {
	return &Results{
		path: path,
		df: dataframe.NewDataFrame(
			dataframe.NewSeriesInt64("epoch", nil),
			dataframe.NewSeriesFloat64("accuracy", nil),
			dataframe.NewSeriesString("mode", nil),
		),
	}
}

// Len returns the number of recorded epochs
func (r *Results) Len() int {
	return r.df.NRows()
}

// Append records an epoch and rewrites the csv.
func (r *Results) Append(ctx context.Context, epoch int, accuracy float64, mode string) error {
	r.df.Append(nil, int64(epoch), accuracy, mode)
	return r.Write(ctx)
}

// Write exports the whole table.
func (r *Results) Write(ctx context.Context) error {
	f, err := os.Create(r.path)
	if err != nil {
		return errors.Wrapf(err, "creating results '%s'", r.path)
	}
	err = exports.ExportToCSV(ctx, f, r.df)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "writing results '%s'", r.path)
}
