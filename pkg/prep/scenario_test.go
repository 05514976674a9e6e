package prep

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/wdm0006/loanprep/pkg/frame"
	csvio "github.com/wdm0006/loanprep/pkg/io/csvio"
	"github.com/wdm0006/loanprep/pkg/profile"
	"github.com/wdm0006/loanprep/pkg/transform/split"
)

func TestSplitPresetEndToEnd(t *testing.T) {
	convey.Convey("Given 1000 loan applications with 300 approvals", t, func() {
		dir := t.TempDir()
		in := writeInput(t, dir, loanCSV(1000, 300, pyBool))
		outDir := filepath.Join(dir, "prepared", "loans")

		convey.Convey("Running the split preset", func() {
			res, err := Run(context.Background(), Options{
				Input: in, OutputFolder: outDir,
				Stages: Stages{DropIdentifiers: true, Split: true, Scale: true},
			}, nil)
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.InputRows, convey.ShouldEqual, 1000)
			convey.So(res.Split, convey.ShouldResemble, []split.Class{
				{Value: 0, Train: 560, Test: 140},
				{Value: 1, Train: 240, Test: 60},
			})

			trainPath := filepath.Join(outDir, TrainFile)
			testPath := filepath.Join(outDir, TestFile)

			convey.Convey("Both files land in the folder under their fixed names", func() {
				_, err := os.Stat(trainPath)
				convey.So(err, convey.ShouldBeNil)
				_, err = os.Stat(testPath)
				convey.So(err, convey.ShouldBeNil)
			})

			convey.Convey("Reading them back", func() {
				train, err := csvio.Load(trainPath, csvio.ReaderOptions{})
				convey.So(err, convey.ShouldBeNil)
				test, err := csvio.Load(testPath, csvio.ReaderOptions{})
				convey.So(err, convey.ShouldBeNil)

				convey.Convey("The partitions hold 800 and 200 rows", func() {
					convey.So(train.Rows(), convey.ShouldEqual, 800)
					convey.So(test.Rows(), convey.ShouldEqual, 200)
				})

				convey.Convey("Identifiers are gone and the target is 0/1", func() {
					convey.So(train.Schema().Names(), convey.ShouldResemble, Columns())
					convey.So(profile.Counts(train, Target), convey.ShouldResemble, map[string]int{"0": 560, "1": 240})
					convey.So(profile.Counts(test, Target), convey.ShouldResemble, map[string]int{"0": 140, "1": 60})
				})

				convey.Convey("Every training feature spans exactly [0, 1]", func() {
					for _, name := range Features {
						lo, hi := bounds(t, train, name)
						convey.So(lo, convey.ShouldEqual, 0)
						convey.So(hi, convey.ShouldEqual, 1)
					}
				})

				convey.Convey("Test features are scaled with the training bounds", func() {
					col, _ := test.ColumnByName("income")
					convey.So(col.Kind(), convey.ShouldEqual, frame.KindFloat)
					lo, hi := bounds(t, test, "income")
					convey.So(lo, convey.ShouldBeGreaterThanOrEqualTo, -0.5)
					convey.So(hi, convey.ShouldBeLessThanOrEqualTo, 1.5)
				})
			})

			convey.Convey("Running again gives identical files", func() {
				first, err := os.ReadFile(filepath.Join(outDir, TestFile))
				convey.So(err, convey.ShouldBeNil)
				_, err = Run(context.Background(), Options{
					Input: in, OutputFolder: outDir,
					Stages: Stages{DropIdentifiers: true, Split: true, Scale: true},
				}, nil)
				convey.So(err, convey.ShouldBeNil)
				second, err := os.ReadFile(filepath.Join(outDir, TestFile))
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(second), convey.ShouldEqual, string(first))
			})
		})
	})
}
