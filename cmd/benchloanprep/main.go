package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/wdm0006/loanprep/pkg/frame"
	csvio "github.com/wdm0006/loanprep/pkg/io/csvio"
	"github.com/wdm0006/loanprep/pkg/prep"
)

var cities = []string{"Austin", "Denver", "Boston", "Reno", "Tulsa"}

// generate builds a synthetic raw loan table with the given approval rate.
func generate(rows int, approveRate, missp float64, rnd *rand.Rand) *frame.Frame {
	cols := []frame.ColumnSchema{
		{Name: "name", Type: frame.KindString, Nullable: true},
		{Name: "city", Type: frame.KindString, Nullable: true},
		{Name: "income", Type: frame.KindFloat, Nullable: true},
		{Name: "credit_score", Type: frame.KindInt, Nullable: true},
		{Name: "loan_amount", Type: frame.KindFloat, Nullable: true},
		{Name: "years_employed", Type: frame.KindInt, Nullable: true},
		{Name: "points", Type: frame.KindFloat, Nullable: true},
		{Name: prep.Target, Type: frame.KindBool},
	}
	f := frame.NewFrame(frame.Schema{Columns: cols})
	for i := 0; i < rows; i++ {
		f.AppendNullRow()
		_ = f.SetCell(i, "name", "Applicant "+strconv.Itoa(i))
		_ = f.SetCell(i, "city", cities[rnd.Intn(len(cities))])
		if rnd.Float64() >= missp {
			_ = f.SetCell(i, "income", 20000+rnd.Float64()*130000)
		}
		if rnd.Float64() >= missp {
			_ = f.SetCell(i, "credit_score", int64(300+rnd.Intn(551)))
		}
		if rnd.Float64() >= missp {
			_ = f.SetCell(i, "loan_amount", 1000+rnd.Float64()*49000)
		}
		if rnd.Float64() >= missp {
			_ = f.SetCell(i, "years_employed", int64(rnd.Intn(40)))
		}
		if rnd.Float64() >= missp {
			_ = f.SetCell(i, "points", rnd.Float64()*100)
		}
		_ = f.SetCell(i, prep.Target, rnd.Float64() < approveRate)
	}
	return f
}

func main() {
	var (
		rows     = flag.Int("rows", 1_000_000, "total rows to generate")
		approved = flag.Float64("approved", 0.3, "share of approved applications")
		missp    = flag.Float64("missing", 0.01, "probability of a missing feature value")
		format   = flag.String("format", "csv", "output format: csv|jsonl|parquet")
		keep     = flag.String("dir", "", "working directory (default: a removed temp dir)")
		jsonOut  = flag.Bool("json", false, "emit JSON summary")
		seed     = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	dir := *keep
	if dir == "" {
		tmp, err := os.MkdirTemp("", "benchloanprep")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	}

	input := filepath.Join(dir, "loan_approval.csv")
	raw := generate(*rows, *approved, *missp, rand.New(rand.NewSource(*seed)))
	if err := csvio.WriteAll(input, raw, csvio.WriterOptions{}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	opts := prep.Options{
		Input:        input,
		OutputFolder: filepath.Join(dir, "out"),
		Format:       *format,
		Stages:       prep.Stages{DropIdentifiers: true, Split: true, Scale: true},
	}

	runtime.GC()
	var msBefore, msAfter runtime.MemStats
	runtime.ReadMemStats(&msBefore)
	start := time.Now()
	res, err := prep.Run(context.Background(), opts, nil)
	elapsed := time.Since(start)
	runtime.ReadMemStats(&msAfter)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rowsPerSec := float64(*rows) / elapsed.Seconds()
	summary := map[string]any{
		"rows":                  *rows,
		"elapsed_ms":            elapsed.Milliseconds(),
		"rows_per_sec":          rowsPerSec,
		"mem_alloc_bytes":       msAfter.Alloc,
		"mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
		"gc_num":                msAfter.NumGC - msBefore.NumGC,
		"format":                *format,
		"classes":               res.Split,
	}

	if *jsonOut {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Rows: %d\n", *rows)
	fmt.Printf("Elapsed: %s\n", elapsed)
	fmt.Printf("Throughput: %.0f rows/s\n", rowsPerSec)
	fmt.Printf("Total Alloc (delta): %d MB\n", (msAfter.TotalAlloc-msBefore.TotalAlloc)/1024/1024)
	fmt.Printf("GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
	for _, c := range res.Split {
		fmt.Printf("Class %v: train=%d test=%d\n", c.Value, c.Train, c.Test)
	}
}
