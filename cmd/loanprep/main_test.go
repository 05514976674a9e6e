package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/loanprep/pkg/config"
	"github.com/wdm0006/loanprep/pkg/prep"
)

func loansFile(t *testing.T, n, approved int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("name,city,income,credit_score,loan_amount,years_employed,points,loan_approved\n")
	for i := 0; i < n; i++ {
		ok := "False"
		if i*approved/n != (i+1)*approved/n {
			ok = "True"
		}
		fmt.Fprintf(&b, "A%d,Reno,%d,%d,%d,%d,%d,%s\n", i, 20000+i*311%70000, 400+i%400, 5000+i*97%20000, i%30, i%100, ok)
	}
	p := filepath.Join(t.TempDir(), "loan_approval.csv")
	require.NoError(t, os.WriteFile(p, []byte(b.String()), 0o644))
	return p
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := execute(context.Background(), append(args, "--log-level", "error"), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestSplitCommand(t *testing.T) {
	in := loansFile(t, 100, 30)
	dir := filepath.Join(t.TempDir(), "out")

	code, out, _ := run(t, "split", "--input", in, "--output_folder", dir)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "train\t80 rows")
	assert.Contains(t, out, "test\t20 rows")
	assert.FileExists(t, filepath.Join(dir, prep.TrainFile))
	assert.FileExists(t, filepath.Join(dir, prep.TestFile))
}

func TestSelectCommandWithPreview(t *testing.T) {
	in := loansFile(t, 20, 5)
	out := filepath.Join(t.TempDir(), "selected.csv")

	code, stdout, _ := run(t, "select", "--input", in, "--output", out, "--preview")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "dataset\t20 rows")
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "income,credit_score,loan_amount,years_employed,points,loan_approved\n"))
}

func TestRunCommandJSONL(t *testing.T) {
	in := loansFile(t, 50, 10)
	dir := t.TempDir()

	code, _, _ := run(t, "run", "--input", in, "--output_folder", dir, "--drop-identifiers", "--split", "--format", "jsonl")
	require.Equal(t, exitOK, code)
	assert.FileExists(t, filepath.Join(dir, "loan_approval_train_preprocessing.jsonl"))
	assert.FileExists(t, filepath.Join(dir, "loan_approval_test_preprocessing.jsonl"))
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()

	code, _, stderr := run(t, "scale", "--output", filepath.Join(dir, "x.csv"))
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "input path is required")

	code, _, _ = run(t, "split", "--input", filepath.Join(dir, "missing.csv"), "--output_folder", dir)
	assert.Equal(t, exitFailure, code)

	code, _, _ = run(t, "select", "--input", loansFile(t, 10, 3), "--output", filepath.Join(dir, "y.csv"), "--format", "xlsx")
	assert.Equal(t, exitUsage, code)

	code, _, _ = run(t, "split", "--bogus")
	assert.Equal(t, exitUsage, code)
}

func TestInputFromEnvironment(t *testing.T) {
	t.Setenv("LOANPREP_INPUT", loansFile(t, 20, 5))
	out := filepath.Join(t.TempDir(), "selected.csv")

	code, stdout, _ := run(t, "select", "--output", out)
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "dataset\t20 rows")
	assert.FileExists(t, out)
}

func TestFailuresAreReported(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.csv")

	code, stdout, stderr := run(t, "inspect", missing)
	assert.Equal(t, exitFailure, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "file not found")
	assert.Contains(t, stderr, missing)

	bad := filepath.Join(t.TempDir(), "bad.parquet")
	require.NoError(t, os.WriteFile(bad, []byte("not parquet"), 0o644))
	code, _, stderr = run(t, "inspect", bad)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "error:")
}

func TestInspectCommand(t *testing.T) {
	in := loansFile(t, 12, 4)
	code, out, _ := run(t, "inspect", in, "--json")
	require.Equal(t, exitOK, code)
	var rep struct {
		Rows int `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 12, rep.Rows)

	code, out, _ = run(t, "inspect", in)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "Profile Summary (12 rows)")
}

func TestConfigShow(t *testing.T) {
	code, out, _ := run(t, "config", "show", "--as", "json", "--input", "loans.csv")
	require.Equal(t, exitOK, code)
	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "loans.csv", cfg.Input.Path)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestVersion(t *testing.T) {
	code, out, _ := run(t, "version")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "loanprep "+version+"\n", out)
}
