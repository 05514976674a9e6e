package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wdm0006/loanprep/pkg/config"
	"github.com/wdm0006/loanprep/pkg/logging"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// exitError carries the process exit code of a failed command. logged is
// set when the command already reported the error through its logger.
type exitError struct {
	code   int
	err    error
	logged bool
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErr(err error) error   { return &exitError{code: exitUsage, err: err} }
func failureErr(err error) error { return &exitError{code: exitFailure, err: err} }
func loggedErr(err error) error  { return &exitError{code: exitFailure, err: err, logged: true} }

// execute runs the command tree and maps the outcome to an exit code.
// Every error not already logged is printed to stderr.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if !ee.logged {
			fmt.Fprintln(stderr, "error:", ee.err)
		}
		return ee.code
	}
	// cobra argument and flag errors
	fmt.Fprintln(stderr, "error:", err)
	return exitUsage
}

type rootFlags struct {
	cfgFile string
	preview bool
}

func newRootCmd() *cobra.Command {
	rf := &rootFlags{}
	root := &cobra.Command{
		Use:           "loanprep",
		Short:         "Prepare a loan application CSV for model training",
		Long:          `loanprep drops identifying columns, splits into stratified train/test sets and min-max scales the numeric features of a loan application dataset.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&rf.cfgFile, "config", "", "config file (yaml, toml or json)")
	pf.String("log-level", "info", "log level: debug|info|warn|error")
	pf.String("log-format", "console", "log format: console|json")
	pf.String("format", config.FormatCSV, "output format: csv|jsonl|parquet")
	pf.String("delimiter", ",", "input field delimiter")
	pf.BoolVar(&rf.preview, "preview", false, "print the first output as golearn instances")

	root.AddCommand(
		newPresetCmd("split", "Drop identifiers, split 80/20 and scale; writes two files to --output_folder", rf),
		newPresetCmd("scale", "Select features and target and scale; writes --output", rf),
		newPresetCmd("select", "Select features and target unchanged; writes --output", rf),
		newRunCmd(rf),
		newInspectCmd(),
		newConfigCmd(rf),
		newVersionCmd(),
	)
	return root
}

// setup resolves the effective configuration and builds the logger.
func setup(cmd *cobra.Command, rf *rootFlags) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(rf.cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, usageErr(err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, usageErr(err)
	}
	return cfg, logger, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "loanprep", version)
		},
	}
}
