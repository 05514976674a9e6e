package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	adapters "github.com/wdm0006/loanprep/adapters/golearn"
	"github.com/wdm0006/loanprep/pkg/config"
	perrors "github.com/wdm0006/loanprep/pkg/errors"
	"github.com/wdm0006/loanprep/pkg/prep"
)

func addIOFlags(cmd *cobra.Command, output, folder bool) {
	cmd.Flags().String("input", "", "input CSV file (- for stdin)")
	if output {
		cmd.Flags().String("output", "", "output file")
	}
	if folder {
		cmd.Flags().String("output_folder", "", "folder receiving the train and test files")
	}
}

func newPresetCmd(name, short string, rf *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, rf)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if err := cfg.ApplyPreset(name); err != nil {
				return usageErr(err)
			}
			return runPipeline(cmd, cfg, logger, rf.preview)
		},
	}
	split := config.Presets[name].Split
	addIOFlags(cmd, !split, split)
	return cmd
}

func newRunCmd(rf *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline with explicit stage switches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, rf)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return runPipeline(cmd, cfg, logger, rf.preview)
		},
	}
	addIOFlags(cmd, true, true)
	cmd.Flags().Bool("drop-identifiers", false, "drop name/city and coerce a boolean target to 0/1")
	cmd.Flags().Bool("split", false, "stratified 80/20 train/test split")
	cmd.Flags().Bool("scale", false, "min-max scale the features")
	return cmd
}

func runPipeline(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger, preview bool) error {
	if err := cfg.Validate(); err != nil {
		return usageErr(err)
	}
	delim, _ := cfg.DelimiterRune()
	opts := prep.Options{
		Input:        cfg.Input.Path,
		Delimiter:    delim,
		Output:       cfg.Output.Path,
		OutputFolder: cfg.Output.Folder,
		Format:       cfg.Output.Format,
		Stages: prep.Stages{
			DropIdentifiers: cfg.Stages.DropIdentifiers,
			Split:           cfg.Stages.Split,
			Scale:           cfg.Stages.Scale,
		},
	}
	res, err := prep.Run(cmd.Context(), opts, logger)
	if err != nil {
		logFailure(logger, err)
		return loggedErr(err)
	}
	for _, o := range res.Outputs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d rows\t%s\n", o.Name, o.Frame.Rows(), o.Path)
	}
	if preview && len(res.Outputs) > 0 {
		inst, err := adapters.ToDenseInstances(res.Outputs[0].Frame, prep.Target)
		if err != nil {
			return failureErr(fmt.Errorf("preview: %w", err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), inst)
	}
	return nil
}

func logFailure(logger *zap.Logger, err error) {
	fields := []zap.Field{zap.Error(err)}
	if k := perrors.KindOf(err); k != "" {
		fields = append(fields, zap.String("kind", string(k)))
	}
	var pe *perrors.Error
	if errors.As(err, &pe) {
		if pe.Path != "" {
			fields = append(fields, zap.String("path", pe.Path))
		}
		if len(pe.Columns) > 0 {
			fields = append(fields, zap.Strings("columns", pe.Columns))
		}
	}
	logger.Error("run failed", fields...)
}
