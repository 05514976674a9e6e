package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(rf *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	var as string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd, rf)
			if err != nil {
				return err
			}
			b, err := cfg.Marshal(as)
			if err != nil {
				return usageErr(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(b))
			if len(b) > 0 && b[len(b)-1] != '\n' {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
	show.Flags().StringVar(&as, "as", "yaml", "yaml|toml|json")
	addIOFlags(show, true, true)
	cmd.AddCommand(show)
	return cmd
}
