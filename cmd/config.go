package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drewgille/lemurs/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage analysis settings",
	}

	var initPath string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(config.Default(), initPath); err != nil {
				return err
			}
			where := initPath
			if where == "" {
				where = "~/.lemurs/config.yaml"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote default config to %s\n", where)
			return nil
		},
	}
	initCmd.Flags().StringVar(&initPath, "path", "", "where to write the config (default ~/.lemurs/config.yaml)")

	cmd.AddCommand(initCmd)
	return cmd
}
