package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or save the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "save [path]",
		Short: "Write the merged configuration (default: user config directory)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := a.cfg.SaveTo(args[0]); err != nil {
					return err
				}
				fmt.Printf("Saved %s\n", args[0])
				return nil
			}
			path, err := a.cfg.Save()
			if err != nil {
				return err
			}
			fmt.Printf("Saved %s\n", path)
			return nil
		},
	})
	return cmd
}
