package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func pingCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test the configured provider credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			color.NoColor = color.NoColor || flags.noColor //nolint:reassign // intentional override of library global

			a, cleanup, err := openApp(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer cleanup()

			s := a.Config().Settings()
			if err := a.Ping(cmd.Context()); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "ok: %s (%s)\n", s.Provider, s.Model)
			return nil
		},
	}
}
