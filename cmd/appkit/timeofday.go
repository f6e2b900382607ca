package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/username/appkit/pkg/timeofday"
)

func timeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Convert between H:MM[:SS] and seconds since midnight",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "seconds <H:MM[:SS]>",
		Short: "Print seconds since midnight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := timeofday.Parse(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Seconds())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "from <seconds>",
		Short: "Print HH:MM:SS for seconds since midnight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("seconds %q is not an integer", args[0])
			}
			t, err := timeofday.FromSeconds(n)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.StringWithSeconds())
			return nil
		},
	})

	return cmd
}
