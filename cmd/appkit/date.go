package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/username/appkit/pkg/dateutil"
)

func dateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "date",
		Short: "Convert between d.m.yyyy dates and day offsets from 30.12.1899",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "offset <d.m.yyyy>",
		Short: "Print the day offset of a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset, err := dateutil.OffsetOf(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), offset)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "from <offset>",
		Short: "Print the date for a day offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("offset %q is not an integer", args[0])
			}
			d, err := dateutil.FromOffset(offset)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), d)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Print offset(a) - offset(b), negative when a precedes b",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := dateutil.Parse(args[0])
			if err != nil {
				return err
			}
			b, err := dateutil.Parse(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dateutil.DaysBetween(a, b))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "Print today's date and offset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today := dateutil.Today(nil)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", today, today.Offset())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "weekday <d.m.yyyy>",
		Short: "Print the localized weekday name of a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dateutil.Parse(args[0])
			if err != nil {
				return err
			}
			res, err := newResolver()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.DayName(d.WeekdayIndex()))
			return nil
		},
	})

	return cmd
}
