package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/appkit/internal/dialog"
	"github.com/username/appkit/internal/permission"
	"github.com/username/appkit/internal/resources"
)

// consoleDispatcher records the permission being asked for; the command loop
// prompts for it.
type consoleDispatcher struct {
	pending string
}

func (d *consoleDispatcher) Dispatch(perm string) error {
	d.pending = perm
	return nil
}

func permissionsCmd() *cobra.Command {
	var explanations []string
	var declines []string

	cmd := &cobra.Command{
		Use:   "permissions <permission>...",
		Short: "Walk through permission requests one at a time on the console",
		Long: "Each permission is asked for in order. --explain and --decline are matched to " +
			"permissions by position; pass an empty string to skip one.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := newResolver()
			if err != nil {
				return err
			}
			results, err := runPermissions(cmd.InOrStdin(), cmd.OutOrStdout(), res, args, explanations, declines)
			if err != nil {
				return err
			}
			for _, r := range results {
				status := "denied"
				if r.Granted {
					status = "granted"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.Permission, status)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&explanations, "explain", nil, "Explanation shown before the n-th permission")
	cmd.Flags().StringArrayVar(&declines, "decline", nil, "Notice shown when the n-th permission is denied")

	return cmd
}

func runPermissions(in io.Reader, out io.Writer, strings resources.Strings, perms, explanations, declines []string) ([]permission.Request, error) {
	if in == nil {
		in = os.Stdin
	}
	console := dialog.NewConsole(in, out, logger)
	dispatcher := &consoleDispatcher{}
	requester := permission.New(dispatcher, console, strings, logger)

	var results []permission.Request
	requester.OnDone(func(r []permission.Request) { results = r })

	for i, perm := range perms {
		requester.Add(perm, at(explanations, i), at(declines, i))
	}
	if err := requester.Start(); err != nil {
		return nil, err
	}

	for requester.State() == permission.AwaitingUserChoice {
		var granted bool
		prompt := dialog.Confirm(dispatcher.pending, fmt.Sprintf("Allow %s?", dispatcher.pending),
			"Allow", "Deny", func() { granted = true }, func() { granted = false })
		if err := console.Present(prompt); err != nil {
			return nil, err
		}
		if err := requester.OnResult(granted); err != nil {
			return nil, err
		}
		if err := requester.Err(); err != nil {
			return nil, err
		}
	}

	if requester.State() != permission.Done {
		return nil, errors.New("permission flow did not finish")
	}
	logger.Info("Permission flow finished", zap.Int("count", len(results)))
	return results, nil
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
