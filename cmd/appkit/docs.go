package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/appkit/internal/docstore"
	"github.com/username/appkit/internal/jsonx"
)

func docsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Work with documents in the configured document store",
	}

	cmd.AddCommand(docsAction("get <collection> <id>", "Print a document", 2,
		func(ctx context.Context, s *docstore.Store, out io.Writer, args []string) error {
			data, err := s.Collection(args[0]).Doc(args[1]).Get(ctx)
			if err != nil {
				return err
			}
			return printJSON(out, data)
		}))

	cmd.AddCommand(docsAction("list <collection>", "Print every document in a collection", 1,
		func(ctx context.Context, s *docstore.Store, out io.Writer, args []string) error {
			docs, err := s.Collection(args[0]).List(ctx)
			if err != nil {
				return err
			}
			for _, d := range docs {
				b, err := json.Marshal(d.Data)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%s\n", d.ID, b)
			}
			return nil
		}))

	var merge bool
	setCmd := docsAction("set <collection> <id> <json-object>", "Write a document", 3,
		func(ctx context.Context, s *docstore.Store, out io.Writer, args []string) error {
			obj, err := jsonx.ParseObject(args[2], logger)
			if err != nil {
				return err
			}
			ref := s.Collection(args[0]).Doc(args[1])
			if merge {
				return ref.Update(ctx, obj.Map())
			}
			return ref.Set(ctx, obj.Map())
		})
	setCmd.Flags().BoolVar(&merge, "merge", false, "Merge fields into an existing document")
	cmd.AddCommand(setCmd)

	cmd.AddCommand(docsAction("create <collection> <json-object>", "Add a document under a generated id", 2,
		func(ctx context.Context, s *docstore.Store, out io.Writer, args []string) error {
			obj, err := jsonx.ParseObject(args[1], logger)
			if err != nil {
				return err
			}
			ref, err := s.Collection(args[0]).Add(ctx, obj.Map())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ref.ID())
			return nil
		}))

	cmd.AddCommand(docsAction("delete <collection> <id>", "Delete a document", 2,
		func(ctx context.Context, s *docstore.Store, out io.Writer, args []string) error {
			return s.Collection(args[0]).Doc(args[1]).Delete(ctx)
		}))

	cmd.AddCommand(docsAction("add <collection> <id> <array> <json-value>", "Add a value to an array field", 4,
		func(ctx context.Context, s *docstore.Store, out io.Writer, args []string) error {
			v, err := jsonx.ParseValue(args[3])
			if err != nil {
				return err
			}
			return s.Collection(args[0]).Doc(args[1]).AddValue(ctx, args[2], v)
		}))

	cmd.AddCommand(docsAction("remove <collection> <id> <array> <json-value>", "Remove a value from an array field", 4,
		func(ctx context.Context, s *docstore.Store, out io.Writer, args []string) error {
			v, err := jsonx.ParseValue(args[3])
			if err != nil {
				return err
			}
			return s.Collection(args[0]).Doc(args[1]).RemoveValue(ctx, args[2], v)
		}))

	cmd.AddCommand(docsAction("move <from-collection> <from-id> <to-collection> <to-id> <array> <json-value>",
		"Move a value between the same array field of two documents in one commit", 6,
		func(ctx context.Context, s *docstore.Store, out io.Writer, args []string) error {
			v, err := jsonx.ParseValue(args[5])
			if err != nil {
				return err
			}
			from := s.Collection(args[0]).Doc(args[1])
			to := s.Collection(args[2]).Doc(args[3])
			return s.Batch().MoveValue(from, to, args[4], v).Commit(ctx)
		}))

	var by int64
	incrCmd := docsAction("incr <collection> <id> <field>", "Increase a numeric field", 3,
		func(ctx context.Context, s *docstore.Store, out io.Writer, args []string) error {
			return s.Collection(args[0]).Doc(args[1]).Increase(ctx, args[2], by)
		})
	incrCmd.Flags().Int64Var(&by, "by", 1, "Amount to add (negative to decrease)")
	cmd.AddCommand(incrCmd)

	return cmd
}

type docsFunc func(ctx context.Context, s *docstore.Store, out io.Writer, args []string) error

// docsAction wraps fn with opening and closing the configured backend.
func docsAction(use, short string, nargs int, fn docsFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			store, closeFn, err := openDocstore(ctx)
			if err != nil {
				return err
			}
			defer closeFn()
			return fn(ctx, store, cmd.OutOrStdout(), args)
		},
	}
}

func openDocstore(ctx context.Context) (*docstore.Store, func(), error) {
	var backend docstore.Backend
	closeFn := func() {}

	switch cfg.Docstore.Backend {
	case "postgres":
		pg, err := docstore.NewPostgres(ctx, cfg.Docstore.DSN, logger)
		if err != nil {
			return nil, nil, err
		}
		backend = pg
		closeFn = pg.Close
	default:
		logger.Warn("Using in-memory document store; changes are lost on exit")
		backend = docstore.NewMemory()
	}

	store := docstore.New(backend, logger)
	if cfg.Docstore.User != "" {
		store.SetUser(cfg.Docstore.User)
		logger.Debug("Document store user set", zap.String("user", cfg.Docstore.User))
	}
	return store, closeFn, nil
}

func printJSON(out io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	fmt.Fprintln(out, string(b))
	return nil
}
