package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/username/appkit/internal/prefs"
)

const passphraseEnv = "APPKIT_PREFS_PASSPHRASE"

func prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Read and write the typed preference store",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print a preference value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openPrefs(cmd)
			if err != nil {
				return err
			}
			v, ok := store.All()[args[0]]
			if !ok {
				return fmt.Errorf("preference %q is not set", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	})

	var kind string
	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a preference value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openPrefs(cmd)
			if err != nil {
				return err
			}
			return setPref(store, kind, args[0], args[1])
		},
	}
	setCmd.Flags().StringVarP(&kind, "type", "t", "string", "Value type: string, int, long or bool")
	cmd.AddCommand(setCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "set-secret <key>",
		Short: "Store a string read from the terminal without echo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openPrefs(cmd)
			if err != nil {
				return err
			}
			secret, err := readSecret(cmd, "Value: ")
			if err != nil {
				return err
			}
			return store.SetString(args[0], secret)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openPrefs(cmd)
			if err != nil {
				return err
			}
			all := store.All()
			for _, k := range store.Keys() {
				if v, ok := all[k]; ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%T\t%v\n", k, v, v)
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <key>",
		Short: "Delete a preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openPrefs(cmd)
			if err != nil {
				return err
			}
			return store.Remove(args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openPrefs(cmd)
			if err != nil {
				return err
			}
			return store.Clear()
		},
	})

	return cmd
}

func setPref(store *prefs.Store, kind, key, raw string) error {
	switch kind {
	case "string":
		return store.SetString(key, raw)
	case "int":
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return fmt.Errorf("value %q is not a 32-bit integer", raw)
		}
		return store.SetInt(key, int32(n))
	case "long":
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("value %q is not a 64-bit integer", raw)
		}
		return store.SetLong(key, n)
	case "bool":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("value %q is not a boolean", raw)
		}
		return store.SetBool(key, b)
	default:
		return fmt.Errorf("unknown type %q: use string, int, long or bool", kind)
	}
}

func openPrefs(cmd *cobra.Command) (*prefs.Store, error) {
	opts := []prefs.Option{
		prefs.WithLogger(logger),
		prefs.WithAutoCommit(cfg.Prefs.AutoCommit),
	}

	switch cfg.Prefs.Cipher {
	case "keyring":
		c, err := prefs.NewKeyringCipher(cfg.Prefs.KeyringService, cfg.Prefs.KeyringUser)
		if err != nil {
			return nil, err
		}
		opts = append(opts, prefs.WithCipher(c))
	case "passphrase":
		pass := os.Getenv(passphraseEnv)
		if pass == "" {
			var err error
			if pass, err = readSecret(cmd, "Passphrase: "); err != nil {
				return nil, err
			}
		}
		c, err := prefs.NewPassphraseCipher(pass)
		if err != nil {
			return nil, err
		}
		opts = append(opts, prefs.WithCipher(c))
	}

	path := cfg.Prefs.GetPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create preferences directory: %w", err)
	}
	return prefs.Open(path, opts...)
}

// readSecret reads a line without echo from a terminal, or a plain line
// from any other input.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty secret")
	}
	return line, nil
}
