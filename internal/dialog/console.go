package dialog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Console presents dialogs on a text terminal. Presenting a dialog blocks
// until a button is chosen on the input, then runs its handler.
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	logger *zap.Logger
}

// NewConsole creates a console presenter.
func NewConsole(in io.Reader, out io.Writer, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger,
	}
}

func (c *Console) Present(d Dialog) error {
	if err := d.Validate(); err != nil {
		return err
	}

	if d.Title != "" {
		fmt.Fprintf(c.out, "== %s ==\n", d.Title)
	}
	if d.Message != "" {
		fmt.Fprintln(c.out, d.Message)
	}
	for i, b := range d.Buttons {
		fmt.Fprintf(c.out, "  [%d] %s\n", i+1, b.Label)
	}

	choice, err := c.readChoice(len(d.Buttons))
	if err != nil {
		return err
	}

	c.logger.Debug("Dialog answered",
		zap.String("title", d.Title),
		zap.String("button", d.Buttons[choice].Label))
	return d.Click(choice)
}

// readChoice reads a 1-based button number. A single-button dialog accepts an empty line.
func (c *Console) readChoice(n int) (int, error) {
	for {
		fmt.Fprint(c.out, "> ")
		line, err := c.in.ReadString('\n')
		line = strings.TrimSpace(line)

		if line == "" && n == 1 {
			return 0, nil
		}
		if k, convErr := strconv.Atoi(line); convErr == nil && k >= 1 && k <= n {
			return k - 1, nil
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read choice: %w", err)
		}
		fmt.Fprintf(c.out, "Enter a number between 1 and %d\n", n)
	}
}

func (c *Console) Show(s Snackbar) error {
	fmt.Fprintf(c.out, "[%s] %s\n", s.Kind, s.Message)
	if s.Action != nil && s.Action.OnClick != nil {
		fmt.Fprintf(c.out, "  (%s)\n", s.Action.Label)
	}
	return nil
}
