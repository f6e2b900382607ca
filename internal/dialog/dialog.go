// Package dialog describes modal dialogs and snackbars independently of the
// toolkit that eventually renders them.
package dialog

import (
	"errors"
	"fmt"
)

// MaxButtons is the largest number of buttons a dialog may carry.
const MaxButtons = 3

var (
	ErrNoButtons      = errors.New("dialog needs at least one button")
	ErrTooManyButtons = fmt.Errorf("dialog supports at most %d buttons", MaxButtons)
	ErrEmptyContent   = errors.New("dialog needs a title or a message")
)

// Button is a labelled action. OnClick may be nil.
type Button struct {
	Label   string
	OnClick func()
}

// Dialog is a modal with a title, message, optional icon and 1-3 buttons.
type Dialog struct {
	Title   string
	Message string
	Icon    string
	Buttons []Button
}

// Validate reports whether the dialog can be presented.
func (d Dialog) Validate() error {
	if d.Title == "" && d.Message == "" {
		return ErrEmptyContent
	}
	if len(d.Buttons) == 0 {
		return ErrNoButtons
	}
	if len(d.Buttons) > MaxButtons {
		return ErrTooManyButtons
	}
	return nil
}

// Click runs the handler of button i, if any.
func (d Dialog) Click(i int) error {
	if i < 0 || i >= len(d.Buttons) {
		return fmt.Errorf("button %d out of range [0, %d)", i, len(d.Buttons))
	}
	if fn := d.Buttons[i].OnClick; fn != nil {
		fn()
	}
	return nil
}

// Notification builds a single-button dialog. onOK runs when the button is pressed.
func Notification(title, message, icon, okLabel string, onOK func()) Dialog {
	return Dialog{
		Title:   title,
		Message: message,
		Icon:    icon,
		Buttons: []Button{{Label: okLabel, OnClick: onOK}},
	}
}

// Confirm builds a positive/negative dialog.
func Confirm(title, message, yesLabel, noLabel string, onYes, onNo func()) Dialog {
	return Dialog{
		Title:   title,
		Message: message,
		Buttons: []Button{
			{Label: yesLabel, OnClick: onYes},
			{Label: noLabel, OnClick: onNo},
		},
	}
}

// Kind classifies a snackbar.
type Kind int

const (
	Info Kind = iota
	Warning
	Error
)

func (k Kind) String() string {
	switch k {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Snackbar is a transient message with an optional action.
type Snackbar struct {
	Message string
	Kind    Kind
	Action  *Button
}

// Presenter renders dialogs and snackbars. Present returns once the dialog
// is on screen; button handlers run when the user picks one.
type Presenter interface {
	Present(d Dialog) error
	Show(s Snackbar) error
}
