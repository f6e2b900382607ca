// Package verify checks form input. A Verifier accumulates field errors
// across several checks and tells the caller whether the whole form passed.
package verify

import (
	"net/mail"
	"sort"

	"go.uber.org/zap"

	"github.com/username/appkit/internal/dialog"
	"github.com/username/appkit/internal/resources"
)

// DefaultMinPasswordLen applies when Password is given a non-positive length.
const DefaultMinPasswordLen = 8

// Verifier is not safe for concurrent use.
type Verifier struct {
	strings   resources.Strings
	presenter dialog.Presenter
	logger    *zap.Logger

	ok     bool
	first  string
	errors map[string]string
}

// New creates a verifier. strings resolves error messages; presenter, when
// not nil, shows warning snackbars for checks that have no field to mark.
func New(strings resources.Strings, presenter dialog.Presenter, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{
		strings:   strings,
		presenter: presenter,
		logger:    logger,
		ok:        true,
		errors:    make(map[string]string),
	}
}

// Email fails when value is not a bare email address.
func (v *Verifier) Email(field, value string) {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || addr.Name != "" {
		v.fieldError(field, value, resources.EmailBadFormat)
	}
}

// Password fails both fields when they differ or are shorter than minLen.
func (v *Verifier) Password(field, confirmField, password, confirm string, minLen int) {
	if minLen <= 0 {
		minLen = DefaultMinPasswordLen
	}
	switch {
	case password != confirm:
		v.fieldError(field, password, resources.PasswordsDoNotMatch)
		v.fieldError(confirmField, confirm, resources.PasswordsDoNotMatch)
	case len([]rune(password)) < minLen:
		v.fieldError(field, password, resources.PasswordIsShort)
		v.fieldError(confirmField, confirm, resources.PasswordIsShort)
	}
}

// NotEmpty fails when value is empty and clears an earlier error otherwise.
func (v *Verifier) NotEmpty(field, value string) {
	if value == "" {
		v.fieldError(field, value, "")
		return
	}
	delete(v.errors, field)
}

// Checked fails when a required checkbox is unchecked.
func (v *Verifier) Checked(field string, checked bool, message string) {
	if checked {
		return
	}
	v.markFailed(field)
	v.errors[field] = message
}

// Selected fails when no option of a group is selected (index < 0).
func (v *Verifier) Selected(index int, message string) {
	v.True(index >= 0, message)
}

// NotEmptyList fails when a list has no items. Only the first failure of a
// round shows message.
func (v *Verifier) NotEmptyList(field string, count int, message string) {
	if count > 0 {
		return
	}
	if v.ok {
		v.markFailed(field)
		v.warn(message)
	}
}

// True fails when cond is false. Only the first failure of a round shows
// message.
func (v *Verifier) True(cond bool, message string) {
	if cond {
		return
	}
	if v.ok {
		v.markFailed("")
		v.warn(message)
	}
}

// ErrorFree reports whether every check since the last call passed, then
// starts a new round.
func (v *Verifier) ErrorFree() bool {
	ok := v.ok
	v.ok = true
	v.first = ""
	v.errors = make(map[string]string)
	return ok
}

// First returns the first field that failed in this round.
func (v *Verifier) First() string {
	return v.first
}

// Error returns the message recorded for field.
func (v *Verifier) Error(field string) (string, bool) {
	msg, ok := v.errors[field]
	return msg, ok
}

// Fields returns the fields with errors, sorted.
func (v *Verifier) Fields() []string {
	fields := make([]string, 0, len(v.errors))
	for f := range v.errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// fieldError records id for field, or the empty-field message when value
// is empty.
func (v *Verifier) fieldError(field, value, id string) {
	if value == "" {
		id = resources.FieldIsEmpty
	}
	v.markFailed(field)
	v.errors[field] = v.text(id)
	v.logger.Debug("Field failed verification",
		zap.String("field", field),
		zap.String("reason", id))
}

func (v *Verifier) markFailed(field string) {
	if v.ok {
		v.ok = false
		v.first = field
	}
}

func (v *Verifier) warn(message string) {
	if message == "" || v.presenter == nil {
		return
	}
	if err := v.presenter.Show(dialog.Snackbar{Message: message, Kind: dialog.Warning}); err != nil {
		v.logger.Warn("Failed to show verification warning", zap.Error(err))
	}
}

func (v *Verifier) text(id string) string {
	if v.strings == nil {
		return id
	}
	return v.strings.String(id)
}
