package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/appkit/internal/dialog"
	"github.com/username/appkit/internal/resources"
)

type snackbarRecorder struct {
	shown []dialog.Snackbar
}

func (r *snackbarRecorder) Present(dialog.Dialog) error { return nil }

func (r *snackbarRecorder) Show(s dialog.Snackbar) error {
	r.shown = append(r.shown, s)
	return nil
}

func newVerifier(t *testing.T) (*Verifier, *snackbarRecorder) {
	t.Helper()
	res, err := resources.New("en", nil)
	require.NoError(t, err)
	rec := &snackbarRecorder{}
	return New(res, rec, nil), rec
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
		msg   string
	}{
		{"Plain", "eva@example.com", true, ""},
		{"Subdomain", "a.b@mail.example.cz", true, ""},
		{"Missing at", "eva.example.com", false, "Email address has a bad format"},
		{"Display name", "Eva <eva@example.com>", false, "Email address has a bad format"},
		{"Empty", "", false, "This field must not be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := newVerifier(t)
			v.Email("email", tt.value)
			msg, _ := v.Error("email")
			assert.Equal(t, tt.msg, msg)
			assert.Equal(t, tt.valid, v.ErrorFree())
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		pw       string
		confirm  string
		minLen   int
		valid    bool
		wantPw   string
		wantConf string
	}{
		{"Valid default length", "secret123", "secret123", 0, true, "", ""},
		{"Mismatch", "secret123", "secret124", 0, false, "Passwords do not match", "Passwords do not match"},
		{"Short", "abc", "abc", 0, false, "Password is too short", "Password is too short"},
		{"Custom length", "abc", "abc", 3, true, "", ""},
		{"Empty confirm", "secret123", "", 0, false, "Passwords do not match", "This field must not be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := newVerifier(t)
			v.Password("pw", "confirm", tt.pw, tt.confirm, tt.minLen)
			gotPw, _ := v.Error("pw")
			gotConf, _ := v.Error("confirm")
			assert.Equal(t, tt.wantPw, gotPw)
			assert.Equal(t, tt.wantConf, gotConf)
			assert.Equal(t, tt.valid, v.ErrorFree())
		})
	}
}

func TestVerifier_RoundAccumulatesAndResets(t *testing.T) {
	v, rec := newVerifier(t)

	v.NotEmpty("name", "Eva")
	v.NotEmpty("city", "")
	v.Email("email", "nope")
	v.Checked("terms", false, "Accept the terms")
	v.True(false, "Pick a date")

	assert.Equal(t, "city", v.First())
	assert.Equal(t, []string{"city", "email", "terms"}, v.Fields())
	msg, ok := v.Error("terms")
	assert.True(t, ok)
	assert.Equal(t, "Accept the terms", msg)
	// The round already failed, so True shows nothing.
	assert.Empty(t, rec.shown)

	assert.False(t, v.ErrorFree())
	assert.Empty(t, v.Fields())
	assert.Equal(t, "", v.First())
	assert.True(t, v.ErrorFree())
}

func TestVerifier_NotEmptyClearsEarlierError(t *testing.T) {
	v, _ := newVerifier(t)
	v.NotEmpty("name", "")
	v.NotEmpty("name", "Eva")

	_, ok := v.Error("name")
	assert.False(t, ok)
	// The round still failed.
	assert.False(t, v.ErrorFree())
}

func TestVerifier_Warnings(t *testing.T) {
	v, rec := newVerifier(t)

	v.NotEmptyList("items", 0, "Add at least one item")
	v.True(false, "second")
	v.Selected(-1, "third")
	require.Len(t, rec.shown, 1)
	assert.Equal(t, "Add at least one item", rec.shown[0].Message)
	assert.Equal(t, dialog.Warning, rec.shown[0].Kind)
	assert.Equal(t, "items", v.First())
	assert.False(t, v.ErrorFree())

	v.Selected(2, "fine")
	v.NotEmptyList("items", 3, "fine")
	v.True(true, "fine")
	assert.True(t, v.ErrorFree())

	v.True(false, "")
	assert.Len(t, rec.shown, 1)
	assert.False(t, v.ErrorFree())
}

func TestVerifier_NilCollaborators(t *testing.T) {
	v := New(nil, nil, nil)
	v.Email("email", "bad")
	v.True(false, "ignored")
	msg, _ := v.Error("email")
	assert.Equal(t, resources.EmailBadFormat, msg)
	assert.False(t, v.ErrorFree())
}
