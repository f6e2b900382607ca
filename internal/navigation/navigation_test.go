package navigation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHost struct {
	txs  []Transaction
	fail map[string]error
}

func (h *recordingHost) Commit(tx Transaction) error {
	if err := h.fail[tx.Tag]; err != nil {
		return err
	}
	h.txs = append(h.txs, tx)
	return nil
}

func TestNavigator_PushAndRestore(t *testing.T) {
	host := &recordingHost{}
	session := &Session{}
	n := New(host, session, nil)

	require.NoError(t, n.Replace("home", Options{}))
	require.NoError(t, n.Add("list", Options{Direction: FromLeft}))
	require.NoError(t, n.Replace("detail", Options{ActivityCode: Code(7)}))

	assert.Equal(t, 3, n.Depth())
	assert.Equal(t, "detail", n.Active())
	assert.Equal(t, "detail", session.LastTag)
	assert.True(t, n.InBackStack("list"))
	assert.Equal(t, 7, host.txs[2].Args.ActivityCode())
	assert.Equal(t, FromLeft, host.txs[1].Direction)
	assert.Equal(t, OpAdd, host.txs[1].Op)

	ok, err := n.Restore("home")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"home"}, n.Stack())
	assert.Equal(t, "home", session.LastTag)
	assert.Equal(t, OpPopTo, host.txs[3].Op)

	ok, err = n.Restore("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, host.txs, 4)
}

func TestNavigator_Remove(t *testing.T) {
	host := &recordingHost{}
	n := New(host, nil, nil)
	require.NoError(t, n.Replace("a", Options{}))
	require.NoError(t, n.Replace("b", Options{}))
	require.NoError(t, n.Replace("c", Options{}))

	ok, err := n.Remove("b", FromLeft)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "c"}, n.Stack())

	ok, err = n.Remove("b", FromRight)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = n.RemoveActive(FromRight)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", n.Active())
	assert.Equal(t, "a", n.Session().LastTag)

	_, _ = n.RemoveActive(FromRight)
	ok, err = n.RemoveActive(FromRight)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", n.Active())
	assert.Equal(t, "", n.Session().LastTag)
}

func TestNavigator_DeferredCommit(t *testing.T) {
	host := &recordingHost{fail: map[string]error{}}
	n := New(host, nil, nil)

	require.NoError(t, n.Replace("a", Options{Defer: true}))
	require.NoError(t, n.Add("b", Options{Defer: true}))
	assert.Equal(t, 0, n.Depth())
	assert.Equal(t, 2, n.Pending())
	assert.Empty(t, host.txs)

	host.fail["b"] = errors.New("container gone")
	err := n.Commit()
	require.Error(t, err)
	assert.Equal(t, 1, n.Depth())
	assert.Equal(t, 1, n.Pending())

	delete(host.fail, "b")
	require.NoError(t, n.Commit())
	assert.Equal(t, []string{"a", "b"}, n.Stack())
	assert.Equal(t, 0, n.Pending())
}

func TestNavigator_HostFailureLeavesStack(t *testing.T) {
	host := &recordingHost{fail: map[string]error{"x": errors.New("boom")}}
	n := New(host, nil, nil)

	err := n.Replace("x", Options{})
	require.Error(t, err)
	assert.Equal(t, 0, n.Depth())
	assert.ErrorIs(t, n.Replace("", Options{}), ErrEmptyTag)
}

func TestNavigator_ArgsAreCopied(t *testing.T) {
	host := &recordingHost{}
	n := New(host, nil, nil)
	args := Bundle{}.PutString("user", "eva")

	require.NoError(t, n.Replace("profile", Options{Args: args, ActivityCode: Code(3)}))
	_, hasCode := args[ActivityCodeKey]
	assert.False(t, hasCode)
	assert.Equal(t, "eva", host.txs[0].Args.String("user"))
}

func TestBundle(t *testing.T) {
	var b Bundle
	assert.Equal(t, "", b.String("missing"))
	assert.Equal(t, 0, b.Int("missing"))
	assert.False(t, b.Bool("missing"))

	b = b.PutString("s", "v").PutInt("i", 4).PutBool("b", true).Put("l", int64(9))
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"String", b.String("s"), "v"},
		{"Int", b.Int("i"), 4},
		{"Int from int64", b.Int("l"), 9},
		{"Bool", b.Bool("b"), true},
		{"String of int", b.String("i"), ""},
		{"ActivityCode default", b.ActivityCode(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}
