package permission

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/username/appkit/internal/dialog"
	"github.com/username/appkit/internal/resources"
)

// MockDispatcher records platform prompts.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(permission string) error {
	return m.Called(permission).Error(0)
}

// recordingPresenter keeps presented dialogs so tests can press their buttons.
type recordingPresenter struct {
	dialogs []dialog.Dialog
}

func (p *recordingPresenter) Present(d dialog.Dialog) error {
	if err := d.Validate(); err != nil {
		return err
	}
	p.dialogs = append(p.dialogs, d)
	return nil
}

func (p *recordingPresenter) Show(dialog.Snackbar) error { return nil }

func (p *recordingPresenter) last() dialog.Dialog {
	return p.dialogs[len(p.dialogs)-1]
}

type mapStrings map[string]string

func (m mapStrings) String(id string) string {
	if s, ok := m[id]; ok {
		return s
	}
	return id
}

var titles = mapStrings{
	resources.PermissionRequest:    "Permission request",
	resources.PermissionNotGranted: "Permission not granted",
	resources.OK:                   "OK",
}

func TestRequester_ThreeGrantedOneAtATime(t *testing.T) {
	d := new(MockDispatcher)
	d.On("Dispatch", mock.Anything).Return(nil)

	r := New(d, &recordingPresenter{}, titles, nil)
	r.Add("a", "", "")
	r.Add("b", "", "")
	r.Add("c", "", "")

	var finished []Request
	r.OnDone(func(reqs []Request) { finished = reqs })

	assert.Equal(t, Idle, r.State())
	assert.Equal(t, -1, r.Current())
	require.NoError(t, r.Start())

	for i, perm := range []string{"a", "b", "c"} {
		assert.Equal(t, AwaitingUserChoice, r.State())
		assert.Equal(t, i, r.Current())
		d.AssertNumberOfCalls(t, "Dispatch", i+1)
		d.AssertCalled(t, "Dispatch", perm)

		require.NoError(t, r.OnResult(true))
	}

	assert.Equal(t, Done, r.State())
	require.Len(t, finished, 3)
	for _, req := range finished {
		assert.True(t, req.Granted, req.Permission)
	}
	d.AssertNumberOfCalls(t, "Dispatch", 3)
	assert.ErrorIs(t, r.OnResult(true), ErrNotAwaiting)
}

func TestRequester_AddAfterStartIsIgnored(t *testing.T) {
	d := new(MockDispatcher)
	d.On("Dispatch", "a").Return(nil)

	r := New(d, nil, nil, nil)
	r.Add("a", "", "")
	require.NoError(t, r.Start())

	r.Add("b", "", "")
	assert.Equal(t, 1, r.Len())
	assert.ErrorIs(t, r.Start(), ErrAlreadyStarted)
}

func TestRequester_StartEmpty(t *testing.T) {
	r := New(new(MockDispatcher), nil, nil, nil)

	assert.ErrorIs(t, r.Start(), ErrEmptyQueue)
	assert.Equal(t, Idle, r.State())

	// The queue is still open after a failed start.
	r.Add("a", "", "")
	assert.Equal(t, 1, r.Len())
}

func TestRequester_OnResultBeforeStart(t *testing.T) {
	r := New(new(MockDispatcher), nil, nil, nil)
	assert.ErrorIs(t, r.OnResult(true), ErrNotAwaiting)
}

func TestRequester_ExplanationPrecedesDispatch(t *testing.T) {
	d := new(MockDispatcher)
	d.On("Dispatch", Camera).Return(nil)
	p := &recordingPresenter{}

	r := New(d, p, titles, nil)
	require.NoError(t, r.RequestCamera("We need the camera to scan codes", "", true))

	assert.Equal(t, Explaining, r.State())
	d.AssertNotCalled(t, "Dispatch", Camera)

	shown := p.last()
	assert.Equal(t, "Permission request", shown.Title)
	assert.Equal(t, "We need the camera to scan codes", shown.Message)
	assert.Equal(t, explanationIcon, shown.Icon)

	// Results are rejected until the prompt is actually dispatched.
	assert.ErrorIs(t, r.OnResult(true), ErrNotAwaiting)

	require.NoError(t, shown.Click(0))
	assert.Equal(t, AwaitingUserChoice, r.State())
	d.AssertCalled(t, "Dispatch", Camera)

	// A second press of the same button is stale.
	require.NoError(t, shown.Click(0))
	d.AssertNumberOfCalls(t, "Dispatch", 1)
}

func TestRequester_DeclineNotice(t *testing.T) {
	d := new(MockDispatcher)
	d.On("Dispatch", mock.Anything).Return(nil)
	p := &recordingPresenter{}

	r := New(d, p, titles, nil)
	r.Add("a", "", "Some features will be unavailable")
	r.Add("b", "", "")
	require.NoError(t, r.Start())

	require.NoError(t, r.OnResult(false))
	assert.Equal(t, NotifyingDecline, r.State())
	d.AssertNumberOfCalls(t, "Dispatch", 1)

	notice := p.last()
	assert.Equal(t, "Permission not granted", notice.Title)
	assert.Equal(t, declineIcon, notice.Icon)

	require.NoError(t, notice.Click(0))
	assert.Equal(t, AwaitingUserChoice, r.State())
	assert.Equal(t, 1, r.Current())
	d.AssertCalled(t, "Dispatch", "b")

	require.NoError(t, r.OnResult(true))
	reqs := r.Requests()
	assert.False(t, reqs[0].Granted)
	assert.True(t, reqs[1].Granted)
	assert.Equal(t, Done, r.State())
}

func TestRequester_DeniedWithoutNoticeAdvances(t *testing.T) {
	d := new(MockDispatcher)
	d.On("Dispatch", mock.Anything).Return(nil)
	p := &recordingPresenter{}

	r := New(d, p, titles, nil)
	r.Add("a", "", "")
	r.Add("b", "", "")
	require.NoError(t, r.Start())
	require.NoError(t, r.OnResult(false))

	assert.Empty(t, p.dialogs)
	assert.Equal(t, 1, r.Current())
	assert.Equal(t, AwaitingUserChoice, r.State())
}

func TestRequester_DispatchFailure(t *testing.T) {
	boom := errors.New("no activity")
	d := new(MockDispatcher)
	d.On("Dispatch", "a").Return(boom)

	r := New(d, nil, nil, nil)
	r.Add("a", "", "")
	assert.ErrorIs(t, r.Start(), boom)
	assert.Equal(t, Failed, r.State())
	assert.ErrorIs(t, r.Err(), boom)
	assert.ErrorIs(t, r.OnResult(true), ErrNotAwaiting)
	assert.False(t, r.Requests()[0].Granted)

	d2 := new(MockDispatcher)
	d2.On("Dispatch", "a").Return(boom)
	p := &recordingPresenter{}
	r2 := New(d2, p, titles, nil)
	r2.Add("a", "why", "")
	require.NoError(t, r2.Start())
	require.NoError(t, p.last().Click(0))
	assert.ErrorIs(t, r2.Err(), boom)
	assert.Equal(t, Failed, r2.State())
	assert.ErrorIs(t, r2.OnResult(true), ErrNotAwaiting)
}

type failingPresenter struct{ err error }

func (p failingPresenter) Present(dialog.Dialog) error { return p.err }

func (p failingPresenter) Show(dialog.Snackbar) error { return p.err }

func TestRequester_PresentFailure(t *testing.T) {
	boom := errors.New("window gone")
	d := new(MockDispatcher)
	r := New(d, failingPresenter{err: boom}, titles, nil)
	r.Add(Camera, "why", "")

	assert.ErrorIs(t, r.Start(), boom)
	assert.Equal(t, Failed, r.State())
	d.AssertNotCalled(t, "Dispatch", Camera)
}

func TestChecker(t *testing.T) {
	c := StaticChecker{Camera: true}
	assert.True(t, WasGranted(c, Camera))
	assert.False(t, WasNotGranted(c, Camera))
	assert.True(t, WasNotGranted(c, "android.permission.RECORD_AUDIO"))

	assert.False(t, WasGranted(failingChecker{}, Camera))
}

type failingChecker struct{}

func (failingChecker) Granted(string) (bool, error) { return true, errors.New("unknown permission") }
