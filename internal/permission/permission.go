// Package permission walks an ordered queue of platform permission requests,
// keeping exactly one request in flight until its result is delivered.
//
// A Requester is driven by the host's event loop and is not safe for
// concurrent use: Start, OnResult and dialog button handlers must all run on
// the goroutine that owns the consent-delivery callback.
package permission

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/username/appkit/internal/dialog"
	"github.com/username/appkit/internal/metrics"
	"github.com/username/appkit/internal/resources"
)

// Camera is the platform identifier of the camera permission.
const Camera = "android.permission.CAMERA"

const (
	explanationIcon = "ic_question_mark"
	declineIcon     = "ic_one_way"
)

var (
	ErrAlreadyStarted = errors.New("permission requests already started")
	ErrEmptyQueue     = errors.New("no permission requests queued")
	ErrNotAwaiting    = errors.New("no permission request is awaiting a result")
)

// State is the position of the requester in its walk over the queue.
type State int

const (
	Idle State = iota
	Explaining
	AwaitingUserChoice
	NotifyingDecline
	Done
	// Failed means a prompt or dialog could not be shown; Err holds the cause.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Explaining:
		return "explaining"
	case AwaitingUserChoice:
		return "awaiting_user_choice"
	case NotifyingDecline:
		return "notifying_decline"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Request is one queued permission. Empty Explanation or DeclineNotice means
// no message is shown at that step.
type Request struct {
	Permission    string
	Explanation   string
	DeclineNotice string
	Granted       bool
}

// Dispatcher shows the platform consent prompt for a permission. The result
// comes back later through Requester.OnResult.
type Dispatcher interface {
	Dispatch(permission string) error
}

// Requester runs the sequential permission flow.
type Requester struct {
	dispatcher Dispatcher
	presenter  dialog.Presenter
	strings    resources.Strings
	logger     *zap.Logger

	requests []Request
	current  int
	state    State
	started  bool
	err      error
	onDone   func([]Request)
}

// New creates a requester. presenter shows explanation and decline notices;
// strings resolves their titles.
func New(dispatcher Dispatcher, presenter dialog.Presenter, strings resources.Strings, logger *zap.Logger) *Requester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Requester{
		dispatcher: dispatcher,
		presenter:  presenter,
		strings:    strings,
		logger:     logger,
		current:    -1,
		state:      Idle,
	}
}

// OnDone registers a callback invoked once every request has been answered.
func (r *Requester) OnDone(fn func([]Request)) {
	r.onDone = fn
}

// Add queues a permission. Calls after Start are ignored.
func (r *Requester) Add(permission, explanation, declineNotice string) {
	if r.started {
		r.logger.Debug("Ignoring permission added after start",
			zap.String("permission", permission))
		return
	}
	r.requests = append(r.requests, Request{
		Permission:    permission,
		Explanation:   explanation,
		DeclineNotice: declineNotice,
	})
}

// RequestCamera queues the camera permission and optionally starts the flow.
func (r *Requester) RequestCamera(explanation, declineNotice string, startNow bool) error {
	r.Add(Camera, explanation, declineNotice)
	if startNow {
		return r.Start()
	}
	return nil
}

// Start begins walking the queue. Further Add calls are ignored.
func (r *Requester) Start() error {
	if r.started {
		return ErrAlreadyStarted
	}
	if len(r.requests) == 0 {
		return ErrEmptyQueue
	}

	r.started = true
	r.logger.Info("Starting permission requests", zap.Int("count", len(r.requests)))
	return r.advance()
}

// OnResult delivers the user's answer for the request in flight.
func (r *Requester) OnResult(granted bool) error {
	if r.state != AwaitingUserChoice {
		return ErrNotAwaiting
	}

	req := &r.requests[r.current]
	req.Granted = granted
	metrics.ObservePermissionResult(granted)

	r.logger.Info("Permission result",
		zap.String("permission", req.Permission),
		zap.Bool("granted", granted))

	if !granted && req.DeclineNotice != "" && r.presenter != nil {
		r.state = NotifyingDecline
		index := r.current
		d := dialog.Notification(r.text(resources.PermissionNotGranted), req.DeclineNotice, declineIcon,
			r.text(resources.OK), func() { r.acknowledgeDecline(index) })
		return r.present(d)
	}
	return r.advance()
}

// State returns the current state.
func (r *Requester) State() State {
	return r.state
}

// Current returns the index of the request being processed, -1 before Start.
func (r *Requester) Current() int {
	return r.current
}

// Len returns the number of queued requests.
func (r *Requester) Len() int {
	return len(r.requests)
}

// Requests returns a copy of the queue with the granted flags delivered so far.
func (r *Requester) Requests() []Request {
	return append([]Request(nil), r.requests...)
}

// Err returns the last dispatch or presentation failure raised from a dialog handler.
func (r *Requester) Err() error {
	return r.err
}

func (r *Requester) advance() error {
	r.current++
	if r.current >= len(r.requests) {
		r.state = Done
		r.logger.Info("Permission requests finished", zap.Int("count", len(r.requests)))
		if r.onDone != nil {
			r.onDone(r.Requests())
		}
		return nil
	}

	req := r.requests[r.current]
	if req.Explanation != "" && r.presenter != nil {
		r.state = Explaining
		index := r.current
		d := dialog.Notification(r.text(resources.PermissionRequest), req.Explanation, explanationIcon,
			r.text(resources.OK), func() { r.acknowledgeExplanation(index) })
		return r.present(d)
	}
	return r.dispatch()
}

func (r *Requester) dispatch() error {
	req := r.requests[r.current]
	r.logger.Debug("Dispatching permission prompt",
		zap.String("permission", req.Permission),
		zap.Int("index", r.current))

	if err := r.dispatcher.Dispatch(req.Permission); err != nil {
		err = fmt.Errorf("failed to dispatch %s: %w", req.Permission, err)
		r.state = Failed
		r.err = err
		return err
	}
	r.state = AwaitingUserChoice
	return nil
}

func (r *Requester) acknowledgeExplanation(index int) {
	if r.state != Explaining || r.current != index {
		r.logger.Debug("Stale explanation acknowledgement", zap.Int("index", index))
		return
	}
	if err := r.dispatch(); err != nil {
		r.fail(err)
	}
}

func (r *Requester) acknowledgeDecline(index int) {
	if r.state != NotifyingDecline || r.current != index {
		r.logger.Debug("Stale decline acknowledgement", zap.Int("index", index))
		return
	}
	if err := r.advance(); err != nil {
		r.fail(err)
	}
}

func (r *Requester) present(d dialog.Dialog) error {
	if err := r.presenter.Present(d); err != nil {
		err = fmt.Errorf("failed to present dialog: %w", err)
		r.state = Failed
		r.err = err
		return err
	}
	return nil
}

func (r *Requester) fail(err error) {
	r.err = err
	r.logger.Error("Permission flow stalled", zap.Error(err))
}

func (r *Requester) text(id string) string {
	if r.strings == nil {
		return id
	}
	return r.strings.String(id)
}
