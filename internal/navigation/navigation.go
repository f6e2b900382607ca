// Package navigation keeps a tagged back stack of screens and forwards every
// change to a Host that renders it.
package navigation

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var ErrEmptyTag = errors.New("screen tag is empty")

type Op int

const (
	OpReplace Op = iota
	OpAdd
	OpRemove
	// OpPopTo pops every screen above Tag.
	OpPopTo
)

func (o Op) String() string {
	switch o {
	case OpReplace:
		return "replace"
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	case OpPopTo:
		return "pop_to"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Direction selects the transition animation.
type Direction int

const (
	FromRight Direction = iota
	FromLeft
)

// Transaction is a single change handed to the Host.
type Transaction struct {
	Op        Op
	Tag       string
	Direction Direction
	Args      Bundle
}

// Host renders transactions. A typical host is a UI container; tests record
// them.
type Host interface {
	Commit(tx Transaction) error
}

// Session holds navigation state that outlives a single Navigator, such as
// the last screen shown.
type Session struct {
	LastTag string
}

// Options tune Replace and Add.
type Options struct {
	Direction Direction
	Args      Bundle
	// ActivityCode, when set, is stored in Args under ActivityCodeKey.
	ActivityCode *int
	// Defer queues the transaction until Commit is called.
	Defer bool
}

// Code is a helper for Options.ActivityCode.
func Code(c int) *int {
	return &c
}

// Navigator is not safe for concurrent use.
type Navigator struct {
	host    Host
	session *Session
	stack   []string
	pending []Transaction
	logger  *zap.Logger
}

// New creates a navigator. A nil session is replaced with a fresh one.
func New(host Host, session *Session, logger *zap.Logger) *Navigator {
	if session == nil {
		session = &Session{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Navigator{host: host, session: session, logger: logger}
}

func (n *Navigator) Session() *Session {
	return n.session
}

// Replace swaps the visible screen for tag and records it on the back stack.
func (n *Navigator) Replace(tag string, opts Options) error {
	return n.push(OpReplace, tag, opts)
}

// Add shows tag on top of the visible screen and records it on the back stack.
func (n *Navigator) Add(tag string, opts Options) error {
	return n.push(OpAdd, tag, opts)
}

func (n *Navigator) push(op Op, tag string, opts Options) error {
	if tag == "" {
		return ErrEmptyTag
	}
	args := opts.Args.clone()
	if opts.ActivityCode != nil {
		args = args.PutInt(ActivityCodeKey, *opts.ActivityCode)
	}
	tx := Transaction{Op: op, Tag: tag, Direction: opts.Direction, Args: args}
	if opts.Defer {
		n.pending = append(n.pending, tx)
		return nil
	}
	return n.apply(tx)
}

// Commit applies deferred transactions in order. It stops at the first
// failure; transactions after it stay queued.
func (n *Navigator) Commit() error {
	for len(n.pending) > 0 {
		if err := n.apply(n.pending[0]); err != nil {
			return err
		}
		n.pending = n.pending[1:]
	}
	return nil
}

// Pending returns the number of deferred transactions.
func (n *Navigator) Pending() int {
	return len(n.pending)
}

// Remove takes tag off the back stack. It reports whether tag was present.
func (n *Navigator) Remove(tag string, dir Direction) (bool, error) {
	i := n.index(tag)
	if i < 0 {
		return false, nil
	}
	if err := n.apply(Transaction{Op: OpRemove, Tag: tag, Direction: dir}); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveActive removes the top screen. It reports whether there was one.
func (n *Navigator) RemoveActive(dir Direction) (bool, error) {
	if len(n.stack) == 0 {
		return false, nil
	}
	return n.Remove(n.Active(), dir)
}

// Restore pops every screen above the most recent tag entry so that tag is
// visible again. It reports false, and changes nothing, when tag is not on
// the back stack.
func (n *Navigator) Restore(tag string) (bool, error) {
	if n.index(tag) < 0 {
		return false, nil
	}
	if err := n.apply(Transaction{Op: OpPopTo, Tag: tag}); err != nil {
		return false, err
	}
	return true, nil
}

// InBackStack reports whether tag is on the back stack.
func (n *Navigator) InBackStack(tag string) bool {
	return n.index(tag) >= 0
}

// Active returns the top tag, or "" when the stack is empty.
func (n *Navigator) Active() string {
	if len(n.stack) == 0 {
		return ""
	}
	return n.stack[len(n.stack)-1]
}

func (n *Navigator) Depth() int {
	return len(n.stack)
}

// Stack returns a copy of the back stack, bottom first.
func (n *Navigator) Stack() []string {
	return append([]string(nil), n.stack...)
}

func (n *Navigator) index(tag string) int {
	for i := len(n.stack) - 1; i >= 0; i-- {
		if n.stack[i] == tag {
			return i
		}
	}
	return -1
}

func (n *Navigator) apply(tx Transaction) error {
	if n.host != nil {
		if err := n.host.Commit(tx); err != nil {
			n.logger.Warn("Navigation transaction failed",
				zap.String("op", tx.Op.String()),
				zap.String("tag", tx.Tag),
				zap.Error(err))
			return fmt.Errorf("%s %q: %w", tx.Op, tx.Tag, err)
		}
	}

	switch tx.Op {
	case OpReplace, OpAdd:
		n.stack = append(n.stack, tx.Tag)
	case OpRemove:
		if i := n.index(tx.Tag); i >= 0 {
			n.stack = append(n.stack[:i], n.stack[i+1:]...)
		}
	case OpPopTo:
		if i := n.index(tx.Tag); i >= 0 {
			n.stack = n.stack[:i+1]
		}
	}
	n.session.LastTag = n.Active()

	n.logger.Debug("Navigation transaction committed",
		zap.String("op", tx.Op.String()),
		zap.String("tag", tx.Tag),
		zap.Int("depth", len(n.stack)))
	return nil
}
