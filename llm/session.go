package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/locallm/errors"
	"github.com/kbukum/locallm/provider"
)

// State is a position in the dispatch state machine.
type State int

const (
	StateIdle State = iota
	StateSent
	StateStreaming
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSent:
		return "sent"
	case StateStreaming:
		return "streaming"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session dispatches decoded events of one call to callbacks and accumulates
// the generated text.
//
// The first event moves Sent to Streaming and fires OnStartEmit exactly once,
// before any token is delivered. A backend that sends no start marker gets one
// synthesized with nil data.
type Session struct {
	cb      Callbacks
	state   State
	buf     strings.Builder
	result  *InferenceResult
	tokens  int
	observe TokenObserver
}

// NewSession returns an idle session.
func NewSession(cb Callbacks) *Session {
	return &Session{cb: cb}
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Tokens returns the number of token events delivered.
func (s *Session) Tokens() int { return s.tokens }

// Sent records that the request was dispatched.
func (s *Session) Sent() error {
	if s.state != StateIdle {
		return errors.New(errors.ErrCodeState, fmt.Sprintf("session already %s", s.state))
	}
	s.state = StateSent
	return nil
}

// Handle applies one decoded event.
func (s *Session) Handle(ev StreamEvent) error {
	switch s.state {
	case StateSent:
		s.state = StateStreaming
		var data any
		if ev.Kind == EventStart {
			data = ev.Data
		}
		if s.cb.OnStartEmit != nil {
			s.cb.OnStartEmit(data)
		}
	case StateStreaming:
	default:
		return errors.New(errors.ErrCodeState, fmt.Sprintf("event %s in state %s", ev.Kind, s.state))
	}

	switch ev.Kind {
	case EventToken:
		s.buf.WriteString(ev.Token)
		s.tokens++
		if s.observe != nil {
			s.observe(1)
		}
		if s.cb.OnToken != nil {
			s.cb.OnToken(ev.Token)
		}
	case EventResult:
		s.result = ev.Result
	}
	return nil
}

// Fail moves the session to Failed.
func (s *Session) Fail() {
	s.state = StateFailed
}

// Finish completes the session and returns the call's result: the terminal
// payload text when it carries one, otherwise the accumulated tokens.
func (s *Session) Finish() *InferenceResult {
	s.state = StateComplete
	res := &InferenceResult{Text: s.buf.String(), Stats: map[string]any{}}
	if s.result != nil {
		if s.result.Text != "" {
			res.Text = s.result.Text
		}
		if s.result.Stats != nil {
			res.Stats = s.result.Stats
		}
	}
	return res
}

// Consume drives it to the end through a new session and closes it on every
// exit path.
func Consume(ctx context.Context, it provider.Iterator[StreamEvent], cb Callbacks) (*InferenceResult, error) {
	defer func() { _ = it.Close() }()

	s := NewSession(cb)
	s.observe = tokenObserverFrom(ctx)
	if err := s.Sent(); err != nil {
		return nil, err
	}
	for {
		ev, ok, err := it.Next(ctx)
		if err != nil {
			s.Fail()
			return nil, err
		}
		if !ok {
			return s.Finish(), nil
		}
		if err := s.Handle(ev); err != nil {
			s.Fail()
			return nil, err
		}
	}
}
