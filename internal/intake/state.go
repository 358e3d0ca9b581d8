package intake

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidTransition is returned when an event does not apply to the current state.
var ErrInvalidTransition = errors.New("invalid transition")

// State is the form's interactive state.
type State int

const (
	Editing State = iota
	Submitting
	Confirmed
	Failed
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Event drives a State change.
type Event int

const (
	Submit Event = iota
	Succeed
	Fail
	Retry
	Reset
)

func (e Event) String() string {
	switch e {
	case Submit:
		return "submit"
	case Succeed:
		return "succeed"
	case Fail:
		return "fail"
	case Retry:
		return "retry"
	case Reset:
		return "reset"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Transition returns the state that follows s on e.
func Transition(s State, e Event) (State, error) {
	switch {
	case e == Submit && (s == Editing || s == Failed):
		return Submitting, nil
	case e == Succeed && s == Submitting:
		return Confirmed, nil
	case e == Fail && s == Submitting:
		return Failed, nil
	case e == Retry && s == Failed:
		return Editing, nil
	case e == Reset && s != Submitting:
		return Editing, nil
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
}

// Change describes one applied transition.
type Change struct {
	From  State
	To    State
	Event Event
}

// Machine holds the current State and notifies subscribers of every change.
// Subscribers run synchronously in registration order.
type Machine struct {
	mu    sync.Mutex
	state State
	subs  []func(Change)
}

// NewMachine returns a Machine in the Editing state.
func NewMachine() *Machine {
	return &Machine{state: Editing}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn to receive every subsequent change.
func (m *Machine) Subscribe(fn func(Change)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// Fire applies e. The state is left unchanged on error.
func (m *Machine) Fire(e Event) error {
	m.mu.Lock()
	next, err := Transition(m.state, e)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	change := Change{From: m.state, To: next, Event: e}
	m.state = next
	subs := append([]func(Change){}, m.subs...)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
	return nil
}
