package intake_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/warranty/internal/intake"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from    intake.State
		event   intake.Event
		want    intake.State
		wantErr bool
	}{
		{intake.Editing, intake.Submit, intake.Submitting, false},
		{intake.Failed, intake.Submit, intake.Submitting, false},
		{intake.Submitting, intake.Submit, intake.Submitting, true},
		{intake.Confirmed, intake.Submit, intake.Confirmed, true},
		{intake.Submitting, intake.Succeed, intake.Confirmed, false},
		{intake.Editing, intake.Succeed, intake.Editing, true},
		{intake.Submitting, intake.Fail, intake.Failed, false},
		{intake.Confirmed, intake.Fail, intake.Confirmed, true},
		{intake.Failed, intake.Retry, intake.Editing, false},
		{intake.Editing, intake.Retry, intake.Editing, true},
		{intake.Confirmed, intake.Reset, intake.Editing, false},
		{intake.Failed, intake.Reset, intake.Editing, false},
		{intake.Editing, intake.Reset, intake.Editing, false},
		{intake.Submitting, intake.Reset, intake.Submitting, true},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"/"+tt.event.String(), func(t *testing.T) {
			got, err := intake.Transition(tt.from, tt.event)
			if tt.wantErr {
				if !errors.Is(err, intake.ErrInvalidTransition) {
					t.Errorf("expected ErrInvalidTransition, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("state: got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMachine(t *testing.T) {
	m := intake.NewMachine()
	if m.State() != intake.Editing {
		t.Fatalf("initial state: got %s", m.State())
	}

	var changes []intake.Change
	m.Subscribe(func(c intake.Change) { changes = append(changes, c) })

	for _, e := range []intake.Event{intake.Submit, intake.Fail, intake.Submit, intake.Succeed} {
		if err := m.Fire(e); err != nil {
			t.Fatalf("fire %s: %v", e, err)
		}
	}

	if m.State() != intake.Confirmed {
		t.Errorf("state: got %s, want confirmed", m.State())
	}
	if len(changes) != 4 {
		t.Fatalf("changes: got %d, want 4", len(changes))
	}
	if changes[1] != (intake.Change{From: intake.Submitting, To: intake.Failed, Event: intake.Fail}) {
		t.Errorf("second change: got %+v", changes[1])
	}

	if err := m.Fire(intake.Succeed); err == nil {
		t.Error("succeed on confirmed should fail")
	}
	if len(changes) != 4 {
		t.Error("rejected events should not notify")
	}
}

func TestStateStrings(t *testing.T) {
	if intake.Submitting.String() != "submitting" || intake.State(9).String() != "state(9)" {
		t.Error("unexpected state names")
	}
	if intake.Retry.String() != "retry" || intake.Event(9).String() != "event(9)" {
		t.Error("unexpected event names")
	}
}
