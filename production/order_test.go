package production_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/warp/fulfillment-engine/production"
)

func TestOrder_LegalTransitions(t *testing.T) {
	cases := []struct {
		from, to production.Status
		ok       bool
	}{
		{production.StatusPending, production.StatusInProgress, true},
		{production.StatusPending, production.StatusCancelled, true},
		{production.StatusInProgress, production.StatusCompleted, true},
		{production.StatusPending, production.StatusCompleted, false},
		{production.StatusInProgress, production.StatusCancelled, false},
		{production.StatusInProgress, production.StatusPending, false},
		{production.StatusCompleted, production.StatusPending, false},
		{production.StatusCompleted, production.StatusInProgress, false},
		{production.StatusCancelled, production.StatusInProgress, false},
		{production.StatusCancelled, production.StatusPending, false},
	}

	for _, c := range cases {
		o := &production.Order{Status: c.from}
		if got := o.CanTransitionTo(c.to); got != c.ok {
			t.Errorf("%s -> %s: CanTransitionTo = %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestOrder_TransitionTo_StampsTimestamps(t *testing.T) {
	// GIVEN: A fresh pending order
	// WHEN: Walking PENDING -> IN_PROGRESS -> COMPLETED
	// THEN: StartedAt and CompletedAt are stamped at their transitions

	o := production.NewOrder(1, 5, "", nil)
	if o.StartedAt != nil || o.CompletedAt != nil {
		t.Fatal("timestamps must start nil")
	}

	if err := o.TransitionTo(production.StatusInProgress); err != nil {
		t.Fatalf("start: %v", err)
	}
	if o.StartedAt == nil {
		t.Error("StartedAt not stamped on start")
	}
	if o.CompletedAt != nil {
		t.Error("CompletedAt stamped too early")
	}

	if err := o.TransitionTo(production.StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if o.CompletedAt == nil {
		t.Error("CompletedAt not stamped on completion")
	}
}

func TestOrder_IllegalTransitionError(t *testing.T) {
	// GIVEN: A completed order
	// WHEN: Trying to move it anywhere
	// THEN: The error names both states and unwraps to ErrInvalidTransition

	o := &production.Order{Status: production.StatusCompleted}
	err := o.TransitionTo(production.StatusInProgress)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, production.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	var transErr *production.InvalidTransitionError
	if !errors.As(err, &transErr) {
		t.Fatalf("expected InvalidTransitionError, got %T", err)
	}
	if transErr.From != production.StatusCompleted || transErr.To != production.StatusInProgress {
		t.Errorf("error states = %s -> %s", transErr.From, transErr.To)
	}
	if o.Status != production.StatusCompleted {
		t.Error("failed transition must not mutate the order")
	}
}

func TestOrder_Deletable(t *testing.T) {
	deletable := map[production.Status]bool{
		production.StatusPending:    true,
		production.StatusCancelled:  true,
		production.StatusInProgress: false,
		production.StatusCompleted:  false,
	}
	for status, want := range deletable {
		o := &production.Order{Status: status}
		if o.Deletable() != want {
			t.Errorf("%s: Deletable = %v, want %v", status, !want, want)
		}
	}
}

func TestOrder_AppendCancellationNote(t *testing.T) {
	o := production.NewOrder(1, 2, "rush job", nil)
	o.AppendCancellationNote("client withdrew")

	if !strings.Contains(o.Notes, "rush job") {
		t.Error("original notes lost")
	}
	if !strings.Contains(o.Notes, "cancelled: client withdrew") {
		t.Errorf("cancellation note missing, notes = %q", o.Notes)
	}

	// Empty note leaves notes untouched.
	before := o.Notes
	o.AppendCancellationNote("")
	if o.Notes != before {
		t.Error("empty cancellation note must be a no-op")
	}
}

func TestNewOrderNumber_Format(t *testing.T) {
	n := production.NewOrderNumber()
	if !strings.HasPrefix(n, "ORD-") {
		t.Errorf("order number %q missing ORD- prefix", n)
	}
	// ORD-YYYYMMDD-XXXXXX
	parts := strings.Split(n, "-")
	if len(parts) != 3 || len(parts[1]) != 8 || len(parts[2]) != 6 {
		t.Errorf("order number %q not in ORD-YYYYMMDD-XXXXXX form", n)
	}
}

func TestStatus_Terminal(t *testing.T) {
	if production.StatusPending.Terminal() || production.StatusInProgress.Terminal() {
		t.Error("active statuses must not be terminal")
	}
	if !production.StatusCompleted.Terminal() || !production.StatusCancelled.Terminal() {
		t.Error("COMPLETED and CANCELLED must be terminal")
	}
}
