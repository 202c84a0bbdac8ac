package orders_test

import (
	"testing"

	"mokolo/internal/orders"
)

func TestProgressIndexFollowsPipeline(t *testing.T) {
	for i, s := range orders.Progression {
		if got := orders.ProgressIndex(s); got != i {
			t.Fatalf("%s: want index %d, got %d", s, i, got)
		}
	}
	if orders.ProgressIndex(orders.StatusCancelled) != -1 {
		t.Fatal("cancelled should not sit on the progress bar")
	}
	if orders.ProgressIndex("returned") != -1 {
		t.Fatal("unknown status should not sit on the progress bar")
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []string{orders.StatusDelivered, orders.StatusCancelled} {
		if !orders.IsTerminal(s) {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []string{orders.StatusPending, orders.StatusConfirmed, orders.StatusProcessing, orders.StatusShipped} {
		if orders.IsTerminal(s) {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}

func TestIsValid(t *testing.T) {
	if !orders.IsValid(orders.StatusCancelled) {
		t.Fatal("cancelled is a valid status")
	}
	if orders.IsValid("lost") {
		t.Fatal("lost is not a status the backend emits")
	}
}

func TestLabelFallsBackToRawStatus(t *testing.T) {
	if orders.Label(orders.StatusShipped) != "Shipped" {
		t.Fatal("known status should have a friendly label")
	}
	if orders.Label("weird") != "weird" {
		t.Fatal("unknown status should pass through")
	}
}
