// Package orders renders the delivery-status state machine owned by the
// backend. Transition legality is enforced server-side; this side only knows
// the display order and which states end the line.
package orders

// Delivery statuses in progression order.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Progression is the linear path a healthy order follows. Cancelled sits
// outside it, reachable from any non-terminal state.
var Progression = []string{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered}

// ProgressIndex returns the position of status on the linear progress bar,
// or -1 for cancelled/unknown statuses.
func ProgressIndex(status string) int {
	for i, s := range Progression {
		if s == status {
			return i
		}
	}
	return -1
}

// IsTerminal reports whether the status-change control must be disabled.
func IsTerminal(status string) bool {
	return status == StatusDelivered || status == StatusCancelled
}

// IsValid reports whether status is one the backend can emit.
func IsValid(status string) bool {
	return status == StatusCancelled || ProgressIndex(status) >= 0
}

// Label returns the customer-facing label for a status.
func Label(status string) string {
	switch status {
	case StatusPending:
		return "Pending"
	case StatusConfirmed:
		return "Confirmed"
	case StatusProcessing:
		return "Processing"
	case StatusShipped:
		return "Shipped"
	case StatusDelivered:
		return "Delivered"
	case StatusCancelled:
		return "Cancelled"
	default:
		return status
	}
}
