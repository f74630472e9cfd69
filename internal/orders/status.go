package orders

import "errors"

var ErrInvalidTransition = errors.New("invalid order status transition")

// transitions is the single source of truth for legal status changes.
// Admin, store and customer entry points all delegate here; nothing else
// in the service decides whether a status change is allowed.
var transitions = map[Status][]Status{
	StatusPlaced:    {StatusConfirmed, StatusShipped, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered, StatusCancelled},
	StatusDelivered: {StatusCancelled},
	StatusCancelled: {},
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition is CanTransition as an error, for fail-closed call sites.
func CheckTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return ErrInvalidTransition
	}
	return nil
}

// IsTerminal reports whether no further transitions exist from s.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}
