package domain

var legalTransitions = map[SubscriptionStatus][]SubscriptionStatus{
	StatusIncomplete: {
		StatusActive,
		StatusIncompleteExpired,
	},
	StatusActive: {
		StatusPastDue,
		StatusCanceled,
		StatusCanceledAtPeriodEnd,
	},
	StatusPastDue: {
		StatusActive,
		StatusCanceled,
	},
	StatusCanceledAtPeriodEnd: {
		StatusActive,
		StatusCanceled,
	},
	// Terminal states.
	StatusCanceled:          nil,
	StatusIncompleteExpired: nil,
}

// IsTerminal reports whether a subscription can never leave the given status.
func IsTerminal(s SubscriptionStatus) bool {
	next, ok := legalTransitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether moving from to to is legal. Re-applying the
// current status is always allowed so replayed events stay idempotent.
func CanTransition(from, to SubscriptionStatus) bool {
	if from == to {
		return true
	}
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
