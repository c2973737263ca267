package domain

// legalTransitions is the enforced transition table. Any move not listed
// here is rejected so a replayed or out-of-order event can never walk a
// record backward.
var legalTransitions = map[PaymentStatus][]PaymentStatus{
	StatusRequiresPaymentMethod: {StatusRequiresConfirmation, StatusProcessing, StatusFailed, StatusCanceled},
	StatusRequiresConfirmation:  {StatusProcessing, StatusFailed, StatusCanceled},
	StatusProcessing:            {StatusSucceeded, StatusFailed, StatusCanceled},
	StatusSucceeded:             nil,
	StatusFailed:                nil,
	StatusCanceled:              nil,
}

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(status PaymentStatus) bool {
	switch status {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether moving from one status to another is legal.
// A same-status move is allowed: re-running a crashed attempt re-derives the
// transition from current record state, which may already be in place.
func CanTransition(from, to PaymentStatus) bool {
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
