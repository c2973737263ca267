package domain

import "strings"

// requirementBaselines estimates how many requirements the processor asks of
// a fresh account, by business type and country. Used only to turn the
// outstanding-requirements count into a rough percentage for dashboards.
var requirementBaselines = map[string]map[string]int{
	"individual": {
		"US": 5,
		"CA": 6,
		"":   6,
	},
	"company": {
		"US": 9,
		"CA": 10,
		"":   11,
	},
}

const defaultBaseline = 8

func baselineFor(businessType, country string) int {
	byCountry, ok := requirementBaselines[businessType]
	if !ok {
		return defaultBaseline
	}
	if n, ok := byCountry[strings.ToUpper(country)]; ok {
		return n
	}
	return byCountry[""]
}

// CompletionPercentage estimates progress from the outstanding requirement
// count, clamped to [0, 100]. An account with both capabilities enabled and
// nothing due is always 100.
func CompletionPercentage(snap Snapshot) int {
	if snap.ChargesEnabled && snap.PayoutsEnabled && len(snap.RequirementsDue) == 0 {
		return 100
	}
	baseline := baselineFor(snap.BusinessType, snap.Country)
	outstanding := len(snap.RequirementsDue)
	if outstanding >= baseline {
		return 0
	}
	pct := 100 * (baseline - outstanding) / baseline
	if pct > 99 {
		// Capabilities still pending; do not show done.
		pct = 99
	}
	return pct
}

// StatusFor derives the lifecycle status from a snapshot and the previously
// stored status. Rejection is terminal; completion requires both capability
// flags.
func StatusFor(prev OnboardingStatus, snap Snapshot) OnboardingStatus {
	if prev == StatusRejected {
		return StatusRejected
	}
	if strings.HasPrefix(snap.DisabledReason, "rejected") {
		return StatusRejected
	}
	if snap.ChargesEnabled && snap.PayoutsEnabled && len(snap.RequirementsDue) == 0 {
		return StatusCompleted
	}
	if prev == StatusNotStarted || prev == "" {
		if len(snap.RequirementsDue) == 0 && !snap.ChargesEnabled && !snap.PayoutsEnabled {
			return StatusNotStarted
		}
	}
	return StatusInProgress
}
