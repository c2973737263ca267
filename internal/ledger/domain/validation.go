package domain

// ValidateSplit ensures the fee arithmetic invariant holds before an entry
// is written: amount = landlord_receives + platform_fee + processor_fee.
// A failed split is never silently corrected.
func ValidateSplit(entry LedgerEntry) error {
	if entry.Amount <= 0 {
		return ErrInvalidAmount
	}
	if entry.PlatformFee < 0 || entry.ProcessorFee < 0 || entry.LandlordReceives < 0 {
		return ErrInvalidAmount
	}
	if entry.LandlordReceives+entry.PlatformFee+entry.ProcessorFee != entry.Amount {
		return ErrUnbalancedSplit
	}
	return nil
}
