package domain

// Platform fee basis points by payment type. The fee is derived at the time
// the payment is first recorded, never re-derived from a later webhook, so a
// fee configuration change cannot drift a payment between creation and
// settlement.
var platformFeeBasisPoints = map[PaymentType]int64{
	TypeRent:    300,
	TypeDeposit: 0,
	TypeLateFee: 500,
	TypeOneTime: 300,
}

const defaultPlatformFeeBasisPoints int64 = 300

// PlatformFeeFor computes the platform's cut for a payment type and amount.
func PlatformFeeFor(paymentType PaymentType, amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	bps, ok := platformFeeBasisPoints[paymentType]
	if !ok {
		bps = defaultPlatformFeeBasisPoints
	}
	return amount * bps / 10000
}
