package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// IdempotencyKey builds a deterministic event id for internally-originated
// retries (for example a scheduled rent charge), so re-invoking the same
// logical operation passes through the same insert-or-conflict gate as an
// external event and can never duplicate a ledger write.
func IdempotencyKey(operation, resourceID string) string {
	sum := sha256.Sum256([]byte(operation + ":" + resourceID))
	return "int_" + hex.EncodeToString(sum[:])
}
