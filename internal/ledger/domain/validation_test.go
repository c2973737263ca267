package domain

import (
	"errors"
	"testing"
)

func TestValidateSplitBalanced(t *testing.T) {
	entry := LedgerEntry{
		Amount:           150000,
		PlatformFee:      4500,
		ProcessorFee:     1500,
		LandlordReceives: 144000,
	}
	if err := ValidateSplit(entry); err != nil {
		t.Fatalf("expected balanced split, got %v", err)
	}
}

func TestValidateSplitMismatch(t *testing.T) {
	entry := LedgerEntry{
		Amount:           150000,
		PlatformFee:      4500,
		ProcessorFee:     1500,
		LandlordReceives: 143000,
	}
	if err := ValidateSplit(entry); !errors.Is(err, ErrUnbalancedSplit) {
		t.Fatalf("expected unbalanced_split, got %v", err)
	}
}

func TestValidateSplitRejectsNegativeComponents(t *testing.T) {
	entry := LedgerEntry{
		Amount:           100,
		PlatformFee:      -10,
		ProcessorFee:     10,
		LandlordReceives: 100,
	}
	if err := ValidateSplit(entry); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid_amount, got %v", err)
	}
}

func TestValidateSplitRejectsZeroAmount(t *testing.T) {
	if err := ValidateSplit(LedgerEntry{}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid_amount, got %v", err)
	}
}
