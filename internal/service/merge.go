package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/class-coupon-ledger/internal/models"
)

const notesSeparator = " | "

// MergeTopUp folds a grant into an existing coupon row:
//   - classes (total and remaining) are summed
//   - the earliest purchase date wins
//   - a supplied expiry replaces the old one, a missing one never clears it
//   - amounts are summed, staying null only when both sides are null
//   - notes are joined, skipping blank sides
//   - the coupon is active if either side is
func MergeTopUp(existing models.Coupon, g models.Grant) models.Coupon {
	merged := existing
	merged.TotalClasses += g.TotalClasses
	merged.ClassesRemaining += g.ClassesRemaining

	if g.PurchaseDate.Before(existing.PurchaseDate) {
		merged.PurchaseDate = g.PurchaseDate
	}
	if g.ExpiryDate != nil {
		merged.ExpiryDate = g.ExpiryDate
	}

	merged.AmountPaid = mergeAmounts(existing.AmountPaid, g.AmountPaid)
	merged.Notes = mergeNotes(existing.Notes, g.Notes)
	merged.Active = existing.Active || g.Active
	return merged
}

func mergeAmounts(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid && !b.Valid {
		return decimal.NullDecimal{}
	}
	sum := decimal.Zero
	if a.Valid {
		sum = sum.Add(a.Decimal)
	}
	if b.Valid {
		sum = sum.Add(b.Decimal)
	}
	return decimal.NewNullDecimal(sum)
}

func mergeNotes(existing, incoming *string) *string {
	if isBlank(existing) {
		return incoming
	}
	if isBlank(incoming) {
		return existing
	}
	joined := *existing + notesSeparator + *incoming
	return &joined
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
