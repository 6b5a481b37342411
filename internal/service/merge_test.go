package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/class-coupon-ledger/internal/models"
)

func strPtr(s string) *string { return &s }

func datePtr(d models.Date) *models.Date { return &d }

func baseCoupon() models.Coupon {
	return models.Coupon{
		ID:               1,
		MemberID:         7,
		TotalClasses:     10,
		ClassesRemaining: 3,
		PurchaseDate:     models.NewDate(2025, time.January, 10),
		ExpiryDate:       datePtr(models.NewDate(2025, time.April, 10)),
		AmountPaid:       decimal.NewNullDecimal(decimal.NewFromInt(100)),
		Notes:            strPtr("A"),
		Active:           true,
	}
}

func TestMergeTopUpSumsClassesAndAmounts(t *testing.T) {
	g := models.Grant{
		MemberID:         7,
		TotalClasses:     5,
		ClassesRemaining: 5,
		PurchaseDate:     models.NewDate(2025, time.March, 1),
		AmountPaid:       decimal.NewNullDecimal(decimal.NewFromInt(50)),
		Notes:            strPtr("B"),
		Active:           true,
	}

	merged := MergeTopUp(baseCoupon(), g)

	assert.Equal(t, int64(1), merged.ID)
	assert.Equal(t, 15, merged.TotalClasses)
	assert.Equal(t, 8, merged.ClassesRemaining)
	require.True(t, merged.AmountPaid.Valid)
	assert.True(t, merged.AmountPaid.Decimal.Equal(decimal.NewFromInt(150)))
	require.NotNil(t, merged.Notes)
	assert.Equal(t, "A | B", *merged.Notes)
	// earliest purchase date is kept
	assert.Equal(t, "2025-01-10", merged.PurchaseDate.String())
	// no new expiry keeps the old one
	require.NotNil(t, merged.ExpiryDate)
	assert.Equal(t, "2025-04-10", merged.ExpiryDate.String())
}

func TestMergeTopUpEarlierPurchaseDateWins(t *testing.T) {
	g := models.Grant{
		TotalClasses:     1,
		ClassesRemaining: 1,
		PurchaseDate:     models.NewDate(2024, time.December, 24),
		Active:           true,
	}

	merged := MergeTopUp(baseCoupon(), g)
	assert.Equal(t, "2024-12-24", merged.PurchaseDate.String())
}

func TestMergeTopUpReplacesExpiryWhenGiven(t *testing.T) {
	g := models.Grant{
		TotalClasses:     10,
		ClassesRemaining: 10,
		PurchaseDate:     models.NewDate(2025, time.March, 1),
		ExpiryDate:       datePtr(models.NewDate(2025, time.June, 30)),
		Active:           true,
	}

	merged := MergeTopUp(baseCoupon(), g)
	require.NotNil(t, merged.ExpiryDate)
	assert.Equal(t, "2025-06-30", merged.ExpiryDate.String())
}

func TestMergeTopUpAmounts(t *testing.T) {
	tests := []struct {
		name     string
		existing decimal.NullDecimal
		incoming decimal.NullDecimal
		valid    bool
		want     string
	}{
		{"both null", decimal.NullDecimal{}, decimal.NullDecimal{}, false, ""},
		{"existing null", decimal.NullDecimal{}, decimal.NewNullDecimal(decimal.RequireFromString("49.90")), true, "49.9"},
		{"incoming null", decimal.NewNullDecimal(decimal.NewFromInt(80)), decimal.NullDecimal{}, true, "80"},
		{"both set", decimal.NewNullDecimal(decimal.RequireFromString("0.10")), decimal.NewNullDecimal(decimal.RequireFromString("0.20")), true, "0.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseCoupon()
			c.AmountPaid = tt.existing
			merged := MergeTopUp(c, models.Grant{PurchaseDate: c.PurchaseDate, AmountPaid: tt.incoming})

			assert.Equal(t, tt.valid, merged.AmountPaid.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, merged.AmountPaid.Decimal.String())
			}
		})
	}
}

func TestMergeTopUpNotes(t *testing.T) {
	tests := []struct {
		name     string
		existing *string
		incoming *string
		want     *string
	}{
		{"both present", strPtr("A"), strPtr("B"), strPtr("A | B")},
		{"existing empty", strPtr(""), strPtr("B"), strPtr("B")},
		{"existing nil", nil, strPtr("B"), strPtr("B")},
		{"incoming nil", strPtr("A"), nil, strPtr("A")},
		{"incoming blank", strPtr("A"), strPtr("  "), strPtr("A")},
		{"both nil", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseCoupon()
			c.Notes = tt.existing
			merged := MergeTopUp(c, models.Grant{PurchaseDate: c.PurchaseDate, Notes: tt.incoming})
			assert.Equal(t, tt.want, merged.Notes)
		})
	}
}

func TestMergeTopUpActiveIsOred(t *testing.T) {
	tests := []struct {
		existing, incoming, want bool
	}{
		{false, false, false},
		{false, true, true},
		{true, false, true},
		{true, true, true},
	}

	for _, tt := range tests {
		c := baseCoupon()
		c.Active = tt.existing
		merged := MergeTopUp(c, models.Grant{PurchaseDate: c.PurchaseDate, Active: tt.incoming})
		assert.Equal(t, tt.want, merged.Active, "existing=%v incoming=%v", tt.existing, tt.incoming)
	}
}

func TestMergeTopUpReactivatesExhaustedCoupon(t *testing.T) {
	c := baseCoupon()
	c.ClassesRemaining = 0
	c.Active = false

	merged := MergeTopUp(c, models.Grant{
		TotalClasses:     10,
		ClassesRemaining: 10,
		PurchaseDate:     models.NewDate(2025, time.March, 1),
		Active:           true,
	})

	assert.Equal(t, 20, merged.TotalClasses)
	assert.Equal(t, 10, merged.ClassesRemaining)
	assert.True(t, merged.Active)
}
