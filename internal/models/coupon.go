package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultTotalClasses = 10
	DefaultExpiringDays = 30
)

type Coupon struct {
	ID               int64               `json:"id"`
	MemberID         int64               `json:"member_id"`
	TotalClasses     int                 `json:"total_classes"`
	ClassesRemaining int                 `json:"classes_remaining"`
	PurchaseDate     Date                `json:"purchase_date"`
	ExpiryDate       *Date               `json:"expiry_date"`
	AmountPaid       decimal.NullDecimal `json:"amount_paid"`
	Notes            *string             `json:"notes"`
	Active           bool                `json:"active"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// Read model for listings that show who owns the coupon.

type CouponWithMember struct {
	Coupon
	MemberRef
}

// CouponFilter narrows ListAll. Nil fields are not applied.
type CouponFilter struct {
	MemberID *int64
	Active   *bool
	Expired  *bool
}

// TopUp is a grant of classes to a member. Nil fields take the ledger defaults.
type TopUp struct {
	MemberID         int64
	TotalClasses     *int
	ClassesRemaining *int
	PurchaseDate     *Date
	ExpiryDate       *Date
	AmountPaid       decimal.NullDecimal
	Notes            *string
	Active           *bool
}

// Grant is a TopUp with every default resolved.
type Grant struct {
	MemberID         int64
	TotalClasses     int
	ClassesRemaining int
	PurchaseDate     Date
	ExpiryDate       *Date
	AmountPaid       decimal.NullDecimal
	Notes            *string
	Active           bool
}

// Resolve fills in defaults: 10 classes, remaining equal to total,
// purchased today, active.
func (t TopUp) Resolve(today Date) Grant {
	g := Grant{
		MemberID:     t.MemberID,
		TotalClasses: DefaultTotalClasses,
		PurchaseDate: today,
		ExpiryDate:   t.ExpiryDate,
		AmountPaid:   t.AmountPaid,
		Notes:        t.Notes,
		Active:       true,
	}
	if t.TotalClasses != nil {
		g.TotalClasses = *t.TotalClasses
	}
	g.ClassesRemaining = g.TotalClasses
	if t.ClassesRemaining != nil {
		g.ClassesRemaining = *t.ClassesRemaining
	}
	if t.PurchaseDate != nil {
		g.PurchaseDate = *t.PurchaseDate
	}
	if t.Active != nil {
		g.Active = *t.Active
	}
	return g
}

// CouponUpdate replaces every mutable field of a coupon.
type CouponUpdate struct {
	TotalClasses     int
	ClassesRemaining int
	ExpiryDate       *Date
	AmountPaid       decimal.NullDecimal
	Notes            *string
	Active           bool
}
